package csvfile

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kirsrus/attendance/model"
	"github.com/kirsrus/attendance/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIdentity(t *testing.T, content *string) (store.IdentityStore, string) {
	t.Helper()
	file := filepath.Join(t.TempDir(), "students.csv")
	if content != nil {
		require.NoError(t, ioutil.WriteFile(file, []byte(*content), 0644))
	}
	identity, err := NewIdentity(&ConfigIdentity{File: file})
	require.NoError(t, err)
	return identity, file
}

func strPtr(s string) *string {
	return &s
}

func TestNewIdentity(t *testing.T) {
	tests := []struct {
		name    string
		config  *ConfigIdentity
		wantErr bool
	}{
		{name: "корректный", config: &ConfigIdentity{File: "students.csv"}},
		{name: "без конфигурации", config: nil, wantErr: true},
		{name: "без файла", config: &ConfigIdentity{File: "  "}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIdentity(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewIdentity() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIdentityLoad(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    map[model.UID]model.Enrollee
	}{
		{
			name:    "файл отсутствует",
			content: nil,
			want:    map[model.UID]model.Enrollee{},
		},
		{
			name:    "пустой файл",
			content: strPtr(""),
			want:    map[model.UID]model.Enrollee{},
		},
		{
			name:    "одна запись",
			content: strPtr("uid,name,roll\n123,Alice,R001\n"),
			want: map[model.UID]model.Enrollee{
				"123": {UID: "123", Name: "Alice", Roll: "R001"},
			},
		},
		{
			name:    "пробелы, нулевые байты и пустые uid",
			content: strPtr("uid,name,roll\n 123 , Alice ,R001\n,Ghost,R9\n4\x0056,Bob,\n\n"),
			want: map[model.UID]model.Enrollee{
				"123": {UID: "123", Name: "Alice", Roll: "R001"},
				"456": {UID: "456", Name: "Bob", Roll: ""},
			},
		},
		{
			name:    "отсутствует имя",
			content: strPtr("uid,name,roll\n789\n790,,R2\n791,  ,R3\n"),
			want: map[model.UID]model.Enrollee{
				"789": {UID: "789", Name: "Unknown", Roll: ""},
				"790": {UID: "790", Name: "", Roll: "R2"},
				"791": {UID: "791", Name: "", Roll: "R3"},
			},
		},
		{
			name:    "нет колонки name",
			content: strPtr("uid,roll\n789,R1\n"),
			want: map[model.UID]model.Enrollee{
				"789": {UID: "789", Name: "Unknown", Roll: "R1"},
			},
		},
		{
			name:    "колонки в другом порядке",
			content: strPtr("name,roll,uid\nAlice,R001,123\n"),
			want: map[model.UID]model.Enrollee{
				"123": {UID: "123", Name: "Alice", Roll: "R001"},
			},
		},
		{
			name:    "повторная регистрация",
			content: strPtr("uid,name,roll\n123,Alice,R001\n123,Alice B,R002\n"),
			want: map[model.UID]model.Enrollee{
				"123": {UID: "123", Name: "Alice B", Roll: "R002"},
			},
		},
		{
			name:    "нет колонки uid",
			content: strPtr("card,name\n123,Alice\n"),
			want:    map[model.UID]model.Enrollee{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, _ := newTestIdentity(t, tt.content)
			got, err := identity.Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), identity.Count())
		})
	}
}

func TestIdentityLoadCreatesHeader(t *testing.T) {
	identity, file := newTestIdentity(t, strPtr(""))
	_, err := identity.Load()
	require.NoError(t, err)

	content, err := ioutil.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "uid,name,roll\n", string(content))
}

func TestIdentityLoadIdempotent(t *testing.T) {
	identity, _ := newTestIdentity(t, strPtr("uid,name,roll\n123,Alice,R001\n456,Bob,R002\n"))
	first, err := identity.Load()
	require.NoError(t, err)
	second, err := identity.Load()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, identity.Count())
}

func TestIdentityLookup(t *testing.T) {
	identity, _ := newTestIdentity(t, strPtr("uid,name,roll\n123,Alice,R001\n"))
	_, err := identity.Load()
	require.NoError(t, err)

	enrollee, err := identity.Lookup("123")
	require.NoError(t, err)
	assert.Equal(t, model.Enrollee{UID: "123", Name: "Alice", Roll: "R001"}, *enrollee)

	_, err = identity.Lookup("999")
	require.Error(t, err)
	assert.True(t, identity.IsNotFound(err))
}

func TestIdentityAdd(t *testing.T) {
	identity, file := newTestIdentity(t, strPtr("uid,name,roll\n123,Alice,R001"))
	_, err := identity.Load()
	require.NoError(t, err)

	require.NoError(t, identity.Add(model.Enrollee{UID: " 456 ", Name: "Bob, Jr.", Roll: "R002"}))
	assert.Error(t, identity.Add(model.Enrollee{UID: "", Name: "Nobody"}))

	enrollee, err := identity.Lookup("456")
	require.NoError(t, err)
	assert.Equal(t, "Bob, Jr.", enrollee.Name)

	content, err := ioutil.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "uid,name,roll\n123,Alice,R001\n456,\"Bob, Jr.\",R002\n", string(content))

	// Новый экземпляр читает то же, что записал первый
	reloaded, err := NewIdentity(&ConfigIdentity{File: file})
	require.NoError(t, err)
	got, err := reloaded.Load()
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, model.Enrollee{UID: "456", Name: "Bob, Jr.", Roll: "R002"}, got["456"])
}

func TestIdentityAddToMissingFile(t *testing.T) {
	identity, file := newTestIdentity(t, nil)
	require.NoError(t, identity.Add(model.Enrollee{UID: "123", Name: "Alice", Roll: "R001"}))

	content, err := ioutil.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "uid,name,roll\n123,Alice,R001\n", string(content))
}

func TestEventLogAppend(t *testing.T) {
	file := filepath.Join(t.TempDir(), "attendance.csv")
	eventLog, err := NewEventLog(&ConfigEventLog{File: file})
	require.NoError(t, err)

	ts := time.Date(2026, 10, 18, 9, 15, 42, 730000000, time.Local)
	records := []model.Attendance{
		model.NewAttendance(ts, model.Enrollee{UID: "123", Name: "Alice", Roll: "R001"}),
		model.NewAttendance(ts.Add(time.Minute), model.Unknown("999")),
	}
	for _, rec := range records {
		require.NoError(t, eventLog.Append(rec))
	}
	assert.Error(t, eventLog.Append(model.Attendance{Name: "Alice"}))
	assert.Error(t, eventLog.Append(model.Attendance{Timestamp: ts, UID: "123", Status: "absent"}))
	assert.Error(t, eventLog.Append(model.Attendance{UID: "123", Status: model.StatusPresent}))

	content, err := ioutil.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,uid,name,roll,status", lines[0])
	assert.Equal(t, "2026-10-18T09:15:42,123,Alice,R001,present", lines[1])
	assert.Equal(t, "2026-10-18T09:16:42,999,Unknown,,present", lines[2])

	got, err := eventLog.Records()
	require.NoError(t, err)
	require.Len(t, got, 2)
	for idx := range records {
		assert.True(t, records[idx].Timestamp.Equal(got[idx].Timestamp))
		assert.Equal(t, records[idx].UID, got[idx].UID)
		assert.Equal(t, records[idx].Name, got[idx].Name)
		assert.Equal(t, records[idx].Roll, got[idx].Roll)
		assert.Equal(t, model.StatusPresent, got[idx].Status)
	}
}

func TestEventLogHeaderOnce(t *testing.T) {
	file := filepath.Join(t.TempDir(), "attendance.csv")
	require.NoError(t, ioutil.WriteFile(file, []byte("timestamp,uid,name,roll,status\n"), 0644))
	eventLog, err := NewEventLog(&ConfigEventLog{File: file})
	require.NoError(t, err)

	require.NoError(t, eventLog.Append(model.NewAttendance(time.Now(), model.Unknown("123"))))

	content, err := ioutil.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "timestamp,uid"))
}

func TestEventLogRecordsMissingFile(t *testing.T) {
	eventLog, err := NewEventLog(&ConfigEventLog{File: filepath.Join(t.TempDir(), "attendance.csv")})
	require.NoError(t, err)
	got, err := eventLog.Records()
	require.NoError(t, err)
	assert.Empty(t, got)
}
