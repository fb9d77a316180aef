package lcd

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Записывает все переданные на шину байты
type recorder struct {
	bytes  []byte
	failAt int
}

func (m *recorder) Write(p []byte) (int, error) {
	if m.failAt > 0 && len(m.bytes)+len(p) > m.failAt {
		return 0, io.ErrClosedPipe
	}
	m.bytes = append(m.bytes, p...)
	return len(p), nil
}

func newTestLcd(t *testing.T) (*Lcd, *recorder, *time.Duration) {
	t.Helper()
	rec := &recorder{}
	var delays time.Duration
	display, err := NewWithWriter(nil, rec, func(d time.Duration) { delays += d })
	require.NoError(t, err)
	return display, rec, &delays
}

func TestInitSequence(t *testing.T) {
	_, rec, delays := newTestLcd(t)

	// 0x30 x3, 0x20 - по три байта; пять команд - по шесть байт
	require.Len(t, rec.bytes, 4*3+5*6)
	assert.Equal(t, []byte{0x38, 0x3C, 0x38}, rec.bytes[0:3])
	assert.Equal(t, []byte{0x28, 0x2C, 0x28}, rec.bytes[9:12])
	// 0x28 = старшая тетрада 0x20, младшая 0x80
	assert.Equal(t, []byte{0x28, 0x2C, 0x28, 0x88, 0x8C, 0x88}, rec.bytes[12:18])
	// 0x0C - последняя команда
	assert.Equal(t, []byte{0x08, 0x0C, 0x08, 0xC8, 0xCC, 0xC8}, rec.bytes[36:42])

	want := powerOnDelay + 3*wakeDelay + 5*commandDelay + 14*(strobeHigh+strobeLow)
	assert.Equal(t, want, *delays)
}

func TestPrint2(t *testing.T) {
	display, rec, _ := newTestLcd(t)
	rec.bytes = nil

	require.NoError(t, display.Print2("A", ""))
	assert.Equal(t, []byte{
		0x08, 0x0C, 0x08, 0x18, 0x1C, 0x18, // очистка
		0x49, 0x4D, 0x49, 0x19, 0x1D, 0x19, // 'A'
		0xC8, 0xCC, 0xC8, 0x08, 0x0C, 0x08, // вторая строка
	}, rec.bytes)
}

func TestPrint2Truncates(t *testing.T) {
	display, rec, _ := newTestLcd(t)
	rec.bytes = nil

	require.NoError(t, display.Print2("Attendance System!", "Roll: R001-LONG-NUMBER"))
	assert.Len(t, rec.bytes, 6+16*6+6+16*6)
}

func TestPrint2WriteError(t *testing.T) {
	display, rec, _ := newTestLcd(t)
	rec.failAt = len(rec.bytes) + 7
	assert.Error(t, display.Print2("Welcome", ""))
}

func TestCharset(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{name: "пустая", in: "", want: []byte{}},
		{name: "ascii", in: "Ready...", want: []byte("Ready...")},
		{name: "обрезка", in: "Scan your id card now", want: []byte("Scan your id car")},
		{name: "не ascii", in: "José И", want: []byte("Jos? ?")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Charset(tt.in))
		})
	}
}
