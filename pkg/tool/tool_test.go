package tool

import (
	"context"
	"testing"
	"time"

	"github.com/kirsrus/attendance/model"

	"github.com/stretchr/testify/assert"
)

func TestUIDFromBytes(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want model.UID
	}{
		{name: "пустой", raw: nil, want: ""},
		{name: "один байт", raw: []byte{0x7b}, want: "123"},
		{name: "карта MIFARE", raw: []byte{0x88, 0x04, 0x4c, 0x2a, 0xe2}, want: "584187652834"},
		{name: "ведущие нули", raw: []byte{0x00, 0x00, 0x01, 0x00}, want: "256"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UIDFromBytes(tt.raw))
		})
	}
}

func TestManualClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.Local)
	clock := NewManualClock(start)

	assert.NoError(t, clock.Sleep(context.Background(), 20*time.Millisecond))
	clock.Advance(time.Second)
	assert.Equal(t, start.Add(1020*time.Millisecond), clock.Now())
	assert.Equal(t, 1020*time.Millisecond, clock.Slept())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, clock.Sleep(ctx, time.Second))
	assert.Equal(t, start.Add(1020*time.Millisecond), clock.Now())
}

func TestSystemClockSleepCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	begin := time.Now()
	err := SystemClock{}.Sleep(ctx, time.Minute)
	assert.Equal(t, context.Canceled, err)
	assert.Less(t, int64(time.Since(begin)), int64(time.Second))
}
