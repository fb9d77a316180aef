package tool

import (
	"context"
	"sync"
	"time"
)

// Clock источник времени и задержек для циклов опроса. Sleep прерывается отменой ctx
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock реальные часы
type SystemClock struct{}

// Now текущее время
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep ожидание d или отмены ctx. При отмене возвращается ctx.Err()
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ManualClock часы, время которых двигается только вызовами Sleep и Advance.
// Инициализируется через NewManualClock
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
	// Суммарное время всех Sleep
	slept time.Duration
}

// NewManualClock конструктор ManualClock с начальным временем start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now текущее время часов
func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Sleep мгновенно сдвигает время на d
func (m *ManualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.Advance(d)
	return nil
}

// Advance сдвигает время на d
func (m *ManualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.slept += d
	m.mu.Unlock()
}

// Slept суммарное время, проведённое в Sleep и Advance
func (m *ManualClock) Slept() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slept
}
