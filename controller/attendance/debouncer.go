package attendance

import "time"

// Debouncer отсекает срабатывания датчика, пришедшие раньше окна window после последнего принятого.
// Первое срабатывание принимается всегда
type Debouncer struct {
	window   time.Duration
	last     time.Time
	accepted bool
}

// NewDebouncer конструктор Debouncer
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Accept решает, принять ли срабатывание в момент now. Принятое срабатывание запоминается
func (m *Debouncer) Accept(now time.Time) bool {
	if m.accepted && now.Sub(m.last) < m.window {
		return false
	}
	m.last = now
	m.accepted = true
	return true
}

// Last момент последнего принятого срабатывания
func (m *Debouncer) Last() time.Time {
	return m.last
}
