package model

import "fmt"

// Level логический уровень цифрового входа
type Level uint8

const (
	Low  Level = 0
	High Level = 1
)

// Invert противоположный уровень
func (m Level) Invert() Level {
	if m == High {
		return Low
	}
	return High
}

// String краткое описание
func (m Level) String() string {
	if m == High {
		return "high"
	}
	return "low"
}

// TriggerState результат калибровки датчика. Trigger всегда противоположен Idle
type TriggerState struct {
	// Уровень на входе, когда щель свободна
	Idle Level
	// Уровень на входе, когда щель перекрыта
	Trigger Level
}

// NewTriggerState строит состояние по уровню покоя idle
func NewTriggerState(idle Level) TriggerState {
	return TriggerState{Idle: idle, Trigger: idle.Invert()}
}

// String краткое описание
func (m TriggerState) String() string {
	return fmt.Sprintf("idle=%s trigger=%s", m.Idle, m.Trigger)
}
