package model

import (
	"time"
)

// Status статус отметки о посещении
type Status string

const (
	// StatusPresent единственный статус, который выставляет киоск
	StatusPresent Status = "present"
)

// TimestampLayout формат времени в журнале посещений (локальное время с точностью до секунды)
const TimestampLayout = "2006-01-02T15:04:05"

// Attendance запись журнала посещений. После записи не изменяется
type Attendance struct {
	Timestamp time.Time `validate:"required"`
	UID       UID       `validate:"uid"`
	Name      string
	Roll      string
	Status    Status `validate:"oneof=present"`
}

// NewAttendance формирует запись о посещении для владельца карты enrollee на момент t
func NewAttendance(t time.Time, enrollee Enrollee) Attendance {
	return Attendance{
		Timestamp: t.Truncate(time.Second),
		UID:       enrollee.UID,
		Name:      enrollee.Name,
		Roll:      enrollee.Roll,
		Status:    StatusPresent,
	}
}

// Row строка для записи в CSV
func (m Attendance) Row() []string {
	return []string{
		m.Timestamp.Format(TimestampLayout),
		m.UID.String(),
		m.Name,
		m.Roll,
		string(m.Status),
	}
}
