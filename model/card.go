package model

import (
	"strings"
)

// UID идентификатор RFID карты в том виде, в котором он хранится в CSV
type UID string

// NewUID конструктор UID. Удаляет пробелы и нулевые байты по краям
func NewUID(s string) UID {
	s = strings.ReplaceAll(s, "\x00", "")
	return UID(strings.TrimSpace(s))
}

// IsEmpty карта не прочитана
func (m UID) IsEmpty() bool {
	return m == ""
}

// String строковое представление
func (m UID) String() string {
	return string(m)
}
