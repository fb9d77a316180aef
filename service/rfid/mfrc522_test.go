package rfid

import (
	"testing"

	"github.com/kirsrus/attendance/model"

	"github.com/stretchr/testify/assert"
)

func TestCardUID(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want model.UID
	}{
		// Номера совпадают с записанными в students.csv регистрацией через SimpleMFRC522
		{name: "UID 12 34 56 78", raw: []byte{0x12, 0x34, 0x56, 0x78}, want: "78187493384"},
		{name: "UID 88 04 4C 2A", raw: []byte{0x88, 0x04, 0x4c, 0x2a}, want: "584187652842"},
		{name: "пустой", raw: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cardUID(tt.raw))
		})
	}
}

func TestCardUIDKeepsRaw(t *testing.T) {
	raw := []byte{0x12, 0x34, 0x56, 0x78}
	_ = cardUID(raw)
	assert.Equal(t, []byte{0x12, 0x34, 0x56, 0x78}, raw)
}

func TestNewMfrc522Config(t *testing.T) {
	tests := []struct {
		name   string
		config *ConfigMfrc522
	}{
		{name: "без конфигурации", config: nil},
		{name: "без вывода сброса", config: &ConfigMfrc522{IrqPin: "GPIO24"}},
		{name: "без вывода прерывания", config: &ConfigMfrc522{ResetPin: "GPIO25"}},
		{name: "вывод прерывания из пробелов", config: &ConfigMfrc522{ResetPin: "GPIO25", IrqPin: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewMfrc522(tt.config)
			if err == nil {
				t.Errorf("NewMfrc522() error = %v, wantErr %v", err, true)
			}
			assert.Nil(t, reader)
		})
	}
}
