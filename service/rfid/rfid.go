package rfid

import (
	"io"

	"github.com/kirsrus/attendance/service"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const (
	TypeMfrc522 = "mfrc522"
	TypeSerial  = "serial"
)

// Reader открытый считыватель
type Reader interface {
	service.CardReader
	io.Closer
}

// Config параметры выбора и открытия считывателя
type Config struct {
	Log *logrus.Logger
	// TypeMfrc522 или TypeSerial
	Type string

	Spi      string
	ResetPin string
	IrqPin   string

	Device string
	Baud   int
}

// Open открывает считыватель указанного в конфигурации типа
func Open(config *Config) (Reader, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	switch config.Type {
	case TypeMfrc522:
		reader, err := NewMfrc522(&ConfigMfrc522{
			Log:      config.Log,
			Spi:      config.Spi,
			ResetPin: config.ResetPin,
			IrqPin:   config.IrqPin,
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		return reader, nil
	case TypeSerial:
		reader, err := NewSerial(&ConfigSerial{
			Log:    config.Log,
			Device: config.Device,
			Baud:   config.Baud,
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		return reader, nil
	}
	return nil, errors.NotSupportedf("считыватель %q", config.Type)
}
