package service

import (
	"context"

	"github.com/kirsrus/attendance/model"
)

// Sensor цифровой вход фотопрерывателя
//go:generate mockery --dir . --name Sensor --output ./mocks
type Sensor interface {
	// Текущий уровень на входе
	Read() model.Level
}

// Buzzer зуммер
//go:generate mockery --dir . --name Buzzer --output ./mocks
type Buzzer interface {
	// Включить звук
	On() error
	// Выключить звук
	Off() error
}

// Display двухстрочный символьный дисплей
//go:generate mockery --dir . --name Display --output ./mocks
type Display interface {
	// Очищает дисплей и выводит две строки. Строки длиннее ширины дисплея обрезаются
	Print2(line1, line2 string) error
}

// CardReader считыватель RFID карт с блокирующим чтением
//go:generate mockery --dir . --name CardReader --output ./mocks
type CardReader interface {
	// Ожидает карту и возвращает её идентификатор. Прерывается отменой ctx
	Read(ctx context.Context) (model.UID, error)
}

// CardProber считыватель, умеющий проверять наличие карты без ожидания.
// Реализуется считывателями дополнительно к CardReader
//go:generate mockery --dir . --name CardProber --output ./mocks
type CardProber interface {
	// Однократная проверка. Пустой UID без ошибки - карты нет. Ошибка - сбой обмена со считывателем
	TryRead() (model.UID, error)
}

// AddressSource источник IP-адресов локальных интерфейсов
//go:generate mockery --dir . --name AddressSource --output ./mocks
type AddressSource interface {
	// Текущие адреса в текстовом виде
	Addresses() ([]string, error)
}
