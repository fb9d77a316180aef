package lcd

import (
	"io"
	"io/ioutil"
	"time"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	// Ширина строки дисплея
	Width = 16

	// Биты расширителя PCF8574
	bitBacklight = 0x08
	bitEnable    = 0x04
	bitRegSelect = 0x01

	// Команды HD44780
	cmdClear = 0x01
	cmdLine2 = 0xC0

	// Символ для знаков вне ASCII
	replacement = '?'
)

// Команды инициализации в 4-битном режиме после перевода в него
var initCommands = []byte{
	0x28, // 4 бита, 2 строки, 5x8
	0x08, // дисплей выключен
	0x01, // очистка
	0x06, // сдвиг курсора вправо
	0x0C, // дисплей включён, курсор скрыт
}

// Тайминги строба и команд
const (
	strobeHigh   = 500 * time.Microsecond
	strobeLow    = 100 * time.Microsecond
	powerOnDelay = 50 * time.Millisecond
	wakeDelay    = 4500 * time.Microsecond
	commandDelay = 2 * time.Millisecond
)

// Lcd дисплей HD44780 16x2 за расширителем PCF8574 на шине I2C. Имплементирует service.Display.
// Инициируется через NewLcd или NewWithWriter
type Lcd struct {
	log    *logrus.Entry
	bus    io.Writer
	closer io.Closer
	delay  func(time.Duration)
}

// ConfigLcd конфигурация Lcd
type ConfigLcd struct {
	Log *logrus.Logger
	// Имя шины I2C (пусто - первая доступная)
	Bus string
	// Адрес расширителя на шине
	Address uint16
}

// NewLcd открывает шину I2C и инициализирует дисплей
func NewLcd(config *ConfigLcd) (*Lcd, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Address == 0 {
		return nil, errors.New("не указан адрес дисплея")
	}
	if _, err := host.Init(); err != nil {
		return nil, errors.Annotate(err, "ошибка инициализации драйверов")
	}
	bus, err := i2creg.Open(config.Bus)
	if err != nil {
		return nil, errors.Annotatef(err, "ошибка открытия шины I2C %q", config.Bus)
	}
	dev := &i2c.Dev{Bus: bus, Addr: config.Address}
	res, err := NewWithWriter(config.Log, dev, time.Sleep)
	if err != nil {
		_ = bus.Close()
		return nil, errors.Trace(err)
	}
	res.closer = bus
	res.log.Infof("дисплей на шине %s, адрес 0x%02X", bus, config.Address)
	return res, nil
}

// NewWithWriter инициализирует дисплей, байты протокола которого пишутся в bus.
// delay выполняет задержки протокола
func NewWithWriter(log *logrus.Logger, bus io.Writer, delay func(time.Duration)) (*Lcd, error) {
	if log == nil {
		log = logrus.New()
		log.Out = ioutil.Discard
	}
	if bus == nil {
		return nil, errors.New("не передана шина дисплея")
	}
	if delay == nil {
		delay = time.Sleep
	}
	res := &Lcd{
		log: log.WithFields(map[string]interface{}{
			"module": "lcd",
			"scope":  "service",
		}),
		bus:   bus,
		delay: delay,
	}
	if err := res.init(); err != nil {
		return nil, errors.Annotate(err, "ошибка инициализации дисплея")
	}
	return res, nil
}

// Последовательность перевода контроллера в 4-битный режим
func (m *Lcd) init() error {
	m.delay(powerOnDelay)
	for i := 0; i < 3; i++ {
		if err := m.send4(0x30, false); err != nil {
			return err
		}
		m.delay(wakeDelay)
	}
	if err := m.send4(0x20, false); err != nil {
		return err
	}
	for _, c := range initCommands {
		if err := m.command(c); err != nil {
			return err
		}
		m.delay(commandDelay)
	}
	return nil
}

// Запись одного байта в расширитель
func (m *Lcd) write(d byte) error {
	if _, err := m.bus.Write([]byte{d}); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// Строб сигнала Enable
func (m *Lcd) strobe(d byte) error {
	if err := m.write(d | bitEnable); err != nil {
		return err
	}
	m.delay(strobeHigh)
	if err := m.write(d &^ bitEnable); err != nil {
		return err
	}
	m.delay(strobeLow)
	return nil
}

// Передача старшей тетрады data
func (m *Lcd) send4(data byte, rs bool) error {
	v := data | bitBacklight
	if rs {
		v |= bitRegSelect
	}
	if err := m.write(v); err != nil {
		return err
	}
	return m.strobe(v)
}

// Передача байта двумя тетрадами
func (m *Lcd) send(b byte, rs bool) error {
	if err := m.send4(b&0xF0, rs); err != nil {
		return err
	}
	return m.send4((b<<4)&0xF0, rs)
}

func (m *Lcd) command(c byte) error {
	return m.send(c, false)
}

// Clear очищает дисплей
func (m *Lcd) Clear() error {
	if err := m.command(cmdClear); err != nil {
		return errors.Trace(err)
	}
	m.delay(commandDelay)
	return nil
}

// Print2 очищает дисплей и выводит две строки, каждая не длиннее Width символов
func (m *Lcd) Print2(line1, line2 string) error {
	if err := m.Clear(); err != nil {
		return errors.Trace(err)
	}
	for _, ch := range Charset(line1) {
		if err := m.send(ch, true); err != nil {
			return errors.Trace(err)
		}
	}
	if err := m.command(cmdLine2); err != nil {
		return errors.Trace(err)
	}
	for _, ch := range Charset(line2) {
		if err := m.send(ch, true); err != nil {
			return errors.Trace(err)
		}
	}
	m.log.Debugf("вывод: %q / %q", line1, line2)
	return nil
}

// Close освобождает шину I2C, если она была открыта через NewLcd
func (m *Lcd) Close() error {
	if m.closer == nil {
		return nil
	}
	return errors.Trace(m.closer.Close())
}

// Charset первые Width символов строки s в кодах дисплея. Символы вне печатного ASCII заменяются на '?'
func Charset(s string) []byte {
	res := make([]byte, 0, Width)
	for _, r := range s {
		if len(res) == Width {
			break
		}
		if r < 0x20 || r > 0x7E {
			r = replacement
		}
		res = append(res, byte(r))
	}
	return res
}
