package gpio

import (
	"io/ioutil"

	"github.com/kirsrus/attendance/model"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Gpio выводы киоска: вход фотопрерывателя и выход зуммера. Имплементирует интерфейсы
// service.Sensor и service.Buzzer. Инициируется через NewGpio или NewWithPins.
// После работы выводы освобождаются через Close
type Gpio struct {
	log    *logrus.Entry
	sensor gpio.PinIO
	buzzer gpio.PinIO
}

// ConfigGpio конфигурация Gpio
type ConfigGpio struct {
	Log *logrus.Logger
	// Имя вывода фотопрерывателя, например GPIO17
	SensorPin string
	// Имя вывода зуммера, например GPIO18
	BuzzerPin string
}

// NewGpio инициализирует драйверы periph и настраивает выводы по именам из конфигурации
func NewGpio(config *ConfigGpio) (*Gpio, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if _, err := host.Init(); err != nil {
		return nil, errors.Annotate(err, "ошибка инициализации GPIO")
	}
	sensor := gpioreg.ByName(config.SensorPin)
	if sensor == nil {
		return nil, errors.Errorf("вывод датчика %s не найден", config.SensorPin)
	}
	buzzer := gpioreg.ByName(config.BuzzerPin)
	if buzzer == nil {
		return nil, errors.Errorf("вывод зуммера %s не найден", config.BuzzerPin)
	}
	return NewWithPins(config.Log, sensor, buzzer)
}

// NewWithPins настраивает переданные выводы: sensor на вход без подтяжки, buzzer на выход с низким уровнем
func NewWithPins(log *logrus.Logger, sensor, buzzer gpio.PinIO) (*Gpio, error) {
	if log == nil {
		log = logrus.New()
		log.Out = ioutil.Discard
	}
	if sensor == nil || buzzer == nil {
		return nil, errors.New("не переданы выводы GPIO")
	}
	if err := sensor.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, errors.Annotatef(err, "ошибка настройки входа %s", sensor)
	}
	if err := buzzer.Out(gpio.Low); err != nil {
		return nil, errors.Annotatef(err, "ошибка настройки выхода %s", buzzer)
	}
	res := &Gpio{
		log: log.WithFields(map[string]interface{}{
			"module": "gpio",
			"scope":  "service",
		}),
		sensor: sensor,
		buzzer: buzzer,
	}
	res.log.Infof("датчик на %s, зуммер на %s", sensor, buzzer)
	return res, nil
}

// Read уровень на входе датчика
func (m *Gpio) Read() model.Level {
	if m.sensor.Read() == gpio.High {
		return model.High
	}
	return model.Low
}

// On включает зуммер
func (m *Gpio) On() error {
	return errors.Trace(m.buzzer.Out(gpio.High))
}

// Off выключает зуммер
func (m *Gpio) Off() error {
	return errors.Trace(m.buzzer.Out(gpio.Low))
}

// Close выключает зуммер, переводит его вывод обратно на вход и освобождает оба вывода.
// Освобождение выполняется полностью даже при ошибках, возвращается первая из них
func (m *Gpio) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = errors.Trace(err)
		}
	}
	keep(m.buzzer.Out(gpio.Low))
	keep(m.buzzer.In(gpio.PullNoChange, gpio.NoEdge))
	keep(m.buzzer.Halt())
	keep(m.sensor.Halt())
	if first != nil {
		m.log.Warnf("ошибка освобождения GPIO: %v", first)
	} else {
		m.log.Info("выводы GPIO освобождены")
	}
	return first
}
