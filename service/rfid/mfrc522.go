package rfid

import (
	"context"
	"io/ioutil"
	"strings"
	"time"

	"github.com/kirsrus/attendance/model"
	"github.com/kirsrus/attendance/pkg/tool"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/mfrc522"
	"periph.io/x/host/v3"
)

const (
	// Ожидание карты одной пробой TryRead
	probeTimeout = 50 * time.Millisecond
	// Ожидание карты одним циклом блокирующего Read
	readTimeout = time.Second
)

// Mfrc522 считыватель MIFARE на MFRC522 по SPI. Имплементирует service.CardReader и
// service.CardProber. Инициируется через NewMfrc522
type Mfrc522 struct {
	log  *logrus.Entry
	dev  *mfrc522.Dev
	port spi.PortCloser

	probeTimeout time.Duration
	readTimeout  time.Duration
}

// ConfigMfrc522 конфигурация Mfrc522
type ConfigMfrc522 struct {
	Log *logrus.Logger
	// Имя порта SPI (пусто - первый доступный)
	Spi string
	// Вывод сброса
	ResetPin string
	// Вывод прерывания. Обязателен: драйвер ждёт ответ карты по фронту IRQ
	IrqPin string

	ProbeTimeout time.Duration
	ReadTimeout  time.Duration
}

// NewMfrc522 конструктор Mfrc522
func NewMfrc522(config *ConfigMfrc522) (*Mfrc522, error) {
	if err := checkConfigMfrc522(config); err != nil {
		return nil, err
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if _, err := host.Init(); err != nil {
		return nil, errors.Annotate(err, "ошибка инициализации драйверов")
	}

	reset := gpioreg.ByName(config.ResetPin)
	if reset == nil {
		return nil, errors.Errorf("вывод сброса %s не найден", config.ResetPin)
	}
	irq := gpioreg.ByName(config.IrqPin)
	if irq == nil {
		return nil, errors.Errorf("вывод прерывания %s не найден", config.IrqPin)
	}

	port, err := spireg.Open(config.Spi)
	if err != nil {
		return nil, errors.Annotatef(err, "ошибка открытия порта SPI %q", config.Spi)
	}
	dev, err := mfrc522.NewSPI(port, reset, irq)
	if err != nil {
		_ = port.Close()
		return nil, errors.Annotate(err, "ошибка инициализации MFRC522")
	}

	res := &Mfrc522{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "mfrc522",
			"scope":  "service",
		}),
		dev:          dev,
		port:         port,
		probeTimeout: probeTimeout,
		readTimeout:  readTimeout,
	}
	if config.ProbeTimeout != 0 {
		res.probeTimeout = config.ProbeTimeout
	}
	if config.ReadTimeout != 0 {
		res.readTimeout = config.ReadTimeout
	}
	res.log.Infof("считыватель %s на порту %s", dev, port)
	return res, nil
}

// Проверка конфигурации до обращения к оборудованию
func checkConfigMfrc522(config *ConfigMfrc522) error {
	if config == nil {
		return errors.New("не задана конфигурация config")
	}
	if strings.TrimSpace(config.ResetPin) == "" {
		return errors.New("не указан вывод сброса ResetPin")
	}
	if strings.TrimSpace(config.IrqPin) == "" {
		return errors.New("не указан вывод прерывания IrqPin")
	}
	return nil
}

// cardUID номер карты по UID из драйвера. Драйвер отбрасывает контрольный байт BCC
// (XOR байтов UID), а в students.csv номер записан вместе с ним, поэтому BCC дописывается обратно
func cardUID(raw []byte) model.UID {
	if len(raw) == 0 {
		return ""
	}
	var bcc byte
	full := make([]byte, 0, len(raw)+1)
	for _, b := range raw {
		bcc ^= b
		full = append(full, b)
	}
	return tool.UIDFromBytes(append(full, bcc))
}

// TryRead однократная попытка прочитать карту. Отсутствие карты в поле антенны
// драйвер сообщает ошибкой таймаута
func (m *Mfrc522) TryRead() (model.UID, error) {
	raw, err := m.dev.ReadUID(m.probeTimeout)
	if err != nil {
		return "", errors.Trace(err)
	}
	return cardUID(raw), nil
}

// Read ожидает карту до её появления или отмены ctx
func (m *Mfrc522) Read(ctx context.Context) (model.UID, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		raw, err := m.dev.ReadUID(m.readTimeout)
		if err != nil {
			m.log.Debugf("карта не прочитана: %v", err)
			continue
		}
		if uid := cardUID(raw); !uid.IsEmpty() {
			return uid, nil
		}
	}
}

// Close переводит считыватель в режим ожидания и закрывает порт SPI
func (m *Mfrc522) Close() error {
	if err := m.dev.Halt(); err != nil {
		m.log.Warnf("ошибка остановки считывателя: %v", err)
	}
	return errors.Trace(m.port.Close())
}
