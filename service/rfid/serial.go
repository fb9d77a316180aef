package rfid

import (
	"context"
	"encoding/hex"
	"io"
	"io/ioutil"
	"time"

	"github.com/kirsrus/attendance/model"
	"github.com/kirsrus/attendance/pkg/tool"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"github.com/tarm/serial"
)

const (
	// Таймаут одного чтения из порта. Между чтениями проверяется отмена контекста
	serialReadTimeout = 100 * time.Millisecond
	// Максимальное количество чтений при сбросе накопленных кадров
	maxDrainReads = 10
	serialBaud    = 9600
)

// Serial считыватель 125 кГц с выводом кадров по UART (формат RDM6300). Имплементирует только
// service.CardReader: проверить наличие карты без ожидания кадра он не умеет.
// Инициируется через NewSerial или NewSerialWithPort
type Serial struct {
	log    *logrus.Entry
	port   io.ReadCloser
	parser frameParser
}

// ConfigSerial конфигурация Serial
type ConfigSerial struct {
	Log *logrus.Logger
	// Последовательный порт, например /dev/serial0
	Device string
	// Скорость порта
	Baud int
}

// NewSerial открывает последовательный порт считывателя
func NewSerial(config *ConfigSerial) (*Serial, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Device == "" {
		return nil, errors.New("не указан последовательный порт")
	}
	baud := serialBaud
	if config.Baud != 0 {
		baud = config.Baud
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        config.Device,
		Baud:        baud,
		ReadTimeout: serialReadTimeout,
	})
	if err != nil {
		return nil, errors.Annotatef(err, "ошибка открытия порта %s", config.Device)
	}
	res := NewSerialWithPort(config.Log, port)
	res.log.Infof("считыватель на порту %s, %d бод", config.Device, baud)
	return res, nil
}

// NewSerialWithPort считыватель поверх уже открытого порта. Чтение из port должно
// завершаться по таймауту, возвращая 0 байт
func NewSerialWithPort(log *logrus.Logger, port io.ReadCloser) *Serial {
	if log == nil {
		log = logrus.New()
		log.Out = ioutil.Discard
	}
	return &Serial{
		log: log.WithFields(map[string]interface{}{
			"module": "serial",
			"scope":  "service",
		}),
		port: port,
	}
}

// Read ожидает кадр с картой до его появления или отмены ctx. Кадры, накопившиеся в порту
// до вызова, отбрасываются
func (m *Serial) Read(ctx context.Context) (model.UID, error) {
	m.drain()
	buf := make([]byte, 64)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := m.port.Read(buf)
		if err != nil && err != io.EOF {
			return "", errors.Annotate(err, "ошибка чтения порта")
		}
		for _, b := range buf[:n] {
			if uid, ok := m.parser.feed(b); ok {
				m.parser.reset()
				return uid, nil
			}
		}
	}
}

// Сброс накопленных в порту данных: читаем, пока чтение не вернёт 0 байт
func (m *Serial) drain() {
	m.parser.reset()
	buf := make([]byte, 64)
	for i := 0; i < maxDrainReads; i++ {
		n, err := m.port.Read(buf)
		if err != nil || n == 0 {
			return
		}
		m.log.Debugf("отброшено %d байт из порта", n)
	}
}

// Close закрывает порт
func (m *Serial) Close() error {
	return errors.Trace(m.port.Close())
}

const (
	frameStart = 0x02
	frameEnd   = 0x03
	// 10 символов данных и 2 символа контрольной суммы
	framePayload = 12
)

// Разбор кадров RDM6300: STX, 10 hex символов данных, 2 hex символа XOR-суммы, ETX
type frameParser struct {
	buf     []byte
	inFrame bool
}

func (m *frameParser) reset() {
	m.buf = m.buf[:0]
	m.inFrame = false
}

// Принимает очередной байт. Возвращает UID и true по завершении корректного кадра
func (m *frameParser) feed(b byte) (model.UID, bool) {
	switch {
	case b == frameStart:
		m.buf = m.buf[:0]
		m.inFrame = true
		return "", false
	case !m.inFrame:
		return "", false
	case b == frameEnd:
		payload := m.buf
		m.reset()
		return decodeFrame(payload)
	case len(m.buf) >= framePayload:
		// Кадр длиннее допустимого, ждём следующий STX
		m.reset()
		return "", false
	default:
		m.buf = append(m.buf, b)
		return "", false
	}
}

// Проверка контрольной суммы и преобразование данных кадра в UID
func decodeFrame(payload []byte) (model.UID, bool) {
	if len(payload) != framePayload {
		return "", false
	}
	data := make([]byte, 5)
	if _, err := hex.Decode(data, payload[:10]); err != nil {
		return "", false
	}
	sum := make([]byte, 1)
	if _, err := hex.Decode(sum, payload[10:]); err != nil {
		return "", false
	}
	var xor byte
	for _, b := range data {
		xor ^= b
	}
	if xor != sum[0] {
		return "", false
	}
	return tool.UIDFromBytes(data), true
}
