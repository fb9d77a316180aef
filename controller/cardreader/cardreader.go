package cardreader

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/kirsrus/attendance/model"
	"github.com/kirsrus/attendance/pkg/tool"
	"github.com/kirsrus/attendance/service"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const (
	pollInterval    = 80 * time.Millisecond
	removalInterval = 120 * time.Millisecond
	removalTimeout  = 3 * time.Second
	blockingRemoval = 800 * time.Millisecond
)

// CardReader адаптер считывателя карт. Имплементирует controller.CardReaderCtl.
// Если считыватель умеет проверять карту без ожидания (service.CardProber), карта опрашивается
// периодически, иначе используется блокирующее чтение. Способ выбирается один раз в NewCardReader
type CardReader struct {
	log   *logrus.Entry
	clock tool.Clock

	reader service.CardReader
	prober service.CardProber

	acquire func(ctx context.Context) (model.UID, error)
	removed func(ctx context.Context) error

	pollInterval    time.Duration
	removalInterval time.Duration
	removalTimeout  time.Duration
	blockingRemoval time.Duration
}

// ConfigCardReader конфигурация CardReader
type ConfigCardReader struct {
	Log   *logrus.Logger
	Clock tool.Clock

	// Период опроса при ожидании карты
	PollInterval time.Duration
	// Период опроса при ожидании снятия карты
	RemovalInterval time.Duration
	// Максимальное время ожидания снятия карты
	RemovalTimeout time.Duration
	// Пауза вместо ожидания снятия для считывателей без CardProber
	BlockingRemoval time.Duration
}

// NewCardReader конструктор CardReader
func NewCardReader(reader service.CardReader, config *ConfigCardReader) (*CardReader, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if reader == nil {
		return nil, errors.New("не передан считыватель reader")
	}

	res := &CardReader{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "cardreader",
			"scope":  "controller",
		}),
		clock:  config.Clock,
		reader: reader,

		pollInterval:    pollInterval,
		removalInterval: removalInterval,
		removalTimeout:  removalTimeout,
		blockingRemoval: blockingRemoval,
	}
	if res.clock == nil {
		res.clock = tool.SystemClock{}
	}
	if config.PollInterval != 0 {
		res.pollInterval = config.PollInterval
	}
	if config.RemovalInterval != 0 {
		res.removalInterval = config.RemovalInterval
	}
	if config.RemovalTimeout != 0 {
		res.removalTimeout = config.RemovalTimeout
	}
	if config.BlockingRemoval != 0 {
		res.blockingRemoval = config.BlockingRemoval
	}

	if prober, ok := reader.(service.CardProber); ok {
		res.prober = prober
		res.acquire = res.acquirePoll
		res.removed = res.removedPoll
		res.log.Debug("считыватель поддерживает опрос без ожидания")
	} else {
		res.acquire = res.acquireBlocking
		res.removed = res.removedBlocking
		res.log.Debug("считыватель поддерживает только блокирующее чтение")
	}

	return res, nil
}

// Polling признак работы в режиме опроса
func (m *CardReader) Polling() bool {
	return m.prober != nil
}

// AcquireUID ожидает карту и возвращает её идентификатор
func (m *CardReader) AcquireUID(ctx context.Context) (model.UID, error) {
	return m.acquire(ctx)
}

// WaitRemoved ожидает снятия карты
func (m *CardReader) WaitRemoved(ctx context.Context) error {
	return m.removed(ctx)
}

// Ошибка отдельной проверки означает, что карты ещё нет
func (m *CardReader) acquirePoll(ctx context.Context) (model.UID, error) {
	for {
		uid, err := m.prober.TryRead()
		if err != nil {
			m.log.Tracef("карта не прочитана: %v", err)
		} else if !uid.IsEmpty() {
			return uid, nil
		}
		if err := m.clock.Sleep(ctx, m.pollInterval); err != nil {
			return "", err
		}
	}
}

func (m *CardReader) acquireBlocking(ctx context.Context) (model.UID, error) {
	for {
		uid, err := m.reader.Read(ctx)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err != nil {
			m.log.Warnf("ошибка чтения карты: %v", err)
		} else if !uid.IsEmpty() {
			return uid, nil
		}
		if err := m.clock.Sleep(ctx, m.pollInterval); err != nil {
			return "", err
		}
	}
}

// Ошибка проверки считается снятием карты
func (m *CardReader) removedPoll(ctx context.Context) error {
	end := m.clock.Now().Add(m.removalTimeout)
	for m.clock.Now().Before(end) {
		uid, err := m.prober.TryRead()
		if err != nil || uid.IsEmpty() {
			return nil
		}
		if err := m.clock.Sleep(ctx, m.removalInterval); err != nil {
			return err
		}
	}
	m.log.Debugf("карта не убрана за %s", m.removalTimeout)
	return nil
}

func (m *CardReader) removedBlocking(ctx context.Context) error {
	return m.clock.Sleep(ctx, m.blockingRemoval)
}
