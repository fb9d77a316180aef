package attendance

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/kirsrus/attendance/controller"
	"github.com/kirsrus/attendance/controller/calibrator"
	"github.com/kirsrus/attendance/model"
	"github.com/kirsrus/attendance/pkg/tool"
	"github.com/kirsrus/attendance/service"
	"github.com/kirsrus/attendance/service/netaddr"
	"github.com/kirsrus/attendance/store"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const (
	pollInterval      = 20 * time.Millisecond
	debounce          = 350 * time.Millisecond
	calibrateWindow   = 600 * time.Millisecond
	calibrateInterval = 20 * time.Millisecond

	showWelcome      = time.Second
	showName         = 1200 * time.Millisecond
	showRoll         = 1200 * time.Millisecond
	showUnknown      = 1200 * time.Millisecond
	showAddress      = 3 * time.Second
	showStarting     = time.Second
	showInitializing = 600 * time.Millisecond

	beepCount = 3
	beepOn    = 120 * time.Millisecond
	beepOff   = 80 * time.Millisecond
	alertOn   = 80 * time.Millisecond
	alertOff  = 50 * time.Millisecond
)

// State состояние цикла обработки на очередном опросе датчика
type State int

const (
	// StateWaiting щель свободна
	StateWaiting State = iota
	// StateDebounceReject щель перекрыта, но срабатывание попало в окно антидребезга
	StateDebounceReject
	// StateProcessing срабатывание принято, идёт обработка карты
	StateProcessing
)

// String краткое описание
func (m State) String() string {
	switch m {
	case StateWaiting:
		return "waiting"
	case StateDebounceReject:
		return "debounce_reject"
	case StateProcessing:
		return "processing"
	}
	return "unknown"
}

// ConfigAttendance конфигурация Attendance. Нулевые интервалы заменяются значениями по умолчанию
type ConfigAttendance struct {
	Log   *logrus.Logger
	Clock tool.Clock

	Sensor  service.Sensor
	Buzzer  service.Buzzer
	Display service.Display
	// Источник адресов для экрана приветствия (по умолчанию интерфейсы хоста)
	AddressSource service.AddressSource

	CardReaderCtl controller.CardReaderCtl

	IdentityStore store.IdentityStore
	EventLog      store.EventLog

	PollInterval      time.Duration
	Debounce          time.Duration
	CalibrateWindow   time.Duration
	CalibrateInterval time.Duration

	ShowWelcome      time.Duration
	ShowName         time.Duration
	ShowRoll         time.Duration
	ShowUnknown      time.Duration
	ShowAddress      time.Duration
	ShowStarting     time.Duration
	ShowInitializing time.Duration

	BeepOn   time.Duration
	BeepOff  time.Duration
	AlertOn  time.Duration
	AlertOff time.Duration

	NetworkAttempts int
	NetworkInterval time.Duration
}

// Attendance основной цикл киоска: датчик щели, считыватель, дисплей и журнал.
// Инициируется через NewAttendance
type Attendance struct {
	ctx    context.Context
	log    *logrus.Entry
	logger *logrus.Logger
	clock  tool.Clock

	sensor        service.Sensor
	buzzer        service.Buzzer
	display       service.Display
	addressSource service.AddressSource

	cardReaderCtl controller.CardReaderCtl

	identityStore store.IdentityStore
	eventLog      store.EventLog

	trigger   model.TriggerState
	debouncer *Debouncer

	pollInterval      time.Duration
	debounce          time.Duration
	calibrateWindow   time.Duration
	calibrateInterval time.Duration

	showWelcome      time.Duration
	showName         time.Duration
	showRoll         time.Duration
	showUnknown      time.Duration
	showAddress      time.Duration
	showStarting     time.Duration
	showInitializing time.Duration

	beepOn   time.Duration
	beepOff  time.Duration
	alertOn  time.Duration
	alertOff time.Duration

	networkAttempts int
	networkInterval time.Duration
}

// NewAttendance конструктор Attendance
func NewAttendance(ctx context.Context, config *ConfigAttendance) (*Attendance, error) {
	if config == nil {
		return nil, errors.New("не передана конфигурация")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if config.Sensor == nil {
		return nil, errors.New("не передан датчик Sensor")
	}
	if config.Buzzer == nil {
		return nil, errors.New("не передан зуммер Buzzer")
	}
	if config.Display == nil {
		return nil, errors.New("не передан дисплей Display")
	}
	if config.CardReaderCtl == nil {
		return nil, errors.New("не передан контроллер считывателя CardReaderCtl")
	}
	if config.IdentityStore == nil {
		return nil, errors.New("не передано хранилище IdentityStore")
	}
	if config.EventLog == nil {
		return nil, errors.New("не передан журнал EventLog")
	}

	res := Attendance{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "attendance",
			"scope":  "controller",
		}),
		logger: config.Log,
		clock:  config.Clock,

		sensor:        config.Sensor,
		buzzer:        config.Buzzer,
		display:       config.Display,
		addressSource: config.AddressSource,
		cardReaderCtl: config.CardReaderCtl,
		identityStore: config.IdentityStore,
		eventLog:      config.EventLog,

		pollInterval:      pollInterval,
		debounce:          debounce,
		calibrateWindow:   calibrateWindow,
		calibrateInterval: calibrateInterval,

		showWelcome:      showWelcome,
		showName:         showName,
		showRoll:         showRoll,
		showUnknown:      showUnknown,
		showAddress:      showAddress,
		showStarting:     showStarting,
		showInitializing: showInitializing,

		beepOn:   beepOn,
		beepOff:  beepOff,
		alertOn:  alertOn,
		alertOff: alertOff,

		networkAttempts: config.NetworkAttempts,
		networkInterval: config.NetworkInterval,
	}
	if res.clock == nil {
		res.clock = tool.SystemClock{}
	}
	override := func(dst *time.Duration, src time.Duration) {
		if src != 0 {
			*dst = src
		}
	}
	override(&res.pollInterval, config.PollInterval)
	override(&res.debounce, config.Debounce)
	override(&res.calibrateWindow, config.CalibrateWindow)
	override(&res.calibrateInterval, config.CalibrateInterval)
	override(&res.showWelcome, config.ShowWelcome)
	override(&res.showName, config.ShowName)
	override(&res.showRoll, config.ShowRoll)
	override(&res.showUnknown, config.ShowUnknown)
	override(&res.showAddress, config.ShowAddress)
	override(&res.showStarting, config.ShowStarting)
	override(&res.showInitializing, config.ShowInitializing)
	override(&res.beepOn, config.BeepOn)
	override(&res.beepOff, config.BeepOff)
	override(&res.alertOn, config.AlertOn)
	override(&res.alertOff, config.AlertOff)

	res.debouncer = NewDebouncer(res.debounce)
	res.configToLog()

	return &res, nil
}

// Вывести значения конфигурациии в лог
func (m *Attendance) configToLog() {
	m.log.Debugf("pollInterval: %s", m.pollInterval)
	m.log.Debugf("debounce: %s", m.debounce)
	m.log.Debugf("calibrate: %s / %s", m.calibrateWindow, m.calibrateInterval)
	m.log.Debugf("show welcome/name/roll/unknown: %s/%s/%s/%s", m.showWelcome, m.showName, m.showRoll, m.showUnknown)
}

// Serve запуск киоска: экран приветствия, калибровка датчика и бесконечный цикл обработки.
// Отмена контекста завершает работу без ошибки
func (m *Attendance) Serve() error {
	if err := m.start(); err != nil {
		return m.exit(err)
	}
	for {
		if m.next(m.sensor.Read(), m.clock.Now()) == StateProcessing {
			if err := m.process(); err != nil {
				return m.exit(err)
			}
		}
		if err := m.clock.Sleep(m.ctx, m.pollInterval); err != nil {
			return m.exit(err)
		}
	}
}

// Trigger результат калибровки датчика
func (m *Attendance) Trigger() model.TriggerState {
	return m.trigger
}

func (m *Attendance) exit(err error) error {
	if m.ctx.Err() != nil {
		m.log.Info("остановка цикла обработки")
		return nil
	}
	return errors.Trace(err)
}

// Экран с адресом, калибровка и экран готовности
func (m *Attendance) start() error {
	discovery, err := netaddr.NewDiscovery(&netaddr.ConfigDiscovery{
		Log:      m.logger,
		Source:   m.addressSource,
		Clock:    m.clock,
		Attempts: m.networkAttempts,
		Interval: m.networkInterval,
	})
	if err != nil {
		return errors.Trace(err)
	}
	addr, found, err := discovery.Discover(m.ctx)
	if err != nil {
		return err
	}
	if found {
		m.show("IP:", addr)
		err = m.clock.Sleep(m.ctx, m.showAddress)
	} else {
		m.show("Starting...", "")
		err = m.clock.Sleep(m.ctx, m.showStarting)
	}
	if err != nil {
		return err
	}

	m.show("Initializing...", "Keep slot empty")
	if err := m.clock.Sleep(m.ctx, m.showInitializing); err != nil {
		return err
	}
	m.trigger, err = calibrator.Calibrate(m.ctx, m.sensor, &calibrator.Config{
		Log:      m.logger,
		Clock:    m.clock,
		Window:   m.calibrateWindow,
		Interval: m.calibrateInterval,
	})
	if err != nil {
		return err
	}

	m.log.Infof("в базе %d карт", m.identityStore.Count())
	m.showReady()
	return nil
}

// Решение по очередному замеру датчика level в момент now
func (m *Attendance) next(level model.Level, now time.Time) State {
	if level != m.trigger.Trigger {
		return StateWaiting
	}
	if !m.debouncer.Accept(now) {
		return StateDebounceReject
	}
	return StateProcessing
}

// Обработка одного прохода через щель. Ошибка возвращается только при отмене контекста
func (m *Attendance) process() error {
	m.show("Scan your id", "card")
	if err := m.beep(m.beepOn, m.beepOff); err != nil {
		return err
	}

	uid, err := m.cardReaderCtl.AcquireUID(m.ctx)
	if err != nil {
		return err
	}
	enrollee, known := m.resolve(uid)

	if known {
		m.log.Infof("карта %s: %s (%s)", uid, enrollee.Name, enrollee.Roll)
		screens := []struct {
			line1, line2 string
			hold         time.Duration
		}{
			{"Welcome", "", m.showWelcome},
			{enrollee.Name, "", m.showName},
			{"Roll:", enrollee.Roll, m.showRoll},
		}
		for _, screen := range screens {
			m.show(screen.line1, screen.line2)
			if err := m.clock.Sleep(m.ctx, screen.hold); err != nil {
				return err
			}
		}
	} else {
		m.log.Warnf("незарегистрированная карта %s", uid)
		m.show("Unknown", "Enroll first")
		if err := m.beep(m.alertOn, m.alertOff); err != nil {
			return err
		}
		if err := m.clock.Sleep(m.ctx, m.showUnknown); err != nil {
			return err
		}
	}

	record := model.NewAttendance(m.clock.Now(), enrollee)
	if err := m.eventLog.Append(record); err != nil {
		m.log.Errorf("не удалось записать посещение %s: %s", uid, errors.ErrorStack(err))
	}

	if err := m.cardReaderCtl.WaitRemoved(m.ctx); err != nil {
		return err
	}
	m.showReady()
	return nil
}

// Владелец карты uid. Незарегистрированная карта даёт запись Unknown
func (m *Attendance) resolve(uid model.UID) (model.Enrollee, bool) {
	enrollee, err := m.identityStore.Lookup(uid)
	if err != nil {
		if !m.identityStore.IsNotFound(err) {
			m.log.Errorf("ошибка поиска карты %s: %v", uid, err)
		}
		return model.Unknown(uid), false
	}
	return *enrollee, true
}

func (m *Attendance) showReady() {
	m.show("Attendance Sys", "Ready...")
}

// Ошибки дисплея не прерывают обработку
func (m *Attendance) show(line1, line2 string) {
	if err := m.display.Print2(line1, line2); err != nil {
		m.log.Warnf("ошибка вывода на дисплей: %v", err)
	}
}

// Серия из beepCount сигналов. Зуммер выключается и при отмене контекста
func (m *Attendance) beep(on, off time.Duration) error {
	for i := 0; i < beepCount; i++ {
		if err := m.buzzer.On(); err != nil {
			m.log.Warnf("ошибка включения зуммера: %v", err)
		}
		err := m.clock.Sleep(m.ctx, on)
		if errOff := m.buzzer.Off(); errOff != nil {
			m.log.Warnf("ошибка выключения зуммера: %v", errOff)
		}
		if err != nil {
			return err
		}
		if err := m.clock.Sleep(m.ctx, off); err != nil {
			return err
		}
	}
	return nil
}
