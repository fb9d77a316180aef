package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirsrus/attendance/controller/attendance"
	"github.com/kirsrus/attendance/controller/cardreader"
	"github.com/kirsrus/attendance/pkg/config"
	"github.com/kirsrus/attendance/pkg/logger"
	gpioSvcMod "github.com/kirsrus/attendance/service/gpio"
	lcdSvcMod "github.com/kirsrus/attendance/service/lcd"
	"github.com/kirsrus/attendance/service/netaddr"
	rfidSvcMod "github.com/kirsrus/attendance/service/rfid"
	"github.com/kirsrus/attendance/store/csvfile"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

var (
	cfg *config.Config
	log *logrus.Logger
)

func init() {
	cfg = config.Get()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	log = logger.GetWithConfig(logger.Config{
		Path:    cfg.Log.Path,
		File:    cfg.Log.Filename,
		Level:   level,
		Console: cfg.Log.Console,
	})
}

func main() {
	err := run()
	if err != nil {
		fmt.Printf("ОШИБКА: в процессе работы произошла ошибка: %v\n", err)
		fmt.Printf("Для подробностей смотри лог: %s/%s\n", cfg.Log.Path, cfg.Log.Filename)
		log.Fatal(errors.ErrorStack(err))
	}
}

func run() error {
	// Отлавливаем сигнал завершения работы программы
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// region Хранилища

	identityStore, err := csvfile.NewIdentity(&csvfile.ConfigIdentity{
		Log:  log,
		File: cfg.Store.Students,
	})
	if err != nil {
		return errors.Trace(err)
	}
	if _, err := identityStore.Load(); err != nil {
		return errors.Trace(err)
	}

	eventLog, err := csvfile.NewEventLog(&csvfile.ConfigEventLog{
		Log:  log,
		File: cfg.Store.Attendance,
	})
	if err != nil {
		return errors.Trace(err)
	}

	// endregion
	// region Оборудование
	// Все выводы и шины освобождаются при любом выходе из run

	gpioSvc, err := gpioSvcMod.NewGpio(&gpioSvcMod.ConfigGpio{
		Log:       log,
		SensorPin: cfg.Sensor.Pin,
		BuzzerPin: cfg.Buzzer.Pin,
	})
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if err := gpioSvc.Close(); err != nil {
			log.Warnf("ошибка освобождения GPIO: %v", err)
		}
	}()

	lcdSvc, err := lcdSvcMod.NewLcd(&lcdSvcMod.ConfigLcd{
		Log:     log,
		Bus:     cfg.Lcd.Bus,
		Address: cfg.Lcd.Address,
	})
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if err := lcdSvc.Close(); err != nil {
			log.Warnf("ошибка освобождения дисплея: %v", err)
		}
	}()

	reader, err := rfidSvcMod.Open(&rfidSvcMod.Config{
		Log:      log,
		Type:     cfg.Reader.Type,
		Spi:      cfg.Reader.Spi,
		ResetPin: cfg.Reader.ResetPin,
		IrqPin:   cfg.Reader.IrqPin,
		Device:   cfg.Reader.Device,
		Baud:     cfg.Reader.Baud,
	})
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Warnf("ошибка освобождения считывателя: %v", err)
		}
	}()

	// endregion
	// region Контроллеры

	cardReaderCtl, err := cardreader.NewCardReader(reader, &cardreader.ConfigCardReader{
		Log: log,
	})
	if err != nil {
		return errors.Trace(err)
	}

	attendanceCtl, err := attendance.NewAttendance(ctx, &attendance.ConfigAttendance{
		Log:           log,
		Sensor:        gpioSvc,
		Buzzer:        gpioSvc,
		Display:       lcdSvc,
		AddressSource: netaddr.Interfaces{},
		CardReaderCtl: cardReaderCtl,
		IdentityStore: identityStore,
		EventLog:      eventLog,

		PollInterval:      cfg.Sensor.PollInterval,
		Debounce:          cfg.Sensor.Debounce,
		CalibrateWindow:   cfg.Sensor.CalibrateWindow,
		CalibrateInterval: cfg.Sensor.CalibrateInterval,

		ShowWelcome: cfg.Display.Welcome,
		ShowName:    cfg.Display.Name,
		ShowRoll:    cfg.Display.Roll,
		ShowUnknown: cfg.Display.Unknown,
		ShowAddress: cfg.Display.Address,

		ShowStarting:     cfg.Display.Starting,
		ShowInitializing: cfg.Display.Initializing,

		BeepOn:   cfg.Buzzer.BeepOn,
		BeepOff:  cfg.Buzzer.BeepOff,
		AlertOn:  cfg.Buzzer.AlertOn,
		AlertOff: cfg.Buzzer.AlertOff,

		NetworkAttempts: cfg.Network.Attempts,
		NetworkInterval: cfg.Network.Interval,
	})
	if err != nil {
		return errors.Trace(err)
	}

	// endregion

	err = attendanceCtl.Serve()
	if err != nil {
		return errors.Trace(err)
	}
	log.Info("получена команда на завершение работы программы")
	return nil
}
