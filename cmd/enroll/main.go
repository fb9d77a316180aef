package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/kirsrus/attendance/model"
	"github.com/kirsrus/attendance/pkg/config"
	"github.com/kirsrus/attendance/pkg/logger"
	rfidSvcMod "github.com/kirsrus/attendance/service/rfid"
	"github.com/kirsrus/attendance/store/csvfile"

	"github.com/juju/errors"
	"github.com/k0kubun/pp"
	"github.com/sirupsen/logrus"
)

var (
	cfg *config.Config
	log *logrus.Logger

	list = flag.Bool("list", false, "вывести список зарегистрированных карт и выйти")
)

func init() {
	cfg = config.Get()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	log = logger.New(logger.Config{
		Path:     cfg.Log.Path,
		File:     "enroll.log",
		Level:    level,
		FileOnly: true,
	})
}

func main() {
	flag.Parse()

	err := run()
	if err != nil {
		fmt.Printf("ОШИБКА: %v\n", err)
		log.Fatal(errors.ErrorStack(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	identityStore, err := csvfile.NewIdentity(&csvfile.ConfigIdentity{
		Log:  log,
		File: cfg.Store.Students,
	})
	if err != nil {
		return errors.Trace(err)
	}
	enrolled, err := identityStore.Load()
	if err != nil {
		return errors.Trace(err)
	}

	if *list {
		printRoster(enrolled)
		return nil
	}

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

	return newSession(log, reader, identityStore, os.Stdin, os.Stdout).run(ctx)
}

func printRoster(enrolled map[model.UID]model.Enrollee) {
	roster := make([]model.Enrollee, 0, len(enrolled))
	for _, enrollee := range enrolled {
		roster = append(roster, enrollee)
	}
	sort.Slice(roster, func(i, j int) bool {
		return roster[i].UID < roster[j].UID
	})
	_, _ = pp.Println(roster)
	fmt.Printf("Total: %d\n", len(roster))
}
