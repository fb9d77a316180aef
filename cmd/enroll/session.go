package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/kirsrus/attendance/model"
	"github.com/kirsrus/attendance/pkg/validator"
	"github.com/kirsrus/attendance/service"
	"github.com/kirsrus/attendance/store"

	"github.com/juju/errors"
	"github.com/k0kubun/pp"
	"github.com/sirupsen/logrus"
)

var errInputClosed = errors.New("ввод закрыт")

// Диалог регистрации карт
type session struct {
	log           *logrus.Entry
	reader        service.CardReader
	identityStore store.IdentityStore
	lines         <-chan string
	out           io.Writer
}

func newSession(log *logrus.Logger, reader service.CardReader, identityStore store.IdentityStore, in io.Reader, out io.Writer) *session {
	return &session{
		log: log.WithFields(map[string]interface{}{
			"module": "enroll",
			"scope":  "cmd",
		}),
		reader:        reader,
		identityStore: identityStore,
		lines:         readLines(in),
		out:           out,
	}
}

// run регистрирует карты до Ctrl+C или конца ввода. Ошибка считывателя завершает работу
func (m *session) run(ctx context.Context) error {
	fmt.Fprintln(m.out, "Enroll mode. Press Ctrl+C to exit.")
	for {
		err := m.enroll(ctx)
		if ctx.Err() != nil || errors.Cause(err) == errInputClosed {
			fmt.Fprintln(m.out, "Done.")
			return nil
		}
		if err != nil {
			return errors.Trace(err)
		}
	}
}

// Регистрация одной карты. Некорректный ввод не является ошибкой: запись не сохраняется
func (m *session) enroll(ctx context.Context) error {
	fmt.Fprintln(m.out, "\n>> Tap card...")
	uid, err := m.reader.Read(ctx)
	if err != nil {
		return errors.Annotate(err, "ошибка чтения карты")
	}
	fmt.Fprintln(m.out, "UID:", uid)
	if known, err := m.identityStore.Lookup(uid); err == nil {
		fmt.Fprintf(m.out, "Already enrolled as %s, the new entry will replace it\n", known.Name)
	}

	name, err := m.prompt(ctx, "Name: ")
	if err != nil {
		return err
	}
	roll, err := m.prompt(ctx, "Roll: ")
	if err != nil {
		return err
	}

	enrollee := model.Enrollee{UID: uid, Name: name, Roll: roll}
	if err := m.identityStore.Add(enrollee); err != nil {
		fmt.Fprintf(m.out, "Not saved: %s\n", validator.Describe(errors.Cause(err)))
		m.log.Warnf("карта %s не зарегистрирована: %v", uid, err)
		return nil
	}
	m.log.Infof("зарегистрирована карта %s: %s (%s)", enrollee.UID, enrollee.Name, enrollee.Roll)
	fmt.Fprintln(m.out, "Saved.")
	_, _ = pp.Fprintln(m.out, enrollee)
	return nil
}

// Запрос строки у оператора. Прерывается отменой ctx
func (m *session) prompt(ctx context.Context, question string) (string, error) {
	fmt.Fprint(m.out, question)
	select {
	case <-ctx.Done():
		fmt.Fprintln(m.out)
		return "", ctx.Err()
	case line, ok := <-m.lines:
		if !ok {
			fmt.Fprintln(m.out)
			return "", errInputClosed
		}
		return line, nil
	}
}

// Строки ввода in. Канал закрывается по концу ввода
func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
