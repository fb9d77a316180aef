package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusContextHook добавляет в каждую запись идентификатор запуска программы и место вызова
type LogrusContextHook struct {
	// Идентификатор текущего запуска (разделяет записи разных запусков в одном файле)
	RunID string
}

// Levels уровни, для которых срабатывает хук
func (hook LogrusContextHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire дополнение записи полями run и source
func (hook LogrusContextHook) Fire(entry *logrus.Entry) error {
	if hook.RunID != "" {
		entry.Data["run"] = hook.RunID
	}
	if source := caller(); source != "" {
		entry.Data["source"] = source
	}
	return nil
}

// Функции самого хука при поиске места вызова пропускаются
const hookPackage = "github.com/kirsrus/attendance/pkg/logger.LogrusContextHook"

// Первый кадр стека вне logrus и этого пакета
func caller() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "github.com/sirupsen/logrus") &&
			!strings.HasPrefix(frame.Function, hookPackage) {
			return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
		}
		if !more {
			return ""
		}
	}
}
