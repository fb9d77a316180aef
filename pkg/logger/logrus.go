package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	RotateMaxSize    = 30 // MB
	RotateLocalTime  = true
	RotateMaxAge     = 365 // Дней
	RotateMaxBackups = 10  // Колличество файлов
	RotateCompress   = true
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// Config конфигурация лога
type Config struct {
	Path    string
	File    string
	Level   logrus.Level
	Console bool
	// Писать только в файл (консоль занята диалогом с оператором)
	FileOnly bool
}

// Get быстрый конфиг на консоль
func Get(level logrus.Level) *logrus.Logger {
	return GetWithConfig(Config{
		File:    "",
		Level:   level,
		Console: true,
	})
}

// GetWithConfig лоигрование с конфигурацией
func GetWithConfig(config Config) *logrus.Logger {
	once.Do(func() {
		logger = New(config)
		logger.Infof("----------===== начало записи в лог %s =====----------", time.Now().Format("2006.01.02 15:04:05"))
	})
	return logger
}

// New создаёт новый логгер без кэширования. При Console или пустом File пишет только на консоль
func New(config Config) *logrus.Logger {
	log := logrus.New()
	log.Level = config.Level
	log.Formatter = &logrus.TextFormatter{
		DisableColors:   false,
		FullTimestamp:   true,
		TimestampFormat: "2006.01.02 15:04:05",
	}
	switch {
	case config.File == "" || config.Console:
		log.Out = os.Stdout
	case config.FileOnly:
		log.Out = rotated(config)
	default:
		log.Out = io.MultiWriter(os.Stdout, rotated(config))
	}
	log.AddHook(LogrusContextHook{RunID: uuid.New().String()})
	return log
}

func rotated(config Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(config.Path, config.File),
		MaxSize:    RotateMaxSize, // MB
		MaxAge:     RotateMaxAge,  // Day
		MaxBackups: RotateMaxBackups,
		LocalTime:  RotateLocalTime,
		Compress:   RotateCompress,
	}
}
