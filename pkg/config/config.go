package config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/kirsrus/attendance/pkg/validator"

	"github.com/jinzhu/configor"
	"github.com/juju/errors"
)

var (
	config Config
	once   sync.Once
)

const (
	FileName = "config.yaml"
	// Префикс переменных окружения, переопределяющих файл конфигурации
	EnvPrefix = "ATTENDANCE"
)

// Get единожды читает и возвращает конфигурацию
func Get() *Config {
	return GetWithPath(FileName)
}

// GetWithPath единожды читает и возвращает конфигурацию
func GetWithPath(filepath string) *Config {
	once.Do(func() {
		cfg, err := Load(filepath)
		if err != nil {
			log.Fatalf("ошибка чтения файла конфигурации %s: %s", filepath, err)
		}
		config = *cfg
	})
	return &config
}

// Load читает конфигурацию из filepath. Если файла нет, используются значения по умолчанию
func Load(filepath string) (*Config, error) {
	var cfg Config
	files := make([]string, 0, 1)
	if _, err := os.Stat(filepath); err == nil {
		files = append(files, filepath)
	} else {
		log.Printf("файл конфигурации %s недоступен, используются значения по умолчанию", filepath)
	}
	err := configor.New(&configor.Config{ENVPrefix: EnvPrefix, Silent: true}).Load(&cfg, files...)
	if err != nil {
		return nil, errors.Annotatef(err, "ошибка разбора %s", filepath)
	}
	if err = validator.Get().ValidateWithConform(&cfg.Store); err != nil {
		return nil, errors.Annotate(err, "ошибка в секции store")
	}
	if err = validator.Get().ValidateWithConform(&cfg.Sensor); err != nil {
		return nil, errors.Annotate(err, "ошибка в секции sensor")
	}
	if err = validator.Get().ValidateWithConform(&cfg.Buzzer); err != nil {
		return nil, errors.Annotate(err, "ошибка в секции buzzer")
	}
	if err = validator.Get().ValidateWithConform(&cfg.Lcd); err != nil {
		return nil, errors.Annotate(err, "ошибка в секции lcd")
	}
	if err = validator.Get().ValidateWithConform(&cfg.Reader); err != nil {
		return nil, errors.Annotate(err, "ошибка в секции reader")
	}

	// Корректировки значений
	cfg.Sensor.PollInterval = cfg.Sensor.PollInterval * time.Millisecond
	cfg.Sensor.Debounce = cfg.Sensor.Debounce * time.Millisecond
	cfg.Sensor.CalibrateWindow = cfg.Sensor.CalibrateWindow * time.Millisecond
	cfg.Sensor.CalibrateInterval = cfg.Sensor.CalibrateInterval * time.Millisecond
	cfg.Display.Welcome = cfg.Display.Welcome * time.Millisecond
	cfg.Display.Name = cfg.Display.Name * time.Millisecond
	cfg.Display.Roll = cfg.Display.Roll * time.Millisecond
	cfg.Display.Unknown = cfg.Display.Unknown * time.Millisecond
	cfg.Display.Address = cfg.Display.Address * time.Millisecond
	cfg.Display.Starting = cfg.Display.Starting * time.Millisecond
	cfg.Display.Initializing = cfg.Display.Initializing * time.Millisecond
	cfg.Buzzer.BeepOn = cfg.Buzzer.BeepOn * time.Millisecond
	cfg.Buzzer.BeepOff = cfg.Buzzer.BeepOff * time.Millisecond
	cfg.Buzzer.AlertOn = cfg.Buzzer.AlertOn * time.Millisecond
	cfg.Buzzer.AlertOff = cfg.Buzzer.AlertOff * time.Millisecond
	cfg.Network.Interval = cfg.Network.Interval * time.Millisecond

	return &cfg, nil
}
