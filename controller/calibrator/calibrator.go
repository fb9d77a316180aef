package calibrator

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/kirsrus/attendance/model"
	"github.com/kirsrus/attendance/pkg/tool"
	"github.com/kirsrus/attendance/service"

	"github.com/sirupsen/logrus"
)

const (
	window   = 600 * time.Millisecond
	interval = 20 * time.Millisecond
)

// Config параметры калибровки. Нулевые значения заменяются значениями по умолчанию
type Config struct {
	Log   *logrus.Logger
	Clock tool.Clock

	// Продолжительность наблюдения за входом
	Window time.Duration
	// Период опроса входа
	Interval time.Duration
}

// Calibrate наблюдает вход датчика sensor в течение окна калибровки и определяет уровень покоя.
// Калибровка всегда завершается; ошибка возможна только при отмене ctx
func Calibrate(ctx context.Context, sensor service.Sensor, config *Config) (model.TriggerState, error) {
	if config == nil {
		config = &Config{}
	}
	log := config.Log
	if log == nil {
		log = logrus.New()
		log.Out = ioutil.Discard
	}
	clock := config.Clock
	if clock == nil {
		clock = tool.SystemClock{}
	}
	win, step := window, interval
	if config.Window != 0 {
		win = config.Window
	}
	if config.Interval != 0 {
		step = config.Interval
	}

	var samples []model.Level
	end := clock.Now().Add(win)
	for clock.Now().Before(end) {
		samples = append(samples, sensor.Read())
		if err := clock.Sleep(ctx, step); err != nil {
			return model.TriggerState{}, err
		}
	}

	state := Classify(samples)
	log.WithFields(map[string]interface{}{
		"module": "calibrator",
		"scope":  "controller",
	}).Infof("калибровка датчика по %d замерам: %s", len(samples), state)
	return state, nil
}

// Classify уровень покоя по замерам: побеждает большинство, при равенстве (и без замеров) - High
func Classify(samples []model.Level) model.TriggerState {
	var low, high int
	for _, level := range samples {
		if level == model.High {
			high++
		} else {
			low++
		}
	}
	if low > high {
		return model.NewTriggerState(model.Low)
	}
	return model.NewTriggerState(model.High)
}
