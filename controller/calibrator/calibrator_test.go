package calibrator

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/kirsrus/attendance/model"
	"github.com/kirsrus/attendance/pkg/tool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Датчик, отдающий уровни по кругу
type fakeSensor struct {
	levels []model.Level
	reads  int
}

func (m *fakeSensor) Read() model.Level {
	level := m.levels[m.reads%len(m.levels)]
	m.reads++
	return level
}

func TestClassify(t *testing.T) {
	L, H := model.Low, model.High
	tests := []struct {
		name    string
		samples []model.Level
		want    model.Level
	}{
		{name: "все low", samples: []model.Level{L, L, L}, want: L},
		{name: "все high", samples: []model.Level{H, H}, want: H},
		{name: "большинство low", samples: []model.Level{L, H, L}, want: L},
		{name: "большинство high", samples: []model.Level{H, L, H, H}, want: H},
		{name: "поровну", samples: []model.Level{L, H, H, L}, want: H},
		{name: "нет замеров", samples: nil, want: H},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.samples)
			assert.Equal(t, tt.want, got.Idle)
			assert.Equal(t, tt.want.Invert(), got.Trigger)
		})
	}
}

func TestClassifyTriggerIsComplement(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		samples := make([]model.Level, rnd.Intn(40))
		for idx := range samples {
			samples[idx] = model.Level(rnd.Intn(2))
		}
		got := Classify(samples)
		require.NotEqual(t, got.Idle, got.Trigger, "замеры %v", samples)
	}
}

func TestCalibrate(t *testing.T) {
	clock := tool.NewManualClock(time.Now())
	sensor := &fakeSensor{levels: []model.Level{model.Low, model.Low, model.High}}

	got, err := Calibrate(context.Background(), sensor, &Config{Clock: clock})
	require.NoError(t, err)
	assert.Equal(t, model.NewTriggerState(model.Low), got)
	assert.Equal(t, 30, sensor.reads)
	assert.Equal(t, window, clock.Slept())
}

func TestCalibrateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Calibrate(ctx, &fakeSensor{levels: []model.Level{model.High}}, &Config{Clock: tool.NewManualClock(time.Now())})
	assert.Equal(t, context.Canceled, err)
}
