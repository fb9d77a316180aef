package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "нет такого.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "students.csv", cfg.Store.Students)
	assert.Equal(t, "attendance.csv", cfg.Store.Attendance)
	assert.Equal(t, "GPIO17", cfg.Sensor.Pin)
	assert.Equal(t, "GPIO18", cfg.Buzzer.Pin)
	assert.Equal(t, uint16(0x27), cfg.Lcd.Address)
	assert.Equal(t, "mfrc522", cfg.Reader.Type)
	assert.Equal(t, 20*time.Millisecond, cfg.Sensor.PollInterval)
	assert.Equal(t, 350*time.Millisecond, cfg.Sensor.Debounce)
	assert.Equal(t, 600*time.Millisecond, cfg.Sensor.CalibrateWindow)
	assert.Equal(t, 20*time.Millisecond, cfg.Sensor.CalibrateInterval)
	assert.Equal(t, time.Second, cfg.Display.Welcome)
	assert.Equal(t, 1200*time.Millisecond, cfg.Display.Name)
	assert.Equal(t, 1200*time.Millisecond, cfg.Display.Roll)
	assert.Equal(t, 1200*time.Millisecond, cfg.Display.Unknown)
	assert.Equal(t, 3*time.Second, cfg.Display.Address)
	assert.Equal(t, time.Second, cfg.Display.Starting)
	assert.Equal(t, 600*time.Millisecond, cfg.Display.Initializing)
	assert.Equal(t, 120*time.Millisecond, cfg.Buzzer.BeepOn)
	assert.Equal(t, 80*time.Millisecond, cfg.Buzzer.BeepOff)
	assert.Equal(t, 80*time.Millisecond, cfg.Buzzer.AlertOn)
	assert.Equal(t, 50*time.Millisecond, cfg.Buzzer.AlertOff)
	assert.Equal(t, 30, cfg.Network.Attempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Network.Interval)
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "последовательный считыватель",
			content: `
store:
  students: /var/lib/attendance/students.csv
reader:
  type: " Serial "
  device: /dev/ttyUSB0
  baud: 9600
sensor:
  debounce: 500
buzzer:
  beepon: 200
display:
  starting: 2500
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/var/lib/attendance/students.csv", cfg.Store.Students)
				assert.Equal(t, "attendance.csv", cfg.Store.Attendance)
				assert.Equal(t, "serial", cfg.Reader.Type)
				assert.Equal(t, "/dev/ttyUSB0", cfg.Reader.Device)
				assert.Equal(t, 500*time.Millisecond, cfg.Sensor.Debounce)
				assert.Equal(t, 20*time.Millisecond, cfg.Sensor.PollInterval)
				assert.Equal(t, 200*time.Millisecond, cfg.Buzzer.BeepOn)
				assert.Equal(t, 80*time.Millisecond, cfg.Buzzer.BeepOff)
				assert.Equal(t, 2500*time.Millisecond, cfg.Display.Starting)
			},
		},
		{
			name: "пустой вывод прерывания",
			content: `
reader:
  irqpin: " "
`,
			wantErr: true,
		},
		{
			name: "неизвестный тип считывателя",
			content: `
reader:
  type: pn532
`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, ioutil.WriteFile(file, []byte(tt.content), 0644))

			cfg, err := Load(file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
