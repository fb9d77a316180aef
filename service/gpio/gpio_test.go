package gpio

import (
	"testing"

	"github.com/kirsrus/attendance/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestNewWithPins(t *testing.T) {
	sensor := &gpiotest.Pin{N: "GPIO17", L: gpio.High}
	buzzer := &gpiotest.Pin{N: "GPIO18", L: gpio.High}

	pins, err := NewWithPins(nil, sensor, buzzer)
	require.NoError(t, err)
	assert.Equal(t, gpio.Low, buzzer.Read(), "зуммер после настройки выключен")
	assert.Equal(t, model.High, pins.Read())

	sensor.L = gpio.Low
	assert.Equal(t, model.Low, pins.Read())

	_, err = NewWithPins(nil, nil, buzzer)
	assert.Error(t, err)
}

func TestBuzzerAndClose(t *testing.T) {
	sensor := &gpiotest.Pin{N: "GPIO17"}
	buzzer := &gpiotest.Pin{N: "GPIO18"}
	pins, err := NewWithPins(nil, sensor, buzzer)
	require.NoError(t, err)

	require.NoError(t, pins.On())
	assert.Equal(t, gpio.High, buzzer.Read())
	require.NoError(t, pins.Off())
	assert.Equal(t, gpio.Low, buzzer.Read())

	require.NoError(t, pins.On())
	require.NoError(t, pins.Close())
	assert.Equal(t, gpio.Low, buzzer.Read(), "после освобождения зуммер выключен")
}
