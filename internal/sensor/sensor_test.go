package sensor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClimateConversions(t *testing.T) {
	r := ClimateReading{TemperatureC: 20, PressurePa: 101500, HumidityPct: 40}
	assert.InDelta(t, 68.0, r.TemperatureF(), 1e-9)
	assert.InDelta(t, 1015.0, r.PressureHPa(), 1e-9)
	assert.InDelta(t, 0.0, r.AltitudeM(DefaultSeaLevelHPa), 1e-9)
}

func TestAltitudeDecreasesWithPressure(t *testing.T) {
	low := ClimateReading{PressurePa: 90000}
	high := ClimateReading{PressurePa: 100000}
	assert.Greater(t, low.AltitudeM(DefaultSeaLevelHPa), high.AltitudeM(DefaultSeaLevelHPa))
	// About 1000 m at 900 hPa against a 1015 hPa reference.
	assert.InDelta(t, 1000, low.AltitudeM(DefaultSeaLevelHPa), 100)
}

func TestAltitudeInvalidInputs(t *testing.T) {
	assert.Equal(t, 0.0, ClimateReading{PressurePa: 0}.AltitudeM(DefaultSeaLevelHPa))
	assert.Equal(t, 0.0, ClimateReading{PressurePa: 100000}.AltitudeM(0))
}

func TestOpenRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	init := func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("nack")
		}
		return "dev", nil
	}
	dev, err := openWith(context.Background(), quietLogger(), "test", &backoff.ZeroBackOff{}, init)
	require.NoError(t, err)
	assert.Equal(t, "dev", dev)
	assert.Equal(t, 3, attempts)
}

func TestOpenStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	init := func() (int, error) {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return 0, errors.New("absent")
	}
	_, err := openWith(ctx, quietLogger(), "test", backoff.NewConstantBackOff(time.Millisecond), init)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open test")
	assert.GreaterOrEqual(t, attempts, 2)
}

func TestOpenPermanentError(t *testing.T) {
	attempts := 0
	init := func() (int, error) {
		attempts++
		return 0, backoff.Permanent(errors.New("wrong chip id"))
	}
	_, err := Open(context.Background(), quietLogger(), "test", init)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Contains(t, err.Error(), "wrong chip id")
}

func TestFakeClimate(t *testing.T) {
	f := NewFakeClimate(ClimateReading{TemperatureC: 21.5})
	f.NotReady = 2
	assert.False(t, f.DataReady())
	assert.False(t, f.DataReady())
	assert.True(t, f.DataReady())

	r, err := f.Sense()
	require.NoError(t, err)
	assert.Equal(t, 21.5, r.TemperatureC)

	f.Err = errors.New("i2c nack")
	_, err = f.Sense()
	assert.Error(t, err)
	assert.Equal(t, 2, f.Calls)
}

func TestFakeAirQualityBaseline(t *testing.T) {
	f := NewFakeAirQuality(AirReading{CO2PPM: 400, VOCPPB: 3})
	f.BaselineVal = 0x1234

	v, err := f.Baseline()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)

	require.NoError(t, f.SetBaseline(0xABCD))
	assert.Equal(t, []uint16{0xABCD}, f.Restored)

	require.NoError(t, f.SetEnvironment(22, 45))
	assert.Equal(t, 1, f.EnvUpdates)
	assert.Equal(t, 45.0, f.EnvHumidity)

	var _ AirQuality = f
	var _ Climate = NewFakeClimate(ClimateReading{})
}
