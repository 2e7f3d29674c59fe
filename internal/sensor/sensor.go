// Package sensor provides the reading sources behind the display: a climate
// sensor (temperature, pressure, humidity) and an air-quality sensor (eCO2,
// TVOC, baseline). Callers must check DataReady before trusting a Sense.
package sensor

import (
	"errors"
	"math"
)

// Precision is the number of decimal places climate values are reported with.
const Precision = 2

// DefaultSeaLevelHPa is the reference pressure used for altitude.
const DefaultSeaLevelHPa = 1015.0

// ErrNotReady is returned by Sense when no fresh measurement is available.
var ErrNotReady = errors.New("sensor: data not ready")

// ClimateReading is one temperature/pressure/humidity sample.
type ClimateReading struct {
	TemperatureC float64
	PressurePa   float64
	HumidityPct  float64
}

// TemperatureF returns the temperature in degrees Fahrenheit.
func (r ClimateReading) TemperatureF() float64 {
	return r.TemperatureC*9/5 + 32
}

// PressureHPa returns the pressure in hectopascal (millibar).
func (r ClimateReading) PressureHPa() float64 {
	return r.PressurePa / 100
}

// AltitudeM estimates altitude in metres from the international barometric
// formula against the given sea-level pressure.
func (r ClimateReading) AltitudeM(seaLevelHPa float64) float64 {
	if seaLevelHPa <= 0 || r.PressurePa <= 0 {
		return 0
	}
	return 44330 * (1 - math.Pow(r.PressureHPa()/seaLevelHPa, 1/5.255))
}

// AirReading is one eCO2/TVOC sample.
type AirReading struct {
	CO2PPM int
	VOCPPB int
}

// Climate is a temperature/pressure/humidity source.
type Climate interface {
	DataReady() bool
	Sense() (ClimateReading, error)
}

// AirQuality is a gas sensor with a persistent calibration baseline.
type AirQuality interface {
	DataReady() bool
	Sense() (AirReading, error)
	// Baseline returns the sensor's current calibration baseline.
	Baseline() (uint16, error)
	// SetBaseline restores a previously saved baseline.
	SetBaseline(v uint16) error
	// SetEnvironment feeds temperature and humidity compensation data.
	SetEnvironment(temperatureC, humidityPct float64) error
}
