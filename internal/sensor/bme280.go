package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
)

// DefaultBME280Address is the BME280 address with SDO tied low.
const DefaultBME280Address = 0x76

// BME280 reads a Bosch BME280 over I2C.
type BME280 struct {
	dev *bmxx80.Dev
}

// NewBME280 opens a BME280 at addr on bus.
func NewBME280(bus i2c.Bus, addr uint16) (*BME280, error) {
	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("init bme280 at %#x: %w", addr, err)
	}
	return &BME280{dev: dev}, nil
}

// DataReady is always true: each Sense runs a forced measurement.
func (b *BME280) DataReady() bool { return true }

// Sense performs one measurement.
func (b *BME280) Sense() (ClimateReading, error) {
	var env physic.Env
	if err := b.dev.Sense(&env); err != nil {
		return ClimateReading{}, fmt.Errorf("bme280 sense: %w", err)
	}
	return ClimateReading{
		TemperatureC: env.Temperature.Celsius(),
		// physic.Pressure is nano-Pascal fixed point.
		PressurePa:  float64(env.Pressure) / float64(physic.Pascal),
		HumidityPct: float64(env.Humidity) / float64(physic.PercentRH),
	}, nil
}

// Halt stops the device.
func (b *BME280) Halt() error {
	return b.dev.Halt()
}
