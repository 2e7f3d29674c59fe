package sensor

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ccs811"
)

// DefaultCCS811Address is the CCS811 address with ADDR tied high.
const DefaultCCS811Address = 0x5A

// statusDataReady is the DATA_READY bit of the CCS811 STATUS register.
const statusDataReady = 0x08

// CCS811 reads an AMS CCS811 over I2C.
type CCS811 struct {
	dev    *ccs811.Dev
	logger *slog.Logger
}

// NewCCS811 opens a CCS811 at addr on bus and starts its measurement app.
func NewCCS811(bus i2c.Bus, addr uint16, logger *slog.Logger) (*CCS811, error) {
	opts := ccs811.DefaultOpts
	opts.Addr = addr
	dev, err := ccs811.New(bus, &opts)
	if err != nil {
		return nil, fmt.Errorf("init ccs811 at %#x: %w", addr, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CCS811{dev: dev, logger: logger}, nil
}

// DataReady reports whether a new eCO2/TVOC sample is waiting.
// A failed status read counts as not ready.
func (c *CCS811) DataReady() bool {
	status, err := c.dev.ReadStatus()
	if err != nil {
		c.logger.Debug("ccs811 status read failed", "err", err)
		return false
	}
	return status&statusDataReady != 0
}

// Sense reads the latest algorithm results.
func (c *CCS811) Sense() (AirReading, error) {
	var v ccs811.SensorValues
	if err := c.dev.Sense(&v); err != nil {
		return AirReading{}, fmt.Errorf("ccs811 sense: %w", err)
	}
	if v.Error != nil {
		return AirReading{}, fmt.Errorf("ccs811 sense: %w", v.Error)
	}
	return AirReading{CO2PPM: v.ECO2, VOCPPB: v.VOC}, nil
}

// Baseline returns the two baseline bytes as a big-endian value.
func (c *CCS811) Baseline() (uint16, error) {
	b, err := c.dev.GetBaseline()
	if err != nil {
		return 0, fmt.Errorf("ccs811 read baseline: %w", err)
	}
	if len(b) != 2 {
		return 0, fmt.Errorf("ccs811 read baseline: got %d bytes", len(b))
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// SetBaseline writes a baseline previously returned by Baseline.
func (c *CCS811) SetBaseline(v uint16) error {
	if err := c.dev.SetBaseline([]byte{byte(v >> 8), byte(v)}); err != nil {
		return fmt.Errorf("ccs811 write baseline: %w", err)
	}
	return nil
}

// SetEnvironment feeds compensation data to the algorithm.
func (c *CCS811) SetEnvironment(temperatureC, humidityPct float64) error {
	if err := c.dev.SetEnvironmentData(float32(temperatureC), float32(humidityPct)); err != nil {
		return fmt.Errorf("ccs811 set environment: %w", err)
	}
	return nil
}

// Halt is a no-op. The CCS811 keeps sampling in its configured drive mode
// until power is removed.
func (c *CCS811) Halt() error {
	return nil
}
