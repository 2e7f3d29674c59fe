// Package logic contains the air monitor's mode and calibration state machine.
// This package has NO direct hardware, OS or network dependencies: every
// collaborator is an interface and time is always injected via time.Time
// parameters. The only blocking call is the bounded commit wait, which goes
// through an injectable sleep function.
package logic

import (
	"errors"
	"time"

	"github.com/sweeney/air-monitor/internal/display"
)

// Mode is what the front panel currently shows.
type Mode int

const (
	Temperature Mode = iota
	Pressure
	Humidity
	Altitude
	CO2
	VOC
	BaselineAge
	// Calibrate is only reachable with a long press.
	Calibrate
)

// CyclingModes is the number of modes reachable with short presses.
const CyclingModes = int(Calibrate)

func (m Mode) String() string {
	switch m {
	case Temperature:
		return "TEMPERATURE"
	case Pressure:
		return "PRESSURE"
	case Humidity:
		return "HUMIDITY"
	case Altitude:
		return "ALTITUDE"
	case CO2:
		return "CO2"
	case VOC:
		return "VOC"
	case BaselineAge:
		return "BASELINE_AGE"
	case Calibrate:
		return "CALIBRATE"
	default:
		return "UNKNOWN"
	}
}

// Cycling reports whether m is reachable by short presses.
func (m Mode) Cycling() bool {
	return m >= Temperature && m < Calibrate
}

// Next returns the cycling mode after m, wrapping past BaselineAge back to
// Temperature. Calibrate is never returned.
func (m Mode) Next() Mode {
	if !m.Cycling() {
		return Temperature
	}
	return Mode((int(m) + 1) % CyclingModes)
}

// Prev returns the cycling mode before m, wrapping from Temperature to
// BaselineAge. Calibrate is never returned.
func (m Mode) Prev() Mode {
	if !m.Cycling() {
		return Temperature
	}
	return Mode((int(m) + CyclingModes - 1) % CyclingModes)
}

// DisplayMode returns how text moves while m is shown.
func (m Mode) DisplayMode() display.Mode {
	if m == Calibrate {
		return display.Static
	}
	return display.Scroll
}

var (
	// ErrSensorTimeout is returned when the air-quality sensor never reports
	// data-ready within the commit timeout.
	ErrSensorTimeout = errors.New("sensor not ready before commit timeout")
	// ErrSensorRead is returned when the sensor baseline cannot be read.
	ErrSensorRead = errors.New("sensor baseline read failed")
	// ErrPersistMismatch is returned when the stored baseline does not read
	// back as written, or the store fails.
	ErrPersistMismatch = errors.New("baseline persistence failed")
	// ErrMissingDependency is returned by NewController for a nil collaborator.
	ErrMissingDependency = errors.New("missing controller dependency")
)

// User-visible messages.
const (
	MsgSaved           = "Saved!"
	MsgSaveFailed      = "Saving to EEPROM failed!"
	MsgReadFailed      = "Failed to read baseline!"
	MsgCanceled        = "Canceled!"
	MsgCalibrate       = "Please calibrate sensor..."
	msgWarmUpFormat    = "Waiting %d minute(s) for resistance to stabilize..."
	msgRestoredFormat  = "Using saved baseline: %s"
	calibratingPrefix  = "Calibrating"
	calibrationElapsed = "%02d:%02d Baseline %s"
)

// BaselineRecord is the persisted air-quality baseline and the uptime at
// which it was recorded. A baseline loaded at startup is recorded at boot.
type BaselineRecord struct {
	Value      uint16
	RecordedAt time.Duration
	Valid      bool
}

// Age returns how long ago the record was taken, given the current uptime.
func (r BaselineRecord) Age(uptime time.Duration) time.Duration {
	if uptime < r.RecordedAt {
		return 0
	}
	return uptime - r.RecordedAt
}
