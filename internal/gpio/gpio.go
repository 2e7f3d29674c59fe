// Package gpio provides the button's digital input with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "errors"

// Pin reads a single active-low push button.
type Pin interface {
	// Pressed returns the logical button level.
	// The raw line is active-low: raw 0 = pressed.
	Pressed() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// DefaultPin is the BCM line the mode button is wired to.
const DefaultPin = 3

// DefaultChip is the GPIO character device holding DefaultPin.
const DefaultChip = "gpiochip0"

// ErrInvalidPin is returned when a pin number cannot name a GPIO line.
var ErrInvalidPin = errors.New("gpio: invalid pin")
