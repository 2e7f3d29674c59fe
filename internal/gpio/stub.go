//go:build !linux

package gpio

import (
	"errors"
	"fmt"
)

// RealPin is not available on non-Linux platforms.
type RealPin struct{}

// NewRealPin returns an error on non-Linux platforms.
func NewRealPin(chipName string, pin int) (*RealPin, error) {
	if pin < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Pressed is not implemented on non-Linux platforms.
func (p *RealPin) Pressed() (bool, error) {
	return false, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *RealPin) Close() error {
	return nil
}
