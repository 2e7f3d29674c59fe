//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealPin reads the button from actual hardware using the Linux GPIO character device.
type RealPin struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	pin  int
}

// NewRealPin requests the given line as an input with pull-up, so an open
// button reads high and a pressed button pulls the line low.
func NewRealPin(chipName string, pin int) (*RealPin, error) {
	if pin < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}

	return &RealPin{
		chip: chip,
		line: line,
		pin:  pin,
	}, nil
}

// Pressed returns true while the line is held low.
func (p *RealPin) Pressed() (bool, error) {
	raw, err := p.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin %d: %w", p.pin, err)
	}
	return raw == 0, nil
}

// Close releases GPIO resources.
// The line is returned to a plain input first so the pull-up does not outlive the process.
func (p *RealPin) Close() error {
	var errs []error

	if p.line != nil {
		if err := p.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithBiasDisabled); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure button pin: %w", err))
		}
		if err := p.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
