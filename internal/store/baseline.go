package store

import (
	"errors"
	"fmt"
)

// Erased is the content of a never-written EEPROM cell.
const Erased = 0xFF

// ErasedBaseline is the value read back from two erased cells.
const ErasedBaseline uint16 = 0xFFFF

// ErrMismatch is returned when a written value does not read back.
var ErrMismatch = errors.New("store: read-back mismatch")

// LoadBaseline reads the 16-bit value at addr, high byte first.
func LoadBaseline(s Store, addr int) (uint16, error) {
	hi, err := s.Read(addr)
	if err != nil {
		return 0, fmt.Errorf("load baseline: %w", err)
	}
	lo, err := s.Read(addr + 1)
	if err != nil {
		return 0, fmt.Errorf("load baseline: %w", err)
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// SaveBaseline writes v at addr, high byte first, and reads it back.
// A read-back that differs from v returns ErrMismatch.
func SaveBaseline(s Store, addr int, v uint16) error {
	if err := s.Write(addr, byte(v>>8)); err != nil {
		return fmt.Errorf("save baseline: %w", err)
	}
	if err := s.Write(addr+1, byte(v)); err != nil {
		return fmt.Errorf("save baseline: %w", err)
	}
	got, err := LoadBaseline(s, addr)
	if err != nil {
		return fmt.Errorf("verify baseline: %w", err)
	}
	if got != v {
		return fmt.Errorf("%w: wrote %#04x, read %#04x", ErrMismatch, v, got)
	}
	return nil
}
