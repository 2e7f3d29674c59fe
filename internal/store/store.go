// Package store persists small values in a byte-addressable non-volatile
// store. The air monitor keeps exactly one record in it: the 16-bit
// air-quality baseline, high byte first.
package store

import (
	"errors"
	"fmt"
)

// Store is a byte-addressable persistent memory.
type Store interface {
	Read(addr int) (byte, error)
	Write(addr int, b byte) error
}

// ErrAddress is returned for an address outside the device.
var ErrAddress = errors.New("store: address out of range")

// Kind names a Store backend.
type Kind string

const (
	KindEEPROM Kind = "eeprom"
	KindFile   Kind = "file"
	KindMemory Kind = "memory"
)

// ParseKind validates a backend name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindEEPROM, KindFile, KindMemory:
		return k, nil
	}
	return "", fmt.Errorf("unknown store kind %q (want eeprom, file or memory)", s)
}

func checkAddr(addr, size int) error {
	if addr < 0 || addr >= size {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrAddress, addr, size)
	}
	return nil
}
