package store

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

const (
	// DefaultEEPROMAddress is the I2C address of a 24Cxx with A0-A2 low.
	DefaultEEPROMAddress = 0x50
	// DefaultEEPROMSize is the byte capacity of a 24C32.
	DefaultEEPROMSize = 4096
	// WriteCycle is the worst-case internal write time of a 24Cxx.
	WriteCycle = 5 * time.Millisecond
)

// EEPROM is a 24Cxx serial EEPROM with two-byte word addressing.
type EEPROM struct {
	dev   i2c.Dev
	size  int
	sleep func(time.Duration)
}

// NewEEPROM returns an EEPROM of size bytes at addr on bus.
func NewEEPROM(bus i2c.Bus, addr uint16, size int) (*EEPROM, error) {
	if size <= 0 || size > 1<<16 {
		return nil, fmt.Errorf("eeprom size %d out of range", size)
	}
	return &EEPROM{
		dev:   i2c.Dev{Bus: bus, Addr: addr},
		size:  size,
		sleep: time.Sleep,
	}, nil
}

// Size returns the capacity in bytes.
func (e *EEPROM) Size() int { return e.size }

// Read performs a random read at addr.
func (e *EEPROM) Read(addr int) (byte, error) {
	if err := checkAddr(addr, e.size); err != nil {
		return 0, err
	}
	r := make([]byte, 1)
	if err := e.dev.Tx([]byte{byte(addr >> 8), byte(addr)}, r); err != nil {
		return 0, fmt.Errorf("eeprom read %#04x: %w", addr, err)
	}
	return r[0], nil
}

// Write performs a byte write at addr and waits out the write cycle.
func (e *EEPROM) Write(addr int, b byte) error {
	if err := checkAddr(addr, e.size); err != nil {
		return err
	}
	if err := e.dev.Tx([]byte{byte(addr >> 8), byte(addr), b}, nil); err != nil {
		return fmt.Errorf("eeprom write %#04x: %w", addr, err)
	}
	e.sleep(WriteCycle)
	return nil
}
