package gpio

import "errors"

// FakePin is a test double that returns scripted button levels.
type FakePin struct {
	// Levels contains scripted logical levels (true = pressed).
	// Each call to Pressed() consumes the next level.
	Levels []bool

	// index tracks current position in Levels
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Pressed()
	ReadError error
}

// NewFakePin creates a FakePin with the given levels.
func NewFakePin(levels ...bool) *FakePin {
	return &FakePin{Levels: levels}
}

// Pressed returns the next scripted level.
// If levels are exhausted, returns the last level repeatedly.
func (f *FakePin) Pressed() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Levels) == 0 {
		return false, errors.New("no levels configured")
	}

	level := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}

	return level, nil
}

// Set replaces the script with a single level held from now on.
func (f *FakePin) Set(pressed bool) {
	f.Levels = []bool{pressed}
	f.index = 0
}

// Close marks the pin as closed.
func (f *FakePin) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the pin to the beginning of its script.
func (f *FakePin) Reset() {
	f.index = 0
	f.Closed = false
}
