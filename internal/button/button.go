// Package button turns a noisy push-button input into gesture events.
// Time is injected through Update so the state machine can be driven
// deterministically in tests.
package button

import (
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/air-monitor/internal/gpio"
)

// State is the debounced level of the button.
type State int

const (
	Released State = iota
	Pressed
)

func (s State) String() string {
	if s == Pressed {
		return "PRESSED"
	}
	return "RELEASED"
}

// Event is the gesture recognised during one Update.
type Event int

const (
	None Event = iota
	ShortPress
	LongPress
	DoublePress
)

func (e Event) String() string {
	switch e {
	case ShortPress:
		return "SHORT_PRESS"
	case LongPress:
		return "LONG_PRESS"
	case DoublePress:
		return "DOUBLE_PRESS"
	default:
		return "NONE"
	}
}

// Defaults used when Config fields are zero.
const (
	DefaultDebounce  = 100 * time.Millisecond
	DefaultLongPress = time.Second
)

var (
	// ErrNoPin is returned when a button is built without an input.
	ErrNoPin = errors.New("button: no input pin")
	// ErrThresholds is returned when the long-press threshold does not exceed the debounce window.
	ErrThresholds = errors.New("button: long-press threshold must exceed debounce window")
)

// Config holds the gesture timings.
type Config struct {
	// Debounce is how long the raw level must hold before a transition is trusted.
	Debounce time.Duration
	// LongPress is the held duration at or above which a press is long.
	LongPress time.Duration
	// DoublePressWindow enables double-press detection when positive. It is
	// measured from the first release to the acceptance of the second press.
	DoublePressWindow time.Duration
}

// Button debounces a Pin and classifies presses.
type Button struct {
	pin gpio.Pin
	cfg Config

	stable       State
	raw          State
	pendingSince time.Time // when raw last diverged from stable
	pressedAt    time.Time

	// Double-press bookkeeping. heldShort is a short press waiting for its
	// window to expire; secondPress marks that the current press started
	// inside that window.
	heldShort   bool
	heldShortAt time.Time
	secondPress bool

	onPress       func()
	onLongPress   func()
	onDoublePress func()

	lastErr error
}

// New creates a Button reading from pin. A nil pin is a wiring error.
func New(pin gpio.Pin, cfg Config) (*Button, error) {
	if pin == nil {
		return nil, ErrNoPin
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.LongPress <= 0 {
		cfg.LongPress = DefaultLongPress
	}
	if cfg.LongPress <= cfg.Debounce {
		return nil, fmt.Errorf("%w: long=%v debounce=%v", ErrThresholds, cfg.LongPress, cfg.Debounce)
	}
	if cfg.DoublePressWindow < 0 {
		cfg.DoublePressWindow = 0
	}
	return &Button{pin: pin, cfg: cfg}, nil
}

// OnPress registers the short-press callback.
func (b *Button) OnPress(fn func()) { b.onPress = fn }

// OnLongPress registers the long-press callback.
func (b *Button) OnLongPress(fn func()) { b.onLongPress = fn }

// OnDoublePress registers the double-press callback.
func (b *Button) OnDoublePress(fn func()) { b.onDoublePress = fn }

// State returns the debounced level.
func (b *Button) State() State { return b.stable }

// LastError returns the error from the most recent pin read, if any.
func (b *Button) LastError() error { return b.lastErr }

// Update samples the pin once and returns the gesture completed at now, if
// any. The matching callback runs before Update returns.
func (b *Button) Update(now time.Time) Event {
	level, err := b.pin.Pressed()
	b.lastErr = err
	if err != nil {
		// Treat an unreadable pin as unchanged.
		return b.fire(b.expireHeld(now))
	}

	sample := Released
	if level {
		sample = Pressed
	}

	if sample == b.stable {
		// Bounce back to the stable level; forget the pending edge.
		b.raw = sample
		return b.fire(b.expireHeld(now))
	}

	if sample != b.raw {
		// New raw edge: restart the debounce window from here.
		b.raw = sample
		b.pendingSince = now
		return b.fire(b.expireHeld(now))
	}

	if now.Sub(b.pendingSince) < b.cfg.Debounce {
		return b.fire(b.expireHeld(now))
	}

	// Raw level has held for the whole window: accept it.
	b.stable = sample
	if sample == Pressed {
		return b.fire(b.acceptPress())
	}
	return b.fire(b.acceptRelease())
}

func (b *Button) acceptPress() Event {
	b.pressedAt = b.pendingSince
	b.secondPress = false
	if !b.heldShort {
		return None
	}
	if b.pendingSince.Sub(b.heldShortAt) <= b.cfg.DoublePressWindow {
		b.secondPress = true
		return None
	}
	// Window ran out before this press began.
	b.heldShort = false
	return ShortPress
}

func (b *Button) acceptRelease() Event {
	held := b.pendingSince.Sub(b.pressedAt)
	long := held >= b.cfg.LongPress

	if b.secondPress {
		b.secondPress = false
		b.heldShort = false
		if long {
			return LongPress
		}
		return DoublePress
	}

	if long {
		return LongPress
	}
	if b.cfg.DoublePressWindow > 0 {
		b.heldShort = true
		b.heldShortAt = b.pendingSince
		return None
	}
	return ShortPress
}

// expireHeld resolves a held-back short press once its window has passed.
func (b *Button) expireHeld(now time.Time) Event {
	if !b.heldShort || b.stable == Pressed {
		return None
	}
	if b.raw == Pressed {
		// A second press may be debouncing; decide once it settles.
		return None
	}
	if now.Sub(b.heldShortAt) <= b.cfg.DoublePressWindow {
		return None
	}
	b.heldShort = false
	return ShortPress
}

func (b *Button) fire(e Event) Event {
	var fn func()
	switch e {
	case ShortPress:
		fn = b.onPress
	case LongPress:
		fn = b.onLongPress
	case DoublePress:
		fn = b.onDoublePress
	}
	if fn != nil {
		fn()
	}
	return e
}
