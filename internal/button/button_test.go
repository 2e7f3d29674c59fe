package button

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/air-monitor/internal/gpio"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

const step = 10 * time.Millisecond

// held returns n copies of level.
func held(level bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = level
	}
	return out
}

// script concatenates level runs.
func script(runs ...[]bool) []bool {
	var out []bool
	for _, r := range runs {
		out = append(out, r...)
	}
	return out
}

type recorder struct {
	short, long, double int
}

func newButton(t *testing.T, cfg Config, levels []bool) (*Button, *recorder) {
	t.Helper()
	b, err := New(gpio.NewFakePin(levels...), cfg)
	require.NoError(t, err)
	r := &recorder{}
	b.OnPress(func() { r.short++ })
	b.OnLongPress(func() { r.long++ })
	b.OnDoublePress(func() { r.double++ })
	return b, r
}

// run drives the button once per scripted level at a fixed step and returns
// every non-None event.
func run(b *Button, n int) []Event {
	var events []Event
	for i := 0; i < n; i++ {
		if e := b.Update(t0.Add(time.Duration(i) * step)); e != None {
			events = append(events, e)
		}
	}
	return events
}

func TestNewRejectsNilPin(t *testing.T) {
	_, err := New(nil, Config{})
	assert.ErrorIs(t, err, ErrNoPin)
}

func TestNewRejectsInvertedThresholds(t *testing.T) {
	_, err := New(gpio.NewFakePin(false), Config{Debounce: time.Second, LongPress: 500 * time.Millisecond})
	assert.ErrorIs(t, err, ErrThresholds)
}

func TestNewDefaults(t *testing.T) {
	b, err := New(gpio.NewFakePin(false), Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, b.cfg.Debounce)
	assert.Equal(t, DefaultLongPress, b.cfg.LongPress)
	assert.Equal(t, Released, b.State())
}

func TestBounceShorterThanDebounceNeverFires(t *testing.T) {
	// Every pressed run is shorter than the 100ms window.
	levels := script(
		held(false, 5),
		held(true, 3), held(false, 2),
		held(true, 9), held(false, 1),
		held(true, 5), held(false, 1),
		held(true, 1), held(false, 50),
	)
	b, r := newButton(t, Config{}, levels)

	events := run(b, len(levels))
	assert.Empty(t, events)
	assert.Equal(t, Released, b.State())
	assert.Zero(t, r.short+r.long+r.double)
}

func TestShortPress(t *testing.T) {
	// 300ms held, well under the 1s threshold.
	levels := script(held(false, 5), held(true, 30), held(false, 20))
	b, r := newButton(t, Config{}, levels)

	events := run(b, len(levels))
	assert.Equal(t, []Event{ShortPress}, events)
	assert.Equal(t, 1, r.short)
	assert.Zero(t, r.long)
}

func TestLongPress(t *testing.T) {
	// 1.5s held.
	levels := script(held(false, 5), held(true, 150), held(false, 20))
	b, r := newButton(t, Config{}, levels)

	events := run(b, len(levels))
	assert.Equal(t, []Event{LongPress}, events)
	assert.Equal(t, 1, r.long)
	assert.Zero(t, r.short)
}

func TestHeldButtonDoesNotRepeat(t *testing.T) {
	// Held for 5s and never released: the event waits for release.
	levels := script(held(false, 5), held(true, 500))
	b, r := newButton(t, Config{}, levels)

	events := run(b, len(levels))
	assert.Empty(t, events)
	assert.Equal(t, Pressed, b.State())
	assert.Zero(t, r.short+r.long)
}

func TestPressDurationClassification(t *testing.T) {
	tests := []struct {
		name  string
		ticks int
		want  Event
	}{
		{"just over debounce", 12, ShortPress},
		{"half second", 50, ShortPress},
		{"just under threshold", 99, ShortPress},
		{"at threshold", 100, LongPress},
		{"well over threshold", 400, LongPress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels := script(held(false, 3), held(true, tt.ticks), held(false, 15))
			b, r := newButton(t, Config{}, levels)

			events := run(b, len(levels))
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0])
			assert.Equal(t, 1, r.short+r.long, "exactly one callback")
		})
	}
}

func TestBounceOnReleaseKeepsPressTiming(t *testing.T) {
	// Release chatter shorter than the window does not end the press.
	levels := script(
		held(false, 3),
		held(true, 40), held(false, 2), held(true, 3), held(false, 1),
		held(true, 70),
		held(false, 20),
	)
	b, _ := newButton(t, Config{}, levels)

	events := run(b, len(levels))
	assert.Equal(t, []Event{LongPress}, events, "chatter is absorbed into one >1s press")
}

func TestPinErrorTreatedAsNoChange(t *testing.T) {
	pin := gpio.NewFakePin(false)
	b, err := New(pin, Config{})
	require.NoError(t, err)

	pin.ReadError = errors.New("line gone")
	assert.Equal(t, None, b.Update(t0))
	assert.Error(t, b.LastError())

	pin.ReadError = nil
	assert.Equal(t, None, b.Update(t0.Add(step)))
	assert.NoError(t, b.LastError())
}

func TestCallbacksOptional(t *testing.T) {
	levels := script(held(false, 3), held(true, 30), held(false, 20))
	b, err := New(gpio.NewFakePin(levels...), Config{})
	require.NoError(t, err)

	assert.Equal(t, []Event{ShortPress}, run(b, len(levels)))
}

func TestDoublePress(t *testing.T) {
	cfg := Config{DoublePressWindow: 400 * time.Millisecond}
	levels := script(
		held(false, 3),
		held(true, 20), held(false, 15), // first press, 150ms gap
		held(true, 20), held(false, 60),
	)
	b, r := newButton(t, cfg, levels)

	events := run(b, len(levels))
	assert.Equal(t, []Event{DoublePress}, events)
	assert.Equal(t, 1, r.double)
	assert.Zero(t, r.short)
}

func TestDoublePressWindowExpiryResolvesSingle(t *testing.T) {
	cfg := Config{DoublePressWindow: 400 * time.Millisecond}
	levels := script(held(false, 3), held(true, 20), held(false, 80))
	b, r := newButton(t, cfg, levels)

	var firedAt time.Time
	var events []Event
	for i := range levels {
		now := t0.Add(time.Duration(i) * step)
		if e := b.Update(now); e != None {
			events = append(events, e)
			firedAt = now
		}
	}

	assert.Equal(t, []Event{ShortPress}, events)
	assert.Equal(t, 1, r.short)
	// The release began at 230ms, so the single press is only decided after 630ms.
	assert.True(t, firedAt.After(t0.Add(630*time.Millisecond)), "fired at %v", firedAt.Sub(t0))
}

func TestDoublePressSecondPressTooLate(t *testing.T) {
	cfg := Config{DoublePressWindow: 200 * time.Millisecond}
	levels := script(
		held(false, 3),
		held(true, 20), held(false, 40), // 400ms gap > window
		held(true, 20), held(false, 40),
	)
	b, r := newButton(t, cfg, levels)

	events := run(b, len(levels))
	assert.Equal(t, []Event{ShortPress, ShortPress}, events)
	assert.Equal(t, 2, r.short)
	assert.Zero(t, r.double)
}

func TestDoublePressWindowLongSecondPress(t *testing.T) {
	cfg := Config{DoublePressWindow: 400 * time.Millisecond}
	levels := script(
		held(false, 3),
		held(true, 20), held(false, 15),
		held(true, 150), held(false, 20),
	)
	b, r := newButton(t, cfg, levels)

	events := run(b, len(levels))
	assert.Equal(t, []Event{LongPress}, events)
	assert.Equal(t, 1, r.long)
}

func TestLongPressUnaffectedByDoublePressWindow(t *testing.T) {
	cfg := Config{DoublePressWindow: 400 * time.Millisecond}
	levels := script(held(false, 3), held(true, 150), held(false, 15))
	b, _ := newButton(t, cfg, levels)

	assert.Equal(t, []Event{LongPress}, run(b, len(levels)))
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "NONE", None.String())
	assert.Equal(t, "SHORT_PRESS", ShortPress.String())
	assert.Equal(t, "LONG_PRESS", LongPress.String())
	assert.Equal(t, "DOUBLE_PRESS", DoublePress.String())
	assert.Equal(t, "PRESSED", Pressed.String())
}
