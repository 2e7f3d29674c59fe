// Package clock counts whole seconds and minutes from a monotonic time source
// and runs a small, fixed set of per-second hooks.
package clock

import (
	"errors"
	"fmt"
	"time"
)

// Capacity is the maximum number of per-second callbacks.
const Capacity = 2

// ErrCapacity is returned when more than Capacity callbacks are installed.
var ErrCapacity = errors.New("clock: too many per-second callbacks")

// Clock tracks elapsed seconds and minutes. It is driven by Advance and is
// not safe for concurrent use.
type Clock struct {
	boot       time.Time
	lastSecond int64 // whole seconds since boot at the last counted boundary

	seconds int
	minutes int

	callbacks [Capacity]func()
	n         int
}

// New creates a Clock whose uptime is measured from boot.
func New(boot time.Time) *Clock {
	return &Clock{boot: boot}
}

// Seconds returns the second counter (0-59).
func (c *Clock) Seconds() int { return c.seconds }

// Minutes returns the minute counter.
func (c *Clock) Minutes() int { return c.minutes }

// Uptime returns the time elapsed since boot.
func (c *Clock) Uptime(now time.Time) time.Duration {
	return now.Sub(c.boot)
}

// Reset zeroes the second and minute counters. The boundary tracking is
// kept so the next second is counted on schedule.
func (c *Clock) Reset() {
	c.seconds = 0
	c.minutes = 0
}

// Install replaces the callback list. Callbacks run in the given order.
func (c *Clock) Install(cbs ...func()) error {
	if len(cbs) > Capacity {
		return fmt.Errorf("%w: %d > %d", ErrCapacity, len(cbs), Capacity)
	}
	c.Clear()
	for i, cb := range cbs {
		c.callbacks[i] = cb
	}
	c.n = len(cbs)
	return nil
}

// Clear removes all callbacks.
func (c *Clock) Clear() {
	c.callbacks = [Capacity]func(){}
	c.n = 0
}

// Installed returns the number of installed callbacks.
func (c *Clock) Installed() int { return c.n }

// Advance counts at most one second per call. Crossing several boundaries at
// once (after a long stall) still counts one second, so the minute counter
// never jumps by more than one.
func (c *Clock) Advance(now time.Time) {
	sec := int64(c.Uptime(now) / time.Second)
	if sec <= c.lastSecond {
		return
	}
	c.lastSecond = sec

	c.seconds++
	if c.seconds >= 60 {
		c.seconds = 0
		c.minutes++
	}

	// A callback may Clear the list; re-check n every iteration.
	for i := 0; i < c.n; i++ {
		if cb := c.callbacks[i]; cb != nil {
			cb()
		}
	}
}
