package status

import "time"

// DefaultHistory is the number of events kept for status output.
const DefaultHistory = 16

// Event is one notable controller transition.
type Event struct {
	At     time.Time
	Kind   string // e.g. "mode", "calibrate", "commit", "cancel", "restore"
	Detail string
}

// History is a fixed-capacity FIFO of recent events. When full, the oldest
// event is overwritten. Not safe for concurrent use.
type History struct {
	buf     []Event
	head    int // next write position
	count   int
	dropped int
}

// NewHistory creates a History holding up to capacity events.
// A capacity below 1 is raised to 1.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]Event, capacity)}
}

// Add records e, overwriting the oldest event when full.
func (h *History) Add(e Event) {
	if h.count == len(h.buf) {
		h.dropped++
	} else {
		h.count++
	}
	h.buf[h.head] = e
	h.head = (h.head + 1) % len(h.buf)
}

// Events returns the recorded events, oldest first. The history is not
// cleared.
func (h *History) Events() []Event {
	if h.count == 0 {
		return nil
	}
	out := make([]Event, h.count)
	// Oldest item is at (head - count) mod capacity
	start := (h.head - h.count + len(h.buf)) % len(h.buf)
	for i := 0; i < h.count; i++ {
		out[i] = h.buf[(start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of events held.
func (h *History) Len() int { return h.count }

// Dropped returns how many events were overwritten since creation.
func (h *History) Dropped() int { return h.dropped }
