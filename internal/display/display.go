// Package display draws readouts on the front-panel screen and decides where
// the text sits on each tick.
package display

import (
	"strings"
	"unicode/utf8"
)

// Frame is one complete redraw of the screen.
type Frame struct {
	Text  string // may contain '\n' line breaks
	X     int    // horizontal draw position in pixels, may be negative
	Scale int    // integer text magnification, 1 = native glyph size
}

// Sink renders frames. Each Render clears previous content first.
type Sink interface {
	Render(f Frame) error
	// Width returns the drawable width in pixels.
	Width() int
}

// Mode is how the text moves between ticks.
type Mode int

const (
	Static Mode = iota
	Scroll
	// Blink draws exactly like Static. No blink timing exists yet; the value
	// is kept so callers can already select it.
	Blink
)

func (m Mode) String() string {
	switch m {
	case Scroll:
		return "SCROLL"
	case Blink:
		return "BLINK"
	default:
		return "STATIC"
	}
}

// Defaults matching the SSD1306 128x32 panel and the basicfont 7x13 face.
const (
	DefaultWidth     = 128
	DefaultHeight    = 32
	DefaultCharWidth = 7
	DefaultStep      = 1
	StaticX          = 0
)

// Scroller tracks the horizontal draw position.
type Scroller struct {
	width     int
	charWidth int
	step      int
	x         int
}

// NewScroller creates a Scroller for a display width pixels wide whose glyphs
// advance charWidth pixels at scale 1. Scroll mode moves step pixels per tick.
func NewScroller(width, charWidth, step int) *Scroller {
	if charWidth <= 0 {
		charWidth = DefaultCharWidth
	}
	if step <= 0 {
		step = DefaultStep
	}
	return &Scroller{width: width, charWidth: charWidth, step: step}
}

// X returns the position to draw at this tick.
func (s *Scroller) X() int { return s.x }

// Reset positions the text for a freshly selected mode: scrolling text
// starts mid-screen, static text at the left edge.
func (s *Scroller) Reset(m Mode) {
	if m == Scroll {
		s.x = s.width / 2
		return
	}
	s.x = StaticX
}

// Advance moves the position after a frame has been drawn.
func (s *Scroller) Advance(m Mode, text string, scale int) {
	switch m {
	case Scroll:
		if scale < 1 {
			scale = 1
		}
		minX := -(s.charWidth * scale) * longestLine(text)
		s.x -= s.step
		if s.x < minX {
			s.x = s.width
		}
	default:
		s.x = StaticX
	}
}

func longestLine(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if l := utf8.RuneCountInString(line); l > n {
			n = l
		}
	}
	return n
}
