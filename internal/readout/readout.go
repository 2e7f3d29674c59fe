// Package readout renders sensor values as display text.
package readout

import (
	"strconv"
	"strings"
)

// Value is a reading already rendered at the precision its source reports.
type Value struct {
	text string
}

// Float renders v with the given number of decimal places.
func Float(v float64, precision int) Value {
	return Value{text: strconv.FormatFloat(v, 'f', precision, 64)}
}

// Int renders an integer reading.
func Int(v int) Value {
	return Value{text: strconv.Itoa(v)}
}

// Hex renders a raw register value in lowercase hex without a prefix.
func Hex(v uint16) Value {
	return Value{text: strconv.FormatUint(uint64(v), 16)}
}

// Text wraps an already formatted value.
func Text(s string) Value {
	return Value{text: s}
}

func (v Value) String() string { return v.text }

// Format lays out a reading as "<label>: <value><unit>".
func Format(label string, v Value, unit string) string {
	var b strings.Builder
	b.Grow(len(label) + 2 + len(v.text) + len(unit))
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(v.text)
	b.WriteString(unit)
	return b.String()
}

// Lines joins display lines.
func Lines(lines ...string) string {
	return strings.Join(lines, "\n")
}
