// Package status provides a point-in-time view of the air monitor for the
// heartbeat log line and --print-state output.
package status

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sweeney/air-monitor/internal/readout"
)

// Config contains daemon configuration for display.
type Config struct {
	TickMs         int64
	DebounceMs     int64
	PollMs         int64
	HeartbeatMs    int64
	WarmUpMinutes  int
	CalibrationMax int
	Store          string
}

// Commit describes the most recent calibration commit.
type Commit struct {
	At       time.Time
	Auto     bool
	Baseline uint16
	Err      error
}

// OK reports whether the commit persisted the baseline.
func (c Commit) OK() bool { return c.Err == nil }

// Snapshot is a point-in-time view of controller state.
// It is a value type and safe to keep after the controller moves on.
type Snapshot struct {
	Mode        string
	LastMode    string
	DisplayMode string
	Readout     string
	X           int

	Calibrating        bool
	CalibrationMinutes int
	CalibrationSeconds int

	WarmingUp     bool
	Baseline      uint16
	BaselineValid bool
	BaselineAge   time.Duration
	BaselineStale bool
	NoticeActive  bool
	LastCommit    *Commit
	Events        []Event
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// CalibrationElapsed formats the calibration counters as MM:SS.
func (s Snapshot) CalibrationElapsed() string {
	return fmt.Sprintf("%02d:%02d", s.CalibrationMinutes, s.CalibrationSeconds)
}

// LogValue renders the snapshot as a compact slog group for heartbeat lines.
func (s Snapshot) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("mode", s.Mode),
		slog.Duration("uptime", s.Uptime().Truncate(time.Second)),
		slog.Bool("warming_up", s.WarmingUp),
		slog.String("baseline", baselineString(s)),
	}
	if s.Calibrating {
		attrs = append(attrs, slog.String("calibration", s.CalibrationElapsed()))
	}
	if s.LastCommit != nil {
		result := "saved"
		if !s.LastCommit.OK() {
			result = s.LastCommit.Err.Error()
		}
		attrs = append(attrs, slog.String("last_commit", result))
	}
	return slog.GroupValue(attrs...)
}

func baselineString(s Snapshot) string {
	if !s.BaselineValid {
		return "none"
	}
	return readout.Hex(s.Baseline).String()
}
