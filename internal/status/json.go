package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Mode          string           `json:"mode"`
	LastMode      string           `json:"last_mode"`
	DisplayMode   string           `json:"display_mode"`
	Readout       string           `json:"readout"`
	WarmingUp     bool             `json:"warming_up"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     string           `json:"start_time"`
	Timestamp     string           `json:"timestamp"`
	Calibration   *CalibrationJSON `json:"calibration,omitempty"`
	Baseline      BaselineJSON     `json:"baseline"`
	LastCommit    *CommitJSON      `json:"last_commit,omitempty"`
	Events        []EventJSON      `json:"events,omitempty"`
	Config        ConfigJSON       `json:"config"`
}

// CalibrationJSON reports an active calibration session.
type CalibrationJSON struct {
	Elapsed string `json:"elapsed"`
}

// BaselineJSON reports the persisted air-quality baseline.
type BaselineJSON struct {
	Value      string `json:"value,omitempty"`
	Valid      bool   `json:"valid"`
	AgeSeconds int64  `json:"age_seconds"`
	Stale      bool   `json:"stale"`
}

// CommitJSON reports the most recent commit.
type CommitJSON struct {
	Timestamp string `json:"timestamp"`
	Auto      bool   `json:"auto"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// EventJSON is one entry of the recent event history.
type EventJSON struct {
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs         int64  `json:"tick_ms"`
	DebounceMs     int64  `json:"debounce_ms"`
	PollMs         int64  `json:"poll_ms"`
	HeartbeatMs    int64  `json:"heartbeat_ms"`
	WarmUpMinutes  int    `json:"warm_up_minutes"`
	CalibrationMax int    `json:"calibration_max_minutes"`
	Store          string `json:"store"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Mode:          snap.Mode,
		LastMode:      snap.LastMode,
		DisplayMode:   snap.DisplayMode,
		Readout:       snap.Readout,
		WarmingUp:     snap.WarmingUp,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Baseline: BaselineJSON{
			Valid:      snap.BaselineValid,
			AgeSeconds: int64(snap.BaselineAge.Truncate(time.Second).Seconds()),
			Stale:      snap.BaselineStale,
		},
		Config: ConfigJSON{
			TickMs:         snap.Config.TickMs,
			DebounceMs:     snap.Config.DebounceMs,
			PollMs:         snap.Config.PollMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			WarmUpMinutes:  snap.Config.WarmUpMinutes,
			CalibrationMax: snap.Config.CalibrationMax,
			Store:          snap.Config.Store,
		},
	}
	if snap.BaselineValid {
		inner.Baseline.Value = baselineString(snap)
	}
	if snap.Calibrating {
		inner.Calibration = &CalibrationJSON{Elapsed: snap.CalibrationElapsed()}
	}
	if c := snap.LastCommit; c != nil {
		inner.LastCommit = &CommitJSON{
			Timestamp: c.At.UTC().Format(time.RFC3339),
			Auto:      c.Auto,
			OK:        c.OK(),
		}
		if c.Err != nil {
			inner.LastCommit.Error = c.Err.Error()
		}
	}
	for _, e := range snap.Events {
		inner.Events = append(inner.Events, EventJSON{
			Timestamp: e.At.UTC().Format(time.RFC3339),
			Kind:      e.Kind,
			Detail:    e.Detail,
		})
	}
	return inner
}

// FormatJSON returns the indented JSON status for --print-state.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}
