package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/sweeney/air-monitor/internal/button"
	"github.com/sweeney/air-monitor/internal/clock"
	"github.com/sweeney/air-monitor/internal/config"
	"github.com/sweeney/air-monitor/internal/display"
	"github.com/sweeney/air-monitor/internal/gpio"
	"github.com/sweeney/air-monitor/internal/logic"
	"github.com/sweeney/air-monitor/internal/sensor"
	"github.com/sweeney/air-monitor/internal/status"
	"github.com/sweeney/air-monitor/internal/store"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from runLoop's goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

type rig struct {
	pin  *gpio.FakePin
	sink *display.FakeSink
	st   *store.FakeStore
	ctrl *logic.Controller
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		pin:  gpio.NewFakePin(false),
		sink: display.NewFakeSink(),
		st:   store.NewFakeStore(64),
	}
	btn, err := button.New(r.pin, button.Config{})
	require.NoError(t, err)

	cfg := logic.DefaultConfig()
	cfg.WarmUpMinutes = 0
	r.ctrl, err = logic.NewController(logic.Deps{
		Button:  btn,
		Clock:   clock.New(start),
		Sink:    r.sink,
		Climate: sensor.NewFakeClimate(sensor.ClimateReading{TemperatureC: 21, PressurePa: 100000, HumidityPct: 40}),
		Air:     sensor.NewFakeAirQuality(sensor.AirReading{CO2PPM: 420, VOCPPB: 12}),
		Store:   r.st,
		Sleep:   func(time.Duration) {},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, cfg)
	require.NoError(t, err)
	return r
}

// runRunLoop drives runLoop for nTicks then sends signal. Before each tick
// script(i) may change the fakes.
func runRunLoop(t *testing.T, r *rig, logger *slog.Logger, heartbeat time.Duration, now func() time.Time, nTicks int, signal os.Signal, script func(i int)) error {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(r.ctrl, logger, heartbeat, status.Config{Store: "memory"}, now, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		if script != nil {
			script(i)
		}
		tick <- time.Time{}
	}
	sig <- signal

	return <-errCh
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunLoopRendersReadings(t *testing.T) {
	r := newRig(t)
	err := runRunLoop(t, r, quiet(), 0, fakeClock(start, 100*time.Millisecond), 5, syscall.SIGTERM, nil)
	require.NoError(t, err)

	assert.Equal(t, "Temp: 69.80F", r.ctrl.Readout())
	assert.Len(t, r.sink.Frames, 5)
}

func TestRunLoopButtonCyclesModes(t *testing.T) {
	r := newRig(t)
	// 10ms ticks: press for 200ms, then release.
	script := func(i int) {
		switch i {
		case 10:
			r.pin.Set(true)
		case 30:
			r.pin.Set(false)
		}
	}
	err := runRunLoop(t, r, quiet(), 0, fakeClock(start, 10*time.Millisecond), 60, syscall.SIGINT, script)
	require.NoError(t, err)

	assert.Equal(t, logic.Pressure, r.ctrl.Mode())
	assert.Equal(t, "Pressure: 1000.00MB", r.ctrl.Readout())
}

func TestRunLoopCalibrationCommit(t *testing.T) {
	r := newRig(t)
	script := func(i int) {
		switch i {
		case 10: // long press
			r.pin.Set(true)
		case 150:
			r.pin.Set(false)
		case 300: // short press commits
			r.pin.Set(true)
		case 320:
			r.pin.Set(false)
		}
	}
	err := runRunLoop(t, r, quiet(), 0, fakeClock(start, 10*time.Millisecond), 400, syscall.SIGTERM, script)
	require.NoError(t, err)

	assert.Equal(t, logic.Temperature, r.ctrl.Mode())
	assert.Equal(t, logic.MsgSaved, r.ctrl.Readout())
	assert.Equal(t, 2, r.st.Writes)
}

func TestRunLoopPinErrorContinues(t *testing.T) {
	r := newRig(t)
	r.pin.ReadError = os.ErrClosed
	err := runRunLoop(t, r, quiet(), 0, fakeClock(start, 100*time.Millisecond), 3, syscall.SIGTERM, nil)
	require.NoError(t, err)
	assert.Len(t, r.sink.Frames, 3)
}

func TestRunLoopHeartbeat(t *testing.T) {
	r := newRig(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	// clock calls: t0 (start), then one per tick, then one at shutdown.
	err := runRunLoop(t, r, logger, 15*time.Minute, fakeClock(start, 5*time.Minute), 4, syscall.SIGTERM, nil)
	require.NoError(t, err)

	var heartbeats, shutdowns int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
		switch rec["msg"] {
		case "heartbeat":
			heartbeats++
			state, ok := rec["state"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "TEMPERATURE", state["mode"])
		case "shutting down":
			shutdowns++
			assert.Equal(t, "SIGTERM", rec["signal"])
		}
	}
	assert.Equal(t, 1, heartbeats)
	assert.Equal(t, 1, shutdowns)
}

func TestRunLoopHeartbeatDisabled(t *testing.T) {
	r := newRig(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := runRunLoop(t, r, logger, 0, fakeClock(start, time.Hour), 4, syscall.SIGINT, nil)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), `"heartbeat"`)
	assert.Contains(t, buf.String(), "SIGINT")
}

func TestOpenStoreMemory(t *testing.T) {
	cfg := config.Default()
	cfg.StoreKind = "memory"
	st, closeFn, err := openStore(cfg, &i2ctest.Record{}, quiet())
	require.NoError(t, err)
	defer closeFn()

	v, err := store.LoadBaseline(st, cfg.BaselineAddr)
	require.NoError(t, err)
	assert.Equal(t, store.ErasedBaseline, v)
}

func TestOpenStoreFile(t *testing.T) {
	cfg := config.Default()
	cfg.StoreKind = "file"
	cfg.StorePath = filepath.Join(t.TempDir(), "baseline.img")
	st, closeFn, err := openStore(cfg, &i2ctest.Record{}, quiet())
	require.NoError(t, err)

	require.NoError(t, store.SaveBaseline(st, 0, 0x4242))
	require.NoError(t, closeFn())

	st, closeFn, err = openStore(cfg, &i2ctest.Record{}, quiet())
	require.NoError(t, err)
	defer closeFn()
	v, err := store.LoadBaseline(st, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x4242), v)
}

func TestOpenStoreEEPROM(t *testing.T) {
	cfg := config.Default()
	st, _, err := openStore(cfg, &i2ctest.Record{}, quiet())
	require.NoError(t, err)
	_, ok := st.(*store.EEPROM)
	assert.True(t, ok)
}

func TestOpenStoreUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.StoreKind = "flash"
	_, _, err := openStore(cfg, &i2ctest.Record{}, quiet())
	assert.Error(t, err)
}

func TestSignalName(t *testing.T) {
	assert.Equal(t, "SIGINT", signalName(syscall.SIGINT))
	assert.Equal(t, "SIGTERM", signalName(syscall.SIGTERM))
	assert.Equal(t, "UNKNOWN", signalName(syscall.SIGHUP))
}

func TestStatusConfig(t *testing.T) {
	cfg := config.Default()
	sc := statusConfig(cfg)
	assert.Equal(t, int64(5000), sc.PollMs)
	assert.Equal(t, int64(100), sc.DebounceMs)
	assert.Equal(t, "eeprom", sc.Store)
}

func TestHandoffSignalsKeepsSIGINT(t *testing.T) {
	_, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sigCh := handoffSignals(stop)
	defer signal.Stop(sigCh)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))
	select {
	case s := <-sigCh:
		assert.Equal(t, "SIGINT", signalName(s))
	case <-time.After(2 * time.Second):
		t.Fatal("SIGINT not delivered to the loop channel")
	}
}
