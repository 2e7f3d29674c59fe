package logic

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sweeney/air-monitor/internal/button"
	"github.com/sweeney/air-monitor/internal/clock"
	"github.com/sweeney/air-monitor/internal/display"
	"github.com/sweeney/air-monitor/internal/readout"
	"github.com/sweeney/air-monitor/internal/sensor"
	"github.com/sweeney/air-monitor/internal/status"
	"github.com/sweeney/air-monitor/internal/store"
)

// Config holds the controller's timing and presentation settings.
type Config struct {
	PollInterval   time.Duration
	WarmUpMinutes  int
	CalibrationMax int // minutes before a calibration commits on its own
	CommitTimeout  time.Duration
	CommitStep     time.Duration
	NoticeDuration time.Duration
	BaselineMaxAge time.Duration
	BaselineAddr   int
	Fahrenheit     bool
	SeaLevelHPa    float64
	ReadingScale   int
	DetailScale    int
	CharWidth      int
	ScrollStep     int
}

// DefaultConfig returns the settings the device ships with.
func DefaultConfig() Config {
	return Config{
		PollInterval:   5 * time.Second,
		WarmUpMinutes:  20,
		CalibrationMax: 20,
		CommitTimeout:  30 * time.Second,
		CommitStep:     time.Second,
		NoticeDuration: 5 * time.Second,
		BaselineMaxAge: 24 * time.Hour,
		BaselineAddr:   0,
		Fahrenheit:     true,
		SeaLevelHPa:    sensor.DefaultSeaLevelHPa,
		ReadingScale:   2,
		DetailScale:    1,
		CharWidth:      display.DefaultCharWidth,
		ScrollStep:     display.DefaultStep,
	}
}

// Deps are the controller's collaborators. All except Sleep and Logger are
// required.
type Deps struct {
	Button  *button.Button
	Clock   *clock.Clock
	Sink    display.Sink
	Climate sensor.Climate
	Air     sensor.AirQuality
	Store   store.Store
	// Sleep blocks during the commit wait. Defaults to time.Sleep.
	Sleep  func(time.Duration)
	Logger *slog.Logger
}

type session struct {
	prior   Mode
	started time.Time
	dots    int
}

// Controller owns all mutable device state. It is driven from a single
// goroutine through Tick and is not safe for concurrent use.
type Controller struct {
	cfg    Config
	logger *slog.Logger

	button  *button.Button
	clock   *clock.Clock
	sink    display.Sink
	climate sensor.Climate
	air     sensor.AirQuality
	store   store.Store
	sleep   func(time.Duration)

	now      time.Time
	mode     Mode
	lastMode Mode
	dispMode display.Mode
	scroller *display.Scroller
	scale    int
	readout  string

	lastPoll time.Time
	polled   bool

	session     *session
	noticeUntil time.Time
	baseline    BaselineRecord
	restored    bool
	lastCommit  *status.Commit
	history     *status.History

	sinkErr bool
	pinErr  error
}

// NewController wires the controller to its collaborators, loads the
// persisted baseline and registers the button gestures. Warm-up and baseline
// age are measured from the clock's boot time.
func NewController(deps Deps, cfg Config) (*Controller, error) {
	switch {
	case deps.Button == nil:
		return nil, fmt.Errorf("%w: button", ErrMissingDependency)
	case deps.Clock == nil:
		return nil, fmt.Errorf("%w: clock", ErrMissingDependency)
	case deps.Sink == nil:
		return nil, fmt.Errorf("%w: display", ErrMissingDependency)
	case deps.Climate == nil:
		return nil, fmt.Errorf("%w: climate sensor", ErrMissingDependency)
	case deps.Air == nil:
		return nil, fmt.Errorf("%w: air-quality sensor", ErrMissingDependency)
	case deps.Store == nil:
		return nil, fmt.Errorf("%w: store", ErrMissingDependency)
	}
	if deps.Sleep == nil {
		deps.Sleep = time.Sleep
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.ReadingScale < 1 {
		cfg.ReadingScale = 1
	}
	if cfg.DetailScale < 1 {
		cfg.DetailScale = 1
	}

	c := &Controller{
		cfg:      cfg,
		logger:   deps.Logger,
		button:   deps.Button,
		clock:    deps.Clock,
		sink:     deps.Sink,
		climate:  deps.Climate,
		air:      deps.Air,
		store:    deps.Store,
		sleep:    deps.Sleep,
		scroller: display.NewScroller(deps.Sink.Width(), cfg.CharWidth, cfg.ScrollStep),
		history:  status.NewHistory(status.DefaultHistory),
	}

	v, err := store.LoadBaseline(c.store, cfg.BaselineAddr)
	switch {
	case err != nil:
		c.logger.Warn("cannot load saved baseline", "err", err)
	case v == store.ErasedBaseline:
		c.logger.Info("no saved baseline")
	default:
		c.baseline = BaselineRecord{Value: v, Valid: true}
		c.logger.Info("loaded saved baseline", "baseline", readout.Hex(v).String())
	}

	c.button.OnPress(c.OnPress)
	c.button.OnLongPress(c.OnLongPress)
	c.button.OnDoublePress(c.OnDoublePress)

	c.setMode(Temperature)
	c.lastMode = Temperature
	return c, nil
}

// Tick runs one control-loop iteration: button, display, clock, then
// sensor polling.
func (c *Controller) Tick(now time.Time) {
	c.now = now

	c.button.Update(now)
	if err := c.button.LastError(); err != nil && c.pinErr == nil {
		c.logger.Warn("button read failed", "err", err)
	}
	c.pinErr = c.button.LastError()

	c.refreshDisplay()
	c.clock.Advance(now)
	c.poll()
}

// OnPress handles a short press: cycle to the next reading, or commit an
// active calibration.
func (c *Controller) OnPress() {
	if c.mode == Calibrate {
		c.commit(false)
		return
	}
	c.cycleTo(c.mode.Next())
}

// OnDoublePress steps back to the previous reading. In Calibrate it commits,
// like a short press. It only fires when the button has a double-press
// window configured.
func (c *Controller) OnDoublePress() {
	if c.mode == Calibrate {
		c.commit(false)
		return
	}
	c.cycleTo(c.mode.Prev())
}

func (c *Controller) cycleTo(m Mode) {
	c.setMode(m)
	c.noticeUntil = time.Time{}
	c.polled = false
	c.logger.Info("mode changed", "mode", c.mode.String(), "from", c.lastMode.String())
	c.record("mode", c.lastMode.String()+" -> "+c.mode.String())
}

// OnLongPress handles a long press: start calibrating, or cancel an active
// calibration.
func (c *Controller) OnLongPress() {
	if c.mode == Calibrate {
		c.cancel()
		return
	}
	c.startCalibration()
}

func (c *Controller) setMode(m Mode) {
	c.lastMode = c.mode
	c.mode = m
	c.dispMode = m.DisplayMode()
	c.scroller.Reset(c.dispMode)
	c.scale = c.cfg.ReadingScale
	if m == Calibrate {
		c.scale = c.cfg.DetailScale
	}
}

func (c *Controller) startCalibration() {
	prior := c.mode
	c.clock.Reset()
	if err := c.clock.Install(c.refreshCalibration, c.autoCommit); err != nil {
		// Two callbacks always fit; a failure here is a programming error.
		c.logger.Error("cannot install calibration callbacks", "err", err)
		return
	}
	c.session = &session{prior: prior, started: c.now}
	c.noticeUntil = time.Time{}
	c.setMode(Calibrate)
	c.readout = c.calibrationText()
	c.logger.Info("calibration started", "prior", prior.String(), "max_minutes", c.cfg.CalibrationMax)
	c.record("calibrate", prior.String())
}

// refreshCalibration runs once per second while calibrating.
func (c *Controller) refreshCalibration() {
	if c.session == nil {
		return
	}
	c.session.dots = (c.session.dots + 1) % 4
	c.readout = c.calibrationText()
}

// autoCommit runs once per second while calibrating and commits when the
// session reaches its maximum length.
func (c *Controller) autoCommit() {
	if c.session == nil || c.clock.Minutes() < c.cfg.CalibrationMax {
		return
	}
	c.logger.Info("calibration time limit reached", "minutes", c.clock.Minutes())
	c.commit(true)
}

func (c *Controller) calibrationText() string {
	dots := 0
	if c.session != nil {
		dots = c.session.dots
	}
	value := "----"
	if v, err := c.air.Baseline(); err != nil {
		c.logger.Debug("baseline read failed during calibration", "err", err)
	} else {
		value = readout.Hex(v).String()
	}
	return readout.Lines(
		calibratingPrefix+dotString(dots),
		fmt.Sprintf(calibrationElapsed, c.clock.Minutes(), c.clock.Seconds(), value),
	)
}

func dotString(n int) string {
	return "..."[:n]
}

// endSession uninstalls the per-second callbacks and returns to the mode
// held before calibration. It reports false when no session was active.
func (c *Controller) endSession() (session, bool) {
	if c.session == nil {
		return session{}, false
	}
	s := *c.session
	c.session = nil
	c.clock.Clear()
	c.clock.Reset()
	c.setMode(s.prior)
	return s, true
}

// commit persists the sensor baseline. Manual and automatic commits share
// this path; a second call after the session ended is a no-op.
func (c *Controller) commit(auto bool) error {
	s, ok := c.endSession()
	if !ok {
		return nil
	}

	v, err := c.persistBaseline()
	result := status.Commit{At: c.now, Auto: auto, Baseline: v, Err: err}
	c.lastCommit = &result
	c.record("commit", commitDetail(result))

	switch {
	case err == nil:
		c.baseline = BaselineRecord{Value: v, RecordedAt: c.uptime(), Valid: true}
		c.logger.Info("baseline saved", "baseline", readout.Hex(v).String(), "auto", auto,
			"session", c.now.Sub(s.started).Truncate(time.Second))
		c.showNotice(MsgSaved)
	case errors.Is(err, ErrPersistMismatch):
		c.logger.Error("baseline not saved", "err", err, "auto", auto)
		c.showNotice(MsgSaveFailed)
	default:
		c.logger.Error("baseline not saved", "err", err, "auto", auto)
		c.showNotice(MsgReadFailed)
	}
	return err
}

// persistBaseline waits for the air-quality sensor, then writes its baseline
// to the store and verifies it.
func (c *Controller) persistBaseline() (uint16, error) {
	var waited time.Duration
	for !c.air.DataReady() {
		if waited >= c.cfg.CommitTimeout {
			return 0, fmt.Errorf("%w: waited %v", ErrSensorTimeout, waited)
		}
		c.sleep(c.cfg.CommitStep)
		waited += c.cfg.CommitStep
		c.now = c.now.Add(c.cfg.CommitStep)
	}

	v, err := c.air.Baseline()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSensorRead, err)
	}
	if err := store.SaveBaseline(c.store, c.cfg.BaselineAddr, v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrPersistMismatch, err)
	}
	return v, nil
}

func (c *Controller) cancel() {
	s, ok := c.endSession()
	if !ok {
		return
	}
	c.logger.Info("calibration canceled", "mode", c.mode.String(),
		"session", c.now.Sub(s.started).Truncate(time.Second))
	c.showNotice(MsgCanceled)
	c.record("cancel", "")
}

func (c *Controller) record(kind, detail string) {
	c.history.Add(status.Event{At: c.now, Kind: kind, Detail: detail})
}

func commitDetail(r status.Commit) string {
	trigger := "manual"
	if r.Auto {
		trigger = "auto"
	}
	if r.Err != nil {
		return trigger + ": " + r.Err.Error()
	}
	return trigger + ": " + readout.Hex(r.Baseline).String()
}

// showNotice replaces the readout for NoticeDuration. Polling resumes on
// the first tick after it expires.
func (c *Controller) showNotice(text string) {
	c.readout = text
	c.noticeUntil = c.now.Add(c.cfg.NoticeDuration)
	c.polled = false
}

func (c *Controller) noticeActive() bool {
	return c.now.Before(c.noticeUntil)
}

func (c *Controller) refreshDisplay() {
	f := c.Frame()
	if err := c.sink.Render(f); err != nil {
		if !c.sinkErr {
			c.logger.Warn("display render failed", "err", err)
		}
		c.sinkErr = true
	} else {
		c.sinkErr = false
	}
	c.scroller.Advance(c.dispMode, f.Text, f.Scale)
}

func (c *Controller) uptime() time.Duration {
	return c.clock.Uptime(c.now)
}

func (c *Controller) warmUpRemaining() int {
	up := int(c.uptime() / time.Minute)
	return c.cfg.WarmUpMinutes - up
}

func (c *Controller) poll() {
	if c.mode == Calibrate || c.noticeActive() {
		return
	}
	if c.polled && c.now.Sub(c.lastPoll) < c.cfg.PollInterval {
		return
	}

	if n := c.warmUpRemaining(); n > 0 {
		c.readout = fmt.Sprintf(msgWarmUpFormat, n)
		c.markPolled()
		return
	}

	if !c.restored {
		c.restored = true
		if c.restoreBaseline() {
			return
		}
	}

	text, ok := c.readSource()
	if !ok {
		return
	}
	c.readout = text
	c.markPolled()
	c.logger.Debug("reading", "mode", c.mode.String(), "readout", text)
}

func (c *Controller) markPolled() {
	c.lastPoll = c.now
	c.polled = true
}

// restoreBaseline loads the saved baseline into the sensor once warm-up is
// over. It reports whether a notice is now showing.
func (c *Controller) restoreBaseline() bool {
	if !c.baseline.Valid {
		return false
	}
	if err := c.air.SetBaseline(c.baseline.Value); err != nil {
		c.logger.Warn("cannot restore saved baseline", "err", err)
		return false
	}
	hex := readout.Hex(c.baseline.Value).String()
	c.logger.Info("restored saved baseline", "baseline", hex)
	c.showNotice(fmt.Sprintf(msgRestoredFormat, hex))
	c.record("restore", hex)
	return true
}

// readSource reads the sensor behind the current mode. ok is false when the
// sensor is not ready or the read failed, in which case the previous
// readout stays up and the next tick tries again.
func (c *Controller) readSource() (text string, ok bool) {
	switch c.mode {
	case Temperature, Pressure, Humidity, Altitude:
		if !c.climate.DataReady() {
			return "", false
		}
		r, err := c.climate.Sense()
		if err != nil {
			c.logger.Warn("climate read failed", "err", err)
			c.markPolled()
			return "", false
		}
		return c.formatClimate(r), true

	case CO2, VOC:
		if !c.air.DataReady() {
			return "", false
		}
		c.compensate()
		r, err := c.air.Sense()
		if err != nil {
			c.logger.Warn("air-quality read failed", "err", err)
			c.markPolled()
			return "", false
		}
		if c.mode == CO2 {
			return readout.Format("CO2", readout.Int(r.CO2PPM), "PPM"), true
		}
		return readout.Format("TVOC", readout.Int(r.VOCPPB), "PPB"), true

	case BaselineAge:
		if !c.air.DataReady() {
			return "", false
		}
		age := c.baseline.Age(c.uptime())
		if !c.baseline.Valid || age > c.cfg.BaselineMaxAge {
			return MsgCalibrate, true
		}
		return readout.Format("BAge", readout.Int(int(age/time.Hour)), "HR(S)"), true
	}
	return "", false
}

// compensate feeds the latest temperature and humidity to the gas sensor.
func (c *Controller) compensate() {
	if !c.climate.DataReady() {
		return
	}
	r, err := c.climate.Sense()
	if err != nil {
		c.logger.Debug("compensation read failed", "err", err)
		return
	}
	if err := c.air.SetEnvironment(r.TemperatureC, r.HumidityPct); err != nil {
		c.logger.Debug("compensation write failed", "err", err)
	}
}

func (c *Controller) formatClimate(r sensor.ClimateReading) string {
	switch c.mode {
	case Temperature:
		if c.cfg.Fahrenheit {
			return readout.Format("Temp", readout.Float(r.TemperatureF(), sensor.Precision), "F")
		}
		return readout.Format("Temp", readout.Float(r.TemperatureC, sensor.Precision), "C")
	case Pressure:
		return readout.Format("Pressure", readout.Float(r.PressureHPa(), sensor.Precision), "MB")
	case Humidity:
		return readout.Format("Humidity", readout.Float(r.HumidityPct, sensor.Precision), "%")
	default:
		return readout.Format("Altitude", readout.Float(r.AltitudeM(c.cfg.SeaLevelHPa), sensor.Precision), "M")
	}
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return c.mode }

// LastMode returns the mode shown before the most recent mode change.
func (c *Controller) LastMode() Mode { return c.lastMode }

// DisplayMode returns how the readout currently moves.
func (c *Controller) DisplayMode() display.Mode { return c.dispMode }

// Readout returns the current text.
func (c *Controller) Readout() string { return c.readout }

// Calibrating reports whether a calibration session is active.
func (c *Controller) Calibrating() bool { return c.session != nil }

// Baseline returns the in-memory baseline record.
func (c *Controller) Baseline() BaselineRecord { return c.baseline }

// Frame returns what the next display refresh will draw.
func (c *Controller) Frame() display.Frame {
	return display.Frame{Text: c.readout, X: c.scroller.X(), Scale: c.scale}
}

// LastCommit returns the most recent commit result, if any.
func (c *Controller) LastCommit() (status.Commit, bool) {
	if c.lastCommit == nil {
		return status.Commit{}, false
	}
	return *c.lastCommit, true
}

// Snapshot returns a point-in-time view of the controller.
func (c *Controller) Snapshot(now time.Time) status.Snapshot {
	uptime := c.clock.Uptime(now)
	age := c.baseline.Age(uptime)
	snap := status.Snapshot{
		Mode:          c.mode.String(),
		LastMode:      c.lastMode.String(),
		DisplayMode:   c.dispMode.String(),
		Readout:       c.readout,
		X:             c.scroller.X(),
		Calibrating:   c.Calibrating(),
		WarmingUp:     int(uptime/time.Minute) < c.cfg.WarmUpMinutes,
		Baseline:      c.baseline.Value,
		BaselineValid: c.baseline.Valid,
		BaselineAge:   age,
		BaselineStale: !c.baseline.Valid || age > c.cfg.BaselineMaxAge,
		NoticeActive:  now.Before(c.noticeUntil),
		StartTime:     now.Add(-uptime),
		Now:           now,
	}
	if snap.Calibrating {
		snap.CalibrationMinutes = c.clock.Minutes()
		snap.CalibrationSeconds = c.clock.Seconds()
	}
	if c.lastCommit != nil {
		lc := *c.lastCommit
		snap.LastCommit = &lc
	}
	snap.Events = c.history.Events()
	return snap
}
