// Package config collects the air monitor's command-line settings.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sweeney/air-monitor/internal/button"
	"github.com/sweeney/air-monitor/internal/gpio"
	"github.com/sweeney/air-monitor/internal/logic"
	"github.com/sweeney/air-monitor/internal/sensor"
	"github.com/sweeney/air-monitor/internal/store"
)

// Config is the complete daemon configuration.
type Config struct {
	AppEnv   string
	LogLevel string

	Chip string
	Pin  int

	I2CBus      string
	ClimateAddr uint
	AirAddr     uint

	StoreKind    string
	StorePath    string
	EEPROMAddr   uint
	EEPROMSize   int
	BaselineAddr int

	Tick        time.Duration
	Debounce    time.Duration
	LongPress   time.Duration
	DoublePress time.Duration

	Poll           time.Duration
	WarmUpMinutes  int
	CalibrationMax int
	CommitTimeout  time.Duration
	Notice         time.Duration
	BaselineMaxAge time.Duration
	Celsius        bool
	SeaLevelHPa    float64

	Heartbeat  time.Duration
	PrintState bool
}

// Default returns the settings for the reference board.
func Default() Config {
	lc := logic.DefaultConfig()
	return Config{
		AppEnv:         "dev",
		LogLevel:       "info",
		Chip:           gpio.DefaultChip,
		Pin:            gpio.DefaultPin,
		I2CBus:         "",
		ClimateAddr:    sensor.DefaultBME280Address,
		AirAddr:        sensor.DefaultCCS811Address,
		StoreKind:      string(store.KindEEPROM),
		StorePath:      "/var/lib/air-monitor/eeprom.img",
		EEPROMAddr:     store.DefaultEEPROMAddress,
		EEPROMSize:     store.DefaultEEPROMSize,
		BaselineAddr:   lc.BaselineAddr,
		Tick:           10 * time.Millisecond,
		Debounce:       button.DefaultDebounce,
		LongPress:      button.DefaultLongPress,
		DoublePress:    0,
		Poll:           lc.PollInterval,
		WarmUpMinutes:  lc.WarmUpMinutes,
		CalibrationMax: lc.CalibrationMax,
		CommitTimeout:  lc.CommitTimeout,
		Notice:         lc.NoticeDuration,
		BaselineMaxAge: lc.BaselineMaxAge,
		Celsius:        !lc.Fahrenheit,
		SeaLevelHPa:    lc.SeaLevelHPa,
		Heartbeat:      15 * time.Minute,
	}
}

// FromEnv overrides the logging defaults from APP_ENV and LOG_LEVEL.
// Flags registered afterwards still take precedence.
func (c *Config) FromEnv() {
	if v := strings.TrimSpace(os.Getenv("APP_ENV")); v != "" {
		c.AppEnv = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
}

// RegisterFlags binds every field to a flag on fs using the current values
// as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.AppEnv, "env", c.AppEnv, "Environment: dev (coloured text logs) or prod (JSON logs)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn, error")

	fs.StringVar(&c.Chip, "gpio-chip", c.Chip, "GPIO character device for the button")
	fs.IntVar(&c.Pin, "pin", c.Pin, "GPIO line number of the button")

	fs.StringVar(&c.I2CBus, "i2c", c.I2CBus, "I2C bus name (empty for the first bus)")
	fs.UintVar(&c.ClimateAddr, "bme280-addr", c.ClimateAddr, "BME280 I2C address")
	fs.UintVar(&c.AirAddr, "ccs811-addr", c.AirAddr, "CCS811 I2C address")

	fs.StringVar(&c.StoreKind, "store", c.StoreKind, "Baseline store: eeprom, file or memory")
	fs.StringVar(&c.StorePath, "store-path", c.StorePath, "Image path for --store=file")
	fs.UintVar(&c.EEPROMAddr, "eeprom-addr", c.EEPROMAddr, "24Cxx I2C address for --store=eeprom")
	fs.IntVar(&c.EEPROMSize, "eeprom-size", c.EEPROMSize, "Store capacity in bytes")
	fs.IntVar(&c.BaselineAddr, "baseline-addr", c.BaselineAddr, "Store address of the two-byte baseline")

	fs.DurationVar(&c.Tick, "tick", c.Tick, "Control loop interval")
	fs.DurationVar(&c.Debounce, "debounce", c.Debounce, "Button debounce window")
	fs.DurationVar(&c.LongPress, "long-press", c.LongPress, "Held duration for a long press")
	fs.DurationVar(&c.DoublePress, "double-press", c.DoublePress, "Double-press window (0 to disable); a double press steps back one reading")

	fs.DurationVar(&c.Poll, "poll", c.Poll, "Sensor polling interval")
	fs.IntVar(&c.WarmUpMinutes, "warm-up", c.WarmUpMinutes, "Sensor warm-up in minutes after boot")
	fs.IntVar(&c.CalibrationMax, "calibration-max", c.CalibrationMax, "Minutes before calibration commits on its own")
	fs.DurationVar(&c.CommitTimeout, "commit-timeout", c.CommitTimeout, "Maximum wait for the sensor when committing")
	fs.DurationVar(&c.Notice, "notice", c.Notice, "How long status messages stay on screen")
	fs.DurationVar(&c.BaselineMaxAge, "baseline-max-age", c.BaselineMaxAge, "Baseline age after which recalibration is requested")
	fs.BoolVar(&c.Celsius, "celsius", c.Celsius, "Show temperature in Celsius")
	fs.Float64Var(&c.SeaLevelHPa, "sea-level", c.SeaLevelHPa, "Sea-level pressure in hPa for altitude")

	fs.DurationVar(&c.Heartbeat, "heartbeat", c.Heartbeat, "Heartbeat log interval (0 to disable)")
	fs.BoolVar(&c.PrintState, "print-state", c.PrintState, "Print the initial state as JSON and exit")
}

// Load builds a Config from defaults, the environment and args, in that
// order of precedence, and validates it.
func Load(args []string) (Config, error) {
	cfg := Default()
	cfg.FromEnv()
	fs := flag.NewFlagSet("air-monitor", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects wiring and timing that cannot work.
func (c Config) Validate() error {
	var errs []error
	switch c.AppEnv {
	case "dev", "prod":
	default:
		errs = append(errs, fmt.Errorf("invalid env %q (allowed: dev, prod)", c.AppEnv))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Pin < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", gpio.ErrInvalidPin, c.Pin))
	}
	for name, addr := range map[string]uint{
		"bme280-addr": c.ClimateAddr,
		"ccs811-addr": c.AirAddr,
		"eeprom-addr": c.EEPROMAddr,
	} {
		if addr > 0x7F {
			errs = append(errs, fmt.Errorf("%s %#x is not a 7-bit I2C address", name, addr))
		}
	}
	kind, err := store.ParseKind(c.StoreKind)
	if err != nil {
		errs = append(errs, err)
	}
	if kind == store.KindFile && c.StorePath == "" {
		errs = append(errs, errors.New("store-path is required for --store=file"))
	}
	if c.EEPROMSize < 2 {
		errs = append(errs, fmt.Errorf("eeprom-size %d too small", c.EEPROMSize))
	}
	if c.BaselineAddr < 0 || c.BaselineAddr+1 >= c.EEPROMSize {
		errs = append(errs, fmt.Errorf("baseline-addr %d outside a %d byte store", c.BaselineAddr, c.EEPROMSize))
	}
	for name, d := range map[string]time.Duration{
		"tick":           c.Tick,
		"debounce":       c.Debounce,
		"long-press":     c.LongPress,
		"poll":           c.Poll,
		"commit-timeout": c.CommitTimeout,
		"notice":         c.Notice,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}
	if c.LongPress <= c.Debounce {
		errs = append(errs, fmt.Errorf("long-press %v must exceed debounce %v", c.LongPress, c.Debounce))
	}
	if c.DoublePress < 0 || c.Heartbeat < 0 || c.BaselineMaxAge < 0 {
		errs = append(errs, errors.New("double-press, heartbeat and baseline-max-age must not be negative"))
	}
	if c.WarmUpMinutes < 0 {
		errs = append(errs, fmt.Errorf("warm-up must not be negative, got %d", c.WarmUpMinutes))
	}
	if c.CalibrationMax <= 0 {
		errs = append(errs, fmt.Errorf("calibration-max must be positive, got %d", c.CalibrationMax))
	}
	if c.SeaLevelHPa <= 0 {
		errs = append(errs, fmt.Errorf("sea-level must be positive, got %v", c.SeaLevelHPa))
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() slog.Level {
	l, _ := ParseLogLevel(c.LogLevel)
	return l
}

// Button returns the gesture timings.
func (c Config) Button() button.Config {
	return button.Config{
		Debounce:          c.Debounce,
		LongPress:         c.LongPress,
		DoublePressWindow: c.DoublePress,
	}
}

// Controller returns the controller settings.
func (c Config) Controller() logic.Config {
	lc := logic.DefaultConfig()
	lc.PollInterval = c.Poll
	lc.WarmUpMinutes = c.WarmUpMinutes
	lc.CalibrationMax = c.CalibrationMax
	lc.CommitTimeout = c.CommitTimeout
	lc.NoticeDuration = c.Notice
	lc.BaselineMaxAge = c.BaselineMaxAge
	lc.BaselineAddr = c.BaselineAddr
	lc.Fahrenheit = !c.Celsius
	lc.SeaLevelHPa = c.SeaLevelHPa
	return lc
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", s)
	}
}
