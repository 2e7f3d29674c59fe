// Command air-monitor drives the environmental monitor's front panel: it
// reads the button, cycles sensor readouts on the OLED and runs the
// air-quality baseline calibration.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/sweeney/air-monitor/internal/button"
	"github.com/sweeney/air-monitor/internal/clock"
	"github.com/sweeney/air-monitor/internal/config"
	"github.com/sweeney/air-monitor/internal/display"
	"github.com/sweeney/air-monitor/internal/gpio"
	"github.com/sweeney/air-monitor/internal/logging"
	"github.com/sweeney/air-monitor/internal/logic"
	"github.com/sweeney/air-monitor/internal/sensor"
	"github.com/sweeney/air-monitor/internal/status"
	"github.com/sweeney/air-monitor/internal/store"
)

var version = "dev"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(os.Stderr, cfg.AppEnv, cfg.Level(), version)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	// Startup retries forever; a signal is the only way out.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("init host: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("open i2c bus %q: %w", cfg.I2CBus, err)
	}
	defer bus.Close()

	pin, err := gpio.NewRealPin(cfg.Chip, cfg.Pin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer pin.Close()

	btn, err := button.New(pin, cfg.Button())
	if err != nil {
		return fmt.Errorf("init button: %w", err)
	}

	oled, err := sensor.Open(ctx, logger, "ssd1306", func() (*display.SSD1306, error) {
		return display.NewSSD1306(bus, display.DefaultWidth, display.DefaultHeight)
	})
	if err != nil {
		return err
	}
	defer oled.Halt()

	climate, err := sensor.Open(ctx, logger, "bme280", func() (*sensor.BME280, error) {
		return sensor.NewBME280(bus, uint16(cfg.ClimateAddr))
	})
	if err != nil {
		return err
	}
	defer climate.Halt()

	air, err := sensor.Open(ctx, logger, "ccs811", func() (*sensor.CCS811, error) {
		return sensor.NewCCS811(bus, uint16(cfg.AirAddr), logger)
	})
	if err != nil {
		return err
	}
	defer air.Halt()

	st, closeStore, err := openStore(cfg, bus, logger)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer closeStore()

	boot := time.Now()
	ctrl, err := logic.NewController(logic.Deps{
		Button:  btn,
		Clock:   clock.New(boot),
		Sink:    oled,
		Climate: climate,
		Air:     air,
		Store:   st,
		Logger:  logger,
	}, cfg.Controller())
	if err != nil {
		return fmt.Errorf("init controller: %w", err)
	}
	sigCh := handoffSignals(stop)
	defer signal.Stop(sigCh)

	if cfg.PrintState {
		t := time.Now()
		ctrl.Tick(t)
		snap := ctrl.Snapshot(t)
		snap.Config = statusConfig(cfg)
		fmt.Println(string(status.FormatJSON(snap)))
		return nil
	}

	logger.Info("started",
		"version", version,
		"tick", cfg.Tick,
		"poll", cfg.Poll,
		"warm_up_minutes", cfg.WarmUpMinutes,
		"calibration_max", cfg.CalibrationMax,
		"store", cfg.StoreKind,
	)

	ticker := time.NewTicker(cfg.Tick)
	defer ticker.Stop()

	return runLoop(ctrl, logger, cfg.Heartbeat, statusConfig(cfg), time.Now, ticker.C, sigCh)
}

// handoffSignals moves SIGINT and SIGTERM from the startup context to a
// channel for runLoop. The channel is registered before stop runs so no
// signal falls back to the default handler in between.
func handoffSignals(stop context.CancelFunc) chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	stop()
	return sigCh
}

func runLoop(ctrl *logic.Controller, logger *slog.Logger, heartbeat time.Duration, scfg status.Config, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			snap := ctrl.Snapshot(now())
			snap.Config = scfg
			logger.Info("shutting down", "signal", signalName(s), "state", snap)
			return nil

		case <-tick:
			t := now()
			ctrl.Tick(t)

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				snap := ctrl.Snapshot(t)
				snap.Config = scfg
				logger.Info("heartbeat", "state", snap)
			}
		}
	}
}

// openStore returns the configured baseline store and its cleanup func.
func openStore(cfg config.Config, bus i2c.Bus, logger *slog.Logger) (store.Store, func() error, error) {
	nop := func() error { return nil }

	kind, err := store.ParseKind(cfg.StoreKind)
	if err != nil {
		return nil, nop, err
	}
	switch kind {
	case store.KindEEPROM:
		e, err := store.NewEEPROM(bus, uint16(cfg.EEPROMAddr), cfg.EEPROMSize)
		if err != nil {
			return nil, nop, err
		}
		return e, nop, nil
	case store.KindFile:
		f, err := store.OpenFile(cfg.StorePath, cfg.EEPROMSize)
		if err != nil {
			return nil, nop, err
		}
		return f, f.Close, nil
	default:
		logger.Warn("baseline store is in memory; calibration will not survive a restart")
		return store.NewFakeStore(cfg.EEPROMSize), nop, nil
	}
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		TickMs:         cfg.Tick.Milliseconds(),
		DebounceMs:     cfg.Debounce.Milliseconds(),
		PollMs:         cfg.Poll.Milliseconds(),
		HeartbeatMs:    cfg.Heartbeat.Milliseconds(),
		WarmUpMinutes:  cfg.WarmUpMinutes,
		CalibrationMax: cfg.CalibrationMax,
		Store:          cfg.StoreKind,
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}
