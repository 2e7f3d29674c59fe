package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Open retries init with exponential backoff until it succeeds or ctx is
// done. A device that is still powering up usually answers within a few
// attempts; there is no attempt limit because nothing works without it.
func Open[T any](ctx context.Context, logger *slog.Logger, name string, init func() (T, error)) (T, error) {
	return openWith(ctx, logger, name, newBackOff(), init)
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return b
}

func openWith[T any](ctx context.Context, logger *slog.Logger, name string, b backoff.BackOff, init func() (T, error)) (T, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var dev T
	op := func() error {
		d, err := init()
		if err != nil {
			return err
		}
		dev = d
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("device init failed, retrying", "device", name, "err", err, "wait", wait)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		var zero T
		return zero, fmt.Errorf("open %s: %w", name, err)
	}
	logger.Info("device ready", "device", name)
	return dev, nil
}
