package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/pgenv/internal/sentinel"
	"k8s.io/apimachinery/pkg/util/wait"
)

// Configuration errors reported by WaitReady.
const (
	ErrEmptyName           = sentinel.Error("name must not be empty")
	ErrIntervalNotPositive = sentinel.Error("interval must be positive")
	ErrTimeoutNotPositive  = sentinel.Error("timeout must be positive")
)

// ReadinessCheck probes a server once. attempt counts from 1 and ctx ends
// with the overall wait. Returning an error stops the wait immediately.
type ReadinessCheck func(ctx context.Context, attempt int) (ready bool, err error)

// WaitReadyConfig describes one readiness wait.
type WaitReadyConfig struct {
	Name     string        // server name used in logs and errors
	Target   string        // polled address, e.g. "localhost:5432"
	Interval time.Duration // delay between probes
	Timeout  time.Duration // upper bound for the whole wait
	Logger   *slog.Logger  // nil means slog.Default()
}

func (c WaitReadyConfig) validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, ErrEmptyName)
	}
	if c.Interval <= 0 {
		errs = append(errs, ErrIntervalNotPositive)
	}
	if c.Timeout <= 0 {
		errs = append(errs, ErrTimeoutNotPositive)
	}
	return errors.Join(errs...)
}

func (c WaitReadyConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// WaitReady probes check every Interval, starting right away, until it
// reports ready, fails, or Timeout elapses.
func WaitReady(ctx context.Context, cfg WaitReadyConfig, check ReadinessCheck) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("wait ready %q: %w", cfg.Name, err)
	}

	log := cfg.logger().With("name", cfg.Name, "target", cfg.Target)
	started := time.Now()

	// The poll loop never runs the condition concurrently.
	attempts := 0
	probe := func(pollCtx context.Context) (bool, error) {
		attempts++
		ready, err := check(pollCtx, attempts)
		switch {
		case err != nil:
			return false, err
		case ready:
			log.Debug("server ready", "attempts", attempts, "elapsed", time.Since(started))
		}
		return ready, nil
	}

	err := wait.PollUntilContextTimeout(ctx, cfg.Interval, cfg.Timeout, true, probe)
	if err != nil {
		return fmt.Errorf("%s at %s not ready after %d attempts: %w", cfg.Name, cfg.Target, attempts, err)
	}
	return nil
}
