// Package retry retries actions with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
)

// Config defines the retry schedule.
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
	Multiplier      float64
}

// Default is used for metadata fetches.
var Default = Config{MaxRetries: 3, InitialInterval: 500 * time.Millisecond, Multiplier: 2}

// permanent marks an error that must not be retried.
type permanent struct{ err error }

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

// Permanent wraps err so Do returns it without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanent{err: err}
}

// Do runs action until it succeeds, returns a permanent error, attempts run
// out, or ctx is done.
func Do(ctx context.Context, cfg Config, action func() error) error {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	interval := cfg.InitialInterval
	var err error

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if err = action(); err == nil {
			return nil
		}
		var p *permanent
		if errors.As(err, &p) {
			return p.err
		}
		if attempt == cfg.MaxRetries {
			break
		}
		ctxlog.FromContext(ctx).Warn("attempt failed, retrying",
			"attempt", attempt, "max_attempts", cfg.MaxRetries, "retry_delay", interval.String(), "error", err)

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
		interval = time.Duration(float64(interval) * cfg.Multiplier)
	}
	return fmt.Errorf("failed after %d attempts: %w", cfg.MaxRetries, err)
}
