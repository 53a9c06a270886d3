package resilience

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/AniruddhAgrahari/open-read/pkg/logger"
)

// RetryConfig bounds a retried operation. The delay doubles per attempt
// from BaseDelay up to MaxDelay, spread with jitter so restarting replicas
// do not hit a recovering dependency in lockstep.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Retry runs fn up to cfg.MaxAttempts times. The dictionary uses it for the
// operations that leave the process: the startup PostgreSQL connection and
// dataset fetches. Cancellation of ctx aborts the backoff wait immediately;
// a cancelled context is never retried against.
func Retry(ctx context.Context, name string, cfg RetryConfig, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 10 * time.Second
	}
	log := logger.WithComponent("retry").With("operation", name)

	delay := cfg.BaseDelay
	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s aborted: %w", name, err)
		}
		if lastErr = fn(); lastErr == nil {
			if attempt > 1 {
				log.Info("recovered", "attempt", attempt)
			}
			return nil
		}
		if attempt == cfg.MaxAttempts {
			return fmt.Errorf("%s failed after %d attempts: %w", name, attempt, lastErr)
		}

		wait := jittered(delay)
		log.Warn("attempt failed, backing off",
			"attempt", attempt,
			"error", lastErr,
			"backoff", wait,
		)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return fmt.Errorf("%s aborted during backoff: %w", name, ctx.Err())
		}
		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}

// jittered spreads d over [0.8d, 1.2d].
func jittered(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.8 + 0.4*rand.Float64()))
}
