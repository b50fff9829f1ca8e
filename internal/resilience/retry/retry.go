// Package retry re-runs operations that failed for a transient reason,
// backing off exponentially with jitter between attempts.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Config is a retry policy.
type Config struct {
	// MaxAttempts counts the first call. One disables retrying.
	MaxAttempts int

	InitialDelay time.Duration
	MaxDelay     time.Duration

	// Multiplier grows the delay after every failed attempt.
	Multiplier float64

	// JitterFraction adds up to this share of the delay at random, clamped to [0, 1].
	JitterFraction float64
}

// DBConfig retries briefly; a dropped pooled connection usually recovers within a second.
func DBConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   100 * time.Millisecond,
		MaxDelay:       time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// StorageConfig is used for archive writes, which are idempotent by key.
func StorageConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do calls fn until it succeeds, returns an error IsRetryable rejects, or
// cfg.MaxAttempts is reached. A server-supplied Retry-After on an *HTTPError
// stretches the wait up to cfg.MaxDelay.
func Do[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(cfg.MaxAttempts, 1)

	for attempt := 1; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				slog.InfoContext(ctx, "operation succeeded after retry", slog.Int("attempt", attempt))
			}
			return v, nil
		}
		if !IsRetryable(err) {
			return zero, err
		}
		if attempt == attempts {
			return zero, &ExhaustedError{Attempts: attempt, Err: err}
		}

		wait := cfg.delay(attempt, err)
		slog.WarnContext(ctx, "operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", wait),
			slog.Any("error", err))

		if err := sleep(ctx, wait); err != nil {
			return zero, fmt.Errorf("retry canceled after %d attempts: %w", attempt, err)
		}
	}
}

// WithBackoff is Do for operations that produce no value.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	_, err := Do(ctx, cfg, func(context.Context) (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// delay returns the wait after the given failed attempt (1-based).
func (c Config) delay(attempt int, err error) time.Duration {
	d := float64(c.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= c.Multiplier
	}
	if c.MaxDelay > 0 && d > float64(c.MaxDelay) {
		d = float64(c.MaxDelay)
	}
	wait := jitter(time.Duration(d), c.JitterFraction)

	if ra := retryAfter(err); ra > wait {
		wait = ra
		if c.MaxDelay > 0 && wait > c.MaxDelay {
			wait = c.MaxDelay
		}
	}
	return wait
}

func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return d
	}
	fraction = min(fraction, 1.0)
	// #nosec G404 -- backoff jitter needs no cryptographic randomness
	return d + time.Duration(rand.Float64()*fraction*float64(d))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
