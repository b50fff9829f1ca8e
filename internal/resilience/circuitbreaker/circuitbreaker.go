// Package circuitbreaker guards calls to summarization providers, object storage
// and the database with github.com/sony/gobreaker.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config describes when a breaker trips and how it recovers.
type Config struct {
	Name string

	// MaxRequests is the number of probe calls let through while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts. Zero keeps them until the state changes.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// FailureThreshold is the failure ratio that trips the breaker once MinRequests calls were seen.
	FailureThreshold float64
	MinRequests      uint32

	// IsFailure decides which errors count against the breaker.
	// Nil means every error except a caller cancellation.
	IsFailure func(err error) bool
}

// ForProvider returns the breaker settings for a hosted summarization provider.
// Hugging Face answers 503 while a cold model loads, so its breaker is slower to trip
// and waits longer before probing.
func ForProvider(provider string) Config {
	cfg := Config{
		Name:             provider + "-api",
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
	if provider == "huggingface" {
		cfg.Interval = 60 * time.Second
		cfg.Timeout = 120 * time.Second
		cfg.FailureThreshold = 0.7
	}
	return cfg
}

// ForObjectStorage returns the breaker settings for upload archiving.
func ForObjectStorage() Config {
	return Config{
		Name:             "object-storage",
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// CircuitBreaker is a named gobreaker.CircuitBreaker that exports its state to Prometheus.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New builds a breaker from cfg.
func New(cfg Config) *CircuitBreaker {
	isFailure := cfg.IsFailure
	if isFailure == nil {
		isFailure = countsAsFailure
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observeState(name, to)
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	observeState(cfg.Name, gobreaker.StateClosed)
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Do runs fn through cb. While the breaker is open it fails fast with an error
// for which IsRejected reports true.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if IsRejected(err) {
			rejectedTotal.WithLabelValues(cb.name).Inc()
		}
		var zero T
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

// IsRejected reports whether err came from the breaker itself rather than the guarded call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func countsAsFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Counts returns the call counts of the current generation.
func (cb *CircuitBreaker) Counts() gobreaker.Counts {
	return cb.breaker.Counts()
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether the breaker is rejecting calls.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
