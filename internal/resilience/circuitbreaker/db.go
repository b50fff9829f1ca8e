package circuitbreaker

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// Querier is the subset of *sql.DB the document repository uses.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DBCircuitBreaker is a Querier that stops sending statements to a failing database.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// ForDatabase trips after five straight failures and probes again after 30 seconds.
// Missing rows and caller cancellations are not failures.
func ForDatabase() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
		IsFailure: func(err error) bool {
			return !errors.Is(err, sql.ErrNoRows) && !errors.Is(err, context.Canceled)
		},
	}
}

func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, ForDatabase())
}

func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(cfg), db: db}
}

func (d *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return Do(d.cb, func() (*sql.Rows, error) {
		return d.db.QueryContext(ctx, query, args...)
	})
}

func (d *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return Do(d.cb, func() (sql.Result, error) {
		return d.db.ExecContext(ctx, query, args...)
	})
}

// QueryRowContext bypasses the breaker: *sql.Row defers its error until Scan.
func (d *DBCircuitBreaker) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

func (d *DBCircuitBreaker) State() gobreaker.State { return d.cb.State() }

// IsOpen reports whether statements are being rejected.
func (d *DBCircuitBreaker) IsOpen() bool { return d.cb.IsOpen() }

// DB returns the unwrapped pool for pings and migrations.
func (d *DBCircuitBreaker) DB() *sql.DB { return d.db }
