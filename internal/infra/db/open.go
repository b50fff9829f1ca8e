package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	pkgconfig "docscribe/internal/pkg/config"
)

// ErrMissingDSN is returned when DATABASE_URL is not set.
var ErrMissingDSN = errors.New("DATABASE_URL not set")

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Open connects to dsn through the pgx stdlib driver, applies cfg and pings once.
func Open(ctx context.Context, dsn string, cfg ConnectionConfig) (*sql.DB, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configurePool(db, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connection established successfully")
	return db, nil
}

// OpenFromEnv opens DATABASE_URL with the pool settings from LoadConnectionConfig.
func OpenFromEnv(ctx context.Context) (*sql.DB, error) {
	return Open(ctx, pkgconfig.LoadEnvString("DATABASE_URL", ""), LoadConnectionConfig())
}

func configurePool(db *sql.DB, cfg ConnectionConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))
}

// LoadConnectionConfig reads DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME and DB_CONN_MAX_IDLE_TIME. Invalid values fall back
// to DefaultConnectionConfig with a warning.
func LoadConnectionConfig() ConnectionConfig {
	def := DefaultConnectionConfig()

	results := map[string]pkgconfig.ConfigLoadResult{
		"DB_MAX_OPEN_CONNS":     pkgconfig.LoadEnvInt("DB_MAX_OPEN_CONNS", def.MaxOpenConns, pkgconfig.ValidatePositiveInt),
		"DB_MAX_IDLE_CONNS":     pkgconfig.LoadEnvInt("DB_MAX_IDLE_CONNS", def.MaxIdleConns, pkgconfig.ValidatePositiveInt),
		"DB_CONN_MAX_LIFETIME":  pkgconfig.LoadEnvDuration("DB_CONN_MAX_LIFETIME", def.ConnMaxLifetime, pkgconfig.ValidatePositiveDuration),
		"DB_CONN_MAX_IDLE_TIME": pkgconfig.LoadEnvDuration("DB_CONN_MAX_IDLE_TIME", def.ConnMaxIdleTime, pkgconfig.ValidatePositiveDuration),
	}
	for key, r := range results {
		for _, w := range r.Warnings {
			slog.Warn("database configuration fallback applied",
				slog.String("key", key),
				slog.String("warning", w))
		}
	}

	return ConnectionConfig{
		MaxOpenConns:    results["DB_MAX_OPEN_CONNS"].Value.(int),
		MaxIdleConns:    results["DB_MAX_IDLE_CONNS"].Value.(int),
		ConnMaxLifetime: results["DB_CONN_MAX_LIFETIME"].Value.(time.Duration),
		ConnMaxIdleTime: results["DB_CONN_MAX_IDLE_TIME"].Value.(time.Duration),
	}
}
