// Package worker holds the background reprocessing worker's configuration,
// its Prometheus metrics and its health probe server.
package worker

import (
	"errors"
	"fmt"
	"time"

	"docscribe/internal/pkg/config"
)

// WorkerConfig controls the reprocessing cron job.
type WorkerConfig struct {
	// CronSchedule is a five-field cron expression. Default: every 30 minutes.
	CronSchedule string

	// Timezone is the IANA zone the schedule is evaluated in. Default: UTC.
	Timezone string

	// BatchSize is the maximum number of pending documents taken per run (1-500).
	BatchSize int

	// Parallelism is how many documents of a batch are summarized at once (1-16).
	Parallelism int

	// JobTimeout bounds a single run (1m-4h).
	JobTimeout time.Duration

	// HealthPort serves /health and /health/ready (1024-65535).
	HealthPort int
}

func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "*/30 * * * *",
		Timezone:     "UTC",
		BatchSize:    20,
		Parallelism:  2,
		JobTimeout:   20 * time.Minute,
		HealthPort:   9091,
	}
}

// Validate reports every invalid field at once.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := validBatchSize(c.BatchSize); err != nil {
		errs = append(errs, fmt.Errorf("batch size: %w", err))
	}
	if err := validParallelism(c.Parallelism); err != nil {
		errs = append(errs, fmt.Errorf("parallelism: %w", err))
	}
	if err := validJobTimeout(c.JobTimeout); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}
	if err := validPort(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// LoadConfigFromEnv reads CRON_SCHEDULE, WORKER_TIMEZONE, WORKER_BATCH_SIZE,
// WORKER_PARALLELISM, WORKER_JOB_TIMEOUT and WORKER_HEALTH_PORT.
// Invalid values fall back to their defaults, so the returned config is always usable.
func LoadConfigFromEnv(metrics *WorkerMetrics) *WorkerConfig {
	def := DefaultConfig()

	var cm *config.ConfigMetrics
	if metrics != nil {
		cm = metrics.ConfigMetrics
	}
	l := config.NewLoader(cm)

	cfg := &WorkerConfig{
		CronSchedule: l.String("CRON_SCHEDULE", def.CronSchedule, config.ValidateCronSchedule),
		Timezone:     l.String("WORKER_TIMEZONE", def.Timezone, config.ValidateTimezone),
		BatchSize:    l.Int("WORKER_BATCH_SIZE", def.BatchSize, validBatchSize),
		Parallelism:  l.Int("WORKER_PARALLELISM", def.Parallelism, validParallelism),
		JobTimeout:   l.Duration("WORKER_JOB_TIMEOUT", def.JobTimeout, validJobTimeout),
		HealthPort:   l.Int("WORKER_HEALTH_PORT", def.HealthPort, validPort),
	}
	l.Finish()
	return cfg
}

func validBatchSize(v int) error   { return config.ValidateIntRange(v, 1, 500) }
func validParallelism(v int) error { return config.ValidateIntRange(v, 1, 16) }
func validPort(v int) error        { return config.ValidateIntRange(v, 1024, 65535) }
func validJobTimeout(d time.Duration) error {
	return config.ValidateDuration(d, time.Minute, 4*time.Hour)
}
