package worker

import (
	"time"

	"docscribe/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics holds the worker's config-fallback metrics and cron job metrics.
//
//   - worker_cron_job_runs_total{status}
//   - worker_cron_job_duration_seconds
//   - worker_documents_reprocessed_total{result}
//   - worker_cron_job_last_success_timestamp
type WorkerMetrics struct {
	*config.ConfigMetrics

	CronJobRunsTotal            *prometheus.CounterVec
	CronJobDurationSeconds      prometheus.Histogram
	DocumentsReprocessedTotal   *prometheus.CounterVec
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics with the default registry.
func NewWorkerMetrics() *WorkerMetrics {
	return NewWorkerMetricsWith(prometheus.DefaultRegisterer)
}

// NewWorkerMetricsWith registers the worker metrics with reg.
func NewWorkerMetricsWith(reg prometheus.Registerer) *WorkerMetrics {
	factory := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetricsWith(reg, "worker"),

		CronJobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by status (success/failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		DocumentsReprocessedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_documents_reprocessed_total",
			Help: "Pending documents re-summarized by the worker, by result (processed/fallback/failed)",
		}, []string{"result"}),

		CronJobLastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}),
	}
}

func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

func (m *WorkerMetrics) RecordJobDuration(d time.Duration) {
	m.CronJobDurationSeconds.Observe(d.Seconds())
}

// RecordReprocessed adds one run's outcome counts.
func (m *WorkerMetrics) RecordReprocessed(processed, fallback, failed int) {
	m.DocumentsReprocessedTotal.WithLabelValues("processed").Add(float64(processed))
	m.DocumentsReprocessedTotal.WithLabelValues("fallback").Add(float64(fallback))
	m.DocumentsReprocessedTotal.WithLabelValues("failed").Add(float64(failed))
}

func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
