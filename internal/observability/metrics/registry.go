// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds.
	// Upload and summarize requests wait on the provider, so the buckets run to two minutes.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Business metrics track document ingestion and summarization
var (
	// DocumentsTotal tracks total number of documents in the database
	DocumentsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "documents_total",
			Help: "Total number of documents in the database",
		},
	)

	// DocumentsUploadedTotal counts accepted uploads by source (file or text)
	DocumentsUploadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_uploaded_total",
			Help: "Total number of documents accepted for summarization",
		},
		[]string{"source", "media_type"},
	)

	// DocumentsSummarizedTotal counts summaries by provenance
	DocumentsSummarizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_summarized_total",
			Help: "Total number of document summaries produced, by provenance",
		},
		[]string{"provenance"},
	)

	// SummarizationDuration measures time to summarize a whole document
	SummarizationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "document_summarization_duration_seconds",
			Help:    "Time taken to summarize a document end to end",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		},
		[]string{"provenance"},
	)

	// ChunksProcessedTotal counts chunk summarization attempts by result
	ChunksProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_chunks_processed_total",
			Help: "Total number of chunk summarization attempts",
		},
		[]string{"result"}, // result: success, failure, empty
	)

	// ExtractionFailuresTotal counts documents whose text could not be extracted
	ExtractionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_extraction_failures_total",
			Help: "Total number of documents whose text extraction failed",
		},
		[]string{"media_type"},
	)

	// ExtractedTextSize measures extracted text length in characters
	ExtractedTextSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "document_extracted_text_characters",
			Help: "Extracted document text length in characters",
			Buckets: []float64{
				100, 400, 1600, 6400, 25600, 102400, 150000, 409600, 1638400,
			},
		},
	)

	// SummarizationQueueWaiting tracks documents waiting for a summarization slot
	SummarizationQueueWaiting = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "document_summarization_waiting",
			Help: "Number of documents waiting for a summarization slot",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
