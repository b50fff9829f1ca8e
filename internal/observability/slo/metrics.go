// Package slo tracks the summarization service level objectives over a
// window of recent documents and exports them as Prometheus gauges.
package slo

import (
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets for document summarization.
const (
	// FallbackRatioSLO is the largest acceptable share of summaries produced by
	// the local extractive fallback instead of the provider (5%).
	FallbackRatioSLO = 0.05

	// SummaryLatencyP95SLO is the target for the 95th percentile of end-to-end
	// summarization time in seconds. Long documents are chunked and paced, so
	// the target is generous.
	SummaryLatencyP95SLO = 60.0

	// WindowSize is the number of recent summaries the gauges are computed over.
	WindowSize = 200
)

var (
	// SLOFallbackRatio tracks the fallback share (0-1) over the recent window.
	SLOFallbackRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_summary_fallback_ratio",
			Help: "Share of recent summaries produced by the fallback path (0-1), target: <= 0.05",
		},
	)

	// SLOSummaryLatencyP95 tracks the p95 summarization time over the recent window.
	SLOSummaryLatencyP95 = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_summary_latency_p95_seconds",
			Help: "p95 end-to-end summarization time over recent summaries, target: 60",
		},
	)
)

var defaultWindow = NewWindow(WindowSize)

// ObserveSummary records one finished summary and refreshes the SLO gauges.
func ObserveSummary(fallback bool, duration time.Duration) {
	ratio, p95 := defaultWindow.Observe(fallback, duration)
	SLOFallbackRatio.Set(ratio)
	SLOSummaryLatencyP95.Set(p95)
}

// Window is a fixed-size ring of summary outcomes. It is safe for concurrent use.
type Window struct {
	mu        sync.Mutex
	fallbacks []bool
	seconds   []float64
	next      int
	count     int
}

// NewWindow returns a window holding the last size observations. size must be positive.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = 1
	}
	return &Window{
		fallbacks: make([]bool, size),
		seconds:   make([]float64, size),
	}
}

// Observe adds one outcome and returns the fallback ratio and p95 latency in seconds
// over the observations currently in the window.
func (w *Window) Observe(fallback bool, duration time.Duration) (ratio, p95 float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.fallbacks[w.next] = fallback
	w.seconds[w.next] = duration.Seconds()
	w.next = (w.next + 1) % len(w.fallbacks)
	if w.count < len(w.fallbacks) {
		w.count++
	}

	n := 0
	for _, fb := range w.fallbacks[:w.count] {
		if fb {
			n++
		}
	}
	ratio = float64(n) / float64(w.count)

	sorted := slices.Clone(w.seconds[:w.count])
	slices.Sort(sorted)
	// Nearest-rank percentile.
	rank := (95*w.count + 99) / 100
	p95 = sorted[rank-1]
	return ratio, p95
}

// Met reports whether both targets hold for the given values.
func Met(ratio, p95 float64) bool {
	return ratio <= FallbackRatioSLO && p95 <= SummaryLatencyP95SLO
}
