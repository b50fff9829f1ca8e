package http

import (
	"net/http"
	"strconv"
	"time"

	"docscribe/internal/handler/http/pathutil"
	"docscribe/internal/handler/http/responsewriter"
	"docscribe/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsMiddleware records request count, latency and sizes per route.
// Paths are normalized first so document IDs and share tokens do not become labels.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		path := pathutil.NormalizePath(r.URL.Path)
		wrapped := responsewriter.Wrap(w)

		start := time.Now()
		next.ServeHTTP(wrapped, r)

		metrics.RecordHTTPRequest(
			r.Method,
			path,
			strconv.Itoa(wrapped.StatusCode()),
			time.Since(start),
			int(max(r.ContentLength, 0)),
			wrapped.BytesWritten(),
		)
	})
}

// MetricsHandler serves the Prometheus exposition format.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
