// Package http holds the HTTP middleware, health probes and metrics
// endpoint shared by the document API.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"docscribe/internal/handler/http/respond"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // healthy, degraded or unhealthy
	Timestamp string                 `json:"timestamp"` // RFC 3339, UTC
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthHandler reports database connectivity, summarizer configuration and
// archive storage status. Only the database can make the service unhealthy;
// a summarizer without credentials still serves fallback summaries and is reported as degraded.
type HealthHandler struct {
	DB      *sql.DB
	Version string

	SummarizerProvider   string
	SummarizerConfigured bool
	StorageEnabled       bool
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{
		"database":   h.checkDatabase(ctx),
		"summarizer": h.checkSummarizer(),
		"storage":    h.checkStorage(),
	}

	status := statusHealthy
	code := http.StatusOK
	for _, c := range checks {
		if c.Status == statusDegraded && status == statusHealthy {
			status = statusDegraded
		}
	}
	if checks["database"].Status == statusUnhealthy {
		status = statusUnhealthy
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

// checkDatabase pings the database and reports pool statistics.
// Utilization of 80% or more is reported as degraded.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: statusUnhealthy, Message: "not configured"}
	}
	if err := h.DB.PingContext(ctx); err != nil {
		slog.WarnContext(ctx, "health: database ping failed", slog.Any("error", err))
		return CheckStatus{Status: statusUnhealthy, Message: "ping failed: " + respond.SanitizeError(err)}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	// MaxOpenConnections of 0 means unlimited
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{
			Status:  statusDegraded,
			Message: "connection pool max connections not configured",
			Details: details,
		}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80.0 {
		return CheckStatus{
			Status:  statusDegraded,
			Message: "connection pool utilization above 80%",
			Details: details,
		}
	}

	return CheckStatus{Status: statusHealthy, Details: details}
}

func (h *HealthHandler) checkSummarizer() CheckStatus {
	details := map[string]any{"provider": h.SummarizerProvider}
	if !h.SummarizerConfigured {
		return CheckStatus{
			Status:  statusDegraded,
			Message: "api key not configured, summaries use the local fallback",
			Details: details,
		}
	}
	return CheckStatus{Status: statusHealthy, Details: details}
}

func (h *HealthHandler) checkStorage() CheckStatus {
	if !h.StorageEnabled {
		return CheckStatus{Status: statusHealthy, Message: "archiving disabled"}
	}
	return CheckStatus{Status: statusHealthy, Message: "archiving to object storage"}
}

// ReadyHandler answers readiness probes: 200 once the database responds.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler answers liveness probes.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
