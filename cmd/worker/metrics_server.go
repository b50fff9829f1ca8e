package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docscribe/internal/handler/http/respond"
)

// HealthResponse represents a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// BreakerHealthResponse reports the circuit breakers guarding the worker's dependencies.
type BreakerHealthResponse struct {
	Healthy  bool            `json:"healthy"`
	Breakers []BreakerStatus `json:"breakers"`
}

// BreakerStatus represents the state of a single circuit breaker.
type BreakerStatus struct {
	Name string `json:"name"`
	Open bool   `json:"open"`
}

// breakerState is satisfied by circuitbreaker.CircuitBreaker and circuitbreaker.DBCircuitBreaker.
type breakerState interface {
	IsOpen() bool
}

// startMetricsServer starts the Prometheus metrics HTTP server.
// It runs in a separate goroutine and shuts down when ctx is cancelled.
//
// The server exposes the following endpoints:
//   - GET /metrics - Prometheus metrics endpoint
//   - GET /health - Simple liveness probe (always returns 200 OK)
//   - GET /health/breakers - Circuit breaker states; 503 while any is open
//
// Environment variables:
//   - METRICS_PORT: Port to listen on (default: 9090)
func startMetricsServer(ctx context.Context, logger *slog.Logger, breakers map[string]breakerState) *http.Server {
	port := getMetricsPort()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      metricsMux(breakers),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info("metrics server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}

func metricsMux(breakers map[string]breakerState) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /health/breakers", breakerHealthHandler(breakers))
	return mux
}

// getMetricsPort retrieves the metrics server port from environment variable.
// Defaults to 9090 if not set or invalid.
func getMetricsPort() int {
	portStr := os.Getenv("METRICS_PORT")
	if portStr == "" {
		return 9090
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return 9090
	}

	return port
}

// healthHandler is the liveness probe of the metrics listener.
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// breakerHealthHandler lists breakers by name and answers 503 while any is open.
func breakerHealthHandler(breakers map[string]breakerState) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := BreakerHealthResponse{Healthy: true, Breakers: []BreakerStatus{}}
		for _, name := range slices.Sorted(maps.Keys(breakers)) {
			open := breakers[name].IsOpen()
			resp.Breakers = append(resp.Breakers, BreakerStatus{Name: name, Open: open})
			resp.Healthy = resp.Healthy && !open
		}

		code := http.StatusOK
		if !resp.Healthy {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(w, code, resp)
	}
}
