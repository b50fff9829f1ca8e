// Package observability holds the cross-cutting telemetry for the API, the worker
// and the CLI.
//
//   - logging builds the slog logger and stamps request IDs onto records
//   - metrics registers the Prometheus collectors served on /metrics
//   - tracing installs the OpenTelemetry provider and the HTTP span middleware
//   - slo tracks the fallback ratio and p95 latency of recent summaries
package observability
