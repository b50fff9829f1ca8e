// Package tracing wires OpenTelemetry into the HTTP layer and the pipeline stages.
//
// Setup installs the provider once at startup. Middleware opens a server span per
// request, and StartSpan covers internal stages such as extraction, each chunk
// summary and the condense pass:
//
//	ctx, span := tracing.StartSpan(ctx, "summarize.chunk", attribute.Int("chunk.index", i))
//	defer span.End()
package tracing
