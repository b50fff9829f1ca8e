// Package logging provides structured logging built on log/slog.
//
// The binaries install the logger returned by NewLogger as the slog default.
// Records logged through the context-aware methods pick up the request ID
// stored by the requestid middleware:
//
//	slog.SetDefault(logging.NewLogger())
//	slog.InfoContext(r.Context(), "document stored", slog.Int64("id", id))
package logging
