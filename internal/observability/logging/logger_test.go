package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"docscribe/internal/handler/http/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output should be valid JSON")
	return entry
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	assert.NotNil(t, NewLogger())
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "json", "warn")

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNew_Formats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "", "").Info("document stored", slog.Int64("id", 7))

		entry := decode(t, &buf)
		assert.Equal(t, "document stored", entry["msg"])
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, float64(7), entry["id"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "TEXT", "").Info("document stored")

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "time="), "text output expected, got %q", out)
		assert.Contains(t, out, `msg="document stored"`)
	})
}

/* ───────── Request correlation ───────── */

func TestContextHandler_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "json", "info")
	ctx := requestid.WithRequestID(context.Background(), "req-123")

	logger.InfoContext(ctx, "summarizing")

	assert.Equal(t, "req-123", decode(t, &buf)["request_id"])
}

func TestContextHandler_PreservesAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "json", "info").With("component", "worker").WithGroup("job")
	ctx := requestid.WithRequestID(context.Background(), "req-9")

	logger.InfoContext(ctx, "tick", slog.Int("n", 1))

	entry := decode(t, &buf)
	assert.Equal(t, "worker", entry["component"])
	job, ok := entry["job"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), job["n"])
	assert.Equal(t, "req-9", job["request_id"])
}

func TestContextHandler_NoRequestID(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "json", "info").InfoContext(context.Background(), "plain")

	assert.NotContains(t, buf.String(), "request_id")
}

func TestWithRequestID(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		wantField bool
	}{
		{name: "with request ID", requestID: "550e8400-e29b-41d4-a716-446655440000", wantField: true},
		{name: "without request ID", requestID: "", wantField: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.New(slog.NewJSONHandler(&buf, nil))
			ctx := context.Background()
			if tt.requestID != "" {
				ctx = requestid.WithRequestID(ctx, tt.requestID)
			}

			WithRequestID(ctx, base).Info("test message")

			entry := decode(t, &buf)
			if tt.wantField {
				assert.Equal(t, tt.requestID, entry["request_id"])
			} else {
				assert.NotContains(t, entry, "request_id")
			}
		})
	}
}
