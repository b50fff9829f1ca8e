package config

import (
	"fmt"
	"time"

	pkgconfig "docscribe/internal/pkg/config"
)

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address. Default: ":8080"
	Addr string

	// Version is reported by the health endpoint. Default: "dev"
	Version string

	// AllowedOrigins lists the browser origins accepted by CORS.
	AllowedOrigins []string

	// MaxBodyBytes caps request bodies. It leaves room for multipart framing
	// around the largest accepted upload. Default: 11 MiB
	MaxBodyBytes int64

	// RequestTimeout bounds a whole request, summarization included. Default: 5m
	RequestTimeout time.Duration

	// UploadRate is the number of upload and summarize requests allowed per
	// client per minute. Zero disables the limit. Default: 20
	UploadRate int

	// ShutdownTimeout bounds graceful shutdown. Default: 30s
	ShutdownTimeout time.Duration
}

// LoadServerConfig reads PORT, VERSION, CORS_ALLOWED_ORIGINS, MAX_BODY_BYTES,
// REQUEST_TIMEOUT, UPLOAD_RATE_PER_MINUTE and SHUTDOWN_TIMEOUT.
func LoadServerConfig(m *pkgconfig.ConfigMetrics) *ServerConfig {
	l := pkgconfig.NewLoader(m)
	port := l.Int("PORT", 8080, validPort)
	cfg := &ServerConfig{
		Addr:            fmt.Sprintf(":%d", port),
		Version:         pkgconfig.LoadEnvString("VERSION", "dev"),
		AllowedOrigins:  l.StringList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}, pkgconfig.ValidateHTTPURL),
		MaxBodyBytes:    int64(l.Int("MAX_BODY_BYTES", 11<<20, pkgconfig.ValidatePositiveInt)),
		RequestTimeout:  l.Duration("REQUEST_TIMEOUT", 5*time.Minute, pkgconfig.ValidatePositiveDuration),
		UploadRate:      l.Int("UPLOAD_RATE_PER_MINUTE", 20, validRate),
		ShutdownTimeout: l.Duration("SHUTDOWN_TIMEOUT", 30*time.Second, pkgconfig.ValidatePositiveDuration),
	}
	l.Finish()
	return cfg
}

func validPort(v int) error { return pkgconfig.ValidateIntRange(v, 1, 65535) }
func validRate(v int) error { return pkgconfig.ValidateIntRange(v, 0, 10000) }
