// Package middleware holds the cross-origin policy applied in front of the document API.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// Defaults used when the corresponding CORSConfig field is empty.
var (
	DefaultAllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	DefaultAllowedHeaders = []string{"Content-Type", "X-Request-ID"}
)

// CORSConfig holds the cross-origin policy.
type CORSConfig struct {
	// AllowedOrigins is the origin whitelist. A single "*" allows any origin.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	// MaxAge is how long browsers may cache a preflight result, in seconds.
	MaxAge int
	Logger *slog.Logger
}

// CORS echoes allowed origins back and answers preflight requests with 204.
// Requests from other origins are served without CORS headers, so the browser blocks the response.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(config.AllowedOrigins))
	wildcard := false
	for _, o := range config.AllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			wildcard = true
		}
		allowed[strings.ToLower(o)] = struct{}{}
	}

	methods := strings.Join(orDefault(config.AllowedMethods, DefaultAllowedMethods), ", ")
	headers := strings.Join(orDefault(config.AllowedHeaders, DefaultAllowedHeaders), ", ")
	maxAge := config.MaxAge
	if maxAge <= 0 {
		maxAge = 86400
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			_, ok := allowed[strings.ToLower(origin)]
			if !ok && !wildcard {
				logger.WarnContext(r.Context(), "CORS: origin not allowed",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID, Retry-After")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(maxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
