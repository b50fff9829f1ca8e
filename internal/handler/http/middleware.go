package http

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"docscribe/internal/handler/http/respond"
	"docscribe/internal/handler/http/responsewriter"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Logging returns middleware that logs one structured line per request.
// The trace ID is taken from the OpenTelemetry span context and the request
// ID is added by the logger's context handler.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := responsewriter.Wrap(w)

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.String("remote_addr", extractIP(r)),
				slog.String("user_agent", r.Header.Get("User-Agent")),
				slog.Int("status", wrapped.StatusCode()),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Duration("duration", duration),
			}
			if sc := trace.SpanFromContext(r.Context()).SpanContext(); sc.HasTraceID() {
				attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
			}

			level := slog.LevelInfo
			if wrapped.StatusCode() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "request completed", attrs...)
		})
	}
}

// Recover returns middleware that turns a panic into a 500 response.
// Nothing is written when the handler already sent its status line.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := responsewriter.Wrap(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "panic recovered",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				if !wrapped.Written() {
					respond.SafeError(wrapped, http.StatusInternalServerError, errors.New("internal error"))
				}
			}()
			next.ServeHTTP(wrapped, r)
		})
	}
}

// LimitRequestBody caps request bodies at maxBytes. Handlers see
// *http.MaxBytesError when a client sends more.
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respond.SafeError(w, http.StatusRequestEntityTooLarge,
					errors.New("request body too large"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

type visitor struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	visitors  sync.Map // map[string]*visitor
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	cleanMu   sync.Mutex
	lastClean time.Time
	now       func() time.Time
}

// NewRateLimiter allows perMinute requests per client IP per minute, with a
// burst of the same size. A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{
		burst:   perMinute,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
	if perMinute > 0 {
		rl.limit = rate.Limit(float64(perMinute) / 60)
	}
	rl.lastClean = rl.now()
	return rl
}

// Limit returns 429 with a Retry-After header once a client exhausts its bucket.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if rl == nil || rl.burst <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rl.periodicCleanup()

		if !rl.allow(extractIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			respond.SafeError(w, http.StatusTooManyRequests,
				errors.New("rate limit exceeded: too many requests, must be retried later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	now := rl.now()
	val, _ := rl.visitors.LoadOrStore(ip, &visitor{
		limiter: rate.NewLimiter(rl.limit, rl.burst),
	})
	v := val.(*visitor)

	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// retryAfterSeconds is the time for one token to refill, rounded up.
func (rl *RateLimiter) retryAfterSeconds() int {
	return (60 + rl.burst - 1) / rl.burst
}

// periodicCleanup drops visitors idle for longer than idleTTL.
func (rl *RateLimiter) periodicCleanup() {
	rl.cleanMu.Lock()
	defer rl.cleanMu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastClean) < rl.idleTTL {
		return
	}
	rl.lastClean = now
	cutoff := now.Add(-rl.idleTTL)

	rl.visitors.Range(func(key, value any) bool {
		v := value.(*visitor)
		v.mu.Lock()
		idle := v.lastSeen.Before(cutoff)
		v.mu.Unlock()
		if idle {
			rl.visitors.Delete(key)
		}
		return true
	})
}

// extractIP returns the client address, preferring X-Forwarded-For and
// X-Real-IP over RemoteAddr.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first entry of a comma-separated address list.
func parseFirstIP(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			if ip := net.ParseIP(s[:i]); ip != nil {
				return ip.String()
			}
			return ""
		}
	}
	if ip := net.ParseIP(s); ip != nil {
		return ip.String()
	}
	return ""
}
