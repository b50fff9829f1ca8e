package summarizer

import (
	"errors"
	"fmt"
	"net/http"

	"docscribe/internal/resilience/circuitbreaker"
)

// ErrMissingAPIKey is wrapped by ConfigError when the provider credential is not set.
var ErrMissingAPIKey = errors.New("api key is not configured")

// ConfigError reports a missing or rejected credential or other provider misconfiguration.
// It is fatal for the call and is never retried.
type ConfigError struct {
	Provider string
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s summarizer misconfigured: %v", e.Provider, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// UnavailableError reports that the provider could not produce a usable summary right now.
// Timeouts, rate limits, cold models, an open circuit and empty responses all end up here.
type UnavailableError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s summarizer unavailable (HTTP %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s summarizer unavailable: %v", e.Provider, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// OptionError reports an option value outside its accepted range.
type OptionError struct {
	Field   string
	Message string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid summary option %s: %s", e.Field, e.Message)
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// IsUnavailable reports whether err is, or wraps, an UnavailableError.
func IsUnavailable(err error) bool {
	var unErr *UnavailableError
	return errors.As(err, &unErr)
}

var (
	errEmptyResponse = errors.New("empty response")
	errCircuitOpen   = errors.New("circuit breaker open")
)

// classifyStatus maps a vendor HTTP status onto the two summarizer error kinds.
// 401 and 403 mean the credential is wrong; everything else is treated as transient.
func classifyStatus(provider string, status int, err error) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &ConfigError{Provider: provider, Err: err}
	}
	return &UnavailableError{Provider: provider, StatusCode: status, Err: err}
}

// classifyTransport wraps errors that carry no HTTP status, timeouts included.
func classifyTransport(provider string, err error) error {
	var cfgErr *ConfigError
	var unErr *UnavailableError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &unErr):
		return err
	case circuitbreaker.IsRejected(err):
		return &UnavailableError{Provider: provider, Err: errCircuitOpen}
	default:
		return &UnavailableError{Provider: provider, Err: err}
	}
}
