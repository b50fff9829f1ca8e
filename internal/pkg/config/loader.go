// Package config loads validated configuration values from environment variables.
//
// Every loader falls back to its default when a value is missing, unparsable
// or rejected by its validator. Fallbacks never fail startup; they surface as
// warnings and, through Loader, as config fallback metrics.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ConfigLoadResult is the outcome of loading one value.
//
// Example:
//
//	result := LoadEnvDuration("SUMMARIZER_TIMEOUT", 30*time.Second, ValidatePositiveDuration)
//	if result.FallbackApplied {
//	    slog.Warn("configuration fallback", slog.Any("warnings", result.Warnings))
//	}
//	timeout := result.Value.(time.Duration)
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString returns the variable's value, or defaultValue when it is unset or empty.
func LoadEnvString(envKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnvWithFallback loads a string and checks it with validator.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	return loadEnv(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validator, "")
}

// LoadEnvDuration loads a time.ParseDuration value such as "30s" or "1h30m".
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	return loadEnv(envKey, defaultValue, time.ParseDuration, validator, "duration")
}

// LoadEnvInt loads a base-10 integer.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	return loadEnv(envKey, defaultValue, strconv.Atoi, validator, "integer")
}

// LoadEnvFloat loads a 64-bit float.
func LoadEnvFloat(envKey string, defaultValue float64, validator func(float64) error) ConfigLoadResult {
	parse := func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
	return loadEnv(envKey, defaultValue, parse, validator, "float")
}

// LoadEnvBool loads a strconv.ParseBool value ("1", "t", "true", "0", "f", "false", ...).
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	return loadEnv(envKey, defaultValue, strconv.ParseBool, nil, "boolean")
}

// LoadEnvStringList loads a comma-separated list. Items are trimmed and blank
// items dropped; a list with no items is rejected.
func LoadEnvStringList(envKey string, defaultValue []string, validator func(string) error) ConfigLoadResult {
	parse := func(s string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("empty list")
		}
		return out, nil
	}
	var each func([]string) error
	if validator != nil {
		each = func(items []string) error {
			for _, item := range items {
				if err := validator(item); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return loadEnv(envKey, defaultValue, parse, each, "list")
}

func loadEnv[T any](envKey string, defaultValue T, parse func(string) (T, error), validator func(T) error, kind string) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	fallback := func(reason string) ConfigLoadResult {
		return ConfigLoadResult{
			Value: defaultValue,
			Warnings: []string{fmt.Sprintf("Invalid %s='%s': %s, falling back to default '%v'",
				envKey, raw, reason, defaultValue)},
			FallbackApplied: true,
		}
	}

	value, err := parse(strings.TrimSpace(raw))
	if err != nil {
		return fallback(fmt.Sprintf("invalid %s format", kind))
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(err.Error())
		}
	}
	return ConfigLoadResult{Value: value}
}

// Loader loads a group of values and keeps every warning.
// Each fallback is logged and, when Metrics is set, counted per field.
type Loader struct {
	Metrics  *ConfigMetrics
	Warnings []string
}

// NewLoader returns a Loader reporting to m. m may be nil.
func NewLoader(m *ConfigMetrics) *Loader {
	return &Loader{Metrics: m}
}

// String loads a string; validator may be nil.
func (l *Loader) String(envKey, defaultValue string, validator func(string) error) string {
	if validator == nil {
		return LoadEnvString(envKey, defaultValue)
	}
	return l.record(envKey, LoadEnvWithFallback(envKey, defaultValue, validator)).(string)
}

// Int loads an integer; validator may be nil.
func (l *Loader) Int(envKey string, defaultValue int, validator func(int) error) int {
	return l.record(envKey, LoadEnvInt(envKey, defaultValue, validator)).(int)
}

// Float loads a float; validator may be nil.
func (l *Loader) Float(envKey string, defaultValue float64, validator func(float64) error) float64 {
	return l.record(envKey, LoadEnvFloat(envKey, defaultValue, validator)).(float64)
}

// Duration loads a duration; validator may be nil.
func (l *Loader) Duration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) time.Duration {
	return l.record(envKey, LoadEnvDuration(envKey, defaultValue, validator)).(time.Duration)
}

// Bool loads a boolean.
func (l *Loader) Bool(envKey string, defaultValue bool) bool {
	return l.record(envKey, LoadEnvBool(envKey, defaultValue)).(bool)
}

// StringList loads a comma-separated list; validator checks each item and may be nil.
func (l *Loader) StringList(envKey string, defaultValue []string, validator func(string) error) []string {
	return l.record(envKey, LoadEnvStringList(envKey, defaultValue, validator)).([]string)
}

// FallbackApplied reports whether any value so far fell back to its default.
func (l *Loader) FallbackApplied() bool {
	return len(l.Warnings) > 0
}

// Finish stamps the load time and publishes the fallback gauge.
func (l *Loader) Finish() {
	if l.Metrics == nil {
		return
	}
	l.Metrics.RecordLoadTimestamp()
	l.Metrics.SetFallbackActive(l.FallbackApplied())
}

func (l *Loader) record(envKey string, r ConfigLoadResult) interface{} {
	if !r.FallbackApplied {
		return r.Value
	}
	field := strings.ToLower(envKey)
	for _, w := range r.Warnings {
		slog.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", w))
	}
	l.Warnings = append(l.Warnings, r.Warnings...)
	if l.Metrics != nil {
		l.Metrics.RecordValidationError(field)
		l.Metrics.RecordFallback(field)
	}
	return r.Value
}
