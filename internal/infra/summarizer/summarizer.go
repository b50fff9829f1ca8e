// Package summarizer provides AI-powered text summarization clients.
// It includes adapters for Groq, OpenAI, Claude, Gemini and Hugging Face, each guarded
// by a circuit breaker, plus a deterministic extractive fallback.
// Clients never retry; failures are reported as ConfigError or UnavailableError.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"docscribe/internal/resilience/circuitbreaker"
	"docscribe/internal/utils/text"
)

// Summarizer is a hosted summarization capability.
type Summarizer interface {
	Summarize(ctx context.Context, text string, opts Options) (string, error)
}

const truncationMarker = "..."

// buildPrompt wraps text in the summarization instructions shared by the chat providers.
func buildPrompt(input string) string {
	return fmt.Sprintf(`You are an expert summarizer. Provide a concise, clear, and faithful summary of the following text.
Focus only on the core ideas, main events, and emotional tone.
Aim for 3-8 sentences maximum. Be brief but complete.
Do NOT add interpretation, external information, or unnecessary details.

Text:
%s

Summary:`, input)
}

// caller is the request pipeline shared by every provider:
// credential check, truncation, timeout, circuit breaker, classification, logging and metrics.
type caller struct {
	provider Provider
	apiKey   string
	model    string
	maxInput int
	timeout  time.Duration
	breaker  *circuitbreaker.CircuitBreaker
	metrics  SummaryMetricsRecorder
}

func newCaller(cfg Config, breaker *circuitbreaker.CircuitBreaker) *caller {
	return &caller{
		provider: cfg.Provider,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		model:    cfg.Model,
		maxInput: cfg.MaxInputRunes,
		timeout:  cfg.Timeout,
		breaker:  breaker,
		metrics:  NewPrometheusSummaryMetrics(),
	}
}

type vendorCall func(ctx context.Context, input string) (string, error)

func (c *caller) run(ctx context.Context, input string, call vendorCall) (string, error) {
	provider := string(c.provider)

	if c.apiKey == "" {
		c.metrics.RecordRequest(provider, outcomeConfigError)
		return "", &ConfigError{Provider: provider, Err: ErrMissingAPIKey}
	}

	requestID := uuid.New().String()
	inputLength := text.CountRunes(input)
	if inputLength > c.maxInput {
		input = text.Truncate(input, c.maxInput, truncationMarker)
		slog.WarnContext(ctx, "text truncated for summarizer",
			slog.String("request_id", requestID),
			slog.String("provider", provider),
			slog.Int("original_length", inputLength),
			slog.Int("truncated_length", c.maxInput))
	}

	slog.InfoContext(ctx, "Starting summarization",
		slog.String("request_id", requestID),
		slog.String("provider", provider),
		slog.String("model", c.model),
		slog.Int("input_length", text.CountRunes(input)))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	summary, err := circuitbreaker.Do(c.breaker, func() (string, error) {
		summary, err := call(ctx, input)
		if err != nil {
			return "", err
		}
		summary = strings.TrimSpace(summary)
		if summary == "" {
			return "", &UnavailableError{Provider: provider, Err: errEmptyResponse}
		}
		return summary, nil
	})
	duration := time.Since(start)

	if err != nil {
		err = classifyTransport(provider, err)
		outcome := outcomeUnavailable
		if IsConfigError(err) {
			outcome = outcomeConfigError
		}
		c.metrics.RecordRequest(provider, outcome)
		c.metrics.RecordDuration(duration)
		slog.ErrorContext(ctx, "Summarization failed",
			slog.String("request_id", requestID),
			slog.String("provider", provider),
			slog.String("breaker_state", c.breaker.State().String()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", err
	}

	summaryLength := text.CountRunes(summary)

	slog.InfoContext(ctx, "Summarization completed",
		slog.String("request_id", requestID),
		slog.String("provider", provider),
		slog.Int("summary_length", summaryLength),
		slog.Duration("duration", duration))

	c.metrics.RecordRequest(provider, outcomeSuccess)
	c.metrics.RecordLength(summaryLength)
	c.metrics.RecordDuration(duration)

	return summary, nil
}
