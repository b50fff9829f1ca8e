package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"docscribe/internal/resilience/circuitbreaker"
	"docscribe/internal/resilience/retry"
)

// HuggingFace summarizes through the Hugging Face inference API (BART by default).
// It is the only provider that receives every Options field.
type HuggingFace struct {
	httpClient *http.Client
	endpoint   string
	caller     *caller
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	MaxLength         int     `json:"max_length"`
	MinLength         int     `json:"min_length"`
	DoSample          bool    `json:"do_sample"`
	NumBeams          int     `json:"num_beams"`
	Temperature       float64 `json:"temperature"`
	TopK              int     `json:"top_k"`
	TopP              float64 `json:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	LengthPenalty     float64 `json:"length_penalty"`
	NoRepeatNgramSize int     `json:"no_repeat_ngram_size"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

const maxHFResponseBytes = 1 << 20

// NewHuggingFace creates a Hugging Face summarizer.
func NewHuggingFace(cfg Config) *HuggingFace {
	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/" + cfg.Model

	slog.Info("Initialized Hugging Face summarizer",
		slog.String("model", cfg.Model))

	return &HuggingFace{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   endpoint,
		caller:     newCaller(cfg, circuitbreaker.New(circuitbreaker.ForProvider(string(ProviderHuggingFace)))),
	}
}

// Summarize implements Summarizer.
func (h *HuggingFace) Summarize(ctx context.Context, text string, opts Options) (string, error) {
	return h.caller.run(ctx, text, func(ctx context.Context, input string) (string, error) {
		return h.doSummarize(ctx, input, opts)
	})
}

func (h *HuggingFace) doSummarize(ctx context.Context, input string, opts Options) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: input,
		Parameters: hfParameters{
			MaxLength:         opts.MaxLength,
			MinLength:         opts.MinLength,
			DoSample:          opts.DoSample,
			NumBeams:          opts.NumBeams,
			Temperature:       opts.Temperature,
			TopK:              opts.TopK,
			TopP:              opts.TopP,
			RepetitionPenalty: opts.RepetitionPenalty,
			LengthPenalty:     opts.LengthPenalty,
			NoRepeatNgramSize: opts.NoRepeatNgramSize,
		},
		Options: hfOptions{WaitForModel: false},
	})
	if err != nil {
		return "", fmt.Errorf("marshal huggingface request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create huggingface request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.caller.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", classifyTransport("huggingface", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxHFResponseBytes))
	if err != nil {
		return "", classifyTransport("huggingface", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", h.statusError(resp.StatusCode, resp.Header.Get("Retry-After"), raw)
	}

	var summaries []hfSummary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return "", &UnavailableError{Provider: "huggingface", Err: fmt.Errorf("malformed response: %w", err)}
	}
	if len(summaries) == 0 {
		return "", errEmptyResponse
	}
	return summaries[0].SummaryText, nil
}

// statusError converts a non-2xx answer. A 503 with estimated_time means the model is still loading.
func (h *HuggingFace) statusError(status int, retryAfterHeader string, raw []byte) error {
	var body hfError
	_ = json.Unmarshal(raw, &body)

	wait := retry.ParseRetryAfter(retryAfterHeader)
	message := body.Error
	if message == "" {
		message = http.StatusText(status)
	}
	if status == http.StatusServiceUnavailable && body.EstimatedTime > 0 {
		message = fmt.Sprintf("model loading, estimated %.0fs: %s", body.EstimatedTime, message)
		if wait == 0 {
			wait = time.Duration(body.EstimatedTime * float64(time.Second))
		}
	}
	return classifyStatus("huggingface", status, &retry.HTTPError{StatusCode: status, Message: message, RetryAfter: wait})
}
