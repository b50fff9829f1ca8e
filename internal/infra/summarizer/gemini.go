package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"docscribe/internal/resilience/circuitbreaker"
)

// Gemini implements Summarizer using the Google Gen AI API.
type Gemini struct {
	client *genai.Client
	caller *caller
}

// NewGemini creates a Gemini summarizer.
// With an empty API key no client is built and every call fails with ConfigError.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	g := &Gemini{
		caller: newCaller(cfg, circuitbreaker.New(circuitbreaker.ForProvider(string(ProviderGemini)))),
	}
	if g.caller.apiKey == "" {
		slog.Warn("Gemini summarizer has no API key; calls will fail until GEMINI_API_KEY is set")
		return g, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client

	slog.Info("Initialized Gemini summarizer",
		slog.String("model", cfg.Model))

	return g, nil
}

// Summarize implements Summarizer.
func (g *Gemini) Summarize(ctx context.Context, text string, opts Options) (string, error) {
	return g.caller.run(ctx, text, func(ctx context.Context, input string) (string, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.caller.model, genai.Text(buildPrompt(input)),
			&genai.GenerateContentConfig{
				Temperature:     genai.Ptr(float32(opts.Temperature)),
				TopP:            genai.Ptr(float32(opts.TopP)),
				TopK:            genai.Ptr(float32(opts.TopK)),
				MaxOutputTokens: int32(opts.MaxLength),
			})
		if err != nil {
			return "", classifyGemini(err)
		}
		return resp.Text(), nil
	})
}

func classifyGemini(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus("gemini", apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return classifyStatus("gemini", apiErrPtr.Code, err)
	}
	return classifyTransport("gemini", err)
}
