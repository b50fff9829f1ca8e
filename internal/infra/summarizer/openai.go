package summarizer

import (
	"context"
	"errors"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"docscribe/internal/resilience/circuitbreaker"
)

// OpenAI summarizes through an OpenAI-compatible chat completions endpoint.
// It serves both the Groq and the OpenAI providers; only the base URL and model differ.
type OpenAI struct {
	client *openai.Client
	caller *caller
}

// NewOpenAI creates a chat completions summarizer for cfg.
func NewOpenAI(cfg Config) *OpenAI {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	slog.Info("Initialized chat completions summarizer",
		slog.String("provider", string(cfg.Provider)),
		slog.String("model", cfg.Model),
		slog.String("base_url", clientConfig.BaseURL))

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		caller: newCaller(cfg, circuitbreaker.New(circuitbreaker.ForProvider(string(cfg.Provider)))),
	}
}

// Summarize implements Summarizer.
// MaxLength becomes the max_tokens budget; temperature and top_p pass through.
func (o *OpenAI) Summarize(ctx context.Context, text string, opts Options) (string, error) {
	return o.caller.run(ctx, text, func(ctx context.Context, input string) (string, error) {
		resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: o.caller.model,
			Messages: []openai.ChatCompletionMessage{{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(input),
			}},
			MaxTokens:   opts.MaxLength,
			Temperature: float32(opts.Temperature),
			TopP:        float32(opts.TopP),
		})
		if err != nil {
			return "", o.classify(err)
		}
		if len(resp.Choices) == 0 {
			return "", errEmptyResponse
		}
		return resp.Choices[0].Message.Content, nil
	})
}

func (o *OpenAI) classify(err error) error {
	provider := string(o.caller.provider)

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return classifyStatus(provider, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return classifyStatus(provider, reqErr.HTTPStatusCode, err)
	}
	return classifyTransport(provider, err)
}
