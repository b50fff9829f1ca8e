package summarizer

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"docscribe/internal/resilience/circuitbreaker"
)

// Claude implements Summarizer using Anthropic's Messages API.
type Claude struct {
	client anthropic.Client
	caller *caller
}

// NewClaude creates a Claude summarizer. SDK-level retries are disabled.
func NewClaude(cfg Config) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("Initialized Claude summarizer",
		slog.String("model", cfg.Model))

	return &Claude{
		client: anthropic.NewClient(opts...),
		caller: newCaller(cfg, circuitbreaker.New(circuitbreaker.ForProvider(string(ProviderClaude)))),
	}
}

// Summarize implements Summarizer.
// Newer Claude models reject temperature and top_p together, so only temperature and top_k are sent.
func (c *Claude) Summarize(ctx context.Context, text string, opts Options) (string, error) {
	return c.caller.run(ctx, text, func(ctx context.Context, input string) (string, error) {
		message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.caller.model),
			MaxTokens: int64(opts.MaxLength),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(input))),
			},
			Temperature: anthropic.Float(min(opts.Temperature, 1.0)),
			TopK:        anthropic.Int(int64(opts.TopK)),
		})
		if err != nil {
			var apiErr *anthropic.Error
			if errors.As(err, &apiErr) {
				return "", classifyStatus("claude", apiErr.StatusCode, err)
			}
			return "", classifyTransport("claude", err)
		}

		var b strings.Builder
		for _, block := range message.Content {
			if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
				b.WriteString(textBlock.Text)
			}
		}
		return b.String(), nil
	})
}
