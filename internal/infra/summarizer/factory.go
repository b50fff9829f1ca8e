package summarizer

import (
	"context"
	"fmt"
)

// New builds the client for cfg.Provider.
// A missing API key still yields a working client whose calls fail with ConfigError.
func New(ctx context.Context, cfg Config) (Summarizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid summarizer configuration: %w", err)
	}

	switch cfg.Provider {
	case ProviderGroq, ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderClaude:
		return NewClaude(cfg), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	case ProviderHuggingFace:
		return NewHuggingFace(cfg), nil
	default:
		return nil, fmt.Errorf("unknown summarizer type %q", cfg.Provider)
	}
}
