package summarizer

import (
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// Provider names a hosted summarization backend.
type Provider string

const (
	ProviderGroq        Provider = "groq"
	ProviderOpenAI      Provider = "openai"
	ProviderClaude      Provider = "claude"
	ProviderGemini      Provider = "gemini"
	ProviderHuggingFace Provider = "huggingface"
)

// Providers lists every supported backend in selection order.
func Providers() []Provider {
	return []Provider{ProviderGroq, ProviderOpenAI, ProviderClaude, ProviderGemini, ProviderHuggingFace}
}

// ParseProvider validates a SUMMARIZER_TYPE value.
func ParseProvider(s string) (Provider, error) {
	for _, p := range Providers() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown summarizer type %q", s)
}

// Constrained reports whether the provider has a small input window.
// Callers use it to pick much lower chunking thresholds.
func (p Provider) Constrained() bool {
	return p == ProviderHuggingFace
}

const (
	groqBaseURL        = "https://api.groq.com/openai/v1"
	huggingFaceBaseURL = "https://api-inference.huggingface.co/models"

	defaultTimeout = 60 * time.Second
)

// Config holds the settings for one provider client.
type Config struct {
	// Provider selects the backend.
	Provider Provider

	// APIKey is the bearer credential. An empty key is not a construction error;
	// every call then fails with ConfigError.
	APIKey string

	// Model is the vendor model identifier.
	Model string

	// BaseURL overrides the vendor endpoint. Empty means the vendor default.
	BaseURL string

	// MaxInputRunes caps the text sent in a single call. Longer input is truncated.
	MaxInputRunes int

	// Timeout bounds a single call.
	Timeout time.Duration
}

// DefaultConfig returns the defaults for p without a credential.
func DefaultConfig(p Provider) Config {
	cfg := Config{
		Provider:      p,
		MaxInputRunes: 150000,
		Timeout:       defaultTimeout,
	}
	switch p {
	case ProviderGroq:
		cfg.Model = "openai/gpt-oss-120b"
		cfg.BaseURL = groqBaseURL
	case ProviderOpenAI:
		cfg.Model = "gpt-4o-mini"
	case ProviderClaude:
		cfg.Model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	case ProviderGemini:
		cfg.Model = "gemini-2.5-flash"
	case ProviderHuggingFace:
		cfg.Model = "facebook/bart-large-cnn"
		cfg.BaseURL = huggingFaceBaseURL
		cfg.MaxInputRunes = 4000
	}
	return cfg
}

// Validate checks everything except the credential.
func (c Config) Validate() error {
	if _, err := ParseProvider(string(c.Provider)); err != nil {
		return err
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxInputRunes <= 0 {
		return fmt.Errorf("max input runes must be positive, got %d", c.MaxInputRunes)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}
