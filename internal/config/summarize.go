// Package config assembles the application configuration of the docscribe
// binaries from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"docscribe/internal/infra/summarizer"
	pkgconfig "docscribe/internal/pkg/config"
	"docscribe/internal/usecase/summarize"
)

// apiKeyEnv maps each provider to the variable holding its credential.
var apiKeyEnv = map[summarizer.Provider]string{
	summarizer.ProviderGroq:        "GROQ_API_KEY",
	summarizer.ProviderOpenAI:      "OPENAI_API_KEY",
	summarizer.ProviderClaude:      "ANTHROPIC_API_KEY",
	summarizer.ProviderGemini:      "GEMINI_API_KEY",
	summarizer.ProviderHuggingFace: "HF_API_KEY",
}

// APIKeyEnv returns the environment variable read for p's credential.
func APIKeyEnv(p summarizer.Provider) string {
	return apiKeyEnv[p]
}

// SummarizeConfig holds the provider client settings and the orchestrator tunables.
type SummarizeConfig struct {
	Client       summarizer.Config
	Orchestrator summarize.Config
}

// LoadSummarizeConfig reads the summarization settings.
//
// SUMMARIZER_TYPE selects the provider (groq by default). The credential comes
// from the provider's own variable; a missing key is reported but does not fail,
// since every call then falls back to the extractive summary. Providers with a
// small input window start from the constrained orchestrator tunables.
// Invalid values fall back to their defaults; only an inconsistent result is an error.
func LoadSummarizeConfig(m *pkgconfig.ConfigMetrics) (*SummarizeConfig, error) {
	l := pkgconfig.NewLoader(m)

	names := make([]string, 0, len(summarizer.Providers()))
	for _, p := range summarizer.Providers() {
		names = append(names, string(p))
	}
	providerName := l.String("SUMMARIZER_TYPE", string(summarizer.ProviderGroq), pkgconfig.ValidateOneOf(names...))
	provider, err := summarizer.ParseProvider(strings.ToLower(strings.TrimSpace(providerName)))
	if err != nil {
		return nil, err
	}

	client := summarizer.DefaultConfig(provider)
	client.APIKey = strings.TrimSpace(pkgconfig.LoadEnvString(APIKeyEnv(provider), ""))
	client.Model = l.String("SUMMARIZER_MODEL", client.Model, nil)
	client.BaseURL = l.String("SUMMARIZER_BASE_URL", client.BaseURL, pkgconfig.ValidateHTTPURL)
	client.Timeout = l.Duration("SUMMARIZER_TIMEOUT", client.Timeout, validCallTimeout)
	client.MaxInputRunes = l.Int("SUMMARIZER_MAX_INPUT_RUNES", client.MaxInputRunes, pkgconfig.ValidatePositiveInt)

	orch := summarize.DefaultConfig()
	if provider.Constrained() {
		orch = summarize.ConstrainedConfig()
	}
	orch.LongTextThreshold = l.Int("SUMMARIZE_LONG_TEXT_THRESHOLD", orch.LongTextThreshold, pkgconfig.ValidatePositiveInt)
	orch.ChunkSize = l.Int("SUMMARIZE_CHUNK_SIZE", orch.ChunkSize, pkgconfig.ValidatePositiveInt)
	orch.LookBack = l.Int("SUMMARIZE_LOOKBACK", orch.LookBack, validNonNegative)
	orch.CondenseThreshold = l.Int("SUMMARIZE_CONDENSE_THRESHOLD", orch.CondenseThreshold, pkgconfig.ValidatePositiveInt)
	orch.ChunkTimeout = l.Duration("SUMMARIZE_CHUNK_TIMEOUT", orch.ChunkTimeout, validCallTimeout)
	orch.PaceInterval = l.Duration("SUMMARIZE_PACE_INTERVAL", orch.PaceInterval, validPace)
	orch.MaxConcurrent = l.Int("SUMMARIZE_MAX_CONCURRENT", orch.MaxConcurrent, validConcurrency)
	l.Finish()

	cfg := &SummarizeConfig{Client: client, Orchestrator: orch}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the client settings and the orchestrator tunables.
func (c *SummarizeConfig) Validate() error {
	if err := c.Client.Validate(); err != nil {
		return fmt.Errorf("invalid summarizer configuration: %w", err)
	}
	if err := c.Orchestrator.Validate(); err != nil {
		return fmt.Errorf("invalid orchestrator configuration: %w", err)
	}
	return nil
}

// HasAPIKey reports whether a credential is configured for the selected provider.
func (c *SummarizeConfig) HasAPIKey() bool {
	return c.Client.APIKey != ""
}

func validNonNegative(v int) error {
	if v < 0 {
		return fmt.Errorf("value must not be negative, got %d", v)
	}
	return nil
}

func validConcurrency(v int) error { return pkgconfig.ValidateIntRange(v, 1, 64) }

func validCallTimeout(d time.Duration) error {
	return pkgconfig.ValidateDuration(d, time.Second, 10*time.Minute)
}

func validPace(d time.Duration) error {
	return pkgconfig.ValidateDuration(d, 0, time.Minute)
}
