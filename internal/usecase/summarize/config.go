package summarize

import (
	"fmt"
	"time"
)

// Config holds the orchestrator tunables. Lengths are in runes.
type Config struct {
	// LongTextThreshold is the largest text summarized with a single direct call.
	LongTextThreshold int

	// ChunkSize is the maximum chunk length on the chunked path.
	ChunkSize int

	// LookBack is how far the chunker searches backward for a natural break.
	LookBack int

	// CondenseThreshold is the joined chunk summary length above which one condense call is made.
	CondenseThreshold int

	// ChunkTimeout bounds each chunk call and the condense call.
	ChunkTimeout time.Duration

	// PaceInterval is the minimum spacing between provider calls on the chunked path.
	PaceInterval time.Duration

	// MaxConcurrent bounds the number of documents summarized at once.
	MaxConcurrent int
}

// DefaultConfig returns tunables for large-context providers.
func DefaultConfig() Config {
	return Config{
		LongTextThreshold: 150000,
		ChunkSize:         40000,
		LookBack:          500,
		CondenseThreshold: 2000,
		ChunkTimeout:      60 * time.Second,
		PaceInterval:      1500 * time.Millisecond,
		MaxConcurrent:     4,
	}
}

// ConstrainedConfig returns tunables for providers with a small input window such as BART.
func ConstrainedConfig() Config {
	cfg := DefaultConfig()
	cfg.LongTextThreshold = 4000
	cfg.ChunkSize = 3500
	cfg.LookBack = 300
	return cfg
}

// Validate checks that the tunables are consistent.
func (c Config) Validate() error {
	if c.LongTextThreshold <= 0 {
		return fmt.Errorf("long text threshold must be positive, got %d", c.LongTextThreshold)
	}
	if c.ChunkSize <= 0 || c.ChunkSize > c.LongTextThreshold {
		return fmt.Errorf("chunk size must be between 1 and the long text threshold (%d), got %d",
			c.LongTextThreshold, c.ChunkSize)
	}
	if c.LookBack < 0 || c.LookBack >= c.ChunkSize {
		return fmt.Errorf("look back must be between 0 and chunk size, got %d", c.LookBack)
	}
	if c.CondenseThreshold <= 0 {
		return fmt.Errorf("condense threshold must be positive, got %d", c.CondenseThreshold)
	}
	if c.ChunkTimeout <= 0 {
		return fmt.Errorf("chunk timeout must be positive, got %v", c.ChunkTimeout)
	}
	if c.PaceInterval < 0 {
		return fmt.Errorf("pace interval must not be negative, got %v", c.PaceInterval)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max concurrent must be positive, got %d", c.MaxConcurrent)
	}
	return nil
}
