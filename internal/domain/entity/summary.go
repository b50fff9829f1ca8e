package entity

// Provenance tags which code path produced a summary.
type Provenance string

const (
	// ProvenancePrimary is a summary returned by a single direct call to the summarization capability.
	ProvenancePrimary Provenance = "primary"
	// ProvenanceFallback is a local extractive summary produced after the direct path failed.
	ProvenanceFallback Provenance = "fallback"
	// ProvenanceChunkedPrimary is a summary recombined from per-chunk summaries.
	ProvenanceChunkedPrimary Provenance = "chunked-primary"
	// ProvenanceChunkedFallback is a local extractive summary produced after the chunked path failed.
	ProvenanceChunkedFallback Provenance = "chunked-fallback"
)

// IsFallback reports whether p names one of the fallback paths.
func (p Provenance) IsFallback() bool {
	return p == ProvenanceFallback || p == ProvenanceChunkedFallback
}

// IsValid reports whether p is one of the four known provenance tags.
func (p Provenance) IsValid() bool {
	switch p {
	case ProvenancePrimary, ProvenanceFallback, ProvenanceChunkedPrimary, ProvenanceChunkedFallback:
		return true
	}
	return false
}

// SummaryResult is the outcome of summarizing one document.
type SummaryResult struct {
	Text       string
	Provenance Provenance
}

// IsFallback reports whether the summary came from the local fallback summarizer.
func (r SummaryResult) IsFallback() bool {
	return r.Provenance.IsFallback()
}

// RawInput is the immutable input received at request time.
type RawInput struct {
	Data      []byte
	MediaType MediaType
	Source    string
}
