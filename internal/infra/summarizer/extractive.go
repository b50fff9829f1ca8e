package summarizer

import (
	"regexp"
	"strings"

	"docscribe/internal/utils/text"
)

const (
	// NoContentSummary is returned for empty or whitespace-only input.
	NoContentSummary = "No content available to summarize."
	// TooShortSummary is returned when no sentence is long enough to keep.
	TooShortSummary = "Document content is too short to generate a meaningful summary."

	minSentenceRunes  = 20
	maxFallbackRunes  = 500
	fallbackEllipsis  = "..."
	directSentenceMax = 3
)

var sentenceTerminators = regexp.MustCompile(`[.!?]+`)

// Fallback is a local summarizer that always produces a result.
type Fallback interface {
	Summarize(text string) string
}

// Extractive is the default Fallback. It picks sentences from the source instead of generating new ones.
type Extractive struct{}

// NewExtractive returns the extractive fallback summarizer.
func NewExtractive() Extractive {
	return Extractive{}
}

// Summarize implements Fallback.
//
// Sentences of 20 runes or fewer are dropped. Up to three remaining sentences are
// returned verbatim; longer inputs keep the first two and the last, separated by an
// ellipsis. The result never exceeds 500 runes plus the "..." marker.
func (Extractive) Summarize(input string) string {
	clean := text.CollapseWhitespace(input)
	if clean == "" {
		return NoContentSummary
	}

	var sentences []string
	for _, s := range sentenceTerminators.Split(clean, -1) {
		s = strings.TrimSpace(s)
		if text.CountRunes(s) > minSentenceRunes {
			sentences = append(sentences, s)
		}
	}

	var summary string
	switch {
	case len(sentences) == 0:
		return TooShortSummary
	case len(sentences) <= directSentenceMax:
		summary = strings.Join(sentences, ". ") + "."
	default:
		summary = strings.Join(sentences[:2], ". ") + ". ... " + sentences[len(sentences)-1] + "."
	}

	return text.Truncate(summary, maxFallbackRunes, fallbackEllipsis)
}
