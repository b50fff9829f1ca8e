// Package summarize orchestrates document summarization.
// It chooses between a direct call and the chunked path, paces provider calls,
// bounds how many documents are summarized at once, and degrades to the local
// extractive summarizer whenever the provider cannot produce a summary.
package summarize

import "errors"

// Sentinel errors for summarization orchestration.
var (
	// ErrEmptySummary indicates that the provider returned a blank summary.
	ErrEmptySummary = errors.New("provider returned an empty summary")

	// ErrNoChunkSummaries indicates that every chunk on the chunked path failed.
	ErrNoChunkSummaries = errors.New("no chunk produced a summary")
)
