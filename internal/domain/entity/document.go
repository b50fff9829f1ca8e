// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Document and SummaryResult, along with
// their validation rules and domain-specific errors.
package entity

import (
	"strings"
	"time"
)

// PastedTextName is the original name recorded for documents created from pasted text.
const PastedTextName = "pasted-text.txt"

// Document represents an uploaded file or pasted text together with its
// extracted content and the summary produced for it.
type Document struct {
	ID           int64
	OriginalName string
	FileName     string
	MediaType    MediaType
	FileSize     int64
	Content      string
	Summary      string
	Provenance   Provenance
	IsProcessed  bool
	ShareToken   string
	StorageKey   string
	UploadedAt   time.Time
	UpdatedAt    time.Time
}

// ApplySummary records a summarization outcome on the document.
// A document counts as processed only when the summary did not come from the fallback path.
func (d *Document) ApplySummary(result SummaryResult, now time.Time) {
	d.Summary = result.Text
	d.Provenance = result.Provenance
	d.IsProcessed = !result.IsFallback()
	d.UpdatedAt = now
}

// HasContent reports whether the document carries any non-blank extracted text.
func (d *Document) HasContent() bool {
	return strings.TrimSpace(d.Content) != ""
}
