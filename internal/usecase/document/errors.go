// Package document provides the use cases behind the document API:
// uploading files and pasted text, re-summarizing, sharing, history and
// the background reprocessing of documents whose summary came from the fallback path.
package document

import "errors"

// Sentinel errors for document use case operations.
var (
	// ErrDocumentNotFound indicates that the requested document does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidDocumentID indicates that the provided document ID is not positive.
	ErrInvalidDocumentID = errors.New("invalid document ID")

	// ErrNoContent indicates that the document has no extracted text to work with.
	ErrNoContent = errors.New("no content to summarize")
)
