package metrics

import (
	"time"
)

// RecordDocumentUploaded records an accepted upload.
// Source is "file" for multipart uploads and "text" for pasted text.
func RecordDocumentUploaded(source, mediaType string) {
	DocumentsUploadedTotal.WithLabelValues(source, mediaType).Inc()
}

// RecordDocumentSummarized records the outcome of summarizing one document.
func RecordDocumentSummarized(provenance string, duration time.Duration) {
	DocumentsSummarizedTotal.WithLabelValues(provenance).Inc()
	SummarizationDuration.WithLabelValues(provenance).Observe(duration.Seconds())
}

// RecordChunk records the result of a single chunk summarization.
// Result should be one of "success", "failure" or "empty".
func RecordChunk(result string) {
	ChunksProcessedTotal.WithLabelValues(result).Inc()
}

// RecordExtraction records the length of extracted text, or a failure when ok is false.
func RecordExtraction(mediaType string, characters int, ok bool) {
	if !ok {
		ExtractionFailuresTotal.WithLabelValues(mediaType).Inc()
		return
	}
	ExtractedTextSize.Observe(float64(characters))
}

// AddSummarizationWaiting adjusts the number of documents waiting for a slot.
func AddSummarizationWaiting(delta int) {
	SummarizationQueueWaiting.Add(float64(delta))
}

// UpdateDocumentsTotal updates the total count of documents in the database.
func UpdateDocumentsTotal(count int) {
	DocumentsTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_documents", "insert_document").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
