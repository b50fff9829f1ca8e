package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDocumentUploaded(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		mediaType string
	}{
		{name: "pdf file", source: "file", mediaType: "application/pdf"},
		{name: "pasted text", source: "text", mediaType: "text/plain"},
		{name: "empty labels", source: "", mediaType: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(DocumentsUploadedTotal.WithLabelValues(tt.source, tt.mediaType))

			RecordDocumentUploaded(tt.source, tt.mediaType)

			after := testutil.ToFloat64(DocumentsUploadedTotal.WithLabelValues(tt.source, tt.mediaType))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestRecordDocumentSummarized(t *testing.T) {
	for _, provenance := range []string{"primary", "fallback", "chunked-primary", "chunked-fallback"} {
		t.Run(provenance, func(t *testing.T) {
			before := testutil.ToFloat64(DocumentsSummarizedTotal.WithLabelValues(provenance))

			RecordDocumentSummarized(provenance, 250*time.Millisecond)

			assert.Equal(t, before+1, testutil.ToFloat64(DocumentsSummarizedTotal.WithLabelValues(provenance)))
		})
	}
}

func TestRecordChunk(t *testing.T) {
	before := testutil.ToFloat64(ChunksProcessedTotal.WithLabelValues("failure"))

	RecordChunk("failure")
	RecordChunk("failure")

	assert.Equal(t, before+2, testutil.ToFloat64(ChunksProcessedTotal.WithLabelValues("failure")))
}

func TestRecordExtraction(t *testing.T) {
	before := testutil.ToFloat64(ExtractionFailuresTotal.WithLabelValues("application/pdf"))

	RecordExtraction("application/pdf", 0, false)
	assert.NotPanics(t, func() {
		RecordExtraction("application/pdf", 12000, true)
	})

	assert.Equal(t, before+1, testutil.ToFloat64(ExtractionFailuresTotal.WithLabelValues("application/pdf")))
}

func TestAddSummarizationWaiting(t *testing.T) {
	before := testutil.ToFloat64(SummarizationQueueWaiting)

	AddSummarizationWaiting(1)
	assert.Equal(t, before+1, testutil.ToFloat64(SummarizationQueueWaiting))

	AddSummarizationWaiting(-1)
	assert.Equal(t, before, testutil.ToFloat64(SummarizationQueueWaiting))
}

func TestUpdateDocumentsTotal(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{name: "zero documents", count: 0},
		{name: "some documents", count: 42},
		{name: "many documents", count: 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			UpdateDocumentsTotal(tt.count)
			assert.Equal(t, float64(tt.count), testutil.ToFloat64(DocumentsTotal))
		})
	}
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		duration  time.Duration
	}{
		{name: "select", operation: "select_documents", duration: 5 * time.Millisecond},
		{name: "insert", operation: "insert_document", duration: 10 * time.Millisecond},
		{name: "zero duration", operation: "delete_document", duration: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordDBQuery(tt.operation, tt.duration)
			})
		})
	}
}

func TestUpdateDBConnectionStats(t *testing.T) {
	UpdateDBConnectionStats(3, 7)

	assert.Equal(t, 3.0, testutil.ToFloat64(DBConnectionsActive))
	assert.Equal(t, 7.0, testutil.ToFloat64(DBConnectionsIdle))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/documents", "201"))

	RecordHTTPRequest("POST", "/documents", "201", 30*time.Millisecond, 2048, 512)

	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/documents", "201")))
}
