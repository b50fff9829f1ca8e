// Package metrics declares the Prometheus collectors of the document pipeline
// and small Record helpers around them. Collectors register with the default
// registry at init, so importing the package is enough for /metrics to expose them.
//
//	start := time.Now()
//	result := svc.SummarizeDocument(ctx, content, opts)
//	metrics.RecordDocumentSummarized(string(result.Provenance), time.Since(start))
package metrics
