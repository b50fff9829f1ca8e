// Package extractor turns uploaded bytes into plain text.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"code.sajari.com/docconv"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"docscribe/internal/domain/entity"
	"docscribe/internal/observability/metrics"
	"docscribe/internal/observability/tracing"
	"docscribe/internal/utils/text"
)

// ConvertFunc converts a document body of the given MIME type to text.
type ConvertFunc func(data []byte, mediaType string) (string, error)

// DocconvExtractor extracts text with docconv. Plain text is decoded as UTF-8,
// with invalid sequences replaced and NUL bytes dropped.
type DocconvExtractor struct {
	convert ConvertFunc
	logger  *slog.Logger
}

// NewDocconvExtractor returns an extractor backed by docconv.Convert.
func NewDocconvExtractor(logger *slog.Logger) *DocconvExtractor {
	return NewWithConverter(convertWithDocconv, logger)
}

// NewWithConverter returns an extractor that delegates binary formats to convert.
func NewWithConverter(convert ConvertFunc, logger *slog.Logger) *DocconvExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocconvExtractor{convert: convert, logger: logger}
}

func convertWithDocconv(data []byte, mediaType string) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), mediaType, false)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

// Extract returns the text of in. The only error is *entity.UnsupportedFormatError;
// a document that cannot be parsed yields "" so the caller can store it as empty.
func (e *DocconvExtractor) Extract(ctx context.Context, in entity.RawInput) (string, error) {
	if !in.MediaType.IsSupported() {
		return "", &entity.UnsupportedFormatError{MediaType: in.MediaType}
	}

	ctx, span := tracing.StartSpan(ctx, "extract.document",
		attribute.String("media_type", string(in.MediaType)),
		attribute.Int("bytes", len(in.Data)))
	defer span.End()

	if in.MediaType == entity.MediaTypePlainText {
		content := text.Sanitize(string(in.Data))
		metrics.RecordExtraction(string(in.MediaType), text.CountRunes(content), true)
		return content, nil
	}

	raw, err := e.convertCtx(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		e.logger.WarnContext(ctx, "text extraction failed",
			slog.String("media_type", string(in.MediaType)),
			slog.String("source", in.Source),
			slog.Int("bytes", len(in.Data)),
			slog.Any("error", err))
		metrics.RecordExtraction(string(in.MediaType), 0, false)
		return "", nil
	}

	content := text.Sanitize(raw)
	chars := text.CountRunes(content)
	span.SetAttributes(attribute.Int("characters", chars))
	metrics.RecordExtraction(string(in.MediaType), chars, true)
	return content, nil
}

// convertCtx runs the converter in its own goroutine so a cancelled request
// stops waiting on external tools such as pdftotext.
func (e *DocconvExtractor) convertCtx(ctx context.Context, in entity.RawInput) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("converter panic: %v", r)}
			}
		}()
		t, err := e.convert(in.Data, string(in.MediaType))
		done <- result{text: t, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
