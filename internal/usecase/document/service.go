package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docscribe/internal/domain/entity"
	"docscribe/internal/infra/summarizer"
	"docscribe/internal/observability/metrics"
	"docscribe/internal/repository"
	"docscribe/internal/resilience/retry"
	"docscribe/internal/utils/text"
)

const (
	// DefaultHistoryLimit is used when History is called without a positive limit.
	DefaultHistoryLimit = 20
	// MaxHistoryLimit caps the number of documents History returns.
	MaxHistoryLimit = 100

	defaultReprocessParallelism = 2
	defaultSaveTimeout          = 10 * time.Second
)

// TextExtractor turns raw uploaded bytes into text.
type TextExtractor interface {
	Extract(ctx context.Context, in entity.RawInput) (string, error)
}

// DocumentSummarizer produces a tagged summary for extracted text. It never fails.
type DocumentSummarizer interface {
	SummarizeDocument(ctx context.Context, content string, opts summarizer.Options) entity.SummaryResult
}

// ObjectStore archives raw uploads.
type ObjectStore interface {
	Key(fileName string) string
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// UploadInput is a file received from a client.
type UploadInput struct {
	Name        string
	ContentType string
	Data        []byte
	Options     *summarizer.Overrides
}

// ReprocessStats reports the outcome of one ReprocessPending run.
type ReprocessStats struct {
	Scanned   int
	Processed int
	Fallback  int
	Failed    int
}

// Service provides document management use cases.
// Storage is optional; when nil, raw uploads are not archived.
type Service struct {
	Repo        repository.DocumentRepository
	Extractor   TextExtractor
	Summarizer  DocumentSummarizer
	Storage     ObjectStore
	Defaults    summarizer.Options
	RetryConfig retry.Config
	Parallelism int

	// SaveTimeout bounds each repository write that follows summarization.
	// It is reserved out of the caller's deadline, and the write itself is
	// detached from the caller's cancellation.
	SaveTimeout time.Duration

	now      func() time.Time
	newToken func() string
}

// NewService wires a Service with the default summary options and database retry policy.
func NewService(repo repository.DocumentRepository, ex TextExtractor, sum DocumentSummarizer, store ObjectStore) *Service {
	return &Service{
		Repo:        repo,
		Extractor:   ex,
		Summarizer:  sum,
		Storage:     store,
		Defaults:    summarizer.DefaultOptions(),
		RetryConfig: retry.DBConfig(),
		Parallelism: defaultReprocessParallelism,
		SaveTimeout: defaultSaveTimeout,
	}
}

// SetClock replaces the clock used to stamp documents.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetTokenGenerator replaces the share token generator.
func (s *Service) SetTokenGenerator(gen func() string) { s.newToken = gen }

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *Service) token() string {
	if s.newToken != nil {
		return s.newToken()
	}
	return uuid.NewString()
}

func (s *Service) saveTimeout() time.Duration {
	if s.SaveTimeout > 0 {
		return s.SaveTimeout
	}
	return defaultSaveTimeout
}

// summarizeContext ends SaveTimeout before the caller's deadline, so a
// summarizer that runs to its limit still leaves time to store the result.
func (s *Service) summarizeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(ctx, deadline.Add(-s.saveTimeout()))
	}
	return context.WithCancel(ctx)
}

// persistContext keeps ctx values but not its cancellation.
func (s *Service) persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout())
}

func (s *Service) summarize(ctx context.Context, content string, opts summarizer.Options) entity.SummaryResult {
	sumCtx, cancel := s.summarizeContext(ctx)
	defer cancel()
	return s.Summarizer.SummarizeDocument(sumCtx, content, opts)
}

// options merges ov over the service defaults and validates the result.
func (s *Service) options(ov *summarizer.Overrides) (summarizer.Options, error) {
	opts := s.Defaults.Merge(ov)
	if err := opts.Validate(); err != nil {
		return summarizer.Options{}, err
	}
	return opts, nil
}

// UploadFile validates, extracts, summarizes and stores an uploaded file.
func (s *Service) UploadFile(ctx context.Context, in UploadInput) (*entity.Document, error) {
	mediaType := entity.ResolveMediaType(in.ContentType, in.Name)
	if err := entity.ValidateUpload(in.Name, int64(len(in.Data)), mediaType); err != nil {
		return nil, err
	}
	opts, err := s.options(in.Options)
	if err != nil {
		return nil, err
	}

	content, err := s.Extractor.Extract(ctx, entity.RawInput{Data: in.Data, MediaType: mediaType, Source: in.Name})
	if err != nil {
		return nil, err
	}

	doc := &entity.Document{
		OriginalName: in.Name,
		FileName:     uuid.NewString() + mediaType.Extension(),
		MediaType:    mediaType,
		FileSize:     int64(len(in.Data)),
		Content:      content,
	}
	s.archive(ctx, doc, in.Data)

	if err := s.summarizeAndCreate(ctx, doc, opts); err != nil {
		s.removeArchive(ctx, doc)
		return nil, err
	}
	metrics.RecordDocumentUploaded("file", string(mediaType))
	return doc, nil
}

// UploadText summarizes and stores pasted text.
// Invalid UTF-8 is replaced and NUL bytes are dropped before validation.
func (s *Service) UploadText(ctx context.Context, content string, ov *summarizer.Overrides) (*entity.Document, error) {
	size := len(content)
	content = text.Sanitize(content)
	if strings.TrimSpace(content) == "" {
		return nil, &entity.ValidationError{Field: "text", Message: "text is required"}
	}
	if size > entity.MaxUploadBytes {
		return nil, &entity.ValidationError{
			Field:   "text",
			Message: fmt.Sprintf("text must be at most %d bytes", entity.MaxUploadBytes),
		}
	}
	opts, err := s.options(ov)
	if err != nil {
		return nil, err
	}

	doc := &entity.Document{
		OriginalName: entity.PastedTextName,
		FileName:     uuid.NewString() + entity.MediaTypePlainText.Extension(),
		MediaType:    entity.MediaTypePlainText,
		FileSize:     int64(size),
		Content:      content,
	}
	if err := s.summarizeAndCreate(ctx, doc, opts); err != nil {
		return nil, err
	}
	metrics.RecordDocumentUploaded("text", string(entity.MediaTypePlainText))
	return doc, nil
}

func (s *Service) summarizeAndCreate(ctx context.Context, doc *entity.Document, opts summarizer.Options) error {
	result := s.summarize(ctx, doc.Content, opts)
	now := s.clock()
	doc.UploadedAt = now
	doc.ApplySummary(result, now)

	saveCtx, cancel := s.persistContext(ctx)
	defer cancel()
	err := retry.WithBackoff(saveCtx, s.RetryConfig, func() error {
		return s.Repo.Create(saveCtx, doc)
	})
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	slog.InfoContext(ctx, "document stored",
		slog.Int64("document_id", doc.ID),
		slog.String("media_type", string(doc.MediaType)),
		slog.String("provenance", string(doc.Provenance)),
		slog.Bool("is_processed", doc.IsProcessed))
	s.refreshTotal(saveCtx)
	return nil
}

// archive stores the raw bytes when object storage is configured.
// A failed upload only loses the archive copy, so the document is still saved.
func (s *Service) archive(ctx context.Context, doc *entity.Document, data []byte) {
	if s.Storage == nil {
		return
	}
	key := s.Storage.Key(doc.FileName)
	if err := s.Storage.Put(ctx, key, data, string(doc.MediaType)); err != nil {
		slog.WarnContext(ctx, "failed to archive upload",
			slog.String("file_name", doc.FileName),
			slog.Any("error", err))
		return
	}
	doc.StorageKey = key
}

func (s *Service) removeArchive(ctx context.Context, doc *entity.Document) {
	if doc.StorageKey == "" || s.Storage == nil {
		return
	}
	delCtx, cancel := s.persistContext(ctx)
	defer cancel()
	if err := s.Storage.Delete(delCtx, doc.StorageKey); err != nil {
		slog.WarnContext(ctx, "failed to remove archived upload",
			slog.Int64("document_id", doc.ID),
			slog.String("storage_key", doc.StorageKey),
			slog.Any("error", err))
	}
}

// Resummarize runs summarization again over a stored document's content.
func (s *Service) Resummarize(ctx context.Context, id int64, ov *summarizer.Overrides) (*entity.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.HasContent() {
		return nil, ErrNoContent
	}
	opts, err := s.options(ov)
	if err != nil {
		return nil, err
	}

	result := s.summarize(ctx, doc.Content, opts)
	doc.ApplySummary(result, s.clock())
	if err := s.update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) update(ctx context.Context, doc *entity.Document) error {
	saveCtx, cancel := s.persistContext(ctx)
	defer cancel()
	err := retry.WithBackoff(saveCtx, s.RetryConfig, func() error {
		return s.Repo.Update(saveCtx, doc)
	})
	if errors.Is(err, entity.ErrNotFound) {
		return ErrDocumentNotFound
	}
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// Get retrieves a single document by its ID.
// Returns ErrInvalidDocumentID if the ID is not positive.
// Returns ErrDocumentNotFound if the document does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Document, error) {
	if id <= 0 {
		return nil, ErrInvalidDocumentID
	}
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// GetContent returns the extracted text of a document, or ErrNoContent when it is blank.
func (s *Service) GetContent(ctx context.Context, id int64) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !doc.HasContent() {
		return "", ErrNoContent
	}
	return doc.Content, nil
}

// List returns every document, newest first.
func (s *Service) List(ctx context.Context) ([]*entity.Document, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// History returns processed documents, newest first.
// A non-positive limit means DefaultHistoryLimit; larger values are capped at MaxHistoryLimit.
func (s *Service) History(ctx context.Context, limit int) ([]*entity.Document, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	docs, err := s.Repo.ListProcessed(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list processed documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document and its archived upload.
func (s *Service) Delete(ctx context.Context, id int64) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = retry.WithBackoff(ctx, s.RetryConfig, func() error {
		return s.Repo.Delete(ctx, id)
	})
	if errors.Is(err, entity.ErrNotFound) {
		return ErrDocumentNotFound
	}
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	s.removeArchive(ctx, doc)
	s.refreshTotal(ctx)
	return nil
}

// Share returns the document's share token, assigning one on first use.
func (s *Service) Share(ctx context.Context, id int64) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.ShareToken != "" {
		return doc.ShareToken, nil
	}

	doc.ShareToken = s.token()
	doc.UpdatedAt = s.clock()
	if err := s.update(ctx, doc); err != nil {
		return "", err
	}
	return doc.ShareToken, nil
}

// GetShared looks a document up by its share token.
func (s *Service) GetShared(ctx context.Context, token string) (*entity.Document, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrDocumentNotFound
	}
	doc, err := s.Repo.GetByShareToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get shared document: %w", err)
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// ReprocessPending re-summarizes up to limit documents that are not processed
// but still have content. A document that fails to save is counted and skipped.
func (s *Service) ReprocessPending(ctx context.Context, limit int) (ReprocessStats, error) {
	docs, err := s.Repo.ListPending(ctx, limit)
	if err != nil {
		return ReprocessStats{}, fmt.Errorf("list pending documents: %w", err)
	}

	var processed, fallback, failed atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(s.Parallelism, 1))

	for _, doc := range docs {
		eg.Go(func() error {
			if egCtx.Err() != nil {
				failed.Add(1)
				return nil
			}
			result := s.summarize(egCtx, doc.Content, s.Defaults)
			doc.ApplySummary(result, s.clock())
			if err := s.update(egCtx, doc); err != nil {
				failed.Add(1)
				slog.WarnContext(egCtx, "failed to save reprocessed document",
					slog.Int64("document_id", doc.ID),
					slog.Any("error", err))
				return nil
			}
			if doc.IsProcessed {
				processed.Add(1)
			} else {
				fallback.Add(1)
			}
			return nil
		})
	}
	_ = eg.Wait()

	stats := ReprocessStats{
		Scanned:   len(docs),
		Processed: int(processed.Load()),
		Fallback:  int(fallback.Load()),
		Failed:    int(failed.Load()),
	}
	slog.InfoContext(ctx, "reprocess run finished",
		slog.Int("scanned", stats.Scanned),
		slog.Int("processed", stats.Processed),
		slog.Int("fallback", stats.Fallback),
		slog.Int("failed", stats.Failed))

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// refreshTotal updates the documents gauge. Failures only leave the gauge stale.
func (s *Service) refreshTotal(ctx context.Context) {
	count, err := s.Repo.Count(ctx)
	if err != nil {
		slog.DebugContext(ctx, "failed to count documents", slog.Any("error", err))
		return
	}
	metrics.UpdateDocumentsTotal(count)
}
