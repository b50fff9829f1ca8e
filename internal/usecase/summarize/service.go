package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docscribe/internal/domain/entity"
	"docscribe/internal/infra/summarizer"
	"docscribe/internal/observability/metrics"
	"docscribe/internal/observability/slo"
	"docscribe/internal/observability/tracing"
	"docscribe/internal/utils/text"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/semaphore"
)

// CondensePrompt prefixes the joined chunk summaries on the condense call.
const CondensePrompt = "Combine and condense these summaries into one concise overall summary (3-8 sentences):\n\n"

const chunkSeparator = "\n\n"

// Chunk outcome labels recorded in metrics.
const (
	chunkSuccess = "success"
	chunkFailure = "failure"
	chunkEmpty   = "empty"
)

// Service turns extracted text into a SummaryResult.
// SummarizeDocument never fails: every provider error degrades to the fallback summarizer.
type Service struct {
	Client   summarizer.Summarizer
	Fallback summarizer.Fallback
	Pacer    Pacer
	cfg      Config
	sem      *semaphore.Weighted
}

// NewService creates a summarization Service.
//
// Parameters:
//   - client: Provider-backed summarizer used for direct, chunk and condense calls
//   - fallback: Local summarizer used whenever the provider path fails (nil selects the extractive summarizer)
//   - pacer: Spacing between provider calls on the chunked path (nil builds one from cfg.PaceInterval)
//   - cfg: Thresholds, timeouts and the document concurrency bound
//
// Example:
//
//	svc := summarize.NewService(client, summarizer.NewExtractive(), nil, summarize.DefaultConfig())
//	result := svc.SummarizeDocument(ctx, content, summarizer.DefaultOptions())
func NewService(client summarizer.Summarizer, fallback summarizer.Fallback, pacer Pacer, cfg Config) *Service {
	if fallback == nil {
		fallback = summarizer.NewExtractive()
	}
	if pacer == nil {
		pacer = NewRatePacer(cfg.PaceInterval)
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Service{
		Client:   client,
		Fallback: fallback,
		Pacer:    pacer,
		cfg:      cfg,
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Config returns the tunables the service was built with.
func (s *Service) Config() Config {
	return s.cfg
}

// SummarizeDocument summarizes content with the given options.
//
// Text up to LongTextThreshold runes is summarized with one direct call. Longer
// text is split into chunks, each chunk is summarized with halved length options,
// and the joined chunk summaries are condensed once more when they exceed
// CondenseThreshold. Failed chunks are skipped. When the provider path yields
// nothing the fallback summarizer runs on the original text and the result is
// tagged fallback or chunked-fallback accordingly.
func (s *Service) SummarizeDocument(ctx context.Context, content string, opts summarizer.Options) (result entity.SummaryResult) {
	start := time.Now()
	length := text.CountRunes(content)

	ctx, span := tracing.StartSpan(ctx, "summarize.document",
		attribute.Int("text.length", length),
	)
	defer span.End()
	defer func() {
		span.SetAttributes(
			attribute.String("summary.provenance", string(result.Provenance)),
			attribute.Int("summary.length", text.CountRunes(result.Text)),
		)
		elapsed := time.Since(start)
		metrics.RecordDocumentSummarized(string(result.Provenance), elapsed)
		if strings.TrimSpace(content) != "" {
			slo.ObserveSummary(result.IsFallback(), elapsed)
		}
	}()

	if strings.TrimSpace(content) == "" {
		slog.WarnContext(ctx, "no text to summarize, using fallback")
		return s.fallback(content, entity.ProvenanceFallback)
	}

	metrics.AddSummarizationWaiting(1)
	err := s.sem.Acquire(ctx, 1)
	metrics.AddSummarizationWaiting(-1)
	if err != nil {
		slog.WarnContext(ctx, "summarization cancelled while waiting for a slot",
			slog.Any("error", err))
		span.RecordError(err)
		return s.fallback(content, entity.ProvenanceFallback)
	}
	defer s.sem.Release(1)

	chunked := length > s.cfg.LongTextThreshold
	span.SetAttributes(attribute.Bool("summary.chunked", chunked))

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "summarization panicked, using fallback",
				slog.Any("panic", r),
				slog.Bool("chunked", chunked))
			span.SetStatus(codes.Error, fmt.Sprint(r))
			tag := entity.ProvenanceFallback
			if chunked {
				tag = entity.ProvenanceChunkedFallback
			}
			result = s.fallback(content, tag)
		}
	}()

	if chunked {
		return s.summarizeChunked(ctx, content, opts)
	}
	return s.summarizeDirect(ctx, content, opts)
}

func (s *Service) summarizeDirect(ctx context.Context, content string, opts summarizer.Options) entity.SummaryResult {
	summary, err := s.call(ctx, content, opts)
	if err != nil {
		slog.WarnContext(ctx, "direct summarization failed, using fallback",
			slog.Any("error", err),
			slog.Bool("config_error", summarizer.IsConfigError(err)))
		return s.fallback(content, entity.ProvenanceFallback)
	}
	return entity.SummaryResult{Text: summary, Provenance: entity.ProvenancePrimary}
}

func (s *Service) summarizeChunked(ctx context.Context, content string, opts summarizer.Options) entity.SummaryResult {
	chunks := text.SplitWithLookBack(content, s.cfg.ChunkSize, s.cfg.LookBack)
	chunkOpts := opts.ForChunk()

	slog.InfoContext(ctx, "summarizing long document in chunks",
		slog.Int("chunks", len(chunks)),
		slog.Int("chunk_size", s.cfg.ChunkSize))

	summaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if err := s.Pacer.Wait(ctx); err != nil {
			slog.WarnContext(ctx, "chunked summarization interrupted",
				slog.Int("chunk", i+1),
				slog.Any("error", err))
			break
		}

		summary, err := s.summarizeChunk(ctx, i, len(chunks), chunk, chunkOpts)
		if err != nil {
			continue
		}
		summaries = append(summaries, summary)
	}

	if len(summaries) == 0 {
		slog.WarnContext(ctx, "chunked summarization failed, using fallback",
			slog.Any("error", ErrNoChunkSummaries),
			slog.Int("chunks", len(chunks)))
		return s.fallback(content, entity.ProvenanceChunkedFallback)
	}

	combined := strings.Join(summaries, chunkSeparator)
	if text.CountRunes(combined) <= s.cfg.CondenseThreshold {
		return entity.SummaryResult{Text: combined, Provenance: entity.ProvenanceChunkedPrimary}
	}

	condensed, err := s.condense(ctx, combined, opts)
	if err != nil {
		slog.WarnContext(ctx, "condensing chunk summaries failed, using fallback",
			slog.Any("error", err),
			slog.Int("chunk_summaries", len(summaries)))
		return s.fallback(content, entity.ProvenanceChunkedFallback)
	}
	return entity.SummaryResult{Text: condensed, Provenance: entity.ProvenanceChunkedPrimary}
}

func (s *Service) summarizeChunk(ctx context.Context, index, total int, chunk string, opts summarizer.Options) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "summarize.chunk",
		attribute.Int("chunk.index", index),
		attribute.Int("chunk.length", text.CountRunes(chunk)),
	)
	defer span.End()

	chunkCtx, cancel := context.WithTimeout(ctx, s.cfg.ChunkTimeout)
	defer cancel()

	summary, err := s.call(chunkCtx, chunk, opts)
	if err != nil {
		result := chunkFailure
		if errors.Is(err, ErrEmptySummary) {
			result = chunkEmpty
		}
		metrics.RecordChunk(result)
		span.RecordError(err)
		slog.WarnContext(ctx, "chunk summarization failed, skipping chunk",
			slog.Int("chunk", index+1),
			slog.Int("total", total),
			slog.Any("error", err))
		return "", err
	}

	metrics.RecordChunk(chunkSuccess)
	return summary, nil
}

func (s *Service) condense(ctx context.Context, combined string, opts summarizer.Options) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "summarize.condense",
		attribute.Int("input.length", text.CountRunes(combined)),
	)
	defer span.End()

	if err := s.Pacer.Wait(ctx); err != nil {
		span.RecordError(err)
		return "", err
	}

	condenseCtx, cancel := context.WithTimeout(ctx, s.cfg.ChunkTimeout)
	defer cancel()

	summary, err := s.call(condenseCtx, CondensePrompt+combined, opts)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return summary, nil
}

// call invokes the provider and treats a blank summary as a failure.
func (s *Service) call(ctx context.Context, input string, opts summarizer.Options) (string, error) {
	summary, err := s.Client.Summarize(ctx, input, opts)
	if err != nil {
		return "", err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", ErrEmptySummary
	}
	return summary, nil
}

func (s *Service) fallback(content string, tag entity.Provenance) entity.SummaryResult {
	return entity.SummaryResult{Text: s.Fallback.Summarize(content), Provenance: tag}
}
