package document_test

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"docscribe/internal/domain/entity"
	"docscribe/internal/handler/http/document"
	"docscribe/internal/infra/summarizer"
	docUC "docscribe/internal/usecase/document"
)

/* ───────── stubs ───────── */

type memRepo struct {
	mu     sync.Mutex
	docs   map[int64]*entity.Document
	nextID int64
	err    error
}

func newMemRepo(seed ...*entity.Document) *memRepo {
	r := &memRepo{docs: map[int64]*entity.Document{}, nextID: 1}
	for _, d := range seed {
		cp := *d
		r.docs[d.ID] = &cp
		if d.ID >= r.nextID {
			r.nextID = d.ID + 1
		}
	}
	return r
}

func (r *memRepo) Get(_ context.Context, id int64) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if d, ok := r.docs[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepo) GetByShareToken(_ context.Context, token string) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.ShareToken == token {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) filter(keep func(*entity.Document) bool, limit int) []*entity.Document {
	out := []*entity.Document{}
	for _, d := range r.docs {
		if keep(d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *memRepo) List(_ context.Context) ([]*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.filter(func(*entity.Document) bool { return true }, 0), nil
}

func (r *memRepo) ListProcessed(_ context.Context, limit int) ([]*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(d *entity.Document) bool { return d.IsProcessed && d.Summary != "" }, limit), nil
}

func (r *memRepo) ListPending(_ context.Context, limit int) ([]*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(d *entity.Document) bool { return !d.IsProcessed && d.HasContent() }, limit), nil
}

func (r *memRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs), nil
}

func (r *memRepo) Create(_ context.Context, d *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	d.ID = r.nextID
	r.nextID++
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}

func (r *memRepo) Update(_ context.Context, d *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[d.ID]; !ok {
		return fmt.Errorf("update document %d: %w", d.ID, entity.ErrNotFound)
	}
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return fmt.Errorf("delete document %d: %w", id, entity.ErrNotFound)
	}
	delete(r.docs, id)
	return nil
}

// echoExtractor returns the upload bytes as text.
type echoExtractor struct{}

func (echoExtractor) Extract(_ context.Context, in entity.RawInput) (string, error) {
	if !in.MediaType.IsSupported() {
		return "", &entity.UnsupportedFormatError{MediaType: in.MediaType}
	}
	return string(in.Data), nil
}

// prefixSummarizer summarizes by prefixing the content. Blank content
// takes the fallback path, as the orchestrator does.
type prefixSummarizer struct {
	mu   sync.Mutex
	last summarizer.Options
}

func (s *prefixSummarizer) SummarizeDocument(_ context.Context, content string, opts summarizer.Options) entity.SummaryResult {
	s.mu.Lock()
	s.last = opts
	s.mu.Unlock()
	if strings.TrimSpace(content) == "" {
		return entity.SummaryResult{Text: "No content available to summarize.", Provenance: entity.ProvenanceFallback}
	}
	return entity.SummaryResult{Text: "summary: " + content, Provenance: entity.ProvenancePrimary}
}

func (s *prefixSummarizer) lastOptions() summarizer.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	repo *memRepo
	sum  *prefixSummarizer
	svc  *docUC.Service
	mux  *http.ServeMux
}

func newFixture(seed ...*entity.Document) *fixture {
	repo := newMemRepo(seed...)
	sum := &prefixSummarizer{}
	svc := docUC.NewService(repo, echoExtractor{}, sum, nil)
	svc.SetClock(func() time.Time { return fixedNow })
	svc.SetTokenGenerator(func() string { return "tok-123" })

	mux := http.NewServeMux()
	document.Register(mux, svc, nil)
	return &fixture{repo: repo, sum: sum, svc: svc, mux: mux}
}
