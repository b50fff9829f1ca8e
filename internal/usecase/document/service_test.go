package document_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docscribe/internal/domain/entity"
	"docscribe/internal/infra/summarizer"
	"docscribe/internal/resilience/retry"
	docUC "docscribe/internal/usecase/document"
)

/* ───────── stubs ───────── */

// stubRepo is a minimal in-memory DocumentRepository.
type stubRepo struct {
	mu        sync.Mutex
	data      map[int64]*entity.Document
	nextID    int64
	err       error
	updateErr error
	creates   int

	// honorCtx makes writes fail on a done context, as a database driver does.
	honorCtx bool
}

func newStub() *stubRepo {
	return &stubRepo{data: map[int64]*entity.Document{}, nextID: 1}
}

func (s *stubRepo) put(d *entity.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == 0 {
		d.ID = s.nextID
	}
	if d.ID >= s.nextID {
		s.nextID = d.ID + 1
	}
	cp := *d
	s.data[d.ID] = &cp
}

func (s *stubRepo) Get(_ context.Context, id int64) (*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	d, ok := s.data[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *stubRepo) GetByShareToken(_ context.Context, token string) (*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, d := range s.data {
		if d.ShareToken == token {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) sorted(keep func(*entity.Document) bool) []*entity.Document {
	var out []*entity.Document
	for _, d := range s.data {
		if keep(d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *stubRepo) List(_ context.Context) ([]*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.sorted(func(*entity.Document) bool { return true }), nil
}

func (s *stubRepo) ListProcessed(_ context.Context, limit int) ([]*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sorted(func(d *entity.Document) bool { return d.IsProcessed && d.Summary != "" })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) ListPending(_ context.Context, limit int) ([]*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := s.sorted(func(d *entity.Document) bool { return !d.IsProcessed && d.HasContent() })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data), nil
}

func (s *stubRepo) Create(ctx context.Context, d *entity.Document) error {
	s.mu.Lock()
	s.creates++
	err := s.err
	if s.honorCtx && err == nil {
		err = ctx.Err()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.put(d)
	return nil
}

func (s *stubRepo) Update(ctx context.Context, d *entity.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	if s.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	if _, ok := s.data[d.ID]; !ok {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	cp := *d
	s.data[d.ID] = &cp
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	delete(s.data, id)
	return nil
}

type stubExtractor struct {
	text string
	err  error
	got  entity.RawInput
}

func (e *stubExtractor) Extract(_ context.Context, in entity.RawInput) (string, error) {
	e.got = in
	if e.err != nil {
		return "", e.err
	}
	if e.text != "" {
		return e.text, nil
	}
	return string(in.Data), nil
}

// stubSummarizer tags blank content as fallback and everything else with provenance.
type stubSummarizer struct {
	mu         sync.Mutex
	provenance entity.Provenance
	opts       []summarizer.Options
}

func (s *stubSummarizer) SummarizeDocument(_ context.Context, content string, opts summarizer.Options) entity.SummaryResult {
	s.mu.Lock()
	s.opts = append(s.opts, opts)
	s.mu.Unlock()
	if strings.TrimSpace(content) == "" {
		return entity.SummaryResult{Text: summarizer.NoContentSummary, Provenance: entity.ProvenanceFallback}
	}
	p := s.provenance
	if p == "" {
		p = entity.ProvenancePrimary
	}
	return entity.SummaryResult{Text: "summary of " + content, Provenance: p}
}

// waitingSummarizer blocks until its context ends, then falls back.
type waitingSummarizer struct {
	deadline time.Time
}

func (s *waitingSummarizer) SummarizeDocument(ctx context.Context, content string, _ summarizer.Options) entity.SummaryResult {
	s.deadline, _ = ctx.Deadline()
	<-ctx.Done()
	return entity.SummaryResult{Text: "fallback of " + content, Provenance: entity.ProvenanceFallback}
}

type stubStore struct {
	putErr  error
	puts    map[string]string
	deletes []string
}

func (s *stubStore) Key(name string) string { return "uploads/" + name }

func (s *stubStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	if s.puts == nil {
		s.puts = map[string]string{}
	}
	s.puts[key] = string(data)
	return nil
}

func (s *stubStore) Delete(_ context.Context, key string) error {
	s.deletes = append(s.deletes, key)
	return nil
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(repo *stubRepo, ex *stubExtractor, sum *stubSummarizer, store docUC.ObjectStore) *docUC.Service {
	svc := docUC.NewService(repo, ex, sum, store)
	svc.RetryConfig = retry.Config{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	svc.SetClock(func() time.Time { return fixedNow })
	svc.SetTokenGenerator(func() string { return "tok-1" })
	return svc
}

func intPtr(v int) *int { return &v }

/* ───────── UploadFile ───────── */

func TestService_UploadFile(t *testing.T) {
	repo := newStub()
	ex := &stubExtractor{}
	sum := &stubSummarizer{}
	store := &stubStore{}
	svc := newService(repo, ex, sum, store)

	doc, err := svc.UploadFile(context.Background(), docUC.UploadInput{
		Name:        "notes.txt",
		ContentType: "application/octet-stream",
		Data:        []byte("some notes"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), doc.ID)
	assert.Equal(t, "notes.txt", doc.OriginalName)
	assert.True(t, strings.HasSuffix(doc.FileName, ".txt"))
	assert.Equal(t, entity.MediaTypePlainText, doc.MediaType)
	assert.Equal(t, int64(10), doc.FileSize)
	assert.Equal(t, "summary of some notes", doc.Summary)
	assert.Equal(t, entity.ProvenancePrimary, doc.Provenance)
	assert.True(t, doc.IsProcessed)
	assert.Equal(t, fixedNow, doc.UploadedAt)
	assert.Equal(t, "uploads/"+doc.FileName, doc.StorageKey)
	assert.Equal(t, "some notes", store.puts[doc.StorageKey])
	assert.Equal(t, entity.MediaTypePlainText, ex.got.MediaType)
	require.Len(t, sum.opts, 1)
	assert.Equal(t, summarizer.DefaultOptions(), sum.opts[0])
}

func TestService_UploadFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		in      docUC.UploadInput
		wantErr error
		wantAs  any
	}{
		{
			name:   "missing name",
			in:     docUC.UploadInput{Name: " ", ContentType: "text/plain", Data: []byte("x")},
			wantAs: new(*entity.ValidationError),
		},
		{
			name:   "empty file",
			in:     docUC.UploadInput{Name: "a.txt", ContentType: "text/plain"},
			wantAs: new(*entity.ValidationError),
		},
		{
			name:   "too large",
			in:     docUC.UploadInput{Name: "a.txt", ContentType: "text/plain", Data: make([]byte, entity.MaxUploadBytes+1)},
			wantAs: new(*entity.ValidationError),
		},
		{
			name:    "unsupported type",
			in:      docUC.UploadInput{Name: "a.png", ContentType: "image/png", Data: []byte("x")},
			wantErr: entity.ErrUnsupportedFormat,
		},
		{
			name:   "invalid options",
			in:     docUC.UploadInput{Name: "a.txt", ContentType: "text/plain", Data: []byte("x"), Options: &summarizer.Overrides{MaxLength: intPtr(0)}},
			wantAs: new(*summarizer.OptionError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStub()
			svc := newService(repo, &stubExtractor{}, &stubSummarizer{}, nil)

			_, err := svc.UploadFile(context.Background(), tt.in)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantAs != nil {
				assert.ErrorAs(t, err, tt.wantAs)
			}
			assert.Zero(t, repo.creates)
		})
	}
}

func TestService_UploadFile_EmptyExtraction(t *testing.T) {
	repo := newStub()
	svc := newService(repo, &stubExtractor{text: "   "}, &stubSummarizer{}, nil)

	doc, err := svc.UploadFile(context.Background(), docUC.UploadInput{
		Name: "scan.pdf", ContentType: "application/pdf", Data: []byte("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, summarizer.NoContentSummary, doc.Summary)
	assert.Equal(t, entity.ProvenanceFallback, doc.Provenance)
	assert.False(t, doc.IsProcessed)
	assert.Empty(t, doc.StorageKey)
}

func TestService_UploadFile_ArchiveFailureIsNotFatal(t *testing.T) {
	repo := newStub()
	store := &stubStore{putErr: errors.New("bucket unavailable")}
	svc := newService(repo, &stubExtractor{}, &stubSummarizer{}, store)

	doc, err := svc.UploadFile(context.Background(), docUC.UploadInput{
		Name: "a.txt", ContentType: "text/plain", Data: []byte("hello"),
	})
	require.NoError(t, err)
	assert.Empty(t, doc.StorageKey)
	assert.Equal(t, 1, repo.creates)
}

func TestService_UploadFile_SaveFailureRemovesArchive(t *testing.T) {
	repo := newStub()
	repo.err = errors.New("db down")
	store := &stubStore{}
	svc := newService(repo, &stubExtractor{}, &stubSummarizer{}, store)

	_, err := svc.UploadFile(context.Background(), docUC.UploadInput{
		Name: "a.txt", ContentType: "text/plain", Data: []byte("hello"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create document")
	require.Len(t, store.deletes, 1)
	assert.True(t, strings.HasPrefix(store.deletes[0], "uploads/"))
}

/* ───────── UploadText ───────── */

func TestService_UploadText(t *testing.T) {
	repo := newStub()
	sum := &stubSummarizer{provenance: entity.ProvenanceChunkedFallback}
	svc := newService(repo, &stubExtractor{}, sum, nil)

	doc, err := svc.UploadText(context.Background(), "pasted body", &summarizer.Overrides{MaxLength: intPtr(200)})
	require.NoError(t, err)
	assert.Equal(t, entity.PastedTextName, doc.OriginalName)
	assert.Equal(t, entity.MediaTypePlainText, doc.MediaType)
	assert.Equal(t, "pasted body", doc.Content)
	assert.Equal(t, entity.ProvenanceChunkedFallback, doc.Provenance)
	assert.False(t, doc.IsProcessed)
	require.Len(t, sum.opts, 1)
	assert.Equal(t, 200, sum.opts[0].MaxLength)
	assert.Equal(t, 100, sum.opts[0].MinLength)

	_, err = svc.UploadText(context.Background(), " \n\t", nil)
	var ve *entity.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "text", ve.Field)
}

func TestService_UploadText_InvalidUTF8(t *testing.T) {
	repo := newStub()
	svc := newService(repo, &stubExtractor{}, &stubSummarizer{}, nil)

	doc, err := svc.UploadText(context.Background(), "caf\xe9\x00 au lait", nil)
	require.NoError(t, err)
	assert.Equal(t, "caf\uFFFD au lait", doc.Content)
	assert.Equal(t, int64(len("caf\xe9\x00 au lait")), doc.FileSize)

	_, err = svc.UploadText(context.Background(), "\x00\x00", nil)
	var ve *entity.ValidationError
	require.ErrorAs(t, err, &ve)
}

/* ───────── deadlines ───────── */

func TestService_UploadText_StoredWhenSummarizerUsesDeadline(t *testing.T) {
	repo := newStub()
	repo.honorCtx = true
	sum := &waitingSummarizer{}
	svc := newService(repo, &stubExtractor{}, nil, nil)
	svc.Summarizer = sum
	svc.SaveTimeout = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	deadline, _ := ctx.Deadline()

	doc, err := svc.UploadText(ctx, "a very long paste", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.ProvenanceFallback, doc.Provenance)
	assert.NotZero(t, doc.ID)

	n, _ := repo.Count(context.Background())
	assert.Equal(t, 1, n)
	assert.WithinDuration(t, deadline.Add(-20*time.Millisecond), sum.deadline, time.Millisecond)
}

func TestService_WritesSurviveCanceledRequest(t *testing.T) {
	repo := newStub()
	repo.honorCtx = true
	svc := newService(repo, &stubExtractor{}, nil, nil)
	svc.Summarizer = &waitingSummarizer{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc, err := svc.UploadText(ctx, "pasted body", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.ProvenanceFallback, doc.Provenance)

	again, err := svc.Resummarize(ctx, doc.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.ProvenanceFallback, again.Provenance)

	n, _ := repo.Count(context.Background())
	assert.Equal(t, 1, n)
}

/* ───────── Resummarize ───────── */

func TestService_Resummarize(t *testing.T) {
	tests := []struct {
		name     string
		seed     *entity.Document
		id       int64
		wantErr  error
		wantProc bool
	}{
		{
			name:     "fallback document becomes processed",
			seed:     &entity.Document{ID: 1, Content: "body", Summary: "old", Provenance: entity.ProvenanceFallback},
			id:       1,
			wantProc: true,
		},
		{
			name:    "missing document",
			id:      42,
			wantErr: docUC.ErrDocumentNotFound,
		},
		{
			name:    "invalid id",
			id:      0,
			wantErr: docUC.ErrInvalidDocumentID,
		},
		{
			name:    "blank content",
			seed:    &entity.Document{ID: 1, Content: "  "},
			id:      1,
			wantErr: docUC.ErrNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStub()
			if tt.seed != nil {
				repo.put(tt.seed)
			}
			svc := newService(repo, &stubExtractor{}, &stubSummarizer{}, nil)

			doc, err := svc.Resummarize(context.Background(), tt.id, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProc, doc.IsProcessed)
			assert.Equal(t, "summary of body", doc.Summary)

			stored, _ := repo.Get(context.Background(), tt.id)
			assert.Equal(t, entity.ProvenancePrimary, stored.Provenance)
			assert.Equal(t, fixedNow, stored.UpdatedAt)
		})
	}
}

/* ───────── reads ───────── */

func TestService_GetContent(t *testing.T) {
	repo := newStub()
	repo.put(&entity.Document{ID: 1, Content: "text"})
	repo.put(&entity.Document{ID: 2, Content: ""})
	svc := newService(repo, &stubExtractor{}, &stubSummarizer{}, nil)

	got, err := svc.GetContent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "text", got)

	_, err = svc.GetContent(context.Background(), 2)
	assert.ErrorIs(t, err, docUC.ErrNoContent)

	_, err = svc.GetContent(context.Background(), 3)
	assert.ErrorIs(t, err, docUC.ErrDocumentNotFound)
}

func TestService_Get_RepoError(t *testing.T) {
	repo := newStub()
	repo.err = errors.New("db down")
	svc := newService(repo, &stubExtractor{}, &stubSummarizer{}, nil)

	_, err := svc.Get(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, docUC.ErrDocumentNotFound)
	assert.Contains(t, err.Error(), "get document")
}

func TestService_ListAndHistory(t *testing.T) {
	repo := newStub()
	for i := int64(1); i <= 5; i++ {
		repo.put(&entity.Document{ID: i, Content: "c", Summary: "s", IsProcessed: i%2 == 1})
	}
	svc := newService(repo, &stubExtractor{}, &stubSummarizer{}, nil)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, int64(5), all[0].ID)

	tests := []struct {
		limit int
		want  []int64
	}{
		{limit: 0, want: []int64{5, 3, 1}},
		{limit: 2, want: []int64{5, 3}},
		{limit: 1000, want: []int64{5, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit=%d", tt.limit), func(t *testing.T) {
			docs, err := svc.History(context.Background(), tt.limit)
			require.NoError(t, err)
			var ids []int64
			for _, d := range docs {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

/* ───────── Delete ───────── */

func TestService_Delete(t *testing.T) {
	repo := newStub()
	repo.put(&entity.Document{ID: 1, StorageKey: "uploads/a.pdf"})
	store := &stubStore{}
	svc := newService(repo, &stubExtractor{}, &stubSummarizer{}, store)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, []string{"uploads/a.pdf"}, store.deletes)

	n, _ := repo.Count(context.Background())
	assert.Zero(t, n)

	assert.ErrorIs(t, svc.Delete(context.Background(), 1), docUC.ErrDocumentNotFound)
}

/* ───────── sharing ───────── */

func TestService_Share(t *testing.T) {
	repo := newStub()
	repo.put(&entity.Document{ID: 1, Summary: "s"})
	repo.put(&entity.Document{ID: 2, Summary: "s", ShareToken: "existing"})
	svc := newService(repo, &stubExtractor{}, &stubSummarizer{}, nil)

	tok, err := svc.Share(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	again, err := svc.Share(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "existing", again)

	doc, err := svc.GetShared(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.ID)

	_, err = svc.GetShared(context.Background(), "nope")
	assert.ErrorIs(t, err, docUC.ErrDocumentNotFound)
	_, err = svc.GetShared(context.Background(), "  ")
	assert.ErrorIs(t, err, docUC.ErrDocumentNotFound)

	_, err = svc.Share(context.Background(), 9)
	assert.ErrorIs(t, err, docUC.ErrDocumentNotFound)
}

/* ───────── ReprocessPending ───────── */

func TestService_ReprocessPending(t *testing.T) {
	repo := newStub()
	repo.put(&entity.Document{ID: 1, Content: "a", Provenance: entity.ProvenanceFallback})
	repo.put(&entity.Document{ID: 2, Content: "b", Provenance: entity.ProvenanceChunkedFallback})
	repo.put(&entity.Document{ID: 3, Content: "", Provenance: entity.ProvenanceFallback})
	repo.put(&entity.Document{ID: 4, Content: "d", IsProcessed: true, Provenance: entity.ProvenancePrimary})
	svc := newService(repo, &stubExtractor{}, &stubSummarizer{}, nil)
	svc.Parallelism = 2

	stats, err := svc.ReprocessPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, docUC.ReprocessStats{Scanned: 2, Processed: 2}, stats)

	for _, id := range []int64{1, 2} {
		d, _ := repo.Get(context.Background(), id)
		assert.True(t, d.IsProcessed, "document %d", id)
		assert.Equal(t, entity.ProvenancePrimary, d.Provenance)
	}
	untouched, _ := repo.Get(context.Background(), 3)
	assert.False(t, untouched.IsProcessed)
}

func TestService_ReprocessPending_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		provenance entity.Provenance
		updateErr  error
		want       docUC.ReprocessStats
	}{
		{
			name:       "still falling back",
			provenance: entity.ProvenanceFallback,
			want:       docUC.ReprocessStats{Scanned: 2, Fallback: 2},
		},
		{
			name:      "save fails",
			updateErr: errors.New("db down"),
			want:      docUC.ReprocessStats{Scanned: 2, Failed: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStub()
			repo.put(&entity.Document{ID: 1, Content: "a"})
			repo.put(&entity.Document{ID: 2, Content: "b"})
			repo.updateErr = tt.updateErr
			svc := newService(repo, &stubExtractor{}, &stubSummarizer{provenance: tt.provenance}, nil)

			stats, err := svc.ReprocessPending(context.Background(), 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stats)
		})
	}
}

func TestService_ReprocessPending_ListError(t *testing.T) {
	repo := newStub()
	repo.err = errors.New("db down")
	svc := newService(repo, &stubExtractor{}, &stubSummarizer{}, nil)

	_, err := svc.ReprocessPending(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list pending documents")
}
