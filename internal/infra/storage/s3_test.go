package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docscribe/internal/resilience/retry"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        string
}

// fakeS3 answers path-style S3 requests with a fixed status and records them.
type fakeS3 struct {
	status int
	hits   atomic.Int32

	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		Body:        string(body),
	})
	f.mu.Unlock()

	if f.status >= 400 {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
		return
	}
	w.Header().Set("ETag", `"etag"`)
	w.WriteHeader(f.status)
}

func newTestStore(t *testing.T, status int) (*S3Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{status: status}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewS3Store(context.Background(), Config{
		Bucket:          "uploads",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Prefix:          "docs",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	return store, fake
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrBucketNotConfigured)
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{Bucket: "b"}.Enabled())
}

func TestS3Store_Key(t *testing.T) {
	store := &S3Store{prefix: "docs"}
	assert.Equal(t, "docs/abc.pdf", store.Key("abc.pdf"))

	store.prefix = ""
	assert.Equal(t, "abc.pdf", store.Key("abc.pdf"))
}

func TestS3Store_Put(t *testing.T) {
	store, fake := newTestStore(t, http.StatusOK)

	err := store.Put(context.Background(), store.Key("abc.txt"), []byte("hello"), "text/plain")
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	got := fake.requests[0]
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/uploads/docs/abc.txt", got.Path)
	assert.Equal(t, "text/plain", got.ContentType)
	assert.Contains(t, got.Body, "hello")
}

func TestS3Store_Delete(t *testing.T) {
	store, fake := newTestStore(t, http.StatusNoContent)

	require.NoError(t, store.Delete(context.Background(), "docs/abc.txt"))

	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodDelete, fake.requests[0].Method)
	assert.Equal(t, "/uploads/docs/abc.txt", fake.requests[0].Path)
}

func TestS3Store_PermanentErrorIsNotRetried(t *testing.T) {
	store, fake := newTestStore(t, http.StatusForbidden)

	err := store.Put(context.Background(), "docs/abc.txt", []byte("hello"), "text/plain")
	require.Error(t, err)

	var httpErr *retry.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.False(t, retry.IsRetryable(err))
	assert.Equal(t, int32(1), fake.hits.Load())
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, classify(plain))
}
