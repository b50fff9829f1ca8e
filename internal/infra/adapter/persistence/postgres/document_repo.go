package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"docscribe/internal/domain/entity"
	"docscribe/internal/observability/metrics"
	"docscribe/internal/repository"
	"docscribe/internal/resilience/circuitbreaker"
)

const documentColumns = `id, original_name, file_name, media_type, file_size, content, summary,
       provenance, is_processed, COALESCE(share_token, ''), storage_key, uploaded_at, updated_at`

type DocumentRepo struct{ db circuitbreaker.Querier }

// NewDocumentRepo returns a DocumentRepository backed by q.
// Pass a *circuitbreaker.DBCircuitBreaker in production and a *sql.DB in tests.
func NewDocumentRepo(q circuitbreaker.Querier) repository.DocumentRepository {
	return &DocumentRepo{db: q}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var doc entity.Document
	var mediaType, provenance string
	if err := row.Scan(
		&doc.ID, &doc.OriginalName, &doc.FileName, &mediaType, &doc.FileSize,
		&doc.Content, &doc.Summary, &provenance, &doc.IsProcessed,
		&doc.ShareToken, &doc.StorageKey, &doc.UploadedAt, &doc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	doc.MediaType = entity.MediaType(mediaType)
	doc.Provenance = entity.Provenance(provenance)
	return &doc, nil
}

func observe(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}

func (repo *DocumentRepo) Get(ctx context.Context, id int64) (*entity.Document, error) {
	defer observe("document_get", time.Now())
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1
LIMIT 1`
	doc, err := scanDocument(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return doc, nil
}

func (repo *DocumentRepo) GetByShareToken(ctx context.Context, token string) (*entity.Document, error) {
	defer observe("document_get_by_share_token", time.Now())
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE share_token = $1
LIMIT 1`
	doc, err := scanDocument(repo.db.QueryRowContext(ctx, query, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByShareToken: %w", err)
	}
	return doc, nil
}

func (repo *DocumentRepo) List(ctx context.Context) ([]*entity.Document, error) {
	defer observe("document_list", time.Now())
	query := `
SELECT ` + documentColumns + `
FROM documents
ORDER BY uploaded_at DESC, id DESC`
	docs, err := repo.queryDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return docs, nil
}

func (repo *DocumentRepo) ListProcessed(ctx context.Context, limit int) ([]*entity.Document, error) {
	defer observe("document_list_processed", time.Now())
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE is_processed = TRUE
AND summary <> ''
ORDER BY uploaded_at DESC, id DESC
LIMIT $1`
	docs, err := repo.queryDocuments(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListProcessed: %w", err)
	}
	return docs, nil
}

func (repo *DocumentRepo) ListPending(ctx context.Context, limit int) ([]*entity.Document, error) {
	defer observe("document_list_pending", time.Now())
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE is_processed = FALSE
AND btrim(content) <> ''
ORDER BY uploaded_at ASC, id ASC
LIMIT $1`
	docs, err := repo.queryDocuments(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListPending: %w", err)
	}
	return docs, nil
}

func (repo *DocumentRepo) Count(ctx context.Context) (int, error) {
	defer observe("document_count", time.Now())
	const query = `SELECT COUNT(*) FROM documents`
	var n int
	if err := repo.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

func (repo *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	defer observe("document_create", time.Now())
	const query = `
INSERT INTO documents (original_name, file_name, media_type, file_size, content, summary,
                       provenance, is_processed, share_token, storage_key, uploaded_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11, $12)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		doc.OriginalName, doc.FileName, string(doc.MediaType), doc.FileSize,
		doc.Content, doc.Summary, string(doc.Provenance), doc.IsProcessed,
		doc.ShareToken, doc.StorageKey, doc.UploadedAt, doc.UpdatedAt,
	).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *DocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	defer observe("document_update", time.Now())
	const query = `
UPDATE documents SET
       summary      = $1,
       provenance   = $2,
       is_processed = $3,
       share_token  = NULLIF($4, ''),
       storage_key  = $5,
       updated_at   = $6
WHERE id = $7`
	res, err := repo.db.ExecContext(ctx, query,
		doc.Summary, string(doc.Provenance), doc.IsProcessed,
		doc.ShareToken, doc.StorageKey, doc.UpdatedAt, doc.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *DocumentRepo) Delete(ctx context.Context, id int64) error {
	defer observe("document_delete", time.Now())
	const query = `DELETE FROM documents WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *DocumentRepo) queryDocuments(ctx context.Context, query string, args ...any) ([]*entity.Document, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]*entity.Document, 0, 50)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
