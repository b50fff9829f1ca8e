package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"docscribe/internal/domain/entity"
	"docscribe/internal/infra/adapter/persistence/postgres"
	"docscribe/internal/repository"
)

/* ──────────────────────────────── helpers ──────────────────────────────── */

var documentCols = []string{
	"id", "original_name", "file_name", "media_type", "file_size", "content", "summary",
	"provenance", "is_processed", "share_token", "storage_key", "uploaded_at", "updated_at",
}

func docRows(docs ...*entity.Document) *sqlmock.Rows {
	rows := sqlmock.NewRows(documentCols)
	for _, d := range docs {
		rows.AddRow(
			d.ID, d.OriginalName, d.FileName, string(d.MediaType), d.FileSize, d.Content, d.Summary,
			string(d.Provenance), d.IsProcessed, d.ShareToken, d.StorageKey, d.UploadedAt, d.UpdatedAt,
		)
	}
	return rows
}

func sampleDocument() *entity.Document {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &entity.Document{
		ID:           7,
		OriginalName: "report.pdf",
		FileName:     "3f1c.pdf",
		MediaType:    entity.MediaTypePDF,
		FileSize:     2048,
		Content:      "Quarterly revenue grew in every region.",
		Summary:      "Revenue grew.",
		Provenance:   entity.ProvenancePrimary,
		IsProcessed:  true,
		ShareToken:   "tok-123",
		StorageKey:   "documents/3f1c.pdf",
		UploadedAt:   at,
		UpdatedAt:    at,
	}
}

/* ──────────────────────────────── 1. Get ──────────────────────────────── */

func TestDocumentRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleDocument()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM documents`)).
		WithArgs(int64(7)).
		WillReturnRows(docRows(want))

	repo := postgres.NewDocumentRepo(db)
	got, err := repo.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDocumentRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM documents`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(documentCols))

	repo := postgres.NewDocumentRepo(db)
	got, err := repo.Get(context.Background(), 99)
	if err != nil || got != nil {
		t.Fatalf("Get got=%v err=%v, want nil nil", got, err)
	}
}

func TestDocumentRepo_GetByShareToken(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleDocument()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE share_token = $1`)).
		WithArgs("tok-123").
		WillReturnRows(docRows(want))

	repo := postgres.NewDocumentRepo(db)
	got, err := repo.GetByShareToken(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("GetByShareToken err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

/* ──────────────────────────────── 2. List ──────────────────────────────── */

func TestDocumentRepo_List(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	newer := sampleDocument()
	older := sampleDocument()
	older.ID = 3
	older.UploadedAt = newer.UploadedAt.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY uploaded_at DESC`)).
		WillReturnRows(docRows(newer, older))

	repo := postgres.NewDocumentRepo(db)
	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List err=%v", err)
	}
	if diff := cmp.Diff([]*entity.Document{newer, older}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentRepo_ListProcessedAndPending(t *testing.T) {
	tests := []struct {
		name  string
		match string
		call  func(repo repository.DocumentRepository) ([]*entity.Document, error)
	}{
		{
			name:  "processed",
			match: `WHERE is_processed = TRUE`,
			call: func(repo repository.DocumentRepository) ([]*entity.Document, error) {
				return repo.ListProcessed(context.Background(), 10)
			},
		},
		{
			name:  "pending",
			match: `WHERE is_processed = FALSE`,
			call: func(repo repository.DocumentRepository) ([]*entity.Document, error) {
				return repo.ListPending(context.Background(), 10)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, _ := sqlmock.New()
			defer func() { _ = db.Close() }()

			mock.ExpectQuery(regexp.QuoteMeta(tt.match)).
				WithArgs(int64(10)).
				WillReturnRows(docRows(sampleDocument()))

			got, err := tt.call(postgres.NewDocumentRepo(db))
			if err != nil || len(got) != 1 {
				t.Fatalf("err=%v len=%d", err, len(got))
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestDocumentRepo_Count(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM documents`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := postgres.NewDocumentRepo(db).Count(context.Background())
	if err != nil || n != 12 {
		t.Fatalf("Count n=%d err=%v", n, err)
	}
}

/* ──────────────────────────────── 3. Create ──────────────────────────────── */

func TestDocumentRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	doc := sampleDocument()
	doc.ID = 0
	doc.ShareToken = ""

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO documents`)).
		WithArgs(
			doc.OriginalName, doc.FileName, string(doc.MediaType), doc.FileSize,
			doc.Content, doc.Summary, string(doc.Provenance), doc.IsProcessed,
			"", doc.StorageKey, doc.UploadedAt, doc.UpdatedAt,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	repo := postgres.NewDocumentRepo(db)
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if doc.ID != 42 {
		t.Fatalf("Create did not set ID, got %d", doc.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 4. Update / Delete ──────────────────────────────── */

func TestDocumentRepo_Update(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	doc := sampleDocument()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET`)).
		WithArgs(doc.Summary, string(doc.Provenance), doc.IsProcessed,
			doc.ShareToken, doc.StorageKey, doc.UpdatedAt, doc.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := postgres.NewDocumentRepo(db).Update(context.Background(), doc); err != nil {
		t.Fatalf("Update err=%v", err)
	}
}

func TestDocumentRepo_Update_NoRows(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`UPDATE documents`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := postgres.NewDocumentRepo(db).Update(context.Background(), sampleDocument())
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("Update err=%v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  bool
	}{
		{"deleted", 1, false},
		{"missing", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, _ := sqlmock.New()
			defer func() { _ = db.Close() }()

			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE id = $1`)).
				WithArgs(int64(7)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := postgres.NewDocumentRepo(db).Delete(context.Background(), 7)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Delete err=%v wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestDocumentRepo_QueryError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	boom := errors.New("connection reset")
	mock.ExpectQuery(`FROM documents`).WillReturnError(boom)

	_, err := postgres.NewDocumentRepo(db).List(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("List err=%v, want wrapped %v", err, boom)
	}
}
