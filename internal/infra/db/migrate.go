package db

import (
	"database/sql"
)

// MigrateUp creates the documents table and its indexes. It is idempotent.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    id            BIGSERIAL PRIMARY KEY,
    original_name TEXT NOT NULL,
    file_name     TEXT NOT NULL,
    media_type    VARCHAR(120) NOT NULL,
    file_size     BIGINT NOT NULL DEFAULT 0,
    content       TEXT NOT NULL DEFAULT '',
    summary       TEXT NOT NULL DEFAULT '',
    provenance    VARCHAR(20) NOT NULL DEFAULT 'fallback',
    is_processed  BOOLEAN NOT NULL DEFAULT FALSE,
    share_token   VARCHAR(64) UNIQUE,
    storage_key   TEXT NOT NULL DEFAULT '',
    uploaded_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// List and History order by upload time.
		`CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents(uploaded_at DESC)`,
		// The worker scans unprocessed documents.
		`CREATE INDEX IF NOT EXISTS idx_documents_pending ON documents(uploaded_at) WHERE is_processed = FALSE`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// Constraint syntax is PostgreSQL specific; an existing constraint is not an error.
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_documents_provenance'
    ) THEN
        ALTER TABLE documents ADD CONSTRAINT chk_documents_provenance
        CHECK (provenance IN ('primary', 'fallback', 'chunked-primary', 'chunked-fallback'));
    END IF;
END $$;
`)

	return nil
}

// MigrateDown drops the documents table and every index on it.
// All stored documents are lost.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP INDEX IF EXISTS idx_documents_pending`,
		`DROP INDEX IF EXISTS idx_documents_uploaded_at`,
		`DROP TABLE IF EXISTS documents CASCADE`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
