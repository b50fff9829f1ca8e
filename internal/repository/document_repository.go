package repository

import (
	"context"

	"docscribe/internal/domain/entity"
)

// DocumentRepository persists documents and their summaries.
// Lookups return (nil, nil) when no row matches.
type DocumentRepository interface {
	Get(ctx context.Context, id int64) (*entity.Document, error)
	GetByShareToken(ctx context.Context, token string) (*entity.Document, error)
	List(ctx context.Context) ([]*entity.Document, error)
	ListProcessed(ctx context.Context, limit int) ([]*entity.Document, error)
	ListPending(ctx context.Context, limit int) ([]*entity.Document, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, id int64) error
}
