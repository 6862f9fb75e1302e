package translations

import (
	"context"

	"github.com/google/uuid"
)

// PageTranslationRepository stores one row per (page, locale). Rows are
// keyed by a deterministic id so Upsert needs no lookup.
type PageTranslationRepository interface {
	Upsert(ctx context.Context, translation *PageTranslation) (*PageTranslation, error)
	Get(ctx context.Context, pageID uuid.UUID, locale string) (*PageTranslation, error)
	ListByPage(ctx context.Context, pageID uuid.UUID) ([]*PageTranslation, error)
	// FindBySlug matches localized slugs. A blank locale searches all locales.
	FindBySlug(ctx context.Context, slug, locale string) ([]*PageTranslation, error)
	Delete(ctx context.Context, pageID uuid.UUID, locale string) error
	DeleteByPage(ctx context.Context, pageID uuid.UUID) error
}

// BlockTranslationRepository stores one row per (block, locale).
type BlockTranslationRepository interface {
	Upsert(ctx context.Context, translation *BlockTranslation) (*BlockTranslation, error)
	// UpsertMany writes every row or none.
	UpsertMany(ctx context.Context, translations []*BlockTranslation) ([]*BlockTranslation, error)
	Get(ctx context.Context, blockID uuid.UUID, locale string) (*BlockTranslation, error)
	ListByBlock(ctx context.Context, blockID uuid.UUID) ([]*BlockTranslation, error)
	ListByBlocks(ctx context.Context, blockIDs []uuid.UUID, locale string) ([]*BlockTranslation, error)
	// RecordSyncError stores a failed merge without touching the content.
	RecordSyncError(ctx context.Context, id uuid.UUID, message string) error
	Delete(ctx context.Context, blockID uuid.UUID, locale string) error
	DeleteByBlock(ctx context.Context, blockID uuid.UUID) error
}
