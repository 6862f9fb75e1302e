package translations

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-storefront-cms/internal/domain"
	"github.com/goliatone/go-storefront-cms/internal/schema"
)

// PageTranslation overrides the textual fields of a page for one locale.
// Blank fields fall back to the page.
type PageTranslation struct {
	bun.BaseModel `bun:"table:page_translations,alias:pt"`

	ID              uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID          uuid.UUID `bun:"page_id,notnull,type:uuid" json:"page_id"`
	Locale          string    `bun:"locale,notnull" json:"locale"`
	Title           string    `bun:"title,notnull" json:"title,omitempty"`
	Slug            string    `bun:"slug,notnull" json:"slug,omitempty"`
	MetaTitle       string    `bun:"meta_title,notnull" json:"meta_title,omitempty"`
	MetaDescription string    `bun:"meta_description,notnull" json:"meta_description,omitempty"`
	CreatedBy       uuid.UUID `bun:"created_by,type:uuid,nullzero" json:"created_by,omitempty"`
	UpdatedBy       uuid.UUID `bun:"updated_by,type:uuid,nullzero" json:"updated_by,omitempty"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// BlockTranslation is the per-locale content of a block. SyncedVersion is
// the block version the content was last merged against; SyncError holds the
// last merge failure and is empty once a merge succeeds.
type BlockTranslation struct {
	bun.BaseModel `bun:"table:block_translations,alias:btr"`

	ID            uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	BlockID       uuid.UUID      `bun:"block_id,notnull,type:uuid" json:"block_id"`
	Locale        string         `bun:"locale,notnull" json:"locale"`
	Content       schema.Payload `bun:"content,type:jsonb,notnull" json:"content"`
	SyncedVersion int            `bun:"synced_version,notnull" json:"synced_version"`
	SyncError     string         `bun:"sync_error,notnull" json:"sync_error,omitempty"`
	CreatedBy     uuid.UUID      `bun:"created_by,type:uuid,nullzero" json:"created_by,omitempty"`
	UpdatedBy     uuid.UUID      `bun:"updated_by,type:uuid,nullzero" json:"updated_by,omitempty"`
	CreatedAt     time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Stale reports whether the translation lags its block or failed its last merge.
func (t *BlockTranslation) Stale(currentVersion int) bool {
	return t.SyncError != "" || t.SyncedVersion < currentVersion
}

// StorageMode selects what a block translation row holds.
type StorageMode string

const (
	// StorageMerged stores the full merge result.
	StorageMerged StorageMode = "merged"
	// StorageCompact stores only the translated text.
	StorageCompact StorageMode = "compact"
)

func (m StorageMode) Valid() bool {
	return m == StorageMerged || m == StorageCompact
}

// ResyncReport summarizes a resync pass. Failed translations kept their
// previous content.
type ResyncReport struct {
	Synced int
	Failed []*domain.SyncError
}

func (r *ResyncReport) merge(other ResyncReport) {
	r.Synced += other.Synced
	r.Failed = append(r.Failed, other.Failed...)
}

func clonePageTranslation(t *PageTranslation) *PageTranslation {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func cloneBlockTranslation(t *BlockTranslation) *BlockTranslation {
	if t == nil {
		return nil
	}
	cp := *t
	if t.Content.Content != nil {
		cp.Content = schema.NewPayload(schema.Clone(t.Content.Content))
	}
	return &cp
}
