package pages

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is a sluggable document that owns an ordered list of blocks.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID              uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Slug            string     `bun:"slug,notnull" json:"slug"`
	Title           string     `bun:"title,notnull" json:"title"`
	MetaDescription string     `bun:"meta_description,notnull" json:"meta_description,omitempty"`
	MetaKeywords    string     `bun:"meta_keywords,notnull" json:"meta_keywords,omitempty"`
	IsPublished     bool       `bun:"is_published,notnull" json:"is_published"`
	PublishedAt     *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CreatedBy       uuid.UUID  `bun:"created_by,type:uuid,nullzero" json:"created_by,omitempty"`
	UpdatedBy       uuid.UUID  `bun:"updated_by,type:uuid,nullzero" json:"updated_by,omitempty"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// ListOptions filters List. Zero values match everything.
type ListOptions struct {
	Slug      string
	Published *bool
	CreatedBy uuid.UUID
	Limit     int
	Offset    int
}

func clonePage(p *Page) *Page {
	if p == nil {
		return nil
	}
	cp := *p
	if p.PublishedAt != nil {
		ts := *p.PublishedAt
		cp.PublishedAt = &ts
	}
	return &cp
}
