package publicpages

import (
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/schema"
)

// Page is the render-ready view of a published page in one locale.
type Page struct {
	ID              uuid.UUID   `json:"id"`
	Locale          string      `json:"locale"`
	Slug            string      `json:"slug"`
	Title           string      `json:"title"`
	MetaTitle       string      `json:"meta_title,omitempty"`
	MetaDescription string      `json:"meta_description,omitempty"`
	MetaKeywords    string      `json:"meta_keywords,omitempty"`
	PublishedAt     *time.Time  `json:"published_at,omitempty"`
	Translated      bool        `json:"translated"`
	Blocks          []Block     `json:"blocks"`
	Alternates      []Alternate `json:"alternates,omitempty"`
}

// Block is an enabled block with its content resolved for the page locale.
type Block struct {
	ID           uuid.UUID        `json:"id"`
	Type         schema.BlockType `json:"type"`
	Key          string           `json:"key,omitempty"`
	DisplayOrder int              `json:"display_order"`
	Version      int              `json:"version"`
	Translated   bool             `json:"translated"`
	Content      schema.Payload   `json:"content"`
	Settings     map[string]any   `json:"settings,omitempty"`
}

// Alternate points at the same page in another locale. URL is empty when no
// route manager is configured.
type Alternate struct {
	Locale string `json:"locale"`
	Slug   string `json:"slug"`
	URL    string `json:"url,omitempty"`
}
