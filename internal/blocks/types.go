package blocks

import (
	"encoding/json"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-storefront-cms/internal/schema"
)

// Block is one typed, ordered content unit on a page. CurrentVersion mirrors
// the newest BlockVersion and is the counter new versions are drawn from.
type Block struct {
	bun.BaseModel `bun:"table:blocks,alias:b"`

	ID             uuid.UUID        `bun:",pk,type:uuid" json:"id"`
	PageID         uuid.UUID        `bun:"page_id,notnull,type:uuid" json:"page_id"`
	Type           schema.BlockType `bun:"block_type,notnull" json:"block_type"`
	Key            string           `bun:"block_key,notnull" json:"block_key,omitempty"`
	DisplayOrder   int              `bun:"display_order,notnull" json:"display_order"`
	IsEnabled      bool             `bun:"is_enabled,notnull" json:"is_enabled"`
	Content        schema.Payload   `bun:"content,type:jsonb,notnull" json:"content"`
	Settings       map[string]any   `bun:"settings,type:jsonb" json:"settings,omitempty"`
	CurrentVersion int              `bun:"current_version,notnull" json:"current_version"`
	CreatedBy      uuid.UUID        `bun:"created_by,type:uuid,nullzero" json:"created_by,omitempty"`
	UpdatedBy      uuid.UUID        `bun:"updated_by,type:uuid,nullzero" json:"updated_by,omitempty"`
	CreatedAt      time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time        `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// BlockVersion is an immutable snapshot of a block's content and settings.
type BlockVersion struct {
	bun.BaseModel `bun:"table:block_versions,alias:bv"`

	ID        uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	BlockID   uuid.UUID      `bun:"block_id,notnull,type:uuid" json:"block_id"`
	Version   int            `bun:"version,notnull" json:"version"`
	Content   schema.Payload `bun:"content,type:jsonb,notnull" json:"content"`
	Settings  map[string]any `bun:"settings,type:jsonb" json:"settings,omitempty"`
	CreatedBy uuid.UUID      `bun:"created_by,type:uuid,nullzero" json:"created_by,omitempty"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// ListOptions filters blocks of one page. Zero values match everything.
type ListOptions struct {
	Enabled *bool
	Type    schema.BlockType
}

// Move assigns a new display order to one block.
type Move struct {
	BlockID      uuid.UUID `json:"block_id"`
	DisplayOrder int       `json:"display_order"`
}

func (o ListOptions) matches(b *Block) bool {
	if o.Enabled != nil && b.IsEnabled != *o.Enabled {
		return false
	}
	if o.Type != "" && b.Type != o.Type {
		return false
	}
	return true
}

func cloneBlock(b *Block) *Block {
	if b == nil {
		return nil
	}
	cp := *b
	cp.Content = clonePayload(b.Content)
	cp.Settings = cloneSettings(b.Settings)
	return &cp
}

func cloneVersion(v *BlockVersion) *BlockVersion {
	if v == nil {
		return nil
	}
	cp := *v
	cp.Content = clonePayload(v.Content)
	cp.Settings = cloneSettings(v.Settings)
	return &cp
}

func clonePayload(p schema.Payload) schema.Payload {
	if p.Content == nil {
		return p
	}
	return schema.NewPayload(schema.Clone(p.Content))
}

// cloneSettings deep copies a settings bag. Values come from JSON so a
// round trip covers every shape the bag can hold.
func cloneSettings(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return maps.Clone(in)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return maps.Clone(in)
	}
	return out
}

// settingsEqual compares two bags by their JSON encoding; nil and empty are equal.
func settingsEqual(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ra) == string(rb)
}
