package commands

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/blocks"
	"github.com/goliatone/go-storefront-cms/internal/identity"
)

const (
	reorderBlocksType       = "cms.blocks.reorder"
	restoreBlockVersionType = "cms.blocks.restore_version"
	resyncPageType          = "cms.translations.resync_page"
	resyncBlockLocaleType   = "cms.translations.resync_block_locale"
	compactTranslationsType = "cms.translations.compact"
	publishPageType         = "cms.pages.publish"
	unpublishPageType       = "cms.pages.unpublish"
)

var errRequired = validation.NewError("cms.command.required", "is required")

func requiredID(field string, id uuid.UUID, errs validation.Errors) {
	if id == uuid.Nil {
		errs[field] = errRequired
	}
}

func result(errs validation.Errors) error {
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ReorderBlocksCommand assigns new display orders to blocks of one page. The
// whole batch is applied or none of it.
type ReorderBlocksCommand struct {
	PageID    uuid.UUID     `json:"page_id"`
	Moves     []blocks.Move `json:"moves"`
	UpdatedBy uuid.UUID     `json:"updated_by,omitempty"`
}

func (ReorderBlocksCommand) Type() string { return reorderBlocksType }

func (m ReorderBlocksCommand) LogFields() map[string]any {
	return map[string]any{"page_id": m.PageID, "moves": len(m.Moves)}
}

func (m ReorderBlocksCommand) Validate() error {
	errs := validation.Errors{}
	requiredID("page_id", m.PageID, errs)
	if len(m.Moves) == 0 {
		errs["moves"] = validation.NewError("cms.blocks.reorder.moves_required", "at least one move is required")
	}
	for _, move := range m.Moves {
		if move.BlockID == uuid.Nil {
			errs["moves"] = validation.NewError("cms.blocks.reorder.block_id_required", "every move needs a block_id")
			break
		}
	}
	return result(errs)
}

type RestoreBlockVersionCommand struct {
	BlockID    uuid.UUID `json:"block_id"`
	Version    int       `json:"version"`
	RestoredBy uuid.UUID `json:"restored_by,omitempty"`
}

func (RestoreBlockVersionCommand) Type() string { return restoreBlockVersionType }

func (m RestoreBlockVersionCommand) LogFields() map[string]any {
	return map[string]any{"block_id": m.BlockID, "version": m.Version}
}

func (m RestoreBlockVersionCommand) Validate() error {
	errs := validation.Errors{}
	requiredID("block_id", m.BlockID, errs)
	if err := validation.Validate(m.Version, validation.Required, validation.Min(1)); err != nil {
		errs["version"] = err
	}
	return result(errs)
}

type ResyncPageCommand struct {
	PageID uuid.UUID `json:"page_id"`
}

func (ResyncPageCommand) Type() string { return resyncPageType }

func (m ResyncPageCommand) LogFields() map[string]any {
	return map[string]any{"page_id": m.PageID}
}

func (m ResyncPageCommand) Validate() error {
	errs := validation.Errors{}
	requiredID("page_id", m.PageID, errs)
	return result(errs)
}

type ResyncBlockLocaleCommand struct {
	BlockID uuid.UUID `json:"block_id"`
	Locale  string    `json:"locale"`
}

func (ResyncBlockLocaleCommand) Type() string { return resyncBlockLocaleType }

func (m ResyncBlockLocaleCommand) LogFields() map[string]any {
	return map[string]any{"block_id": m.BlockID, "locale": identity.NormalizeLocale(m.Locale)}
}

func (m ResyncBlockLocaleCommand) Validate() error {
	errs := validation.Errors{}
	requiredID("block_id", m.BlockID, errs)
	if identity.NormalizeLocale(m.Locale) == "" {
		errs["locale"] = errRequired
	}
	return result(errs)
}

// CompactTranslationsCommand rewrites the block translations of a page to
// their text-only form.
type CompactTranslationsCommand struct {
	PageID uuid.UUID `json:"page_id"`
}

func (CompactTranslationsCommand) Type() string { return compactTranslationsType }

func (m CompactTranslationsCommand) LogFields() map[string]any {
	return map[string]any{"page_id": m.PageID}
}

func (m CompactTranslationsCommand) Validate() error {
	errs := validation.Errors{}
	requiredID("page_id", m.PageID, errs)
	return result(errs)
}

type PublishPageCommand struct {
	PageID uuid.UUID `json:"page_id"`
	Actor  uuid.UUID `json:"actor,omitempty"`
}

func (PublishPageCommand) Type() string { return publishPageType }

func (m PublishPageCommand) LogFields() map[string]any {
	return map[string]any{"page_id": m.PageID}
}

func (m PublishPageCommand) Validate() error {
	errs := validation.Errors{}
	requiredID("page_id", m.PageID, errs)
	return result(errs)
}

type UnpublishPageCommand struct {
	PageID uuid.UUID `json:"page_id"`
	Actor  uuid.UUID `json:"actor,omitempty"`
}

func (UnpublishPageCommand) Type() string { return unpublishPageType }

func (m UnpublishPageCommand) LogFields() map[string]any {
	return map[string]any{"page_id": m.PageID}
}

func (m UnpublishPageCommand) Validate() error {
	errs := validation.Errors{}
	requiredID("page_id", m.PageID, errs)
	return result(errs)
}
