package blocks

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/activity"
	"github.com/goliatone/go-storefront-cms/internal/domain"
	"github.com/goliatone/go-storefront-cms/internal/logging"
	"github.com/goliatone/go-storefront-cms/internal/pages"
	"github.com/goliatone/go-storefront-cms/internal/schema"
	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

// Service manages blocks and their version ledger. Every change to content
// or settings records a new version; content changes also resync every
// translation of the block.
type Service interface {
	Create(ctx context.Context, req CreateBlockRequest) (*Block, error)
	Get(ctx context.Context, id uuid.UUID) (*Block, error)
	ListForPage(ctx context.Context, pageID uuid.UUID, opts ListOptions) ([]*Block, error)
	Update(ctx context.Context, req UpdateBlockRequest) (*Block, error)
	Delete(ctx context.Context, req DeleteBlockRequest) error
	DeleteForPage(ctx context.Context, pageID uuid.UUID) error
	Reorder(ctx context.Context, req ReorderRequest) ([]*Block, error)

	ListVersions(ctx context.Context, blockID uuid.UUID) ([]*BlockVersion, error)
	GetVersion(ctx context.Context, blockID uuid.UUID, version int) (*BlockVersion, error)
	RestoreVersion(ctx context.Context, req RestoreVersionRequest) (*Block, error)
}

type CreateBlockRequest struct {
	ID      uuid.UUID
	PageID  uuid.UUID
	Type    schema.BlockType
	Key     string
	Content schema.Content
	// DisplayOrder defaults to one past the page's last block.
	DisplayOrder *int
	// Enabled defaults to true.
	Enabled   *bool
	Settings  map[string]any
	CreatedBy uuid.UUID
}

// UpdateBlockRequest is a partial patch; nil fields are left alone. Changing
// Type requires Content of the new type.
type UpdateBlockRequest struct {
	ID           uuid.UUID
	Type         *schema.BlockType
	Key          *string
	DisplayOrder *int
	Enabled      *bool
	Content      schema.Content
	Settings     *map[string]any
	UpdatedBy    uuid.UUID
}

type DeleteBlockRequest struct {
	ID        uuid.UUID
	DeletedBy uuid.UUID
}

type ReorderRequest struct {
	PageID    uuid.UUID
	Moves     []Move
	UpdatedBy uuid.UUID
}

type RestoreVersionRequest struct {
	BlockID    uuid.UUID
	Version    int
	RestoredBy uuid.UUID
}

// TranslationSyncer keeps block translations in step with their base block.
// ResyncBlock records per locale failures itself; a returned error means the
// pass could not run at all.
type TranslationSyncer interface {
	ResyncBlock(ctx context.Context, block *Block) error
	OnBlockDeleted(ctx context.Context, blockID uuid.UUID) error
}

// PageLookup confirms the owning page exists before a block is created.
type PageLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*pages.Page, error)
}

var (
	ErrIDRequired        = errors.New("blocks: id required")
	ErrPageIDRequired    = errors.New("blocks: page id required")
	ErrEmptyPatch        = errors.New("blocks: no fields to update")
	ErrVersionRequired   = errors.New("blocks: version must be positive")
	ErrContentUnreadable = errors.New("blocks: stored content cannot be decoded")
)

type IDGenerator func() uuid.UUID

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithItemIDGenerator sets how missing list item ids are filled.
func WithItemIDGenerator(next func() string) ServiceOption {
	return func(s *service) {
		if next != nil {
			s.itemID = next
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithActivity(emitter *activity.Emitter) ServiceOption {
	return func(s *service) { s.activity = emitter }
}

func WithTranslationSyncer(syncer TranslationSyncer) ServiceOption {
	return func(s *service) { s.syncer = syncer }
}

func WithPageLookup(lookup PageLookup) ServiceOption {
	return func(s *service) { s.pages = lookup }
}

func WithSettingsValidator(validator *schema.SettingsValidator) ServiceOption {
	return func(s *service) {
		if validator != nil {
			s.settings = validator
		}
	}
}

// WithSyncOnSettingsChange controls whether a settings-only update resyncs
// translations. Enabled by default.
func WithSyncOnSettingsChange(enabled bool) ServiceOption {
	return func(s *service) { s.syncOnSettings = enabled }
}

type service struct {
	repo           BlockRepository
	pages          PageLookup
	syncer         TranslationSyncer
	settings       *schema.SettingsValidator
	syncOnSettings bool
	now            func() time.Time
	id             IDGenerator
	itemID         func() string
	logger         interfaces.Logger
	activity       *activity.Emitter
}

func NewService(repo BlockRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:           repo,
		settings:       schema.DefaultSettingsValidator(),
		syncOnSettings: true,
		now:            time.Now,
		id:             uuid.New,
		itemID:         schema.NewItemID,
		logger:         logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateBlockRequest) (*Block, error) {
	if req.PageID == uuid.Nil {
		return nil, domain.Invalid("block", "page_id", ErrPageIDRequired)
	}
	blockType, err := schema.ParseType(string(req.Type))
	if err != nil {
		return nil, domain.Invalid("block", "block_type", err)
	}
	content, err := s.prepareContent(blockType, req.Content)
	if err != nil {
		return nil, err
	}
	if err := s.settings.Validate(req.Settings); err != nil {
		return nil, domain.Invalid("block", "settings", err)
	}
	if req.DisplayOrder != nil && *req.DisplayOrder < 0 {
		return nil, domain.Invalid("block", "display_order", ErrNegativeOrder)
	}
	if s.pages != nil {
		if _, err := s.pages.GetByID(ctx, req.PageID); err != nil {
			return nil, err
		}
	}

	order, err := s.displayOrder(ctx, req.PageID, req.DisplayOrder)
	if err != nil {
		return nil, err
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	now := s.now().UTC()
	id := req.ID
	if id == uuid.Nil {
		id = s.id()
	}
	block := &Block{
		ID:           id,
		PageID:       req.PageID,
		Type:         blockType,
		Key:          strings.TrimSpace(req.Key),
		DisplayOrder: order,
		IsEnabled:    enabled,
		Content:      schema.NewPayload(content),
		Settings:     cloneSettings(req.Settings),
		CreatedBy:    req.CreatedBy,
		UpdatedBy:    req.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	initial := &BlockVersion{
		ID:        s.id(),
		BlockID:   id,
		Content:   clonePayload(block.Content),
		Settings:  cloneSettings(block.Settings),
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
	}

	created, err := s.repo.Create(ctx, block, initial)
	if err != nil {
		s.logger.Error("blocks.create.failed", "page_id", req.PageID, "block_type", blockType, "error", err)
		return nil, err
	}
	s.logger.Info("blocks.create.complete", "block_id", created.ID, "page_id", created.PageID, "block_type", created.Type)
	s.emit(ctx, "block.created", "block", created.ID, req.CreatedBy, map[string]any{
		"page_id":    created.PageID,
		"block_type": created.Type,
		"version":    created.CurrentVersion,
	})
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Block, error) {
	if id == uuid.Nil {
		return nil, domain.Invalid("block", "id", ErrIDRequired)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListForPage(ctx context.Context, pageID uuid.UUID, opts ListOptions) ([]*Block, error) {
	if pageID == uuid.Nil {
		return nil, domain.Invalid("block", "page_id", ErrPageIDRequired)
	}
	if opts.Type != "" {
		blockType, err := schema.ParseType(string(opts.Type))
		if err != nil {
			return nil, domain.Invalid("block", "block_type", err)
		}
		opts.Type = blockType
	}
	return s.repo.ListByPage(ctx, pageID, opts)
}

func (s *service) Update(ctx context.Context, req UpdateBlockRequest) (*Block, error) {
	return s.update(ctx, req, false)
}

// update applies the patch. forceRevision records a version even when the
// content and settings are unchanged, which restore relies on.
func (s *service) update(ctx context.Context, req UpdateBlockRequest, forceRevision bool) (*Block, error) {
	if req.ID == uuid.Nil {
		return nil, domain.Invalid("block", "id", ErrIDRequired)
	}
	if req.Type == nil && req.Key == nil && req.DisplayOrder == nil && req.Enabled == nil && req.Content == nil && req.Settings == nil {
		return nil, domain.Invalid("block", "", ErrEmptyPatch)
	}

	if req.DisplayOrder != nil && *req.DisplayOrder < 0 {
		return nil, domain.Invalid("block", "display_order", ErrNegativeOrder)
	}
	if req.Settings != nil {
		if err := s.settings.Validate(*req.Settings); err != nil {
			return nil, domain.Invalid("block", "settings", err)
		}
	}

	var contentChanged, settingsChanged bool
	apply := func(current *Block) (*Block, *BlockVersion, error) {
		contentChanged, settingsChanged = false, false
		next := cloneBlock(current)

		targetType := current.Type
		if req.Type != nil {
			parsed, err := schema.ParseType(string(*req.Type))
			if err != nil {
				return nil, nil, domain.Invalid("block", "block_type", err)
			}
			targetType = parsed
		}

		switch {
		case req.Content != nil:
			content, err := s.prepareContent(targetType, req.Content)
			if err != nil {
				return nil, nil, err
			}
			contentChanged = current.Content.Content == nil || !schema.Equal(current.Content.Content, content)
			next.Content = schema.NewPayload(content)
		case targetType != current.Type:
			return nil, nil, domain.Invalid("block", "content", schema.ErrTypeMismatch)
		}
		if next.Content.Content == nil {
			return nil, nil, domain.Invalid("block", "content", ErrContentUnreadable)
		}
		next.Type = targetType

		if req.Key != nil {
			next.Key = strings.TrimSpace(*req.Key)
		}
		if req.DisplayOrder != nil {
			next.DisplayOrder = *req.DisplayOrder
		}
		if req.Enabled != nil {
			next.IsEnabled = *req.Enabled
		}
		if req.Settings != nil {
			settingsChanged = !settingsEqual(current.Settings, *req.Settings)
			next.Settings = cloneSettings(*req.Settings)
		}

		now := s.now().UTC()
		next.UpdatedBy = req.UpdatedBy
		next.UpdatedAt = now

		if !contentChanged && !settingsChanged && !forceRevision {
			return next, nil, nil
		}
		return next, &BlockVersion{
			ID:        s.id(),
			BlockID:   next.ID,
			Content:   clonePayload(next.Content),
			Settings:  cloneSettings(next.Settings),
			CreatedBy: req.UpdatedBy,
			CreatedAt: now,
		}, nil
	}

	updated, err := s.repo.Update(ctx, req.ID, apply)
	if err != nil {
		if !domain.IsDomainError(err) {
			s.logger.Error("blocks.update.failed", "block_id", req.ID, "error", err)
		}
		return nil, err
	}
	if contentChanged || settingsChanged || forceRevision {
		s.logger.Info("blocks.update.versioned", "block_id", updated.ID, "version", updated.CurrentVersion)
	}

	if contentChanged || forceRevision || (settingsChanged && s.syncOnSettings) {
		s.resync(ctx, updated)
	}
	s.emit(ctx, "block.updated", "block", updated.ID, req.UpdatedBy, map[string]any{
		"page_id":          updated.PageID,
		"version":          updated.CurrentVersion,
		"content_changed":  contentChanged,
		"settings_changed": settingsChanged,
	})
	return updated, nil
}

func (s *service) Delete(ctx context.Context, req DeleteBlockRequest) error {
	if req.ID == uuid.Nil {
		return domain.Invalid("block", "id", ErrIDRequired)
	}
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("blocks.delete.failed", "block_id", req.ID, "error", err)
		}
		return err
	}
	if err := s.forgetTranslations(ctx, req.ID); err != nil {
		return err
	}
	s.logger.Info("blocks.delete.complete", "block_id", req.ID)
	s.emit(ctx, "block.deleted", "block", req.ID, req.DeletedBy, nil)
	return nil
}

// DeleteForPage removes every block of a page. It matches pages.DeleteHook.
func (s *service) DeleteForPage(ctx context.Context, pageID uuid.UUID) error {
	owned, err := s.repo.ListByPage(ctx, pageID, ListOptions{})
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByPage(ctx, pageID); err != nil {
		s.logger.Error("blocks.delete_page.failed", "page_id", pageID, "error", err)
		return err
	}
	for _, block := range owned {
		if err := s.forgetTranslations(ctx, block.ID); err != nil {
			return err
		}
	}
	if len(owned) > 0 {
		s.logger.Info("blocks.delete_page.complete", "page_id", pageID, "blocks", len(owned))
	}
	return nil
}

func (s *service) Reorder(ctx context.Context, req ReorderRequest) ([]*Block, error) {
	if req.PageID == uuid.Nil {
		return nil, domain.Invalid("block", "page_id", ErrPageIDRequired)
	}
	if err := s.repo.Reorder(ctx, req.PageID, req.Moves); err != nil {
		s.logger.Warn("blocks.reorder.rejected", "page_id", req.PageID, "moves", len(req.Moves), "error", err)
		return nil, err
	}
	ordered, err := s.repo.ListByPage(ctx, req.PageID, ListOptions{})
	if err != nil {
		return nil, err
	}
	s.logger.Info("blocks.reorder.complete", "page_id", req.PageID, "moves", len(req.Moves))
	s.emit(ctx, "blocks.reordered", "page", req.PageID, req.UpdatedBy, map[string]any{"moves": len(req.Moves)})
	return ordered, nil
}

func (s *service) ListVersions(ctx context.Context, blockID uuid.UUID) ([]*BlockVersion, error) {
	if blockID == uuid.Nil {
		return nil, domain.Invalid("block", "id", ErrIDRequired)
	}
	return s.repo.ListVersions(ctx, blockID)
}

func (s *service) GetVersion(ctx context.Context, blockID uuid.UUID, version int) (*BlockVersion, error) {
	if blockID == uuid.Nil {
		return nil, domain.Invalid("block", "id", ErrIDRequired)
	}
	if version <= 0 {
		return nil, domain.Invalid("block_version", "version", ErrVersionRequired)
	}
	return s.repo.GetVersion(ctx, blockID, version)
}

// RestoreVersion makes a past snapshot current again. It goes through the
// regular update path, so the restore is itself a new version and
// translations resync against it.
func (s *service) RestoreVersion(ctx context.Context, req RestoreVersionRequest) (*Block, error) {
	snapshot, err := s.GetVersion(ctx, req.BlockID, req.Version)
	if err != nil {
		return nil, err
	}
	if snapshot.Content.Content == nil {
		return nil, domain.Invalid("block_version", "content", ErrContentUnreadable)
	}
	blockType := snapshot.Content.Content.Type()
	settings := cloneSettings(snapshot.Settings)
	restored, err := s.update(ctx, UpdateBlockRequest{
		ID:        req.BlockID,
		Type:      &blockType,
		Content:   schema.Clone(snapshot.Content.Content),
		Settings:  &settings,
		UpdatedBy: req.RestoredBy,
	}, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info("blocks.restore.complete", "block_id", restored.ID, "from_version", req.Version, "version", restored.CurrentVersion)
	return restored, nil
}

// prepareContent checks the tag against the declared type and returns a copy
// with list item ids filled in.
func (s *service) prepareContent(declared schema.BlockType, content schema.Content) (schema.Content, error) {
	if err := schema.CheckType(declared, content); err != nil {
		return nil, domain.Invalid("block", "content", err)
	}
	prepared := schema.Clone(content)
	schema.AssignItemIDs(prepared, s.itemID)
	return prepared, nil
}

func (s *service) displayOrder(ctx context.Context, pageID uuid.UUID, requested *int) (int, error) {
	if requested != nil {
		return *requested, nil
	}
	existing, err := s.repo.ListByPage(ctx, pageID, ListOptions{})
	if err != nil {
		return 0, err
	}
	next := 0
	for _, block := range existing {
		if block.DisplayOrder >= next {
			next = block.DisplayOrder + 1
		}
	}
	return next, nil
}

func (s *service) resync(ctx context.Context, block *Block) {
	if s.syncer == nil {
		return
	}
	if err := s.syncer.ResyncBlock(ctx, cloneBlock(block)); err != nil {
		s.logger.Warn("blocks.update.resync_failed", "block_id", block.ID, "version", block.CurrentVersion, "error", err)
	}
}

func (s *service) forgetTranslations(ctx context.Context, blockID uuid.UUID) error {
	if s.syncer == nil {
		return nil
	}
	if err := s.syncer.OnBlockDeleted(ctx, blockID); err != nil {
		s.logger.Error("blocks.delete.cascade_failed", "block_id", blockID, "error", err)
		return err
	}
	return nil
}

func (s *service) emit(ctx context.Context, verb, objectType string, id, actor uuid.UUID, data map[string]any) {
	s.activity.Emit(ctx, activity.Event{Verb: verb, ObjectType: objectType, ObjectID: id, ActorID: actor, Data: data})
}
