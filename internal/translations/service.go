package translations

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-storefront-cms/internal/activity"
	"github.com/goliatone/go-storefront-cms/internal/blocks"
	"github.com/goliatone/go-storefront-cms/internal/domain"
	"github.com/goliatone/go-storefront-cms/internal/identity"
	"github.com/goliatone/go-storefront-cms/internal/logging"
	"github.com/goliatone/go-storefront-cms/internal/pages"
	"github.com/goliatone/go-storefront-cms/internal/schema"
	"github.com/goliatone/go-storefront-cms/internal/translationsync"
	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

// Service stores page and block translations and keeps block translations
// merged against the current base content. It satisfies
// blocks.TranslationSyncer and its OnPageDeleted matches pages.DeleteHook.
type Service interface {
	UpsertPageTranslation(ctx context.Context, req UpsertPageTranslationRequest) (*PageTranslation, error)
	GetPageTranslation(ctx context.Context, pageID uuid.UUID, locale string) (*PageTranslation, error)
	ListPageTranslations(ctx context.Context, pageID uuid.UUID) ([]*PageTranslation, error)
	DeletePageTranslation(ctx context.Context, pageID uuid.UUID, locale string) error

	UpsertBlockTranslation(ctx context.Context, req UpsertBlockTranslationRequest) (*BlockTranslation, error)
	BulkUpsertBlockTranslations(ctx context.Context, reqs []UpsertBlockTranslationRequest) ([]*BlockTranslation, error)
	GetBlockTranslation(ctx context.Context, blockID uuid.UUID, locale string) (*BlockTranslation, error)
	ListBlockTranslations(ctx context.Context, blockID uuid.UUID) ([]*BlockTranslation, error)
	DeleteBlockTranslation(ctx context.Context, blockID uuid.UUID, locale string) error

	ResyncBlock(ctx context.Context, block *blocks.Block) error
	ResyncBlockLocale(ctx context.Context, blockID uuid.UUID, locale string) (*BlockTranslation, error)
	ResyncPage(ctx context.Context, pageID uuid.UUID) (ResyncReport, error)
	CompactBlockTranslations(ctx context.Context, pageID uuid.UUID) (int, error)
	ListStaleBlockTranslations(ctx context.Context, pageID uuid.UUID) ([]*BlockTranslation, error)

	OnBlockDeleted(ctx context.Context, blockID uuid.UUID) error
	OnPageDeleted(ctx context.Context, pageID uuid.UUID) error
}

type UpsertPageTranslationRequest struct {
	PageID          uuid.UUID
	Locale          string
	Title           string
	Slug            string
	MetaTitle       string
	MetaDescription string
	UpdatedBy       uuid.UUID
}

// UpsertBlockTranslationRequest carries translator content. It is merged
// with the base block before it is stored, so structural fields in Content
// are ignored.
type UpsertBlockTranslationRequest struct {
	BlockID   uuid.UUID
	Locale    string
	Content   schema.Content
	UpdatedBy uuid.UUID
}

// BlockReader is the read side of the block store.
type BlockReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*blocks.Block, error)
	ListByPage(ctx context.Context, pageID uuid.UUID, opts blocks.ListOptions) ([]*blocks.Block, error)
}

// PageLookup confirms a page exists.
type PageLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*pages.Page, error)
}

var (
	ErrLocaleRequired       = errors.New("translations: locale required")
	ErrLocaleUnsupported    = errors.New("translations: locale not configured")
	ErrDefaultLocale        = errors.New("translations: default locale is stored on the base record")
	ErrPageIDRequired       = errors.New("translations: page id required")
	ErrBlockIDRequired      = errors.New("translations: block id required")
	ErrContentRequired      = errors.New("translations: content required")
	ErrBaseUnreadable       = errors.New("translations: base block content cannot be decoded")
	ErrDuplicateTranslation = errors.New("translations: block and locale repeated in batch")
	ErrStorageMode          = errors.New("translations: unknown storage mode")
)

const bulkUpsertOperation = "translations.bulk_upsert"

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
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

func WithPageLookup(lookup PageLookup) ServiceOption {
	return func(s *service) { s.pages = lookup }
}

// WithStorageMode selects merged (default) or compact rows.
func WithStorageMode(mode StorageMode) ServiceOption {
	return func(s *service) {
		if mode.Valid() {
			s.mode = mode
		}
	}
}

// WithDefaultLocale rejects translations in the base locale.
func WithDefaultLocale(locale string) ServiceOption {
	return func(s *service) { s.defaultLocale = identity.NormalizeLocale(locale) }
}

// WithLocales restricts writes to the listed locales.
func WithLocales(locales ...string) ServiceOption {
	return func(s *service) {
		s.locales = s.locales[:0]
		for _, locale := range locales {
			if normalized := identity.NormalizeLocale(locale); normalized != "" {
				s.locales = append(s.locales, normalized)
			}
		}
	}
}

// WithResyncConcurrency bounds how many blocks ResyncPage merges at once.
func WithResyncConcurrency(n int) ServiceOption {
	return func(s *service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

type service struct {
	pageTranslations  PageTranslationRepository
	blockTranslations BlockTranslationRepository
	blocks            BlockReader
	pages             PageLookup
	mode              StorageMode
	defaultLocale     string
	locales           []string
	concurrency       int
	now               func() time.Time
	logger            interfaces.Logger
	activity          *activity.Emitter
}

func NewService(pageTranslations PageTranslationRepository, blockTranslations BlockTranslationRepository, blockReader BlockReader, opts ...ServiceOption) Service {
	s := &service{
		pageTranslations:  pageTranslations,
		blockTranslations: blockTranslations,
		blocks:            blockReader,
		mode:              StorageMerged,
		concurrency:       4,
		now:               time.Now,
		logger:            logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseStorageMode accepts "merged" or "compact"; blank means merged.
func ParseStorageMode(raw string) (StorageMode, error) {
	mode := StorageMode(strings.ToLower(strings.TrimSpace(raw)))
	if mode == "" {
		return StorageMerged, nil
	}
	if !mode.Valid() {
		return "", fmt.Errorf("%w: %q", ErrStorageMode, raw)
	}
	return mode, nil
}

func (s *service) UpsertPageTranslation(ctx context.Context, req UpsertPageTranslationRequest) (*PageTranslation, error) {
	if req.PageID == uuid.Nil {
		return nil, domain.Invalid("page_translation", "page_id", ErrPageIDRequired)
	}
	locale, err := s.writableLocale(req.Locale)
	if err != nil {
		return nil, domain.Invalid("page_translation", "locale", err)
	}
	slugValue := ""
	if strings.TrimSpace(req.Slug) != "" {
		if slugValue, err = pages.NormalizeSlug(req.Slug); err != nil {
			return nil, domain.Invalid("page_translation", "slug", err)
		}
	}
	if s.pages != nil {
		if _, err := s.pages.GetByID(ctx, req.PageID); err != nil {
			return nil, err
		}
	}
	if slugValue != "" {
		owners, err := s.pageTranslations.FindBySlug(ctx, slugValue, locale)
		if err != nil {
			return nil, err
		}
		for _, owner := range owners {
			if owner.PageID != req.PageID {
				return nil, domain.Conflict("page_translation", "slug", locale+"/"+slugValue)
			}
		}
	}

	now := s.now().UTC()
	stored, err := s.pageTranslations.Upsert(ctx, &PageTranslation{
		ID:              identity.PageTranslationUUID(req.PageID, locale),
		PageID:          req.PageID,
		Locale:          locale,
		Title:           strings.TrimSpace(req.Title),
		Slug:            slugValue,
		MetaTitle:       strings.TrimSpace(req.MetaTitle),
		MetaDescription: strings.TrimSpace(req.MetaDescription),
		CreatedBy:       req.UpdatedBy,
		UpdatedBy:       req.UpdatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		s.logger.Error("translations.page.upsert_failed", "page_id", req.PageID, "locale", locale, "error", err)
		return nil, err
	}
	s.logger.Info("translations.page.upserted", "page_id", req.PageID, "locale", locale)
	s.emit(ctx, "page_translation.upserted", "page", req.PageID, req.UpdatedBy, map[string]any{"locale": locale})
	return stored, nil
}

func (s *service) GetPageTranslation(ctx context.Context, pageID uuid.UUID, locale string) (*PageTranslation, error) {
	normalized, err := requireLocale(locale)
	if err != nil {
		return nil, domain.Invalid("page_translation", "locale", err)
	}
	return s.pageTranslations.Get(ctx, pageID, normalized)
}

func (s *service) ListPageTranslations(ctx context.Context, pageID uuid.UUID) ([]*PageTranslation, error) {
	if pageID == uuid.Nil {
		return nil, domain.Invalid("page_translation", "page_id", ErrPageIDRequired)
	}
	return s.pageTranslations.ListByPage(ctx, pageID)
}

func (s *service) DeletePageTranslation(ctx context.Context, pageID uuid.UUID, locale string) error {
	normalized, err := requireLocale(locale)
	if err != nil {
		return domain.Invalid("page_translation", "locale", err)
	}
	if err := s.pageTranslations.Delete(ctx, pageID, normalized); err != nil {
		return err
	}
	s.emit(ctx, "page_translation.deleted", "page", pageID, uuid.Nil, map[string]any{"locale": normalized})
	return nil
}

func (s *service) UpsertBlockTranslation(ctx context.Context, req UpsertBlockTranslationRequest) (*BlockTranslation, error) {
	row, err := s.prepareBlockTranslation(ctx, req)
	if err != nil {
		return nil, err
	}
	stored, err := s.blockTranslations.Upsert(ctx, row)
	if err != nil {
		s.logger.Error("translations.block.upsert_failed", "block_id", req.BlockID, "locale", row.Locale, "error", err)
		return nil, err
	}
	s.logger.Info("translations.block.upserted", "block_id", stored.BlockID, "locale", stored.Locale, "synced_version", stored.SyncedVersion)
	s.emit(ctx, "block_translation.upserted", "block", stored.BlockID, req.UpdatedBy, map[string]any{"locale": stored.Locale})
	return stored, nil
}

// BulkUpsertBlockTranslations validates every item before writing any and
// then stores them in one transaction.
func (s *service) BulkUpsertBlockTranslations(ctx context.Context, reqs []UpsertBlockTranslationRequest) ([]*BlockTranslation, error) {
	rows := make([]*BlockTranslation, 0, len(reqs))
	seen := make(map[uuid.UUID]struct{}, len(reqs))
	for i, req := range reqs {
		row, err := s.prepareBlockTranslation(ctx, req)
		if err != nil {
			return nil, domain.Batch(bulkUpsertOperation, i, err)
		}
		if _, dup := seen[row.ID]; dup {
			return nil, domain.Batch(bulkUpsertOperation, i, ErrDuplicateTranslation)
		}
		seen[row.ID] = struct{}{}
		rows = append(rows, row)
	}
	stored, err := s.blockTranslations.UpsertMany(ctx, rows)
	if err != nil {
		s.logger.Error("translations.block.bulk_upsert_failed", "items", len(rows), "error", err)
		return nil, err
	}
	s.logger.Info("translations.block.bulk_upserted", "items", len(stored))
	return stored, nil
}

func (s *service) prepareBlockTranslation(ctx context.Context, req UpsertBlockTranslationRequest) (*BlockTranslation, error) {
	if req.BlockID == uuid.Nil {
		return nil, domain.Invalid("block_translation", "block_id", ErrBlockIDRequired)
	}
	locale, err := s.writableLocale(req.Locale)
	if err != nil {
		return nil, domain.Invalid("block_translation", "locale", err)
	}
	if req.Content == nil {
		return nil, domain.Invalid("block_translation", "content", ErrContentRequired)
	}
	block, err := s.blocks.GetByID(ctx, req.BlockID)
	if err != nil {
		return nil, err
	}
	if req.Content.Type() != block.Type {
		return nil, domain.Invalid("block_translation", "content", schema.ErrTypeMismatch)
	}
	if block.Content.Content == nil {
		return nil, domain.Invalid("block_translation", "content", ErrBaseUnreadable)
	}
	merged, err := translationsync.Sync(block.Content.Content, req.Content)
	if err != nil {
		return nil, domain.Invalid("block_translation", "content", err)
	}

	now := s.now().UTC()
	return &BlockTranslation{
		ID:            identity.BlockTranslationUUID(block.ID, locale),
		BlockID:       block.ID,
		Locale:        locale,
		Content:       schema.NewPayload(s.shape(merged)),
		SyncedVersion: block.CurrentVersion,
		CreatedBy:     req.UpdatedBy,
		UpdatedBy:     req.UpdatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (s *service) GetBlockTranslation(ctx context.Context, blockID uuid.UUID, locale string) (*BlockTranslation, error) {
	normalized, err := requireLocale(locale)
	if err != nil {
		return nil, domain.Invalid("block_translation", "locale", err)
	}
	return s.blockTranslations.Get(ctx, blockID, normalized)
}

func (s *service) ListBlockTranslations(ctx context.Context, blockID uuid.UUID) ([]*BlockTranslation, error) {
	if blockID == uuid.Nil {
		return nil, domain.Invalid("block_translation", "block_id", ErrBlockIDRequired)
	}
	return s.blockTranslations.ListByBlock(ctx, blockID)
}

func (s *service) DeleteBlockTranslation(ctx context.Context, blockID uuid.UUID, locale string) error {
	normalized, err := requireLocale(locale)
	if err != nil {
		return domain.Invalid("block_translation", "locale", err)
	}
	if err := s.blockTranslations.Delete(ctx, blockID, normalized); err != nil {
		return err
	}
	s.emit(ctx, "block_translation.deleted", "block", blockID, uuid.Nil, map[string]any{"locale": normalized})
	return nil
}

// ResyncBlock merges every translation of block against its current content.
// Translations that fail keep their content and record the error; only a
// failure to list the translations is returned.
func (s *service) ResyncBlock(ctx context.Context, block *blocks.Block) error {
	if block == nil {
		return nil
	}
	report, err := s.resyncBlock(ctx, block)
	if err != nil {
		return err
	}
	if report.Synced > 0 || len(report.Failed) > 0 {
		s.logger.Info("translations.resync.block", "block_id", block.ID, "version", block.CurrentVersion, "synced", report.Synced, "failed", len(report.Failed))
	}
	return nil
}

func (s *service) ResyncBlockLocale(ctx context.Context, blockID uuid.UUID, locale string) (*BlockTranslation, error) {
	normalized, err := requireLocale(locale)
	if err != nil {
		return nil, domain.Invalid("block_translation", "locale", err)
	}
	block, err := s.blocks.GetByID(ctx, blockID)
	if err != nil {
		return nil, err
	}
	row, err := s.blockTranslations.Get(ctx, blockID, normalized)
	if err != nil {
		return nil, err
	}
	return s.syncRow(ctx, block, row)
}

// ResyncPage resyncs every block of a page, several blocks at a time.
func (s *service) ResyncPage(ctx context.Context, pageID uuid.UUID) (ResyncReport, error) {
	if pageID == uuid.Nil {
		return ResyncReport{}, domain.Invalid("page", "id", ErrPageIDRequired)
	}
	if s.pages != nil {
		if _, err := s.pages.GetByID(ctx, pageID); err != nil {
			return ResyncReport{}, err
		}
	}
	owned, err := s.blocks.ListByPage(ctx, pageID, blocks.ListOptions{})
	if err != nil {
		return ResyncReport{}, err
	}

	var (
		mu     sync.Mutex
		report ResyncReport
	)
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for _, block := range owned {
		group.Go(func() error {
			part, err := s.resyncBlock(gctx, block)
			if err != nil {
				return err
			}
			mu.Lock()
			report.merge(part)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return report, err
	}
	s.logger.Info("translations.resync.page", "page_id", pageID, "blocks", len(owned), "synced", report.Synced, "failed", len(report.Failed))
	return report, nil
}

// CompactBlockTranslations rewrites every readable translation of a page to
// only its translated text and returns how many rows changed.
func (s *service) CompactBlockTranslations(ctx context.Context, pageID uuid.UUID) (int, error) {
	if pageID == uuid.Nil {
		return 0, domain.Invalid("page", "id", ErrPageIDRequired)
	}
	owned, err := s.blocks.ListByPage(ctx, pageID, blocks.ListOptions{})
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, block := range owned {
		if block.Content.Content == nil {
			continue
		}
		rows, err := s.blockTranslations.ListByBlock(ctx, block.ID)
		if err != nil {
			return changed, err
		}
		for _, row := range rows {
			if row.Content.Content == nil {
				continue
			}
			merged, err := translationsync.Sync(block.Content.Content, row.Content.Content)
			if err != nil {
				return changed, err
			}
			compact := translationsync.Extract(merged)
			if schema.Equal(compact, row.Content.Content) {
				continue
			}
			next := cloneBlockTranslation(row)
			next.Content = schema.NewPayload(compact)
			next.SyncedVersion = block.CurrentVersion
			next.SyncError = ""
			next.UpdatedAt = s.now().UTC()
			if _, err := s.blockTranslations.Upsert(ctx, next); err != nil {
				return changed, err
			}
			changed++
		}
	}
	s.logger.Info("translations.compact.complete", "page_id", pageID, "changed", changed)
	return changed, nil
}

func (s *service) ListStaleBlockTranslations(ctx context.Context, pageID uuid.UUID) ([]*BlockTranslation, error) {
	if pageID == uuid.Nil {
		return nil, domain.Invalid("page", "id", ErrPageIDRequired)
	}
	owned, err := s.blocks.ListByPage(ctx, pageID, blocks.ListOptions{})
	if err != nil {
		return nil, err
	}
	versions := make(map[uuid.UUID]int, len(owned))
	ids := make([]uuid.UUID, 0, len(owned))
	for _, block := range owned {
		versions[block.ID] = block.CurrentVersion
		ids = append(ids, block.ID)
	}
	rows, err := s.blockTranslations.ListByBlocks(ctx, ids, "")
	if err != nil {
		return nil, err
	}
	stale := rows[:0]
	for _, row := range rows {
		if row.Stale(versions[row.BlockID]) {
			stale = append(stale, row)
		}
	}
	return stale, nil
}

func (s *service) OnBlockDeleted(ctx context.Context, blockID uuid.UUID) error {
	return s.blockTranslations.DeleteByBlock(ctx, blockID)
}

func (s *service) OnPageDeleted(ctx context.Context, pageID uuid.UUID) error {
	return s.pageTranslations.DeleteByPage(ctx, pageID)
}

func (s *service) resyncBlock(ctx context.Context, block *blocks.Block) (ResyncReport, error) {
	var report ResyncReport
	rows, err := s.blockTranslations.ListByBlock(ctx, block.ID)
	if err != nil {
		return report, fmt.Errorf("list translations of block %s: %w", block.ID, err)
	}
	for _, row := range rows {
		if _, err := s.syncRow(ctx, block, row); err != nil {
			var syncErr *domain.SyncError
			if !errors.As(err, &syncErr) {
				syncErr = &domain.SyncError{BlockID: block.ID, Locale: row.Locale, Err: err}
			}
			report.Failed = append(report.Failed, syncErr)
			continue
		}
		report.Synced++
	}
	return report, nil
}

// syncRow merges one stored translation with the block. On failure the
// content is left alone and the error is recorded on the row. A row already
// synced against a newer version is kept, so passes that finish out of
// order never roll a translation back.
func (s *service) syncRow(ctx context.Context, block *blocks.Block, row *BlockTranslation) (*BlockTranslation, error) {
	if row.SyncedVersion > block.CurrentVersion && row.SyncError == "" {
		s.logger.Debug("translations.resync.superseded", "block_id", block.ID, "locale", row.Locale, "version", block.CurrentVersion, "synced_version", row.SyncedVersion)
		return row, nil
	}
	fail := func(cause error) error {
		if err := s.blockTranslations.RecordSyncError(ctx, row.ID, cause.Error()); err != nil {
			s.logger.Error("translations.resync.record_failed", "block_id", block.ID, "locale", row.Locale, "error", err)
		}
		s.logger.Warn("translations.resync.failed", "block_id", block.ID, "locale", row.Locale, "version", block.CurrentVersion, "error", cause)
		return &domain.SyncError{BlockID: block.ID, Locale: row.Locale, Err: cause}
	}

	if block.Content.Content == nil {
		return nil, fail(ErrBaseUnreadable)
	}
	if err := row.Content.Err(); err != nil {
		return nil, fail(err)
	}
	merged, err := translationsync.Sync(block.Content.Content, row.Content.Content)
	if err != nil {
		return nil, fail(err)
	}

	next := cloneBlockTranslation(row)
	next.Content = schema.NewPayload(s.shape(merged))
	next.SyncedVersion = block.CurrentVersion
	next.SyncError = ""
	next.UpdatedAt = s.now().UTC()
	stored, err := s.blockTranslations.Upsert(ctx, next)
	if err != nil {
		return nil, fail(err)
	}
	return stored, nil
}

func (s *service) shape(merged schema.Content) schema.Content {
	if s.mode == StorageCompact {
		return translationsync.Extract(merged)
	}
	return merged
}

func (s *service) writableLocale(raw string) (string, error) {
	locale, err := requireLocale(raw)
	if err != nil {
		return "", err
	}
	if s.defaultLocale != "" && locale == s.defaultLocale {
		return "", ErrDefaultLocale
	}
	if len(s.locales) > 0 && !slices.Contains(s.locales, locale) {
		return "", ErrLocaleUnsupported
	}
	return locale, nil
}

func requireLocale(raw string) (string, error) {
	locale := identity.NormalizeLocale(raw)
	if locale == "" {
		return "", ErrLocaleRequired
	}
	return locale, nil
}

func (s *service) emit(ctx context.Context, verb, objectType string, id, actor uuid.UUID, data map[string]any) {
	s.activity.Emit(ctx, activity.Event{Verb: verb, ObjectType: objectType, ObjectID: id, ActorID: actor, Data: data})
}
