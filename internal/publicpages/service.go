// Package publicpages assembles published pages for the storefront renderer.
package publicpages

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/blocks"
	"github.com/goliatone/go-storefront-cms/internal/domain"
	"github.com/goliatone/go-storefront-cms/internal/identity"
	"github.com/goliatone/go-storefront-cms/internal/logging"
	"github.com/goliatone/go-storefront-cms/internal/pages"
	"github.com/goliatone/go-storefront-cms/internal/schema"
	"github.com/goliatone/go-storefront-cms/internal/translations"
	"github.com/goliatone/go-storefront-cms/internal/translationsync"
	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

type Service interface {
	// GetPublicPage resolves slug in locale. The slug may be the base slug
	// or a localized one. Unpublished pages are reported as not found.
	GetPublicPage(ctx context.Context, slug, locale string) (*Page, error)
}

type PageReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*pages.Page, error)
	GetBySlug(ctx context.Context, slug string) (*pages.Page, error)
}

type BlockReader interface {
	ListByPage(ctx context.Context, pageID uuid.UUID, opts blocks.ListOptions) ([]*blocks.Block, error)
}

type PageTranslationReader interface {
	Get(ctx context.Context, pageID uuid.UUID, locale string) (*translations.PageTranslation, error)
	ListByPage(ctx context.Context, pageID uuid.UUID) ([]*translations.PageTranslation, error)
	FindBySlug(ctx context.Context, slug, locale string) ([]*translations.PageTranslation, error)
}

type BlockTranslationReader interface {
	ListByBlocks(ctx context.Context, blockIDs []uuid.UUID, locale string) ([]*translations.BlockTranslation, error)
}

var ErrSlugRequired = errors.New("publicpages: slug required")

type ServiceOption func(*service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultLocale names the locale of base records. Requests without a
// locale use it.
func WithDefaultLocale(locale string) ServiceOption {
	return func(s *service) {
		if normalized := identity.NormalizeLocale(locale); normalized != "" {
			s.defaultLocale = normalized
		}
	}
}

func WithURLBuilder(builder URLBuilder) ServiceOption {
	return func(s *service) { s.urls = builder }
}

type service struct {
	pages             PageReader
	blocks            BlockReader
	pageTranslations  PageTranslationReader
	blockTranslations BlockTranslationReader
	defaultLocale     string
	urls              URLBuilder
	logger            interfaces.Logger
}

func NewService(pageReader PageReader, blockReader BlockReader, pageTranslations PageTranslationReader, blockTranslations BlockTranslationReader, opts ...ServiceOption) Service {
	s := &service{
		pages:             pageReader,
		blocks:            blockReader,
		pageTranslations:  pageTranslations,
		blockTranslations: blockTranslations,
		defaultLocale:     "en",
		logger:            logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) GetPublicPage(ctx context.Context, slug, locale string) (*Page, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, domain.Invalid("page", "slug", ErrSlugRequired)
	}
	normalized, err := pages.NormalizeSlug(slug)
	if err != nil {
		return nil, domain.NotFound("page", slug)
	}
	locale = identity.NormalizeLocale(locale)
	if locale == "" {
		locale = s.defaultLocale
	}

	page, err := s.resolve(ctx, normalized, locale)
	if err != nil {
		return nil, err
	}

	view := &Page{
		ID:              page.ID,
		Locale:          locale,
		Slug:            page.Slug,
		Title:           page.Title,
		MetaTitle:       page.Title,
		MetaDescription: page.MetaDescription,
		MetaKeywords:    page.MetaKeywords,
		PublishedAt:     page.PublishedAt,
	}

	pageTranslations, err := s.pageTranslations.ListByPage(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	if locale != s.defaultLocale {
		for _, tr := range pageTranslations {
			if tr.Locale != locale {
				continue
			}
			view.Translated = true
			view.Title = pick(tr.Title, page.Title)
			view.Slug = pick(tr.Slug, page.Slug)
			view.MetaTitle = pick(tr.MetaTitle, view.Title)
			view.MetaDescription = pick(tr.MetaDescription, page.MetaDescription)
		}
	}

	if view.Blocks, err = s.assembleBlocks(ctx, page.ID, locale); err != nil {
		return nil, err
	}
	view.Alternates = s.alternates(page, pageTranslations)

	s.logger.Debug("publicpages.resolved", "slug", normalized, "locale", locale, "page_id", page.ID, "blocks", len(view.Blocks))
	return view, nil
}

// resolve looks the slug up in the requested locale's translations first,
// then as a base slug, then as a localized slug in any locale. The default
// locale has no translations, so it starts at the base slug. The first
// published page wins.
func (s *service) resolve(ctx context.Context, slug, locale string) (*pages.Page, error) {
	if locale != s.defaultLocale {
		page, err := s.resolveLocalized(ctx, slug, locale)
		if page != nil || err != nil {
			return page, err
		}
	}

	page, err := s.pages.GetBySlug(ctx, slug)
	switch {
	case err == nil:
		if page.IsPublished {
			return page, nil
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	page, err = s.resolveLocalized(ctx, slug, "")
	if page != nil || err != nil {
		return page, err
	}
	return nil, domain.NotFound("page", slug)
}

// resolveLocalized returns the first published page whose translation in
// scope uses slug. An empty scope matches every locale.
func (s *service) resolveLocalized(ctx context.Context, slug, scope string) (*pages.Page, error) {
	matches, err := s.pageTranslations.FindBySlug(ctx, slug, scope)
	if err != nil {
		return nil, err
	}
	for _, match := range matches {
		candidate, err := s.pages.GetByID(ctx, match.PageID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if candidate.IsPublished {
			return candidate, nil
		}
	}
	return nil, nil
}

func (s *service) assembleBlocks(ctx context.Context, pageID uuid.UUID, locale string) ([]Block, error) {
	enabled := true
	owned, err := s.blocks.ListByPage(ctx, pageID, blocks.ListOptions{Enabled: &enabled})
	if err != nil {
		return nil, err
	}

	localized := map[uuid.UUID]*translations.BlockTranslation{}
	if locale != s.defaultLocale && len(owned) > 0 {
		ids := make([]uuid.UUID, 0, len(owned))
		for _, block := range owned {
			ids = append(ids, block.ID)
		}
		rows, err := s.blockTranslations.ListByBlocks(ctx, ids, locale)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			localized[row.BlockID] = row
		}
	}

	out := make([]Block, 0, len(owned))
	for _, block := range owned {
		base := block.Content.Content
		if base == nil {
			s.logger.Warn("publicpages.block.unreadable", "block_id", block.ID, "error", block.Content.Err())
			continue
		}
		view := Block{
			ID:           block.ID,
			Type:         block.Type,
			Key:          block.Key,
			DisplayOrder: block.DisplayOrder,
			Version:      block.CurrentVersion,
			Content:      schema.NewPayload(base),
			Settings:     block.Settings,
		}
		if row, ok := localized[block.ID]; ok && row.Content.Content != nil {
			// Merging on read keeps stale rows aligned with the current base.
			merged, err := translationsync.Sync(base, row.Content.Content)
			if err != nil {
				s.logger.Warn("publicpages.block.merge_failed", "block_id", block.ID, "locale", locale, "error", err)
			} else {
				view.Content = schema.NewPayload(merged)
				view.Translated = true
			}
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *service) alternates(page *pages.Page, localized []*translations.PageTranslation) []Alternate {
	out := []Alternate{{Locale: s.defaultLocale, Slug: page.Slug}}
	for _, tr := range localized {
		if tr.Locale == s.defaultLocale {
			continue
		}
		out = append(out, Alternate{Locale: tr.Locale, Slug: pick(tr.Slug, page.Slug)})
	}
	if s.urls == nil {
		return out
	}
	for i := range out {
		url, err := s.urls.PageURL(out[i].Locale, out[i].Slug)
		if err != nil {
			s.logger.Warn("publicpages.alternate.url_failed", "page_id", page.ID, "locale", out[i].Locale, "error", err)
			continue
		}
		out[i].URL = url
	}
	return out
}

func pick(translated, base string) string {
	if strings.TrimSpace(translated) != "" {
		return translated
	}
	return base
}
