// Package cms is the storefront content module: pages built from typed
// blocks, a version ledger per block, per-locale translations that follow
// structural edits, and an assembled public page view.
package cms

import (
	"context"

	"github.com/goliatone/go-storefront-cms/internal/blocks"
	"github.com/goliatone/go-storefront-cms/internal/di"
	"github.com/goliatone/go-storefront-cms/internal/importer"
	"github.com/goliatone/go-storefront-cms/internal/pages"
	"github.com/goliatone/go-storefront-cms/internal/publicpages"
	"github.com/goliatone/go-storefront-cms/internal/translations"
)

// PageService exports the pages service contract.
type PageService = pages.Service

// BlockService exports the blocks and version ledger contract.
type BlockService = blocks.Service

// TranslationService exports the translation store contract.
type TranslationService = translations.Service

// PublicPageService exports the public page assembler contract.
type PublicPageService = publicpages.Service

type (
	PublicPage      = publicpages.Page
	PublicBlock     = publicpages.Block
	PublicAlternate = publicpages.Alternate
	ImportOptions   = importer.Options
	ImportResult    = importer.Result
)

// Option overrides container wiring.
type Option = di.Option

var (
	WithBunDB          = di.WithBunDB
	WithLoggerProvider = di.WithLoggerProvider
	WithActivitySink   = di.WithActivitySink
	WithCache          = di.WithCache
)

// Module represents the top level CMS runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a CMS module from cfg. Storage is opened and migrated here
// when the configuration asks for it.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

func (m *Module) Pages() PageService {
	return m.container.PageService()
}

func (m *Module) Blocks() BlockService {
	return m.container.BlockService()
}

func (m *Module) Translations() TranslationService {
	return m.container.TranslationService()
}

func (m *Module) Public() PublicPageService {
	return m.container.PublicPageService()
}

// Importer returns the frontmatter seed importer.
func (m *Module) Importer() *importer.Importer {
	return m.container.Importer()
}

// GetPublicPage is shorthand for Public().GetPublicPage.
func (m *Module) GetPublicPage(ctx context.Context, slug, locale string) (*PublicPage, error) {
	return m.container.PublicPageService().GetPublicPage(ctx, slug, locale)
}

// Close releases storage opened by New and unsubscribes command handlers.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
