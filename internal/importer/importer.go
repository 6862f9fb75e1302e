package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/blocks"
	"github.com/goliatone/go-storefront-cms/internal/domain"
	"github.com/goliatone/go-storefront-cms/internal/identity"
	"github.com/goliatone/go-storefront-cms/internal/logging"
	"github.com/goliatone/go-storefront-cms/internal/pages"
	"github.com/goliatone/go-storefront-cms/internal/schema"
	"github.com/goliatone/go-storefront-cms/internal/translations"
	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

const DefaultPattern = "*.md"

// Options tunes an import run.
type Options struct {
	// Pattern filters file base names; defaults to DefaultPattern.
	Pattern string
	// Prune deletes blocks of an imported page that the document no longer
	// lists.
	Prune bool
	// Actor is recorded as the creating and updating user.
	Actor uuid.UUID
}

// Result counts what an import changed.
type Result struct {
	Files          int
	PagesCreated   int
	PagesUpdated   int
	BlocksCreated  int
	BlocksUpdated  int
	BlocksDeleted  int
	Translations   int
	FailedDocument []string
}

func (r *Result) merge(other Result) {
	r.Files += other.Files
	r.PagesCreated += other.PagesCreated
	r.PagesUpdated += other.PagesUpdated
	r.BlocksCreated += other.BlocksCreated
	r.BlocksUpdated += other.BlocksUpdated
	r.BlocksDeleted += other.BlocksDeleted
	r.Translations += other.Translations
	r.FailedDocument = append(r.FailedDocument, other.FailedDocument...)
}

// Importer writes seed documents through the page, block and translation
// services so every invariant those services keep also holds for imports.
// Ids are derived from the page slug and block key, which makes repeated
// imports update in place.
type Importer struct {
	pages        pages.Service
	blocks       blocks.Service
	translations translations.Service
	logger       interfaces.Logger
}

type Option func(*Importer)

func WithLogger(logger interfaces.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func New(pageSvc pages.Service, blockSvc blocks.Service, translationSvc translations.Service, opts ...Option) *Importer {
	i := &Importer{
		pages:        pageSvc,
		blocks:       blockSvc,
		translations: translationSvc,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ImportDir imports every matching file under fsys. A failing document is
// logged and reported; the remaining documents are still imported.
func (i *Importer) ImportDir(ctx context.Context, fsys fs.FS, opts Options) (Result, error) {
	pattern := opts.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}

	var paths []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, matchErr := path.Match(pattern, path.Base(p))
		if matchErr != nil {
			return fmt.Errorf("importer: pattern %q: %w", pattern, matchErr)
		}
		if ok {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	slices.Sort(paths)

	var (
		total Result
		errs  []error
	)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		res, err := i.ImportFile(ctx, fsys, p, opts)
		total.merge(res)
		if err != nil {
			total.FailedDocument = append(total.FailedDocument, p)
			errs = append(errs, err)
		}
	}
	i.logger.Info("importer.dir.completed",
		"files", total.Files,
		"pages_created", total.PagesCreated,
		"pages_updated", total.PagesUpdated,
		"blocks_created", total.BlocksCreated,
		"blocks_updated", total.BlocksUpdated,
		"failed", len(total.FailedDocument),
	)
	return total, errors.Join(errs...)
}

// ImportFile parses and imports one document.
func (i *Importer) ImportFile(ctx context.Context, fsys fs.FS, name string, opts Options) (Result, error) {
	source, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Result{}, fmt.Errorf("importer: read %s: %w", name, err)
	}
	doc, err := Parse(name, source)
	if err != nil {
		i.logger.Warn("importer.file.invalid", "path", name, "error", err)
		return Result{Files: 1}, err
	}
	res, err := i.Import(ctx, doc, opts)
	res.Files = 1
	if err != nil {
		i.logger.Error("importer.file.failed", "path", name, "slug", doc.Slug, "error", err)
	}
	return res, err
}

// Import applies one parsed document.
func (i *Importer) Import(ctx context.Context, doc *Document, opts Options) (Result, error) {
	var res Result
	page, err := i.applyPage(ctx, doc, opts, &res)
	if err != nil {
		return res, err
	}
	keyed, err := i.applyBlocks(ctx, page, doc, opts, &res)
	if err != nil {
		return res, err
	}
	if err := i.applyTranslations(ctx, page, doc, keyed, opts, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (i *Importer) applyPage(ctx context.Context, doc *Document, opts Options, res *Result) (*pages.Page, error) {
	id := identity.ImportedPageUUID(doc.Slug)
	existing, err := i.pages.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		created, err := i.pages.Create(ctx, pages.CreatePageRequest{
			ID:              id,
			Slug:            doc.Slug,
			Title:           doc.Title,
			MetaDescription: doc.MetaDescription,
			MetaKeywords:    doc.MetaKeywords,
			Publish:         doc.Published,
			CreatedBy:       opts.Actor,
		})
		if err != nil {
			return nil, fmt.Errorf("importer: create page %s: %w", doc.Slug, err)
		}
		res.PagesCreated++
		return created, nil
	case err != nil:
		return nil, fmt.Errorf("importer: load page %s: %w", doc.Slug, err)
	}

	if existing.Title == doc.Title &&
		existing.MetaDescription == doc.MetaDescription &&
		existing.MetaKeywords == doc.MetaKeywords &&
		existing.IsPublished == doc.Published {
		return existing, nil
	}
	updated, err := i.pages.Update(ctx, pages.UpdatePageRequest{
		ID:              id,
		Title:           &doc.Title,
		MetaDescription: &doc.MetaDescription,
		MetaKeywords:    &doc.MetaKeywords,
		Published:       &doc.Published,
		UpdatedBy:       opts.Actor,
	})
	if err != nil {
		return nil, fmt.Errorf("importer: update page %s: %w", doc.Slug, err)
	}
	res.PagesUpdated++
	return updated, nil
}

func (i *Importer) applyBlocks(ctx context.Context, page *pages.Page, doc *Document, opts Options, res *Result) (map[string]*blocks.Block, error) {
	current, err := i.blocks.ListForPage(ctx, page.ID, blocks.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("importer: list blocks %s: %w", doc.Slug, err)
	}
	byID := make(map[uuid.UUID]*blocks.Block, len(current))
	for _, b := range current {
		byID[b.ID] = b
	}

	keyed := make(map[string]*blocks.Block, len(doc.Blocks))
	wanted := make(map[uuid.UUID]struct{}, len(doc.Blocks))
	var moves []blocks.Move
	for order, spec := range doc.Blocks {
		blockType, err := schema.ParseType(spec.Type)
		if err != nil {
			return nil, fmt.Errorf("importer: %s block %q: %w", doc.Slug, spec.Key, err)
		}
		content, err := decodeContent(blockType, spec.Content)
		if err != nil {
			return nil, fmt.Errorf("importer: %s block %q: %w", doc.Slug, spec.Key, err)
		}
		settings, _ := normalize(spec.Settings).(map[string]any)
		enabled := spec.Enabled == nil || *spec.Enabled

		id := identity.ImportedBlockUUID(page.ID, spec.Key)
		wanted[id] = struct{}{}
		existing, ok := byID[id]
		if !ok {
			created, err := i.blocks.Create(ctx, blocks.CreateBlockRequest{
				ID:           id,
				PageID:       page.ID,
				Type:         blockType,
				Key:          spec.Key,
				Content:      content,
				DisplayOrder: &order,
				Enabled:      &enabled,
				Settings:     settings,
				CreatedBy:    opts.Actor,
			})
			if err != nil {
				return nil, fmt.Errorf("importer: create block %s/%s: %w", doc.Slug, spec.Key, err)
			}
			res.BlocksCreated++
			keyed[spec.Key] = created
			continue
		}

		if existing.DisplayOrder != order {
			moves = append(moves, blocks.Move{BlockID: id, DisplayOrder: order})
		}
		if existing.Type == blockType && existing.IsEnabled == enabled &&
			existing.Content.Content != nil && schema.Equal(existing.Content.Content, content) &&
			sameSettings(existing.Settings, settings) {
			keyed[spec.Key] = existing
			continue
		}
		updated, err := i.blocks.Update(ctx, blocks.UpdateBlockRequest{
			ID:        id,
			Type:      &blockType,
			Enabled:   &enabled,
			Content:   content,
			Settings:  &settings,
			UpdatedBy: opts.Actor,
		})
		if err != nil {
			return nil, fmt.Errorf("importer: update block %s/%s: %w", doc.Slug, spec.Key, err)
		}
		res.BlocksUpdated++
		keyed[spec.Key] = updated
	}

	if opts.Prune {
		for _, b := range current {
			if _, keep := wanted[b.ID]; keep {
				continue
			}
			if err := i.blocks.Delete(ctx, blocks.DeleteBlockRequest{ID: b.ID, DeletedBy: opts.Actor}); err != nil {
				return nil, fmt.Errorf("importer: prune block %s: %w", b.ID, err)
			}
			res.BlocksDeleted++
		}
	}
	if len(moves) > 0 {
		if _, err := i.blocks.Reorder(ctx, blocks.ReorderRequest{PageID: page.ID, Moves: moves, UpdatedBy: opts.Actor}); err != nil {
			return nil, fmt.Errorf("importer: reorder %s: %w", doc.Slug, err)
		}
	}
	return keyed, nil
}

func (i *Importer) applyTranslations(ctx context.Context, page *pages.Page, doc *Document, keyed map[string]*blocks.Block, opts Options, res *Result) error {
	locales := make([]string, 0, len(doc.Translations))
	for locale := range doc.Translations {
		locales = append(locales, locale)
	}
	slices.Sort(locales)

	for _, locale := range locales {
		tr := doc.Translations[locale]
		if _, err := i.translations.UpsertPageTranslation(ctx, translations.UpsertPageTranslationRequest{
			PageID:          page.ID,
			Locale:          locale,
			Title:           tr.Title,
			Slug:            tr.Slug,
			MetaTitle:       tr.MetaTitle,
			MetaDescription: tr.MetaDescription,
			UpdatedBy:       opts.Actor,
		}); err != nil {
			return fmt.Errorf("importer: %s page translation %s: %w", doc.Slug, locale, err)
		}
		res.Translations++

		keys := make([]string, 0, len(tr.Blocks))
		for key := range tr.Blocks {
			keys = append(keys, key)
		}
		if len(keys) == 0 {
			continue
		}
		slices.Sort(keys)

		items := make([]translations.UpsertBlockTranslationRequest, 0, len(keys))
		for _, key := range keys {
			block := keyed[key]
			if block == nil {
				return fmt.Errorf("%w: %s %s/%q", ErrUnknownBlockKey, doc.Slug, locale, key)
			}
			content, err := decodeContent(block.Type, tr.Blocks[key])
			if err != nil {
				return fmt.Errorf("importer: %s %s/%s: %w", doc.Slug, locale, key, err)
			}
			items = append(items, translations.UpsertBlockTranslationRequest{
				BlockID:   block.ID,
				Locale:    locale,
				Content:   content,
				UpdatedBy: opts.Actor,
			})
		}
		written, err := i.translations.BulkUpsertBlockTranslations(ctx, items)
		if err != nil {
			return fmt.Errorf("importer: %s block translations %s: %w", doc.Slug, locale, err)
		}
		res.Translations += len(written)
	}
	return nil
}
