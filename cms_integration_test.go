package cms_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-command/dispatcher"

	cms "github.com/goliatone/go-storefront-cms"
	"github.com/goliatone/go-storefront-cms/internal/blocks"
	"github.com/goliatone/go-storefront-cms/internal/commands"
	"github.com/goliatone/go-storefront-cms/internal/pages"
	"github.com/goliatone/go-storefront-cms/internal/schema"
	"github.com/goliatone/go-storefront-cms/internal/translations"
)

func sqliteConfig(t *testing.T) cms.Config {
	t.Helper()
	cfg := cms.DefaultConfig()
	cfg.Storage.DSN = "file:" + filepath.Join(t.TempDir(), "cms.db") + "?_foreign_keys=on"
	cfg.Locales = []string{"es"}
	cfg.Logging.Level = "error"
	cfg.Navigation.BaseURL = "https://shop.example.com"
	cfg.Navigation.LocalePrefixes = map[string]string{"es": "/es"}
	cfg.Commands.Enabled = true
	return cfg
}

func TestStorefrontLifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	module, err := cms.New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	page, err := module.Pages().Create(ctx, pages.CreatePageRequest{Slug: "home", Title: "Home", Publish: true})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	hero, err := module.Blocks().Create(ctx, blocks.CreateBlockRequest{
		PageID:  page.ID,
		Type:    schema.TypeHero,
		Content: &schema.Hero{Headline: "Welcome", Subheadline: "Shop now", BackgroundImage: "a.jpg"},
	})
	if err != nil {
		t.Fatalf("create hero: %v", err)
	}
	features, err := module.Blocks().Create(ctx, blocks.CreateBlockRequest{
		PageID: page.ID,
		Type:   schema.TypeFeatures,
		Content: &schema.Features{Title: "Why us", Items: []schema.FeatureItem{
			{ID: "a", Icon: "bolt", Title: "Fast"},
			{ID: "b", Icon: "lock", Title: "Safe"},
		}},
	})
	if err != nil {
		t.Fatalf("create features: %v", err)
	}

	tr := module.Translations()
	if _, err := tr.UpsertPageTranslation(ctx, translations.UpsertPageTranslationRequest{PageID: page.ID, Locale: "es", Title: "Inicio", Slug: "inicio"}); err != nil {
		t.Fatalf("page translation: %v", err)
	}
	if _, err := tr.BulkUpsertBlockTranslations(ctx, []translations.UpsertBlockTranslationRequest{
		{BlockID: hero.ID, Locale: "es", Content: &schema.Hero{Headline: "Bienvenido"}},
		{BlockID: features.ID, Locale: "es", Content: &schema.Features{Title: "Por qué", Items: []schema.FeatureItem{
			{ID: "a", Title: "Rápido"},
			{ID: "b", Title: "Seguro"},
		}}},
	}); err != nil {
		t.Fatalf("block translations: %v", err)
	}

	// Structural edits: new image, first item removed, a new item appended.
	if _, err := module.Blocks().Update(ctx, blocks.UpdateBlockRequest{ID: hero.ID, Content: &schema.Hero{Headline: "Welcome", Subheadline: "Shop now", BackgroundImage: "b.jpg"}}); err != nil {
		t.Fatalf("update hero: %v", err)
	}
	if _, err := module.Blocks().Update(ctx, blocks.UpdateBlockRequest{ID: features.ID, Content: &schema.Features{Title: "Why us", Items: []schema.FeatureItem{
		{ID: "b", Icon: "shield", Title: "Safe"},
		{ID: "c", Icon: "star", Title: "Loved"},
	}}}); err != nil {
		t.Fatalf("update features: %v", err)
	}

	view, err := module.GetPublicPage(ctx, "inicio", "es")
	if err != nil {
		t.Fatalf("public page: %v", err)
	}
	if view.Title != "Inicio" || !view.Translated || len(view.Blocks) != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}
	heroView := view.Blocks[0].Content.Content.(*schema.Hero)
	if heroView.Headline != "Bienvenido" || heroView.BackgroundImage != "b.jpg" || heroView.Subheadline != "Shop now" {
		t.Fatalf("unexpected hero: %+v", heroView)
	}
	items := view.Blocks[1].Content.Content.(*schema.Features).Items
	if len(items) != 2 || items[0].Title != "Seguro" || items[0].Icon != "shield" || items[1].Title != "Loved" {
		t.Fatalf("unexpected items: %+v", items)
	}

	urls := map[string]string{}
	for _, alt := range view.Alternates {
		urls[alt.Locale] = alt.URL
	}
	if urls["en"] != "https://shop.example.com/home" || urls["es"] != "https://shop.example.com/es/inicio" {
		t.Fatalf("unexpected alternates: %+v", urls)
	}

	if err := dispatcher.Dispatch(ctx, commands.ReorderBlocksCommand{PageID: page.ID, Moves: []blocks.Move{
		{BlockID: hero.ID, DisplayOrder: 1},
		{BlockID: features.ID, DisplayOrder: 0},
	}}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	versions, err := module.Blocks().ListVersions(ctx, hero.ID)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(versions) != 2 || versions[1].Version != 2 {
		t.Fatalf("expected two hero versions, got %d", len(versions))
	}
	if err := module.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := cms.New(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	again, err := reopened.GetPublicPage(ctx, "home", "es")
	if err != nil {
		t.Fatalf("public page after reopen: %v", err)
	}
	if again.Blocks[0].ID != features.ID || again.Blocks[0].Content.Content.(*schema.Features).Title != "Por qué" {
		t.Fatalf("expected persisted order and translation, got %+v", again.Blocks[0])
	}
}

func TestMemoryModuleNeedsNoStorage(t *testing.T) {
	cfg := cms.DefaultConfig()
	cfg.Storage.Driver = cms.StorageMemory
	cfg.Logging.Level = "error"
	module, err := cms.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer module.Close()
	if module.Container().DB() != nil {
		t.Fatalf("memory module should not open a database")
	}
	if _, err := module.GetPublicPage(context.Background(), "missing", "en"); err == nil {
		t.Fatalf("expected not found")
	}
}
