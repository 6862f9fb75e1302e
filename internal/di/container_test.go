package di_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-storefront-cms/internal/blocks"
	"github.com/goliatone/go-storefront-cms/internal/di"
	"github.com/goliatone/go-storefront-cms/internal/logging"
	"github.com/goliatone/go-storefront-cms/internal/pages"
	"github.com/goliatone/go-storefront-cms/internal/runtimeconfig"
	"github.com/goliatone/go-storefront-cms/internal/schema"
	"github.com/goliatone/go-storefront-cms/internal/translations"
	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
	"github.com/goliatone/go-storefront-cms/pkg/testsupport"
)

type recordingSink struct {
	mu      sync.Mutex
	records []interfaces.ActivityRecord
}

func (s *recordingSink) Log(_ context.Context, record interfaces.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *recordingSink) verbs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Verb)
	}
	return out
}

type nopProvider struct{}

func (nopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

func memoryConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = runtimeconfig.StorageMemory
	cfg.Storage.DSN = ""
	cfg.Locales = []string{"es"}
	return cfg
}

// exercise runs the same publish, translate, edit and read flow against any
// wiring.
func exercise(t *testing.T, c *di.Container) {
	t.Helper()
	ctx := context.Background()

	page, err := c.PageService().Create(ctx, pages.CreatePageRequest{Slug: "home", Title: "Home", Publish: true})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	block, err := c.BlockService().Create(ctx, blocks.CreateBlockRequest{
		PageID:  page.ID,
		Type:    schema.TypeHero,
		Content: &schema.Hero{Headline: "Welcome", BackgroundImage: "a.jpg"},
	})
	if err != nil {
		t.Fatalf("create block: %v", err)
	}
	if _, err := c.TranslationService().UpsertPageTranslation(ctx, translations.UpsertPageTranslationRequest{PageID: page.ID, Locale: "es", Title: "Inicio", Slug: "inicio"}); err != nil {
		t.Fatalf("translate page: %v", err)
	}
	if _, err := c.TranslationService().UpsertBlockTranslation(ctx, translations.UpsertBlockTranslationRequest{BlockID: block.ID, Locale: "es", Content: &schema.Hero{Headline: "Bienvenido"}}); err != nil {
		t.Fatalf("translate block: %v", err)
	}
	if _, err := c.BlockService().Update(ctx, blocks.UpdateBlockRequest{ID: block.ID, Content: &schema.Hero{Headline: "Welcome", BackgroundImage: "b.jpg"}}); err != nil {
		t.Fatalf("update block: %v", err)
	}

	view, err := c.PublicPageService().GetPublicPage(ctx, "inicio", "es")
	if err != nil {
		t.Fatalf("public page: %v", err)
	}
	if view.Title != "Inicio" || len(view.Blocks) != 1 {
		t.Fatalf("unexpected view: %+v", view)
	}
	hero := view.Blocks[0].Content.Content.(*schema.Hero)
	if hero.Headline != "Bienvenido" || hero.BackgroundImage != "b.jpg" {
		t.Fatalf("expected synced hero, got %+v", hero)
	}

	if err := c.PageService().Delete(ctx, pages.DeletePageRequest{ID: page.ID}); err != nil {
		t.Fatalf("delete page: %v", err)
	}
	rows, err := c.BlockTranslationRepository().ListByBlock(ctx, block.ID)
	if err != nil {
		t.Fatalf("list translations: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected translations removed with the page, got %d", len(rows))
	}
}

func TestMemoryContainer(t *testing.T) {
	sink := &recordingSink{}
	c, err := di.NewContainer(context.Background(), memoryConfig(), di.WithLoggerProvider(nopProvider{}), di.WithActivitySink(sink))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	if c.DB() != nil {
		t.Fatalf("memory container should not open a database")
	}
	exercise(t, c)

	if len(sink.verbs()) == 0 {
		t.Fatalf("expected activity records")
	}
}

func TestSQLiteContainerWithCache(t *testing.T) {
	db := testsupport.NewMigratedBunDB(t)

	cfg := runtimeconfig.DefaultConfig()
	cfg.Locales = []string{"es"}
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = time.Minute

	c, err := di.NewContainer(context.Background(), cfg, di.WithBunDB(db), di.WithLoggerProvider(nopProvider{}))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	if c.CacheService() == nil || c.KeySerializer() == nil {
		t.Fatalf("expected cache wiring")
	}
	exercise(t, c)
}

func TestContainerRejectsInvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Translations.StorageMode = "full"
	if _, err := di.NewContainer(context.Background(), cfg); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestContainerBuildsLocaleURLs(t *testing.T) {
	cfg := memoryConfig()
	cfg.Navigation.BaseURL = "https://shop.example.com"
	cfg.Navigation.LocalePrefixes = map[string]string{"es": "/es"}

	c, err := di.NewContainer(context.Background(), cfg, di.WithLoggerProvider(nopProvider{}))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()
	if c.RouteManager() == nil {
		t.Fatalf("expected route manager")
	}

	ctx := context.Background()
	page, err := c.PageService().Create(ctx, pages.CreatePageRequest{Slug: "home", Title: "Home", Publish: true})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	if _, err := c.TranslationService().UpsertPageTranslation(ctx, translations.UpsertPageTranslationRequest{PageID: page.ID, Locale: "es", Title: "Inicio", Slug: "inicio"}); err != nil {
		t.Fatalf("translate page: %v", err)
	}
	view, err := c.PublicPageService().GetPublicPage(ctx, "home", "en")
	if err != nil {
		t.Fatalf("public page: %v", err)
	}
	urls := map[string]string{}
	for _, alt := range view.Alternates {
		urls[alt.Locale] = alt.URL
	}
	if urls["en"] != "https://shop.example.com/home" || urls["es"] != "https://shop.example.com/es/inicio" {
		t.Fatalf("unexpected alternates: %+v", urls)
	}
}

func TestDefaultConfigOpensSQLiteFile(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.DSN = "file:" + filepath.Join(t.TempDir(), "cms.db") + "?_foreign_keys=on"
	cfg.Locales = []string{"es"}

	c, err := di.NewContainer(context.Background(), cfg, di.WithLoggerProvider(nopProvider{}))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()
	if c.DB() == nil {
		t.Fatalf("expected an opened database")
	}
	exercise(t, c)
}

func TestBunRepositoriesConstruct(t *testing.T) {
	db := testsupport.NewMigratedBunDB(t)
	constructors := map[string]func(){
		"pages":              func() { pages.NewPageRepository(db) },
		"bun pages":          func() { pages.NewBunPageRepository(db) },
		"blocks":             func() { blocks.NewBlockRecordRepository(db) },
		"block versions":     func() { blocks.NewBlockVersionRecordRepository(db) },
		"bun blocks":         func() { blocks.NewBunBlockRepository(db) },
		"page translations":  func() { translations.NewPageTranslationRecordRepository(db) },
		"block translations": func() { translations.NewBlockTranslationRecordRepository(db) },
		"bun page tr":        func() { translations.NewBunPageTranslationRepository(db) },
		"bun block tr":       func() { translations.NewBunBlockTranslationRepository(db) },
	}
	for name, construct := range constructors {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("constructor panicked: %v", r)
				}
			}()
			construct()
		})
	}
}
