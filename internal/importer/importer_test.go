package importer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-storefront-cms/internal/blocks"
	"github.com/goliatone/go-storefront-cms/internal/di"
	"github.com/goliatone/go-storefront-cms/internal/domain"
	"github.com/goliatone/go-storefront-cms/internal/identity"
	"github.com/goliatone/go-storefront-cms/internal/importer"
	"github.com/goliatone/go-storefront-cms/internal/logging"
	"github.com/goliatone/go-storefront-cms/internal/runtimeconfig"
	"github.com/goliatone/go-storefront-cms/internal/schema"
	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

const homeDoc = `---
slug: home
title: Home
meta_description: Our shop
published: true
blocks:
  - key: hero
    type: hero
    content:
      headline: Welcome
      background_image: a.jpg
  - key: features
    type: features
    settings:
      theme: dark
    content:
      title: Why us
      items:
        - id: fast
          icon: bolt
          title: Fast
        - id: safe
          icon: lock
          title: Safe
translations:
  es:
    title: Inicio
    slug: inicio
    blocks:
      hero:
        headline: Bienvenido
      features:
        title: Por qué
        items:
          - id: fast
            title: Rápido
---
Body text is not imported.
`

type nopProvider struct{}

func (nopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

func newImporter(t *testing.T) (*di.Container, *importer.Importer) {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = runtimeconfig.StorageMemory
	cfg.Locales = []string{"es"}
	c, err := di.NewContainer(context.Background(), cfg, di.WithLoggerProvider(nopProvider{}))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, importer.New(c.PageService(), c.BlockService(), c.TranslationService())
}

func TestParseRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"missing slug", "---\ntitle: x\n---\n", importer.ErrSlugMissing},
		{"missing key", "---\nslug: a\nblocks:\n  - type: hero\n---\n", importer.ErrBlockKeyMissing},
		{"repeated key", "---\nslug: a\nblocks:\n  - key: x\n    type: hero\n  - key: x\n    type: cta\n---\n", importer.ErrBlockKeyRepeat},
		{"unknown key", "---\nslug: a\ntranslations:\n  es:\n    blocks:\n      ghost: {}\n---\n", importer.ErrUnknownBlockKey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := importer.Parse("doc.md", []byte(tc.doc))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestImportDirCreatesThenUpdatesInPlace(t *testing.T) {
	c, imp := newImporter(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"pages/home.md": {Data: []byte(homeDoc)},
		"README.txt":    {Data: []byte("ignored")},
	}

	res, err := imp.ImportDir(ctx, fsys, importer.Options{})
	if err != nil {
		t.Fatalf("ImportDir: %v", err)
	}
	if res.Files != 1 || res.PagesCreated != 1 || res.BlocksCreated != 2 || res.Translations != 3 {
		t.Fatalf("unexpected first result: %+v", res)
	}

	pageID := identity.ImportedPageUUID("home")
	view, err := c.PublicPageService().GetPublicPage(ctx, "inicio", "es")
	if err != nil {
		t.Fatalf("public page: %v", err)
	}
	if view.ID != pageID || len(view.Blocks) != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}
	features := view.Blocks[1].Content.Content.(*schema.Features)
	if features.Title != "Por qué" || features.Items[0].Title != "Rápido" || features.Items[1].Title != "Safe" {
		t.Fatalf("unexpected features: %+v", features)
	}

	again, err := imp.ImportDir(ctx, fsys, importer.Options{})
	if err != nil {
		t.Fatalf("second ImportDir: %v", err)
	}
	if again.PagesCreated != 0 || again.PagesUpdated != 0 || again.BlocksCreated != 0 || again.BlocksUpdated != 0 {
		t.Fatalf("re-import should not change anything: %+v", again)
	}
	hero, err := c.BlockService().Get(ctx, identity.ImportedBlockUUID(pageID, "hero"))
	if err != nil {
		t.Fatalf("get hero: %v", err)
	}
	if hero.CurrentVersion != 1 {
		t.Fatalf("expected no new versions, got %d", hero.CurrentVersion)
	}
}

func TestImportReordersUpdatesAndPrunes(t *testing.T) {
	c, imp := newImporter(t)
	ctx := context.Background()
	if _, err := imp.ImportDir(ctx, fstest.MapFS{"home.md": {Data: []byte(homeDoc)}}, importer.Options{}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	edited := `---
slug: home
title: Home
published: true
blocks:
  - key: cta
    type: cta
    content:
      title: Join
      button_link: /join
  - key: hero
    type: hero
    content:
      headline: Welcome
      background_image: b.jpg
---
`
	res, err := imp.ImportDir(ctx, fstest.MapFS{"home.md": {Data: []byte(edited)}}, importer.Options{Prune: true})
	if err != nil {
		t.Fatalf("ImportDir: %v", err)
	}
	if res.BlocksCreated != 1 || res.BlocksUpdated != 1 || res.BlocksDeleted != 1 || res.PagesUpdated != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	pageID := identity.ImportedPageUUID("home")
	list, err := c.BlockService().ListForPage(ctx, pageID, blocks.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "cta" || list[1].Key != "hero" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if list[1].CurrentVersion != 2 {
		t.Fatalf("expected hero revised, got version %d", list[1].CurrentVersion)
	}

	view, err := c.PublicPageService().GetPublicPage(ctx, "inicio", "es")
	if err != nil {
		t.Fatalf("public page: %v", err)
	}
	hero := view.Blocks[1].Content.Content.(*schema.Hero)
	if hero.Headline != "Bienvenido" || hero.BackgroundImage != "b.jpg" {
		t.Fatalf("translation should follow the new base: %+v", hero)
	}
}

// Documents are fully parsed before anything is written, so a rejected
// document leaves no page behind.
func TestImportDirReportsFailuresAndContinues(t *testing.T) {
	c, imp := newImporter(t)
	fsys := fstest.MapFS{
		"a.md":    {Data: []byte("---\ntitle: no slug\n---\n")},
		"home.md": {Data: []byte(homeDoc)},
		"bad.md":  {Data: []byte("---\nslug: bad\nblocks:\n  - key: x\n    type: carousel\n---\n")},
	}
	res, err := imp.ImportDir(context.Background(), fsys, importer.Options{})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if res.Files != 3 || res.PagesCreated != 1 || len(res.FailedDocument) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.FailedDocument[0] != "a.md" || res.FailedDocument[1] != "bad.md" {
		t.Fatalf("unexpected failed documents: %v", res.FailedDocument)
	}
	if !errors.Is(err, schema.ErrUnknownType) || !errors.Is(err, importer.ErrSlugMissing) {
		t.Fatalf("expected both causes, got %v", err)
	}
	if _, err := c.PageService().GetBySlug(context.Background(), "bad"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("rejected document should not create a page, got %v", err)
	}
}

func TestWatchReimportsChangedFiles(t *testing.T) {
	c, imp := newImporter(t)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan importer.WatchEvent, 4)
	done := make(chan error, 1)
	go func() {
		done <- imp.Watch(ctx, dir, importer.Options{}, func(ev importer.WatchEvent) {
			select {
			case events <- ev:
			default:
			}
		})
	}()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Fatalf("Watch: %v", err)
		}
	}()

	// The watcher registers asynchronously; keep writing until it notices.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		if err := os.WriteFile(filepath.Join(dir, "home.md"), []byte(homeDoc), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		select {
		case ev := <-events:
			if ev.Err != nil || ev.Path != "home.md" {
				t.Fatalf("unexpected event: %+v", ev)
			}
			if _, err := c.PageService().Get(context.Background(), identity.ImportedPageUUID("home")); err != nil {
				t.Fatalf("page not imported: %v", err)
			}
			return
		case <-tick.C:
		case <-deadline:
			t.Fatalf("timed out waiting for watch event")
		}
	}
}
