package pages_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/domain"
	"github.com/goliatone/go-storefront-cms/internal/pages"
	"github.com/goliatone/go-storefront-cms/pkg/testsupport"
)

func TestBunPageRepositoryRoundTrip(t *testing.T) {
	db := testsupport.NewMigratedBunDB(t)
	repo := pages.NewBunPageRepository(db)
	svc := pages.NewService(repo)
	ctx := context.Background()

	page, err := svc.Create(ctx, pages.CreatePageRequest{Slug: "home", Title: "Home", Publish: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	loaded, err := svc.GetBySlug(ctx, "home")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if loaded.ID != page.ID || !loaded.IsPublished || loaded.PublishedAt == nil {
		t.Fatalf("unexpected page %+v", loaded)
	}

	// the unique index backs up the service check
	_, err = repo.Create(ctx, &pages.Page{ID: uuid.New(), Slug: "home", Title: "Dup", CreatedAt: time.Now(), UpdatedAt: time.Now()})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict from unique index, got %v", err)
	}

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	published := false
	drafts, err := svc.List(ctx, pages.ListOptions{Published: &published})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(drafts) != 0 {
		t.Fatalf("expected no drafts, got %d", len(drafts))
	}
}

func TestBunPageDeleteCascades(t *testing.T) {
	db := testsupport.NewMigratedBunDB(t)
	repo := pages.NewBunPageRepository(db)
	svc := pages.NewService(repo)
	ctx := context.Background()

	page, err := svc.Create(ctx, pages.CreatePageRequest{Slug: "landing", Title: "Landing"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	blockID := uuid.New()
	statements := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO blocks (id, page_id, block_type, content, current_version) VALUES (?, ?, 'hero', '{"type":"hero"}', 1)`, []any{blockID, page.ID}},
		{`INSERT INTO block_versions (id, block_id, version, content) VALUES (?, ?, 1, '{"type":"hero"}')`, []any{uuid.New(), blockID}},
		{`INSERT INTO block_translations (id, block_id, locale, content) VALUES (?, ?, 'es', '{"type":"hero"}')`, []any{uuid.New(), blockID}},
		{`INSERT INTO page_translations (id, page_id, locale, title, slug) VALUES (?, ?, 'es', 'Inicio', 'inicio')`, []any{uuid.New(), page.ID}},
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := svc.Delete(ctx, pages.DeletePageRequest{ID: page.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, table := range []string{"pages", "blocks", "block_versions", "block_translations", "page_translations"} {
		var count int
		if err := db.NewSelect().Table(table).ColumnExpr("COUNT(*)").Scan(ctx, &count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("expected %s to be empty after cascade, got %d rows", table, count)
		}
	}
	if err := svc.Delete(ctx, pages.DeletePageRequest{ID: page.ID}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBunPageRepositoryWithCache(t *testing.T) {
	db := testsupport.NewMigratedBunDB(t)
	cfg := repocache.DefaultConfig()
	cfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	repo := pages.NewBunPageRepositoryWithCache(db, cacheService, repocache.NewDefaultKeySerializer())
	svc := pages.NewService(repo)
	ctx := context.Background()

	page, err := svc.Create(ctx, pages.CreatePageRequest{Slug: "cached", Title: "Cached"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 2; i++ {
		got, err := svc.Get(ctx, page.ID)
		if err != nil || got.Slug != "cached" {
			t.Fatalf("get %d: %v %+v", i, err, got)
		}
	}
	if err := repo.InvalidateCache(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
}
