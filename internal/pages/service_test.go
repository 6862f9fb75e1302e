package pages_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/domain"
	"github.com/goliatone/go-storefront-cms/internal/pages"
)

type steppingClock struct {
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

func newService(t *testing.T, opts ...pages.ServiceOption) (pages.Service, *steppingClock) {
	t.Helper()
	clock := &steppingClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts = append([]pages.ServiceOption{pages.WithClock(clock.Now)}, opts...)
	return pages.NewService(pages.NewMemoryPageRepository(), opts...), clock
}

func TestCreateNormalizesSlugAndValidates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	page, err := svc.Create(ctx, pages.CreatePageRequest{Slug: " Summer Sale ", Title: "Summer"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if page.Slug != "summer-sale" {
		t.Fatalf("expected normalized slug, got %q", page.Slug)
	}
	if page.IsPublished || page.PublishedAt != nil {
		t.Fatalf("new pages start as drafts")
	}

	_, err = svc.Create(ctx, pages.CreatePageRequest{Slug: "summer-sale", Title: "Again"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected slug conflict, got %v", err)
	}

	_, err = svc.Create(ctx, pages.CreatePageRequest{Slug: "no-title"})
	if !errors.Is(err, domain.ErrValidation) || !errors.Is(err, pages.ErrTitleRequired) {
		t.Fatalf("expected title validation error, got %v", err)
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "title" {
		t.Fatalf("expected field context, got %v", err)
	}
}

func TestPublishTimestampRecordsFirstPublish(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	editor := uuid.New()

	page, err := svc.Create(ctx, pages.CreatePageRequest{Slug: "about", Title: "About", CreatedBy: editor})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	published, err := svc.Publish(ctx, page.ID, editor)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !published.IsPublished || published.PublishedAt == nil {
		t.Fatalf("expected published page with timestamp")
	}
	first := *published.PublishedAt

	unpublished, err := svc.Unpublish(ctx, page.ID, editor)
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if unpublished.IsPublished || unpublished.PublishedAt == nil || !unpublished.PublishedAt.Equal(first) {
		t.Fatalf("unpublish must keep the first publish timestamp, got %+v", unpublished.PublishedAt)
	}

	again, err := svc.Publish(ctx, page.ID, editor)
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if !again.PublishedAt.Equal(first) {
		t.Fatalf("expected timestamp %v to be stable, got %v", first, again.PublishedAt)
	}
	if !again.UpdatedAt.After(first) {
		t.Fatalf("expected updated_at to move forward")
	}
}

func TestUpdateIsPartial(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	page, _ := svc.Create(ctx, pages.CreatePageRequest{Slug: "faq", Title: "FAQ", MetaDescription: "Questions"})
	title := "Help"
	updated, err := svc.Update(ctx, pages.UpdatePageRequest{ID: page.ID, Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Help" || updated.MetaDescription != "Questions" || updated.Slug != "faq" {
		t.Fatalf("unexpected patch result %+v", updated)
	}

	if _, err := svc.Update(ctx, pages.UpdatePageRequest{ID: page.ID}); !errors.Is(err, pages.ErrEmptyPatch) {
		t.Fatalf("expected empty patch error, got %v", err)
	}
	if _, err := svc.Update(ctx, pages.UpdatePageRequest{ID: uuid.New(), Title: &title}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	svc.Create(ctx, pages.CreatePageRequest{Slug: "home", Title: "Home", CreatedBy: alice, Publish: true})
	svc.Create(ctx, pages.CreatePageRequest{Slug: "draft", Title: "Draft", CreatedBy: alice})
	svc.Create(ctx, pages.CreatePageRequest{Slug: "promo", Title: "Promo", CreatedBy: bob, Publish: true})

	published := true
	list, err := svc.List(ctx, pages.ListOptions{Published: &published})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Slug != "home" || list[1].Slug != "promo" {
		t.Fatalf("unexpected published pages %+v", list)
	}

	byAlice, _ := svc.List(ctx, pages.ListOptions{CreatedBy: alice})
	if len(byAlice) != 2 {
		t.Fatalf("expected two pages by alice, got %d", len(byAlice))
	}
	bySlug, _ := svc.List(ctx, pages.ListOptions{Slug: "Promo"})
	if len(bySlug) != 1 || bySlug[0].CreatedBy != bob {
		t.Fatalf("expected promo page, got %+v", bySlug)
	}
}

func TestDeleteRunsHooksAndReportsMissing(t *testing.T) {
	var cascaded []uuid.UUID
	hook := func(_ context.Context, id uuid.UUID) error {
		cascaded = append(cascaded, id)
		return nil
	}
	svc, _ := newService(t, pages.WithDeleteHooks(hook))
	ctx := context.Background()

	page, _ := svc.Create(ctx, pages.CreatePageRequest{Slug: "gone", Title: "Gone"})
	if err := svc.Delete(ctx, pages.DeletePageRequest{ID: page.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(cascaded) != 1 || cascaded[0] != page.ID {
		t.Fatalf("expected hook for %s, got %v", page.ID, cascaded)
	}
	if err := svc.Delete(ctx, pages.DeletePageRequest{ID: page.ID}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if len(cascaded) != 1 {
		t.Fatalf("hooks must not run for missing pages")
	}
}
