package pages

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/domain"
)

// MemoryPageRepository keeps pages in process. It does not reach into other
// stores, so owned rows are removed by the service's delete hooks.
type MemoryPageRepository struct {
	mu    sync.RWMutex
	pages map[uuid.UUID]*Page
	slugs map[string]uuid.UUID
}

func NewMemoryPageRepository() *MemoryPageRepository {
	return &MemoryPageRepository{
		pages: make(map[uuid.UUID]*Page),
		slugs: make(map[string]uuid.UUID),
	}
}

func (m *MemoryPageRepository) Create(_ context.Context, record *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.pages[record.ID]; exists {
		return nil, domain.Conflict("page", "id", record.ID.String())
	}
	if _, taken := m.slugs[record.Slug]; taken {
		return nil, domain.Conflict("page", "slug", record.Slug)
	}
	stored := clonePage(record)
	m.pages[stored.ID] = stored
	m.slugs[stored.Slug] = stored.ID
	return clonePage(stored), nil
}

func (m *MemoryPageRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[id]
	if !ok {
		return nil, domain.NotFound("page", id.String())
	}
	return clonePage(page), nil
}

func (m *MemoryPageRepository) GetBySlug(_ context.Context, slug string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.slugs[slug]
	if !ok {
		return nil, domain.NotFound("page", slug)
	}
	return clonePage(m.pages[id]), nil
}

func (m *MemoryPageRepository) List(_ context.Context, opts ListOptions) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	slug := strings.TrimSpace(opts.Slug)
	out := make([]*Page, 0, len(m.pages))
	for _, page := range m.pages {
		if slug != "" && page.Slug != slug {
			continue
		}
		if opts.Published != nil && page.IsPublished != *opts.Published {
			continue
		}
		if opts.CreatedBy != uuid.Nil && page.CreatedBy != opts.CreatedBy {
			continue
		}
		out = append(out, clonePage(page))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Slug < out[j].Slug
	})
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []*Page{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *MemoryPageRepository) Update(_ context.Context, record *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.pages[record.ID]
	if !ok {
		return nil, domain.NotFound("page", record.ID.String())
	}
	if owner, taken := m.slugs[record.Slug]; taken && owner != record.ID {
		return nil, domain.Conflict("page", "slug", record.Slug)
	}
	delete(m.slugs, current.Slug)
	stored := clonePage(record)
	m.pages[stored.ID] = stored
	m.slugs[stored.Slug] = stored.ID
	return clonePage(stored), nil
}

func (m *MemoryPageRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	page, ok := m.pages[id]
	if !ok {
		return domain.NotFound("page", id.String())
	}
	delete(m.slugs, page.Slug)
	delete(m.pages, id)
	return nil
}
