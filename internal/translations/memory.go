package translations

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/domain"
)

// MemoryPageTranslationRepository keeps page translations in process.
type MemoryPageTranslationRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*PageTranslation
}

func NewMemoryPageTranslationRepository() *MemoryPageTranslationRepository {
	return &MemoryPageTranslationRepository{rows: make(map[uuid.UUID]*PageTranslation)}
}

func (m *MemoryPageTranslationRepository) Upsert(_ context.Context, translation *PageTranslation) (*PageTranslation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if translation.Slug != "" {
		for _, row := range m.rows {
			if row.ID != translation.ID && row.Locale == translation.Locale && row.Slug == translation.Slug {
				return nil, domain.Conflict("page_translation", "slug", translation.Locale+"/"+translation.Slug)
			}
		}
	}
	stored := clonePageTranslation(translation)
	if existing, ok := m.rows[stored.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
		stored.CreatedBy = existing.CreatedBy
	}
	m.rows[stored.ID] = stored
	return clonePageTranslation(stored), nil
}

func (m *MemoryPageTranslationRepository) Get(_ context.Context, pageID uuid.UUID, locale string) (*PageTranslation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, row := range m.rows {
		if row.PageID == pageID && row.Locale == locale {
			return clonePageTranslation(row), nil
		}
	}
	return nil, domain.NotFound("page_translation", pageID.String()+"/"+locale)
}

func (m *MemoryPageTranslationRepository) ListByPage(_ context.Context, pageID uuid.UUID) ([]*PageTranslation, error) {
	return m.collect(func(row *PageTranslation) bool { return row.PageID == pageID }), nil
}

func (m *MemoryPageTranslationRepository) FindBySlug(_ context.Context, slug, locale string) ([]*PageTranslation, error) {
	return m.collect(func(row *PageTranslation) bool {
		return row.Slug == slug && (locale == "" || row.Locale == locale)
	}), nil
}

func (m *MemoryPageTranslationRepository) Delete(_ context.Context, pageID uuid.UUID, locale string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, row := range m.rows {
		if row.PageID == pageID && row.Locale == locale {
			delete(m.rows, id)
			return nil
		}
	}
	return domain.NotFound("page_translation", pageID.String()+"/"+locale)
}

func (m *MemoryPageTranslationRepository) DeleteByPage(_ context.Context, pageID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, row := range m.rows {
		if row.PageID == pageID {
			delete(m.rows, id)
		}
	}
	return nil
}

func (m *MemoryPageTranslationRepository) collect(match func(*PageTranslation) bool) []*PageTranslation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*PageTranslation, 0)
	for _, row := range m.rows {
		if match(row) {
			out = append(out, clonePageTranslation(row))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Locale < out[j].Locale })
	return out
}

// MemoryBlockTranslationRepository keeps block translations in process.
type MemoryBlockTranslationRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*BlockTranslation
}

func NewMemoryBlockTranslationRepository() *MemoryBlockTranslationRepository {
	return &MemoryBlockTranslationRepository{rows: make(map[uuid.UUID]*BlockTranslation)}
}

func (m *MemoryBlockTranslationRepository) Upsert(_ context.Context, translation *BlockTranslation) (*BlockTranslation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneBlockTranslation(m.put(translation)), nil
}

func (m *MemoryBlockTranslationRepository) UpsertMany(_ context.Context, translations []*BlockTranslation) ([]*BlockTranslation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*BlockTranslation, 0, len(translations))
	for _, translation := range translations {
		out = append(out, cloneBlockTranslation(m.put(translation)))
	}
	return out, nil
}

func (m *MemoryBlockTranslationRepository) put(translation *BlockTranslation) *BlockTranslation {
	stored := cloneBlockTranslation(translation)
	if existing, ok := m.rows[stored.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
		stored.CreatedBy = existing.CreatedBy
	}
	m.rows[stored.ID] = stored
	return stored
}

func (m *MemoryBlockTranslationRepository) Get(_ context.Context, blockID uuid.UUID, locale string) (*BlockTranslation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, row := range m.rows {
		if row.BlockID == blockID && row.Locale == locale {
			return cloneBlockTranslation(row), nil
		}
	}
	return nil, domain.NotFound("block_translation", blockID.String()+"/"+locale)
}

func (m *MemoryBlockTranslationRepository) ListByBlock(_ context.Context, blockID uuid.UUID) ([]*BlockTranslation, error) {
	return m.collect(func(row *BlockTranslation) bool { return row.BlockID == blockID }), nil
}

func (m *MemoryBlockTranslationRepository) ListByBlocks(_ context.Context, blockIDs []uuid.UUID, locale string) ([]*BlockTranslation, error) {
	wanted := make(map[uuid.UUID]struct{}, len(blockIDs))
	for _, id := range blockIDs {
		wanted[id] = struct{}{}
	}
	return m.collect(func(row *BlockTranslation) bool {
		_, ok := wanted[row.BlockID]
		return ok && (locale == "" || row.Locale == locale)
	}), nil
}

func (m *MemoryBlockTranslationRepository) RecordSyncError(_ context.Context, id uuid.UUID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return domain.NotFound("block_translation", id.String())
	}
	row.SyncError = message
	return nil
}

func (m *MemoryBlockTranslationRepository) Delete(_ context.Context, blockID uuid.UUID, locale string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, row := range m.rows {
		if row.BlockID == blockID && row.Locale == locale {
			delete(m.rows, id)
			return nil
		}
	}
	return domain.NotFound("block_translation", blockID.String()+"/"+locale)
}

func (m *MemoryBlockTranslationRepository) DeleteByBlock(_ context.Context, blockID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, row := range m.rows {
		if row.BlockID == blockID {
			delete(m.rows, id)
		}
	}
	return nil
}

func (m *MemoryBlockTranslationRepository) collect(match func(*BlockTranslation) bool) []*BlockTranslation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*BlockTranslation, 0)
	for _, row := range m.rows {
		if match(row) {
			out = append(out, cloneBlockTranslation(row))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BlockID != out[j].BlockID {
			return out[i].BlockID.String() < out[j].BlockID.String()
		}
		return out[i].Locale < out[j].Locale
	})
	return out
}
