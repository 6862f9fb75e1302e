package blocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/domain"
)

// MemoryBlockRepository keeps blocks and versions in process. Every write
// happens under one lock, which makes version numbering and reorder atomic.
type MemoryBlockRepository struct {
	mu       sync.RWMutex
	blocks   map[uuid.UUID]*Block
	versions map[uuid.UUID][]*BlockVersion
}

func NewMemoryBlockRepository() *MemoryBlockRepository {
	return &MemoryBlockRepository{
		blocks:   make(map[uuid.UUID]*Block),
		versions: make(map[uuid.UUID][]*BlockVersion),
	}
}

func (m *MemoryBlockRepository) Create(_ context.Context, block *Block, initial *BlockVersion) (*Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.blocks[block.ID]; exists {
		return nil, domain.Conflict("block", "id", block.ID.String())
	}
	stored := cloneBlock(block)
	stored.CurrentVersion = 1
	m.blocks[stored.ID] = stored

	if initial != nil {
		version := cloneVersion(initial)
		version.BlockID = stored.ID
		version.Version = 1
		m.versions[stored.ID] = []*BlockVersion{version}
	}
	return cloneBlock(stored), nil
}

func (m *MemoryBlockRepository) GetByID(_ context.Context, id uuid.UUID) (*Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	block, ok := m.blocks[id]
	if !ok {
		return nil, domain.NotFound("block", id.String())
	}
	return cloneBlock(block), nil
}

func (m *MemoryBlockRepository) ListByPage(_ context.Context, pageID uuid.UUID, opts ListOptions) ([]*Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Block, 0)
	for _, block := range m.blocks {
		if block.PageID == pageID && opts.matches(block) {
			out = append(out, cloneBlock(block))
		}
	}
	sortBlocks(out)
	return out, nil
}

func (m *MemoryBlockRepository) Update(_ context.Context, id uuid.UUID, apply ApplyFunc) (*Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.blocks[id]
	if !ok {
		return nil, domain.NotFound("block", id.String())
	}
	next, revision, err := apply(cloneBlock(existing))
	if err != nil {
		return nil, err
	}
	stored := cloneBlock(next)
	stored.ID = existing.ID
	stored.PageID = existing.PageID
	stored.CreatedAt = existing.CreatedAt
	stored.CreatedBy = existing.CreatedBy
	stored.CurrentVersion = existing.CurrentVersion
	if revision != nil {
		stored.CurrentVersion++
		version := cloneVersion(revision)
		version.BlockID = stored.ID
		version.Version = stored.CurrentVersion
		m.versions[stored.ID] = append(m.versions[stored.ID], version)
	}
	m.blocks[stored.ID] = stored
	return cloneBlock(stored), nil
}

func (m *MemoryBlockRepository) Reorder(_ context.Context, pageID uuid.UUID, moves []Move) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := make([]*Block, 0)
	for _, block := range m.blocks {
		if block.PageID == pageID {
			current = append(current, block)
		}
	}
	plan, err := planReorder(current, moves)
	if err != nil {
		return err
	}
	for id, order := range plan {
		m.blocks[id].DisplayOrder = order
	}
	return nil
}

func (m *MemoryBlockRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blocks[id]; !ok {
		return domain.NotFound("block", id.String())
	}
	delete(m.blocks, id)
	delete(m.versions, id)
	return nil
}

func (m *MemoryBlockRepository) DeleteByPage(_ context.Context, pageID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, block := range m.blocks {
		if block.PageID == pageID {
			delete(m.blocks, id)
			delete(m.versions, id)
		}
	}
	return nil
}

func (m *MemoryBlockRepository) ListVersions(_ context.Context, blockID uuid.UUID) ([]*BlockVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.blocks[blockID]; !ok {
		return nil, domain.NotFound("block", blockID.String())
	}
	versions := m.versions[blockID]
	out := make([]*BlockVersion, 0, len(versions))
	for _, v := range versions {
		out = append(out, cloneVersion(v))
	}
	return out, nil
}

func (m *MemoryBlockRepository) GetVersion(_ context.Context, blockID uuid.UUID, version int) (*BlockVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.versions[blockID] {
		if v.Version == version {
			return cloneVersion(v), nil
		}
	}
	return nil, domain.NotFound("block_version", versionKey(blockID, version))
}

// sortBlocks orders by display order, then creation time, then id so ties
// render the same way on every read.
func sortBlocks(blocks []*Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
