package blocks

import (
	"context"

	"github.com/google/uuid"
)

// BlockRepository persists blocks together with their version ledger.
// Version numbers are assigned by the repository: Create stores version 1
// and Update, when apply returns a revision, draws the next number in the
// same write that stores the new content.
type BlockRepository interface {
	Create(ctx context.Context, block *Block, initial *BlockVersion) (*Block, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Block, error)
	ListByPage(ctx context.Context, pageID uuid.UUID, opts ListOptions) ([]*Block, error)
	// Update loads the block, passes it to apply and stores the result while
	// holding the row, so apply always sees the latest committed state.
	Update(ctx context.Context, id uuid.UUID, apply ApplyFunc) (*Block, error)
	// Reorder validates moves against the page's current blocks and applies
	// all of them or none.
	Reorder(ctx context.Context, pageID uuid.UUID, moves []Move) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByPage(ctx context.Context, pageID uuid.UUID) error

	ListVersions(ctx context.Context, blockID uuid.UUID) ([]*BlockVersion, error)
	GetVersion(ctx context.Context, blockID uuid.UUID, version int) (*BlockVersion, error)
}

// ApplyFunc turns the current block into its next state. A nil revision
// stores the block without recording a version. Returning an error aborts
// the write. It runs under the repository lock and must not call back into
// the repository.
type ApplyFunc func(current *Block) (next *Block, revision *BlockVersion, err error)
