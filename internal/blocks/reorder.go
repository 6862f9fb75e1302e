package blocks

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/domain"
)

const reorderOperation = "blocks.reorder"

var (
	ErrReorderEmpty      = errors.New("blocks: reorder requires at least one move")
	ErrForeignBlock      = errors.New("blocks: block does not belong to page")
	ErrDuplicateMove     = errors.New("blocks: block moved twice")
	ErrNegativeOrder     = errors.New("blocks: display order must not be negative")
	ErrDisplayOrderTaken = errors.New("blocks: display order already taken")
)

// planReorder checks moves against the page's current blocks and returns the
// new order per moved block. The first offending move rejects the batch.
// Blocks left out of the call keep their position and may not be collided with.
func planReorder(current []*Block, moves []Move) (map[uuid.UUID]int, error) {
	if len(moves) == 0 {
		return nil, domain.Invalid("block", "moves", ErrReorderEmpty)
	}

	owned := make(map[uuid.UUID]struct{}, len(current))
	for _, b := range current {
		owned[b.ID] = struct{}{}
	}

	plan := make(map[uuid.UUID]int, len(moves))
	for i, mv := range moves {
		if _, ok := owned[mv.BlockID]; !ok {
			return nil, domain.Batch(reorderOperation, i, fmt.Errorf("%w: %s", ErrForeignBlock, mv.BlockID))
		}
		if _, seen := plan[mv.BlockID]; seen {
			return nil, domain.Batch(reorderOperation, i, fmt.Errorf("%w: %s", ErrDuplicateMove, mv.BlockID))
		}
		if mv.DisplayOrder < 0 {
			return nil, domain.Batch(reorderOperation, i, ErrNegativeOrder)
		}
		plan[mv.BlockID] = mv.DisplayOrder
	}

	taken := make(map[int]struct{}, len(current))
	for _, b := range current {
		if _, moved := plan[b.ID]; !moved {
			taken[b.DisplayOrder] = struct{}{}
		}
	}
	for i, mv := range moves {
		if _, clash := taken[mv.DisplayOrder]; clash {
			return nil, domain.Batch(reorderOperation, i, fmt.Errorf("%w: %d", ErrDisplayOrderTaken, mv.DisplayOrder))
		}
		taken[mv.DisplayOrder] = struct{}{}
	}
	return plan, nil
}
