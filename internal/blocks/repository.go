package blocks

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewBlockRecordRepository wires the go-repository-bun handlers for Block.
// Block keys are only unique per page, so lookups identify blocks by id.
func NewBlockRecordRepository(db *bun.DB) repository.Repository[*Block] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Block]{
		NewRecord:          func() *Block { return &Block{} },
		GetID:              func(b *Block) uuid.UUID { return b.ID },
		SetID:              func(b *Block, id uuid.UUID) { b.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(b *Block) string { return b.ID.String() },
	})
}

func NewBlockVersionRecordRepository(db *bun.DB) repository.Repository[*BlockVersion] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*BlockVersion]{
		NewRecord:          func() *BlockVersion { return &BlockVersion{} },
		GetID:              func(v *BlockVersion) uuid.UUID { return v.ID },
		SetID:              func(v *BlockVersion, id uuid.UUID) { v.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(v *BlockVersion) string { return v.ID.String() },
	})
}
