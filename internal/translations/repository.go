package translations

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewPageTranslationRecordRepository(db *bun.DB) repository.Repository[*PageTranslation] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*PageTranslation]{
		NewRecord:          func() *PageTranslation { return &PageTranslation{} },
		GetID:              func(t *PageTranslation) uuid.UUID { return t.ID },
		SetID:              func(t *PageTranslation, id uuid.UUID) { t.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(t *PageTranslation) string { return t.ID.String() },
	})
}

func NewBlockTranslationRecordRepository(db *bun.DB) repository.Repository[*BlockTranslation] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*BlockTranslation]{
		NewRecord:          func() *BlockTranslation { return &BlockTranslation{} },
		GetID:              func(t *BlockTranslation) uuid.UUID { return t.ID },
		SetID:              func(t *BlockTranslation, id uuid.UUID) { t.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(t *BlockTranslation) string { return t.ID.String() },
	})
}
