package blocks

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-storefront-cms/internal/domain"
	"github.com/goliatone/go-storefront-cms/pkg/storage"
)

// BunBlockRepository stores blocks and versions with bun. Reads go through
// go-repository-bun; writes that touch more than one row run in a transaction.
// Blocks are not cached because most of their writes bypass the repository.
type BunBlockRepository struct {
	db       *bun.DB
	blocks   repository.Repository[*Block]
	versions repository.Repository[*BlockVersion]
}

func NewBunBlockRepository(db *bun.DB) *BunBlockRepository {
	return &BunBlockRepository{
		db:       db,
		blocks:   NewBlockRecordRepository(db),
		versions: NewBlockVersionRecordRepository(db),
	}
}

func (r *BunBlockRepository) Create(ctx context.Context, block *Block, initial *BlockVersion) (*Block, error) {
	record := cloneBlock(block)
	record.CurrentVersion = 1
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return mapWriteError(err, "block", "id", record.ID.String())
		}
		if initial == nil {
			return nil
		}
		version := cloneVersion(initial)
		version.BlockID = record.ID
		version.Version = 1
		if _, err := tx.NewInsert().Model(version).Exec(ctx); err != nil {
			return fmt.Errorf("insert block version: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunBlockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Block, error) {
	record, err := r.blocks.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "block", id.String())
	}
	return record, nil
}

func (r *BunBlockRepository) ListByPage(ctx context.Context, pageID uuid.UUID, opts ListOptions) ([]*Block, error) {
	records, _, err := r.blocks.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("?TableAlias.page_id = ?", pageID)
		if opts.Enabled != nil {
			q = q.Where("?TableAlias.is_enabled = ?", *opts.Enabled)
		}
		if opts.Type != "" {
			q = q.Where("?TableAlias.block_type = ?", opts.Type)
		}
		return q.OrderExpr("?TableAlias.display_order ASC, ?TableAlias.created_at ASC, ?TableAlias.id ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("block repository: list: %w", err)
	}
	return records, nil
}

// Update runs apply inside one transaction. The first statement is a no-op
// write on the row, which takes the row lock on postgres and the write lock
// on sqlite, so the read that follows cannot go stale before the write. A
// revision bumps current_version and inserts the snapshot under the new
// number in the same transaction.
func (r *BunBlockRepository) Update(ctx context.Context, id uuid.UUID, apply ApplyFunc) (*Block, error) {
	var record *Block
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		claimed, err := tx.NewUpdate().
			Table("blocks").
			Set("current_version = current_version").
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("lock block: %w", err)
		}
		if affected, err := claimed.RowsAffected(); err == nil && affected == 0 {
			return domain.NotFound("block", id.String())
		}

		current := &Block{ID: id}
		if err := tx.NewSelect().Model(current).WherePK().Scan(ctx); err != nil {
			return fmt.Errorf("load block: %w", err)
		}
		next, revision, err := apply(cloneBlock(current))
		if err != nil {
			return err
		}
		record = cloneBlock(next)
		record.ID = id

		if _, err := tx.NewUpdate().
			Model(record).
			Column(
				"block_type",
				"block_key",
				"display_order",
				"is_enabled",
				"content",
				"settings",
				"updated_by",
				"updated_at",
			).
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("update block: %w", err)
		}

		if revision != nil {
			if _, err := tx.NewUpdate().
				Table("blocks").
				Set("current_version = current_version + 1").
				Where("id = ?", id).
				Exec(ctx); err != nil {
				return fmt.Errorf("bump block version: %w", err)
			}
		}

		if err := tx.NewSelect().
			Table("blocks").
			Column("current_version").
			Where("id = ?", id).
			Scan(ctx, &record.CurrentVersion); err != nil {
			return fmt.Errorf("read block version: %w", err)
		}

		if revision == nil {
			return nil
		}
		version := cloneVersion(revision)
		version.BlockID = id
		version.Version = record.CurrentVersion
		if _, err := tx.NewInsert().Model(version).Exec(ctx); err != nil {
			return mapWriteError(err, "block_version", "version", versionKey(id, version.Version))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunBlockRepository) Reorder(ctx context.Context, pageID uuid.UUID, moves []Move) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var current []*Block
		if err := tx.NewSelect().
			Model(&current).
			Column("id", "display_order").
			Where("?TableAlias.page_id = ?", pageID).
			Scan(ctx); err != nil {
			return fmt.Errorf("load page blocks: %w", err)
		}
		plan, err := planReorder(current, moves)
		if err != nil {
			return err
		}
		for _, mv := range moves {
			if _, err := tx.NewUpdate().
				Model((*Block)(nil)).
				Set("display_order = ?", plan[mv.BlockID]).
				Where("?TableAlias.id = ?", mv.BlockID).
				Exec(ctx); err != nil {
				return fmt.Errorf("move block %s: %w", mv.BlockID, err)
			}
		}
		return nil
	})
}

// Delete removes the block with its versions and translations.
func (r *BunBlockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, table := range []string{"block_translations", "block_versions"} {
			if _, err := tx.NewDelete().Table(table).Where("block_id = ?", id).Exec(ctx); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		result, err := tx.NewDelete().Model((*Block)(nil)).Where("?TableAlias.id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete block: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("block delete rows affected: %w", err)
		}
		if affected == 0 {
			return domain.NotFound("block", id.String())
		}
		return nil
	})
}

// DeleteByPage removes every block of a page. The bun page repository
// already cascades, so this usually finds nothing left to delete.
func (r *BunBlockRepository) DeleteByPage(ctx context.Context, pageID uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		blockIDs := tx.NewSelect().Table("blocks").Column("id").Where("page_id = ?", pageID)
		for _, table := range []string{"block_translations", "block_versions"} {
			if _, err := tx.NewDelete().Table(table).Where("block_id IN (?)", blockIDs).Exec(ctx); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if _, err := tx.NewDelete().Table("blocks").Where("page_id = ?", pageID).Exec(ctx); err != nil {
			return fmt.Errorf("delete blocks: %w", err)
		}
		return nil
	})
}

func (r *BunBlockRepository) ListVersions(ctx context.Context, blockID uuid.UUID) ([]*BlockVersion, error) {
	if _, err := r.GetByID(ctx, blockID); err != nil {
		return nil, err
	}
	records, _, err := r.versions.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.block_id = ?", blockID).OrderExpr("?TableAlias.version ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("block version repository: list: %w", err)
	}
	return records, nil
}

func (r *BunBlockRepository) GetVersion(ctx context.Context, blockID uuid.UUID, version int) (*BlockVersion, error) {
	records, _, err := r.versions.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.block_id = ?", blockID).Where("?TableAlias.version = ?", version)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("block version repository: get: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.NotFound("block_version", versionKey(blockID, version))
	}
	return records[0], nil
}

func versionKey(blockID uuid.UUID, version int) string {
	return fmt.Sprintf("%s@%d", blockID, version)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return domain.NotFound(resource, key)
	}
	return fmt.Errorf("%s repository: %w", resource, err)
}

func mapWriteError(err error, resource, field, value string) error {
	if storage.IsUniqueViolation(err) {
		return domain.Conflict(resource, field, value)
	}
	return fmt.Errorf("%s repository: %w", resource, err)
}
