package translations

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

// BunPageTranslationRepository stores page translations with bun.
type BunPageTranslationRepository struct {
	db   *bun.DB
	repo repository.Repository[*PageTranslation]
}

func NewBunPageTranslationRepository(db *bun.DB) *BunPageTranslationRepository {
	return &BunPageTranslationRepository{db: db, repo: NewPageTranslationRecordRepository(db)}
}

func (r *BunPageTranslationRepository) Upsert(ctx context.Context, translation *PageTranslation) (*PageTranslation, error) {
	record := clonePageTranslation(translation)
	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("slug = EXCLUDED.slug").
		Set("meta_title = EXCLUDED.meta_title").
		Set("meta_description = EXCLUDED.meta_description").
		Set("updated_by = EXCLUDED.updated_by").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, domain.Conflict("page_translation", "slug", record.Locale+"/"+record.Slug)
		}
		return nil, fmt.Errorf("page translation repository: upsert: %w", err)
	}
	stored, err := r.repo.GetByID(ctx, record.ID.String())
	if err != nil {
		return nil, mapRepositoryError(err, "page_translation", record.ID.String())
	}
	return stored, nil
}

func (r *BunPageTranslationRepository) Get(ctx context.Context, pageID uuid.UUID, locale string) (*PageTranslation, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", pageID).Where("?TableAlias.locale = ?", locale)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("page translation repository: get: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.NotFound("page_translation", pageID.String()+"/"+locale)
	}
	return records[0], nil
}

func (r *BunPageTranslationRepository) ListByPage(ctx context.Context, pageID uuid.UUID) ([]*PageTranslation, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.page_id = ?", pageID).OrderExpr("?TableAlias.locale ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("page translation repository: list: %w", err)
	}
	return records, nil
}

func (r *BunPageTranslationRepository) FindBySlug(ctx context.Context, slug, locale string) ([]*PageTranslation, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("?TableAlias.slug = ?", slug)
		if locale != "" {
			q = q.Where("?TableAlias.locale = ?", locale)
		}
		return q.OrderExpr("?TableAlias.locale ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("page translation repository: find by slug: %w", err)
	}
	return records, nil
}

func (r *BunPageTranslationRepository) Delete(ctx context.Context, pageID uuid.UUID, locale string) error {
	result, err := r.db.NewDelete().
		Model((*PageTranslation)(nil)).
		Where("?TableAlias.page_id = ?", pageID).
		Where("?TableAlias.locale = ?", locale).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("page translation repository: delete: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.NotFound("page_translation", pageID.String()+"/"+locale)
	}
	return nil
}

func (r *BunPageTranslationRepository) DeleteByPage(ctx context.Context, pageID uuid.UUID) error {
	if _, err := r.db.NewDelete().Model((*PageTranslation)(nil)).Where("?TableAlias.page_id = ?", pageID).Exec(ctx); err != nil {
		return fmt.Errorf("page translation repository: delete by page: %w", err)
	}
	return nil
}

// BunBlockTranslationRepository stores block translations with bun.
type BunBlockTranslationRepository struct {
	db   *bun.DB
	repo repository.Repository[*BlockTranslation]
}

func NewBunBlockTranslationRepository(db *bun.DB) *BunBlockTranslationRepository {
	return &BunBlockTranslationRepository{db: db, repo: NewBlockTranslationRecordRepository(db)}
}

func (r *BunBlockTranslationRepository) Upsert(ctx context.Context, translation *BlockTranslation) (*BlockTranslation, error) {
	record := cloneBlockTranslation(translation)
	if err := upsertBlockTranslation(ctx, r.db, record); err != nil {
		return nil, err
	}
	stored, err := r.repo.GetByID(ctx, record.ID.String())
	if err != nil {
		return nil, mapRepositoryError(err, "block_translation", record.ID.String())
	}
	return stored, nil
}

func (r *BunBlockTranslationRepository) UpsertMany(ctx context.Context, translations []*BlockTranslation) ([]*BlockTranslation, error) {
	if len(translations) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(translations))
	var stored []*BlockTranslation
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i, translation := range translations {
			record := cloneBlockTranslation(translation)
			if err := upsertBlockTranslation(ctx, tx, record); err != nil {
				return domain.Batch("translations.bulk_upsert", i, err)
			}
			ids = append(ids, record.ID)
		}
		return tx.NewSelect().Model(&stored).Where("?TableAlias.id IN (?)", bun.In(ids)).Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return orderByIDs(stored, ids), nil
}

func upsertBlockTranslation(ctx context.Context, db bun.IDB, record *BlockTranslation) error {
	_, err := db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("synced_version = EXCLUDED.synced_version").
		Set("sync_error = EXCLUDED.sync_error").
		Set("updated_by = EXCLUDED.updated_by").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return domain.Conflict("block_translation", "locale", record.BlockID.String()+"/"+record.Locale)
		}
		return fmt.Errorf("block translation repository: upsert: %w", err)
	}
	return nil
}

func (r *BunBlockTranslationRepository) Get(ctx context.Context, blockID uuid.UUID, locale string) (*BlockTranslation, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.block_id = ?", blockID).Where("?TableAlias.locale = ?", locale)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("block translation repository: get: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.NotFound("block_translation", blockID.String()+"/"+locale)
	}
	return records[0], nil
}

func (r *BunBlockTranslationRepository) ListByBlock(ctx context.Context, blockID uuid.UUID) ([]*BlockTranslation, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.block_id = ?", blockID).OrderExpr("?TableAlias.locale ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("block translation repository: list: %w", err)
	}
	return records, nil
}

func (r *BunBlockTranslationRepository) ListByBlocks(ctx context.Context, blockIDs []uuid.UUID, locale string) ([]*BlockTranslation, error) {
	if len(blockIDs) == 0 {
		return nil, nil
	}
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("?TableAlias.block_id IN (?)", bun.In(blockIDs))
		if locale != "" {
			q = q.Where("?TableAlias.locale = ?", locale)
		}
		return q.OrderExpr("?TableAlias.block_id ASC, ?TableAlias.locale ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("block translation repository: list by blocks: %w", err)
	}
	return records, nil
}

func (r *BunBlockTranslationRepository) RecordSyncError(ctx context.Context, id uuid.UUID, message string) error {
	result, err := r.db.NewUpdate().
		Model((*BlockTranslation)(nil)).
		Set("sync_error = ?", message).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("block translation repository: record sync error: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.NotFound("block_translation", id.String())
	}
	return nil
}

func (r *BunBlockTranslationRepository) Delete(ctx context.Context, blockID uuid.UUID, locale string) error {
	result, err := r.db.NewDelete().
		Model((*BlockTranslation)(nil)).
		Where("?TableAlias.block_id = ?", blockID).
		Where("?TableAlias.locale = ?", locale).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("block translation repository: delete: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.NotFound("block_translation", blockID.String()+"/"+locale)
	}
	return nil
}

func (r *BunBlockTranslationRepository) DeleteByBlock(ctx context.Context, blockID uuid.UUID) error {
	if _, err := r.db.NewDelete().Model((*BlockTranslation)(nil)).Where("?TableAlias.block_id = ?", blockID).Exec(ctx); err != nil {
		return fmt.Errorf("block translation repository: delete by block: %w", err)
	}
	return nil
}

func orderByIDs(records []*BlockTranslation, ids []uuid.UUID) []*BlockTranslation {
	byID := make(map[uuid.UUID]*BlockTranslation, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}
	out := make([]*BlockTranslation, 0, len(ids))
	for _, id := range ids {
		if record, ok := byID[id]; ok {
			out = append(out, record)
		}
	}
	return out
}

func mapRepositoryError(err error, resource, key string) error {
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return domain.NotFound(resource, key)
	}
	return fmt.Errorf("%s repository: %w", resource, err)
}
