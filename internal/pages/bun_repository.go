package pages

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-storefront-cms/internal/domain"
	"github.com/goliatone/go-storefront-cms/pkg/storage"
)

const pageNamespace = "pages"

// BunPageRepository stores pages with bun. Reads can be cached through
// go-repository-cache.
type BunPageRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Page]
	cacheService cache.CacheService
	cachePrefix  string
}

func NewBunPageRepository(db *bun.DB) *BunPageRepository {
	return NewBunPageRepositoryWithCache(db, nil, nil)
}

func NewBunPageRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunPageRepository {
	base := NewPageRepository(db)
	r := &BunPageRepository{db: db, repo: base}
	if cacheService != nil && serializer != nil {
		r.repo = repositorycache.New(base, cacheService, serializer)
		r.cacheService = cacheService
		r.cachePrefix = pageNamespace + cache.KeySeparator
	}
	return r
}

func (r *BunPageRepository) Create(ctx context.Context, record *Page) (*Page, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, mapWriteError(err, record.Slug)
	}
	return created, nil
}

func (r *BunPageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunPageRepository) GetBySlug(ctx context.Context, slug string) (*Page, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, slug)
	}
	return record, nil
}

func (r *BunPageRepository) List(ctx context.Context, opts ListOptions) ([]*Page, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if slug := strings.TrimSpace(opts.Slug); slug != "" {
			q = q.Where("?TableAlias.slug = ?", slug)
		}
		if opts.Published != nil {
			q = q.Where("?TableAlias.is_published = ?", *opts.Published)
		}
		if opts.CreatedBy != uuid.Nil {
			q = q.Where("?TableAlias.created_by = ?", opts.CreatedBy)
		}
		if opts.Limit > 0 {
			q = q.Limit(opts.Limit).Offset(opts.Offset)
		}
		return q.OrderExpr("?TableAlias.created_at ASC, ?TableAlias.slug ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("page repository: list: %w", err)
	}
	return records, nil
}

func (r *BunPageRepository) Update(ctx context.Context, record *Page) (*Page, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"slug",
			"title",
			"meta_description",
			"meta_keywords",
			"is_published",
			"published_at",
			"updated_by",
			"updated_at",
		),
	)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, domain.NotFound("page", record.ID.String())
		}
		return nil, mapWriteError(err, record.Slug)
	}
	return updated, nil
}

// Delete removes the page, its translations, its blocks and their versions
// and translations in one transaction.
func (r *BunPageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		blockIDs := tx.NewSelect().Table("blocks").Column("id").Where("page_id = ?", id)

		for _, table := range []string{"block_translations", "block_versions"} {
			if _, err := tx.NewDelete().Table(table).Where("block_id IN (?)", blockIDs).Exec(ctx); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		for _, table := range []string{"blocks", "page_translations"} {
			if _, err := tx.NewDelete().Table(table).Where("page_id = ?", id).Exec(ctx); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}

		result, err := tx.NewDelete().Model((*Page)(nil)).Where("?TableAlias.id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete page: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("page delete rows affected: %w", err)
		}
		if affected == 0 {
			return domain.NotFound("page", id.String())
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops cached page reads after writes that bypass the
// cached repository.
func (r *BunPageRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return domain.NotFound("page", key)
	}
	return fmt.Errorf("page repository: %w", err)
}

func mapWriteError(err error, slug string) error {
	if storage.IsUniqueViolation(err) {
		return domain.Conflict("page", "slug", slug)
	}
	return fmt.Errorf("page repository: %w", err)
}
