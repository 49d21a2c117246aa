package pages

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists pages with bun.
type BunRepository struct {
	db   *bun.DB
	rows repository.Repository[*Page]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache constructs a Repository backed by bun with
// optional read caching.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunRepository {
	base := NewPageRepository(db)
	if cacheService != nil && keySerializer != nil {
		base = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunRepository{db: db, rows: base}
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	record, err := r.rows.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, siteID uuid.UUID, slug string) (*Page, error) {
	records, _, err := r.rows.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.site_id = ?", siteID).
				Where("lower(?TableAlias.slug) = lower(?)", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Key: slug}
	}
	return records[0], nil
}

func (r *BunRepository) ListSiblings(ctx context.Context, siteID uuid.UUID, parentID *uuid.UUID) ([]*Page, error) {
	records, _, err := r.rows.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("?TableAlias.site_id = ?", siteID)
			if parentID == nil {
				return q.Where("?TableAlias.parent_id IS NULL")
			}
			return q.Where("?TableAlias.parent_id = ?", *parentID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.sort_order ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	count, err := r.db.NewSelect().
		Model((*Page)(nil)).
		Where("?TableAlias.parent_id = ?", id).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return count, nil
}

func (r *BunRepository) CountCopies(ctx context.Context, id uuid.UUID) (int, error) {
	count, err := r.db.NewSelect().
		Model((*Page)(nil)).
		Where("?TableAlias.original_page_id = ?", id).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count copies: %w", err)
	}
	return count, nil
}

func (r *BunRepository) Create(ctx context.Context, page *Page) (*Page, error) {
	created, err := r.rows.Create(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return created, nil
}

func (r *BunRepository) Update(ctx context.Context, page *Page) (*Page, error) {
	updated, err := r.rows.Update(ctx, page)
	if err != nil {
		return nil, mapRepositoryError(err, page.ID.String())
	}
	return updated, nil
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.NewDelete().
		Model((*Page)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

// ResequenceSiblings writes the final arrangement of one scope in a single
// transaction so concurrent writers of the same scope serialize on it. The
// scope is re-read inside the transaction; when it no longer matches the
// snapshot the arrangement was computed from, ErrSortConflict tells the
// caller to recompute from fresh reads.
func (r *BunRepository) ResequenceSiblings(ctx context.Context, siteID uuid.UUID, parentID *uuid.UUID, expectedIDs, orderedIDs []uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().
			Model((*Page)(nil)).
			Column("id").
			Where("?TableAlias.site_id = ?", siteID).
			OrderExpr("?TableAlias.sort_order ASC")
		if parentID == nil {
			q = q.Where("?TableAlias.parent_id IS NULL")
		} else {
			q = q.Where("?TableAlias.parent_id = ?", *parentID)
		}
		var current []uuid.UUID
		if err := q.Scan(ctx, &current); err != nil {
			return fmt.Errorf("read scope for resequence: %w", err)
		}
		if !sameIDs(current, expectedIDs) {
			return ErrSortConflict
		}

		for order, id := range orderedIDs {
			q := tx.NewUpdate().
				Model((*Page)(nil)).
				Set("site_id = ?", siteID).
				Set("sort_order = ?", order).
				Where("?TableAlias.id = ?", id)
			if parentID == nil {
				q = q.Set("parent_id = NULL")
			} else {
				q = q.Set("parent_id = ?", *parentID)
			}
			if _, err := q.Exec(ctx); err != nil {
				return fmt.Errorf("resequence page %s: %w", id, err)
			}
		}
		return nil
	})
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("pages repository error: %w", err)
}
