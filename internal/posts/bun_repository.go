package posts

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

// BunRepository persists posts with bun.
type BunRepository struct {
	db   *bun.DB
	rows repository.Repository[*Post]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache constructs a Repository backed by bun with
// optional read caching.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunRepository {
	base := NewPostRepository(db)
	if cacheService != nil && keySerializer != nil {
		base = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunRepository{db: db, rows: base}
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	record, err := r.rows.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, blogID uuid.UUID, slug string) (*Post, error) {
	records, _, err := r.rows.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.blog_id = ?", blogID).
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

func (r *BunRepository) ListForBlog(ctx context.Context, blogID uuid.UUID, limit int) ([]*Post, error) {
	criteria := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.blog_id = ?", blogID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.published DESC NULLS LAST, ?TableAlias.created_at DESC")
		}),
	}
	if limit > 0 {
		criteria = append(criteria, repository.SelectPaginate(limit, 0))
	}
	records, _, err := r.rows.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) Create(ctx context.Context, post *Post) (*Post, error) {
	created, err := r.rows.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

func (r *BunRepository) Update(ctx context.Context, post *Post) (*Post, error) {
	updated, err := r.rows.Update(ctx, post)
	if err != nil {
		return nil, mapRepositoryError(err, post.ID.String())
	}
	return updated, nil
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.NewDelete().
		Model((*Post)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("posts repository error: %w", err)
}
