package taxonomy

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
)

// BunRepository persists taxonomies and their references with bun.
type BunRepository struct {
	db   *bun.DB
	rows repository.Repository[*Taxonomy]
}

// NewBunRepository constructs a Repository backed by bun.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache constructs a Repository backed by bun with
// optional read caching.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunRepository {
	base := NewTaxonomyRepository(db)
	if cacheService != nil && keySerializer != nil {
		base = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunRepository{db: db, rows: base}
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Taxonomy, error) {
	record, err := r.rows.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, groupID uuid.UUID, kind Kind, slug string) (*Taxonomy, error) {
	records, _, err := r.rows.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.group_id = ?", groupID).
				Where("?TableAlias.type = ?", string(kind)).
				Where("?TableAlias.slug = ?", slug)
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

func (r *BunRepository) GetByTitle(ctx context.Context, groupID uuid.UUID, kind Kind, title string) (*Taxonomy, error) {
	records, _, err := r.rows.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.group_id = ?", groupID).
				Where("?TableAlias.type = ?", string(kind)).
				Where("?TableAlias.title = ?", title)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, title)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Key: title}
	}
	return records[0], nil
}

func (r *BunRepository) List(ctx context.Context, groupID uuid.UUID, kind Kind) ([]*Taxonomy, error) {
	records, _, err := r.rows.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.group_id = ?", groupID).
				Where("?TableAlias.type = ?", string(kind))
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.title ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) Create(ctx context.Context, record *Taxonomy) (*Taxonomy, error) {
	created, err := r.rows.Create(ctx, record)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &SlugConflictError{
				GroupID: record.GroupID.String(),
				Slug:    record.Slug,
				Type:    record.Type,
			}
		}
		return nil, err
	}
	return created, nil
}

func (r *BunRepository) ReplaceReferences(ctx context.Context, contentID uuid.UUID, taxonomyIDs []uuid.UUID) error {
	if r.db == nil {
		return fmt.Errorf("taxonomy repository: database not configured")
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Reference)(nil)).
			Where("?TableAlias.content_id = ?", contentID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete taxonomy references: %w", err)
		}
		if len(taxonomyIDs) == 0 {
			return nil
		}
		refs := make([]*Reference, 0, len(taxonomyIDs))
		for _, id := range taxonomyIDs {
			refs = append(refs, &Reference{ID: uuid.New(), ContentID: contentID, TaxonomyID: id})
		}
		if _, err := tx.NewInsert().Model(&refs).Exec(ctx); err != nil {
			return fmt.Errorf("insert taxonomy references: %w", err)
		}
		return nil
	})
}

func (r *BunRepository) ListReferences(ctx context.Context, contentID uuid.UUID) ([]uuid.UUID, error) {
	refs := []*Reference{}
	if err := r.db.NewSelect().
		Model(&refs).
		Where("?TableAlias.content_id = ?", contentID).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select taxonomy references: %w", err)
	}
	out := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.TaxonomyID)
	}
	return out, nil
}

func (r *BunRepository) DeleteReferences(ctx context.Context, contentID uuid.UUID) error {
	if r.db == nil {
		return fmt.Errorf("taxonomy repository: database not configured")
	}
	if _, err := r.db.NewDelete().
		Model((*Reference)(nil)).
		Where("?TableAlias.content_id = ?", contentID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete taxonomy references: %w", err)
	}
	return nil
}

// DeleteUnreferenced removes rows of the group with no reference. The
// NOT EXISTS predicate re-checks inside the delete itself, so a reference
// committed by a concurrent save keeps its row.
func (r *BunRepository) DeleteUnreferenced(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	if r.db == nil {
		return nil, fmt.Errorf("taxonomy repository: database not configured")
	}

	var removed []uuid.UUID
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rows := []*Taxonomy{}
		if err := tx.NewSelect().
			Model(&rows).
			Column("tx.id").
			Where("tx.group_id = ?", groupID).
			Where("NOT EXISTS (SELECT 1 FROM taxonomy_references txr WHERE txr.taxonomy_id = tx.id)").
			Scan(ctx); err != nil {
			return fmt.Errorf("select unreferenced taxonomies: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		if _, err := tx.NewDelete().
			Model((*Taxonomy)(nil)).
			Where("?TableAlias.id IN (?)", bun.In(ids)).
			Where("NOT EXISTS (SELECT 1 FROM taxonomy_references txr WHERE txr.taxonomy_id = ?TableAlias.id)").
			Exec(ctx); err != nil {
			return fmt.Errorf("delete unreferenced taxonomies: %w", err)
		}
		removed = ids
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("taxonomy repository error: %w", err)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
