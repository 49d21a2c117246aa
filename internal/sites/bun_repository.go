package sites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists site content with bun.
type BunRepository struct {
	db   *bun.DB
	rows repository.Repository[*Content]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, rows: NewContentRepository(db)}
}

func (r *BunRepository) Get(ctx context.Context, siteID uuid.UUID, typeID string) (*Content, error) {
	records, _, err := r.rows.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.site_id = ?", siteID).
				Where("?TableAlias.type_id = ?", typeID)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("select site content: %w", err)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Key: typeID}
	}
	return records[0], nil
}

// Upsert keeps the singleton row per (site_id, type_id): an existing row
// keeps its id and created_at, only title and regions move.
func (r *BunRepository) Upsert(ctx context.Context, content *Content) (*Content, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := &Content{}
		err := tx.NewSelect().
			Model(existing).
			Where("?TableAlias.site_id = ?", content.SiteID).
			Where("?TableAlias.type_id = ?", content.TypeID).
			Limit(1).
			Scan(ctx)
		switch {
		case err == nil:
			content.ID = existing.ID
			content.CreatedAt = existing.CreatedAt
			if _, err := tx.NewUpdate().Model(content).WherePK().Exec(ctx); err != nil {
				return fmt.Errorf("update site content: %w", err)
			}
			return nil
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.NewInsert().Model(content).Exec(ctx); err != nil {
				return fmt.Errorf("insert site content: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("select site content: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (r *BunRepository) Delete(ctx context.Context, siteID uuid.UUID, typeID string) error {
	if _, err := r.db.NewDelete().
		Model((*Content)(nil)).
		Where("?TableAlias.site_id = ?", siteID).
		Where("?TableAlias.type_id = ?", typeID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete site content: %w", err)
	}
	return nil
}
