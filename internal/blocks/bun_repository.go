package blocks

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists flat block rows and their content references
// with bun.
type BunRepository struct {
	db   *bun.DB
	rows repository.Repository[*Row]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, rows: NewBlockRepository(db)}
}

func (r *BunRepository) ListForContent(ctx context.Context, contentID uuid.UUID) ([]*Row, error) {
	if contentID == uuid.Nil {
		return nil, ErrContentRequired
	}
	owned, _, err := r.rows.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.content_id = ?", contentID).
				OrderExpr("?TableAlias.sort_order ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("select blocks: %w", err)
	}

	var refs []*Reference
	if err := r.db.NewSelect().
		Model(&refs).
		Where("?TableAlias.content_id = ?", contentID).
		OrderExpr("?TableAlias.sort_order ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select block references: %w", err)
	}

	shared, err := loadShared(ctx, r.db, refs)
	if err != nil {
		return nil, err
	}
	return stitch(owned, refs, shared), nil
}

// ReplaceForContent swaps the stored rows and references of a content item
// in one transaction. Owned rows no longer present are deleted; shared rows
// survive any reference churn, only group items dropped from an updated
// reusable block go with them.
func (r *BunRepository) ReplaceForContent(ctx context.Context, contentID uuid.UUID, rows []*Row, refs []*Reference) error {
	if contentID == uuid.Nil {
		return ErrContentRequired
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		keep := make([]uuid.UUID, 0, len(rows))
		sharedIncoming := make(map[uuid.UUID]bool)
		for _, row := range rows {
			keep = append(keep, row.ID)
			if row.ContentID == nil {
				sharedIncoming[row.ID] = true
			}
		}

		del := tx.NewDelete().
			Model((*Row)(nil)).
			Where("?TableAlias.content_id = ?", contentID)
		if len(keep) > 0 {
			del = del.Where("?TableAlias.id NOT IN (?)", bun.In(keep))
		}
		if _, err := del.Exec(ctx); err != nil {
			return fmt.Errorf("delete blocks: %w", err)
		}

		if err := deleteStaleShared(ctx, tx, refs, sharedIncoming); err != nil {
			return err
		}

		if len(rows) > 0 {
			if _, err := tx.NewInsert().
				Model(&rows).
				On("CONFLICT (id) DO UPDATE").
				Set("content_id = EXCLUDED.content_id").
				Set("parent_id = EXCLUDED.parent_id").
				Set("type = EXCLUDED.type").
				Set("is_reusable = EXCLUDED.is_reusable").
				Set("sort_order = EXCLUDED.sort_order").
				Set("fields = EXCLUDED.fields").
				Set("updated_at = EXCLUDED.updated_at").
				Exec(ctx); err != nil {
				return fmt.Errorf("upsert blocks: %w", err)
			}
		}

		if _, err := tx.NewDelete().
			Model((*Reference)(nil)).
			Where("?TableAlias.content_id = ?", contentID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete block references: %w", err)
		}
		if len(refs) > 0 {
			if _, err := tx.NewInsert().Model(&refs).Exec(ctx); err != nil {
				return fmt.Errorf("insert block references: %w", err)
			}
		}
		return nil
	})
}

func (r *BunRepository) DeleteForContent(ctx context.Context, contentID uuid.UUID) error {
	if contentID == uuid.Nil {
		return ErrContentRequired
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Row)(nil)).
			Where("?TableAlias.content_id = ?", contentID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete blocks: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*Reference)(nil)).
			Where("?TableAlias.content_id = ?", contentID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete block references: %w", err)
		}
		return nil
	})
}

// loadShared walks the shared rows reachable from the referenced roots,
// one level of parent links per query.
func loadShared(ctx context.Context, db bun.IDB, refs []*Reference) ([]*Row, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	frontier := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		frontier = append(frontier, ref.BlockID)
	}
	var roots []*Row
	if err := db.NewSelect().
		Model(&roots).
		Where("?TableAlias.id IN (?)", bun.In(frontier)).
		Where("?TableAlias.content_id IS NULL").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select shared blocks: %w", err)
	}

	out := roots
	frontier = rowIDs(roots)
	for len(frontier) > 0 {
		var kids []*Row
		if err := db.NewSelect().
			Model(&kids).
			Where("?TableAlias.parent_id IN (?)", bun.In(frontier)).
			Where("?TableAlias.content_id IS NULL").
			Scan(ctx); err != nil {
			return nil, fmt.Errorf("select shared block items: %w", err)
		}
		out = append(out, kids...)
		frontier = rowIDs(kids)
	}
	return out, nil
}

func deleteStaleShared(ctx context.Context, tx bun.Tx, refs []*Reference, incoming map[uuid.UUID]bool) error {
	existing, err := loadShared(ctx, tx, refs)
	if err != nil {
		return err
	}
	stale := make([]uuid.UUID, 0)
	for _, row := range existing {
		if !incoming[row.ID] {
			stale = append(stale, row.ID)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	if _, err := tx.NewDelete().
		Model((*Row)(nil)).
		Where("?TableAlias.id IN (?)", bun.In(stale)).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete stale shared blocks: %w", err)
	}
	return nil
}

func rowIDs(rows []*Row) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}
