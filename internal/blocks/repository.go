package blocks

import (
	"context"

	"github.com/google/uuid"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Repository stores the flat block rows for content items plus the
// references that place shared reusable rows in each displaying item's tree.
// Dropping a reference never destroys the shared row it points at.
type Repository interface {
	ListForContent(ctx context.Context, contentID uuid.UUID) ([]*Row, error)
	ReplaceForContent(ctx context.Context, contentID uuid.UUID, rows []*Row, refs []*Reference) error
	DeleteForContent(ctx context.Context, contentID uuid.UUID) error
}

// NewBlockRepository returns the generic row-level handler that backs the
// bun repository's reads.
func NewBlockRepository(db *bun.DB) repository.Repository[*Row] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Row]{
		NewRecord: func() *Row { return &Row{} },
		GetID: func(r *Row) uuid.UUID {
			return r.ID
		},
		SetID: func(r *Row, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *Row) string {
			return r.ID.String()
		},
	})
}
