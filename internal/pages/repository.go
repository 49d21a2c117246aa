package pages

import (
	"context"

	"github.com/google/uuid"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Repository stores page rows. ResequenceSiblings must apply the whole
// arrangement for one (site, parent) scope atomically with respect to other
// writers of the same scope, and fail with ErrSortConflict when the scope no
// longer holds the ids the arrangement was computed from.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, siteID uuid.UUID, slug string) (*Page, error)
	ListSiblings(ctx context.Context, siteID uuid.UUID, parentID *uuid.UUID) ([]*Page, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int, error)
	CountCopies(ctx context.Context, id uuid.UUID) (int, error)
	Create(ctx context.Context, page *Page) (*Page, error)
	Update(ctx context.Context, page *Page) (*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ResequenceSiblings(ctx context.Context, siteID uuid.UUID, parentID *uuid.UUID, expectedIDs, orderedIDs []uuid.UUID) error
}

// NewPageRepository returns the generic row-level handler used by tooling
// and migrations.
func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Page) string {
			return p.Slug
		},
	})
}
