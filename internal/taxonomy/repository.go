package taxonomy

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository is the storage contract the reconciler depends on. The store
// must enforce uniqueness on (group_id, slug, type) and surface violations
// as SlugConflictError, and DeleteUnreferenced must re-check "not
// referenced" in the same transaction as the delete.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Taxonomy, error)
	GetBySlug(ctx context.Context, groupID uuid.UUID, kind Kind, slug string) (*Taxonomy, error)
	GetByTitle(ctx context.Context, groupID uuid.UUID, kind Kind, title string) (*Taxonomy, error)
	List(ctx context.Context, groupID uuid.UUID, kind Kind) ([]*Taxonomy, error)
	Create(ctx context.Context, record *Taxonomy) (*Taxonomy, error)
	ReplaceReferences(ctx context.Context, contentID uuid.UUID, taxonomyIDs []uuid.UUID) error
	ListReferences(ctx context.Context, contentID uuid.UUID) ([]uuid.UUID, error)
	DeleteReferences(ctx context.Context, contentID uuid.UUID) error
	DeleteUnreferenced(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
}

// NewTaxonomyRepository creates the bun-backed row repository.
func NewTaxonomyRepository(db *bun.DB) repository.Repository[*Taxonomy] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Taxonomy]{
		NewRecord: func() *Taxonomy { return &Taxonomy{} },
		GetID: func(t *Taxonomy) uuid.UUID {
			return t.ID
		},
		SetID: func(t *Taxonomy, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(t *Taxonomy) string {
			return t.Slug
		},
	})
}
