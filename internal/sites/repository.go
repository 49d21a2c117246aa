package sites

import (
	"context"

	"github.com/google/uuid"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Repository stores site content rows keyed by (site_id, type_id).
type Repository interface {
	Get(ctx context.Context, siteID uuid.UUID, typeID string) (*Content, error)
	Upsert(ctx context.Context, content *Content) (*Content, error)
	Delete(ctx context.Context, siteID uuid.UUID, typeID string) error
}

// NewContentRepository returns the generic row-level handler that backs the
// bun repository's reads.
func NewContentRepository(db *bun.DB) repository.Repository[*Content] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Content]{
		NewRecord: func() *Content { return &Content{} },
		GetID: func(c *Content) uuid.UUID {
			return c.ID
		},
		SetID: func(c *Content, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "type_id"
		},
		GetIdentifierValue: func(c *Content) string {
			return c.TypeID
		},
	})
}
