package posts

import (
	"context"

	"github.com/google/uuid"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Repository stores post rows. Posts are flat within their blog archive,
// ordering is by publish date at query time.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, blogID uuid.UUID, slug string) (*Post, error)
	ListForBlog(ctx context.Context, blogID uuid.UUID, limit int) ([]*Post, error)
	Create(ctx context.Context, post *Post) (*Post, error)
	Update(ctx context.Context, post *Post) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NewPostRepository returns the generic row-level handler used by tooling
// and migrations.
func NewPostRepository(db *bun.DB) repository.Repository[*Post] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Post) string {
			return p.Slug
		},
	})
}
