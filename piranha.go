package piranha

import (
	"context"

	"github.com/google/uuid"

	"github.com/piranhacms/piranha-go/internal/blocks"
	cachecmd "github.com/piranhacms/piranha-go/internal/commands/cache"
	"github.com/piranhacms/piranha-go/internal/di"
	"github.com/piranhacms/piranha-go/internal/factory"
	"github.com/piranhacms/piranha-go/internal/fields"
	"github.com/piranhacms/piranha-go/internal/identity"
	"github.com/piranhacms/piranha-go/internal/pages"
	"github.com/piranhacms/piranha-go/internal/posts"
	"github.com/piranhacms/piranha-go/internal/schema"
	"github.com/piranhacms/piranha-go/internal/sites"
	"github.com/piranhacms/piranha-go/internal/taxonomy"
)

// PageService exports the hierarchical page service contract.
type PageService = pages.Service

// PostService exports the post service contract.
type PostService = posts.Service

// TaxonomyService exports the taxonomy reconciler contract.
type TaxonomyService = taxonomy.Service

// BlockService exports the block tree service contract.
type BlockService = blocks.Service

// SiteService exports the singleton site content contract.
type SiteService = sites.Service

// SiteID derives a stable site identifier from a host-chosen key, typically
// the site's hostname. The same key always yields the same id, so hosts can
// address sites without storing a mapping.
func SiteID(key string) uuid.UUID {
	return identity.SiteUUID(key)
}

// Module represents the top level content engine runtime façade.
type Module struct {
	container *di.Container
}

// New constructs an engine module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Schemas returns the content type registry hosts register schemas against.
func (m *Module) Schemas() *schema.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Schemas()
}

// FieldKinds returns the field type registry.
func (m *Module) FieldKinds() *fields.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.FieldKinds()
}

// Factory returns the content instance factory.
func (m *Module) Factory() *factory.Factory {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Factory()
}

// Pages returns the configured page service.
func (m *Module) Pages() PageService {
	return m.container.Pages()
}

// Posts returns the configured post service, nil when the posts feature is
// disabled.
func (m *Module) Posts() PostService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Posts()
}

// Taxonomies returns the configured taxonomy service.
func (m *Module) Taxonomies() TaxonomyService {
	return m.container.Taxonomies()
}

// Blocks returns the configured block service.
func (m *Module) Blocks() BlockService {
	return m.container.Blocks()
}

// Sites returns the configured site content service, nil when the sites
// feature is disabled.
func (m *Module) Sites() SiteService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Sites()
}

// InvalidateContent pushes an invalidation set returned by Save, Move, or
// Delete through the cache invalidation command. It is a no-op when the
// commands feature is disabled or the set is empty.
func (m *Module) InvalidateContent(ctx context.Context, contentIDs []uuid.UUID) error {
	if m == nil || m.container == nil || len(contentIDs) == 0 {
		return nil
	}
	handler := m.container.InvalidateCommand()
	if handler == nil {
		return nil
	}
	return handler.Execute(ctx, cachecmd.InvalidateContentCommand{ContentIDs: contentIDs})
}
