package piranha

import (
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/piranhacms/piranha-go/internal/blocks"
	"github.com/piranhacms/piranha-go/internal/di"
	"github.com/piranhacms/piranha-go/internal/factory"
	"github.com/piranhacms/piranha-go/internal/fields"
	"github.com/piranhacms/piranha-go/internal/pages"
	"github.com/piranhacms/piranha-go/internal/posts"
	"github.com/piranhacms/piranha-go/internal/schema"
	"github.com/piranhacms/piranha-go/internal/sites"
	"github.com/piranhacms/piranha-go/internal/taxonomy"
	"github.com/piranhacms/piranha-go/pkg/interfaces"
)

// Model aliases. The service contracts exported in piranha.go trade in these
// types, so embedding hosts construct and inspect them through the root
// package without reaching into internal packages.
type (
	// Page is a hierarchical content item addressed by site and slug.
	Page = pages.Page

	// Post is a dated content item that belongs to an archive page.
	Post = posts.Post

	// Block is a node in a content item's block tree.
	Block = blocks.Block

	// Taxonomy is a category or tag scoped to an archive page.
	Taxonomy = taxonomy.Taxonomy

	// TaxonomyKind separates categories from tags.
	TaxonomyKind = taxonomy.Kind

	// SiteContent is the singleton settings document of a site.
	SiteContent = sites.Content

	// ContentType is a registered schema for pages, posts, or site content.
	ContentType = schema.ContentType

	// RegionType describes one region of a content type.
	RegionType = schema.RegionType

	// FieldType describes one field of a region.
	FieldType = schema.FieldType

	// SchemaKind routes a content type to the service that persists it.
	SchemaKind = schema.Kind

	// SchemaRegistry stores the content types hosts register at startup.
	SchemaRegistry = schema.Registry

	// FieldRegistry maps field type names to their kinds.
	FieldRegistry = fields.Registry

	// Factory instantiates empty content documents from registered schemas.
	Factory = factory.Factory

	// DynamicContent is a schema-shaped document built by the factory.
	DynamicContent = factory.DynamicContent

	// RegionValue is one materialised region of a dynamic document.
	RegionValue = factory.RegionValue

	// RegionCollection holds the repeated values of a list region.
	RegionCollection = factory.RegionCollection

	// TypedTarget receives factory-created regions on a host-defined struct.
	TypedTarget = factory.TypedTarget
)

const (
	KindPage = schema.KindPage
	KindPost = schema.KindPost
	KindSite = schema.KindSite

	KindCategory = taxonomy.KindCategory
	KindTag      = taxonomy.KindTag
)

// Domain sentinels surfaced for errors.Is checks at the embedding host.
var (
	ErrPageHasChildren = pages.ErrHasChildren
	ErrPageHasCopies   = pages.ErrHasCopies
	ErrSortConflict    = pages.ErrSortConflict
	ErrUnknownBlog     = posts.ErrUnknownBlog
	ErrUnknownType     = schema.ErrUnknownType
	ErrDocumentInvalid = schema.ErrDocumentInvalid
	ErrSlugConflict    = taxonomy.ErrSlugConflict
)

// NewSchemaRegistry returns an empty content type registry for use with
// WithSchemaRegistry.
func NewSchemaRegistry() *SchemaRegistry {
	return schema.NewRegistry()
}

// DefaultFieldRegistry returns the builtin field kinds.
func DefaultFieldRegistry() *FieldRegistry {
	return fields.DefaultRegistry()
}

// Option configures the module's dependency container.
type Option = di.Option

// WithBunDB switches every repository to bun-backed persistence.
func WithBunDB(db *bun.DB) Option {
	return di.WithBunDB(db)
}

// WithCache enables read caching on the bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return di.WithCache(service, serializer)
}

// WithLoggerProvider injects the logger provider used by every service.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return di.WithLoggerProvider(provider)
}

// WithCacheInvalidator wires the external cache the invalidation command
// fans out to.
func WithCacheInvalidator(invalidator interfaces.CacheInvalidator) Option {
	return di.WithCacheInvalidator(invalidator)
}

// WithSchemaRegistry overrides the default empty schema registry.
func WithSchemaRegistry(registry *SchemaRegistry) Option {
	return di.WithSchemaRegistry(registry)
}

// WithFieldRegistry overrides the default builtin field kinds.
func WithFieldRegistry(registry *FieldRegistry) Option {
	return di.WithFieldRegistry(registry)
}

// WithTaxonomyService overrides the default taxonomy service binding.
func WithTaxonomyService(svc TaxonomyService) Option {
	return di.WithTaxonomyService(svc)
}

// WithBlockService overrides the default block service binding.
func WithBlockService(svc BlockService) Option {
	return di.WithBlockService(svc)
}

// WithPageService overrides the default page service binding.
func WithPageService(svc PageService) Option {
	return di.WithPageService(svc)
}

// WithPostService overrides the default post service binding.
func WithPostService(svc PostService) Option {
	return di.WithPostService(svc)
}

// WithSiteService overrides the default site content service binding.
func WithSiteService(svc SiteService) Option {
	return di.WithSiteService(svc)
}
