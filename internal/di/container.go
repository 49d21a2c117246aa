package di

import (
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/piranhacms/piranha-go/internal/blocks"
	"github.com/piranhacms/piranha-go/internal/commands"
	cachecmd "github.com/piranhacms/piranha-go/internal/commands/cache"
	"github.com/piranhacms/piranha-go/internal/factory"
	"github.com/piranhacms/piranha-go/internal/fields"
	"github.com/piranhacms/piranha-go/internal/logging"
	"github.com/piranhacms/piranha-go/internal/logging/gologger"
	"github.com/piranhacms/piranha-go/internal/pages"
	"github.com/piranhacms/piranha-go/internal/posts"
	"github.com/piranhacms/piranha-go/internal/runtimeconfig"
	"github.com/piranhacms/piranha-go/internal/schema"
	"github.com/piranhacms/piranha-go/internal/sites"
	"github.com/piranhacms/piranha-go/internal/taxonomy"
	"github.com/piranhacms/piranha-go/pkg/interfaces"
)

// Container wires engine dependencies. Without a database it runs fully in
// memory, which is how the test suites and embedded hosts use it.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider
	invalidator    interfaces.CacheInvalidator

	schemas       *schema.Registry
	fieldKinds    *fields.Registry
	contentFactry *factory.Factory

	taxonomyRepo taxonomy.Repository
	blockRepo    blocks.Repository
	pageRepo     pages.Repository
	postRepo     posts.Repository
	siteRepo     sites.Repository

	taxonomySvc taxonomy.Service
	blockSvc    blocks.Service
	pageSvc     pages.Service
	postSvc     posts.Service
	siteSvc     sites.Service

	invalidateCmd *cachecmd.InvalidateContentHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB switches every repository to bun-backed persistence.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache enables read caching on the bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider injects the logger provider used by every service.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCacheInvalidator wires the external cache the invalidation command
// fans out to.
func WithCacheInvalidator(invalidator interfaces.CacheInvalidator) Option {
	return func(c *Container) {
		c.invalidator = invalidator
	}
}

// WithSchemaRegistry overrides the default empty schema registry.
func WithSchemaRegistry(registry *schema.Registry) Option {
	return func(c *Container) {
		c.schemas = registry
	}
}

// WithFieldRegistry overrides the default builtin field kinds.
func WithFieldRegistry(registry *fields.Registry) Option {
	return func(c *Container) {
		c.fieldKinds = registry
	}
}

// WithTaxonomyService overrides the default taxonomy service binding.
func WithTaxonomyService(svc taxonomy.Service) Option {
	return func(c *Container) {
		c.taxonomySvc = svc
	}
}

// WithBlockService overrides the default block service binding.
func WithBlockService(svc blocks.Service) Option {
	return func(c *Container) {
		c.blockSvc = svc
	}
}

// WithPageService overrides the default page service binding.
func WithPageService(svc pages.Service) Option {
	return func(c *Container) {
		c.pageSvc = svc
	}
}

// WithPostService overrides the default post service binding.
func WithPostService(svc posts.Service) Option {
	return func(c *Container) {
		c.postSvc = svc
	}
}

// WithSiteService overrides the default site content service binding.
func WithSiteService(svc sites.Service) Option {
	return func(c *Container) {
		c.siteSvc = svc
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.configureLogging()

	if c.schemas == nil {
		c.schemas = schema.NewRegistry()
	}
	if c.fieldKinds == nil {
		c.fieldKinds = fields.DefaultRegistry()
	}
	c.contentFactry = factory.New(c.schemas, c.fieldKinds,
		factory.WithLogger(logging.FactoryLogger(c.loggerProvider)))

	c.configureRepositories()
	c.configureServices()
	c.configureCommands()
	c.configureAutoInvalidation()
	return c, nil
}

// configureLogging builds a provider from config when the host did not
// inject one. The console provider stays nil, module loggers fall back to
// their no-op default.
func (c *Container) configureLogging() {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return
	}
	if strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) != "gologger" {
		return
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return
	}
	c.loggerProvider = provider
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil || c.storageProvider() == "memory" {
		if c.taxonomyRepo == nil {
			c.taxonomyRepo = taxonomy.NewMemoryRepository()
		}
		if c.blockRepo == nil {
			c.blockRepo = blocks.NewMemoryRepository()
		}
		if c.pageRepo == nil {
			c.pageRepo = pages.NewMemoryRepository()
		}
		if c.postRepo == nil {
			c.postRepo = posts.NewMemoryRepository()
		}
		if c.siteRepo == nil {
			c.siteRepo = sites.NewMemoryRepository()
		}
		return
	}

	if c.cacheEnabled() {
		c.taxonomyRepo = taxonomy.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.pageRepo = pages.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.postRepo = posts.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	} else {
		c.taxonomyRepo = taxonomy.NewBunRepository(c.bunDB)
		c.pageRepo = pages.NewBunRepository(c.bunDB)
		c.postRepo = posts.NewBunRepository(c.bunDB)
	}
	c.blockRepo = blocks.NewBunRepository(c.bunDB)
	c.siteRepo = sites.NewBunRepository(c.bunDB)
}

func (c *Container) configureServices() {
	retries := c.Config.Engine.MaxRetries

	if c.taxonomySvc == nil {
		c.taxonomySvc = taxonomy.NewService(c.taxonomyRepo,
			taxonomy.WithLogger(logging.TaxonomyLogger(c.loggerProvider)),
			taxonomy.WithMaxRetries(retries),
		)
	}
	if c.blockSvc == nil {
		c.blockSvc = blocks.NewService(c.blockRepo,
			blocks.WithLogger(logging.BlocksLogger(c.loggerProvider)),
			blocks.WithReusableBlocks(c.Config.Features.ReusableBlocks),
		)
	}
	if c.pageSvc == nil {
		c.pageSvc = pages.NewService(c.pageRepo, c.schemas, c.blockSvc,
			pages.WithLogger(logging.PagesLogger(c.loggerProvider)),
			pages.WithMaxRetries(retries),
		)
	}
	if c.postSvc == nil && c.Config.Features.Posts {
		c.postSvc = posts.NewService(c.postRepo, c.schemas, c.taxonomySvc, c.blockSvc,
			posts.WithLogger(logging.PostsLogger(c.loggerProvider)),
			posts.WithBlogResolver(c.pageRepo),
			posts.WithArchivePageSize(c.Config.Archives.PageSize),
		)
	}
	if c.siteSvc == nil && c.Config.Features.Sites {
		c.siteSvc = sites.NewService(c.siteRepo, c.schemas, c.contentFactry,
			sites.WithLogger(logging.SitesLogger(c.loggerProvider)),
		)
	}
}

func (c *Container) configureCommands() {
	if !c.Config.Commands.Enabled {
		return
	}
	opts := []commands.HandlerOption[cachecmd.InvalidateContentCommand]{}
	if timeout := c.Config.Engine.CommandTimeout; timeout > 0 {
		opts = append(opts, commands.WithTimeout[cachecmd.InvalidateContentCommand](timeout))
	}
	c.invalidateCmd = cachecmd.NewInvalidateContentHandler(
		c.invalidator,
		commands.CommandLogger(c.loggerProvider, "cache"),
		opts...,
	)
}

// configureAutoInvalidation decorates the structural services so every
// successful write dispatches the cache invalidation command.
func (c *Container) configureAutoInvalidation() {
	if !c.Config.Commands.AutoInvalidate || c.invalidateCmd == nil {
		return
	}
	if c.pageSvc != nil {
		c.pageSvc = &invalidatingPageService{
			Service: c.pageSvc,
			handler: c.invalidateCmd,
			log:     logging.PagesLogger(c.loggerProvider),
		}
	}
	if c.postSvc != nil {
		c.postSvc = &invalidatingPostService{
			Service: c.postSvc,
			handler: c.invalidateCmd,
			log:     logging.PostsLogger(c.loggerProvider),
		}
	}
}

func (c *Container) cacheEnabled() bool {
	return c.Config.Cache.Enabled && c.cacheService != nil && c.keySerializer != nil
}

func (c *Container) storageProvider() string {
	return strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider))
}

// Schemas exposes the schema registry for registration at startup.
func (c *Container) Schemas() *schema.Registry { return c.schemas }

// FieldKinds exposes the field type registry.
func (c *Container) FieldKinds() *fields.Registry { return c.fieldKinds }

// Factory exposes the content factory.
func (c *Container) Factory() *factory.Factory { return c.contentFactry }

// Taxonomies exposes the taxonomy reconciler.
func (c *Container) Taxonomies() taxonomy.Service { return c.taxonomySvc }

// Blocks exposes the block tree service.
func (c *Container) Blocks() blocks.Service { return c.blockSvc }

// Pages exposes the hierarchical page service.
func (c *Container) Pages() pages.Service { return c.pageSvc }

// Posts exposes the post service, nil when the posts feature is disabled.
func (c *Container) Posts() posts.Service { return c.postSvc }

// Sites exposes the site content service, nil when the sites feature is
// disabled.
func (c *Container) Sites() sites.Service { return c.siteSvc }

// CacheInvalidator exposes the wired external cache collaborator.
func (c *Container) CacheInvalidator() interfaces.CacheInvalidator { return c.invalidator }

// InvalidateCommand exposes the cache invalidation command handler, nil when
// the commands feature is disabled.
func (c *Container) InvalidateCommand() *cachecmd.InvalidateContentHandler { return c.invalidateCmd }
