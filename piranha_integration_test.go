package piranha_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	piranha "github.com/piranhacms/piranha-go"
	"github.com/piranhacms/piranha-go/internal/blocks"
	"github.com/piranhacms/piranha-go/internal/di"
	"github.com/piranhacms/piranha-go/internal/pages"
	"github.com/piranhacms/piranha-go/internal/posts"
	"github.com/piranhacms/piranha-go/internal/schema"
	"github.com/piranhacms/piranha-go/internal/sites"
	"github.com/piranhacms/piranha-go/internal/taxonomy"
	"github.com/piranhacms/piranha-go/pkg/interfaces"
	"github.com/piranhacms/piranha-go/pkg/testsupport"
)

type invalidationSpy struct {
	mu   sync.Mutex
	seen [][]uuid.UUID
}

func (s *invalidationSpy) Invalidate(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, append([]uuid.UUID(nil), ids...))
	return nil
}

func (s *invalidationSpy) calls() [][]uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen
}

func registerSharedSchemas(t *testing.T, registry *schema.Registry) {
	t.Helper()
	err := registry.Register(
		&schema.ContentType{
			ID:        "StandardPage",
			Kind:      schema.KindPage,
			UseBlocks: true,
			Regions: []schema.RegionType{
				{ID: "Heading", Fields: []schema.FieldType{{ID: "Default", Type: "Html"}}},
			},
		},
		&schema.ContentType{ID: "ArchivePage", Kind: schema.KindPage},
		&schema.ContentType{ID: "BlogPost", Kind: schema.KindPost},
		&schema.ContentType{
			ID:   "SiteSettings",
			Kind: schema.KindSite,
			Regions: []schema.RegionType{
				{ID: "Footer", Fields: []schema.FieldType{{ID: "Default", Type: "Html"}}},
			},
		},
	)
	if err != nil {
		t.Fatalf("register schemas: %v", err)
	}
}

func TestModuleEndToEndWithBun(t *testing.T) {
	ctx := context.Background()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	bunDB := piranha.NewSQLiteDB(sqlDB)
	bunDB.SetMaxOpenConns(1)
	if err := piranha.CreateTables(ctx, bunDB); err != nil {
		t.Fatalf("create tables: %v", err)
	}

	registry := schema.NewRegistry()
	registerSharedSchemas(t, registry)

	spy := &invalidationSpy{}
	cfg := piranha.DefaultConfig()
	cfg.Commands.Enabled = true
	cfg.Commands.AutoInvalidate = true

	module, err := piranha.New(cfg,
		di.WithBunDB(bunDB),
		di.WithSchemaRegistry(registry),
		di.WithCacheInvalidator(spy),
	)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	siteID := piranha.SiteID("example.com")
	if siteID != piranha.SiteID("example.com") {
		t.Fatal("expected stable site id for the same key")
	}

	blog := &pages.Page{
		SiteID: siteID,
		TypeID: "ArchivePage",
		Title:  "Blog",
	}
	if _, err := module.Pages().Save(ctx, blog); err != nil {
		t.Fatalf("save blog page: %v", err)
	}

	home := &pages.Page{
		SiteID: siteID,
		TypeID: "StandardPage",
		Title:  "Home Page",
		Blocks: []*blocks.Block{
			{Type: "Html", Fields: map[string]any{"body": "<p>welcome</p>"}},
			{Type: "ColumnGroup", Items: []*blocks.Block{
				{Type: "Text", Fields: map[string]any{"body": "left"}},
				{Type: "Text", Fields: map[string]any{"body": "right"}},
			}},
		},
	}
	if _, err := module.Pages().Save(ctx, home); err != nil {
		t.Fatalf("save home page: %v", err)
	}

	if home.Slug != "home-page" {
		t.Fatalf("expected back-filled slug home-page, got %q", home.Slug)
	}

	loaded, err := module.Pages().GetBySlug(ctx, siteID, "home-page")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if len(loaded.Blocks) != 2 {
		t.Fatalf("expected 2 root blocks, got %d", len(loaded.Blocks))
	}
	if len(loaded.Blocks[1].Items) != 2 {
		t.Fatalf("expected 2 column children, got %d", len(loaded.Blocks[1].Items))
	}

	// Insert a third root page at position 0 and check contiguity.
	about := &pages.Page{SiteID: siteID, TypeID: "StandardPage", Title: "About", SortOrder: 0}
	changed, err := module.Pages().Save(ctx, about)
	if err != nil {
		t.Fatalf("save about page: %v", err)
	}
	if len(changed) < 3 {
		t.Fatalf("expected shifted siblings plus the new page in invalidation set, got %d ids", len(changed))
	}
	siblings, err := module.Pages().ListSiblings(ctx, siteID, nil)
	if err != nil {
		t.Fatalf("list siblings: %v", err)
	}
	for i, sibling := range siblings {
		if sibling.SortOrder != i {
			t.Fatalf("sibling %d has sort order %d", i, sibling.SortOrder)
		}
	}

	if err := module.InvalidateContent(ctx, changed); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	// Three page saves auto-dispatched already, the explicit call is the fourth.
	calls := spy.calls()
	if len(calls) != 4 {
		t.Fatalf("expected three auto dispatches plus the explicit call, got %d", len(calls))
	}
	if len(calls[len(calls)-1]) != len(changed) {
		t.Fatalf("expected the explicit call to carry %d ids, got %d", len(changed), len(calls[len(calls)-1]))
	}

	post := &posts.Post{
		BlogID:   blog.ID,
		TypeID:   "BlogPost",
		Title:    "First Post",
		Category: &taxonomy.Taxonomy{Title: "Tech News"},
		Tags: []*taxonomy.Taxonomy{
			{Title: "Go"},
			{Title: "Releases"},
		},
	}
	set, err := module.Posts().Save(ctx, post)
	if err != nil {
		t.Fatalf("save post: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("expected post and blog ids in invalidation set, got %d", len(set))
	}

	stored, err := module.Posts().GetBySlug(ctx, blog.ID, "first-post")
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if stored.Category == nil || stored.Category.Slug != "tech-news" {
		t.Fatalf("expected reattached category tech-news, got %+v", stored.Category)
	}
	if len(stored.Tags) != 2 {
		t.Fatalf("expected 2 reattached tags, got %d", len(stored.Tags))
	}

	if _, err := module.Posts().Delete(ctx, post.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	leftover, err := module.Taxonomies().List(ctx, blog.ID, taxonomy.KindCategory)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(leftover) != 0 {
		t.Fatalf("expected categories pruned after last referencer, got %d", len(leftover))
	}

	content := &sites.Content{
		SiteID: siteID,
		TypeID: "SiteSettings",
		Title:  "Settings",
		Regions: map[string]any{
			"Footer": map[string]any{"Default": "<p>footer</p>"},
		},
	}
	if err := module.Sites().SaveContent(ctx, content); err != nil {
		t.Fatalf("save site content: %v", err)
	}
	if err := module.Sites().SaveContent(ctx, content.Clone()); err != nil {
		t.Fatalf("resave site content: %v", err)
	}
	got, err := module.Sites().GetContent(ctx, siteID, "SiteSettings")
	if err != nil {
		t.Fatalf("get site content: %v", err)
	}
	if got.ID != content.ID {
		t.Fatalf("expected singleton row to keep id %s, got %s", content.ID, got.ID)
	}
}

func TestModuleDefaultsToMemoryRepositories(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	registry := schema.NewRegistry()
	registerSharedSchemas(t, registry)

	module, err := piranha.New(piranha.DefaultConfig(), di.WithSchemaRegistry(registry))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	page := &pages.Page{SiteID: uuid.New(), TypeID: "StandardPage", Title: "Memory"}
	if _, err := module.Pages().Save(ctx, page); err != nil {
		t.Fatalf("save page: %v", err)
	}
	if _, err := module.Pages().GetByID(ctx, page.ID); err != nil {
		t.Fatalf("get page: %v", err)
	}
}

func TestModuleFeatureTogglesDisableServices(t *testing.T) {
	t.Parallel()

	cfg := piranha.DefaultConfig()
	cfg.Features.Posts = false
	cfg.Features.Sites = false
	cfg.Archives = piranha.ArchiveConfig{}

	module, err := piranha.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	if module.Posts() != nil {
		t.Fatal("expected posts service to be nil when the feature is disabled")
	}
	if module.Sites() != nil {
		t.Fatal("expected sites service to be nil when the feature is disabled")
	}
}

func TestModuleRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := piranha.DefaultConfig()
	cfg.Engine.MaxRetries = -1
	if _, err := piranha.New(cfg); !errors.Is(err, piranha.ErrMaxRetriesInvalid) {
		t.Fatalf("expected ErrMaxRetriesInvalid, got %v", err)
	}
}

func TestModuleInvalidateIsNoOpWithoutCommands(t *testing.T) {
	t.Parallel()

	module, err := piranha.New(piranha.DefaultConfig())
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	if err := module.InvalidateContent(context.Background(), []uuid.UUID{uuid.New()}); err != nil {
		t.Fatalf("expected no-op invalidate, got %v", err)
	}
}

var _ interfaces.CacheInvalidator = (*invalidationSpy)(nil)
