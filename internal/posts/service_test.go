package posts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/piranhacms/piranha-go/internal/blocks"
	"github.com/piranhacms/piranha-go/internal/pages"
	"github.com/piranhacms/piranha-go/internal/posts"
	"github.com/piranhacms/piranha-go/internal/schema"
	"github.com/piranhacms/piranha-go/internal/taxonomy"
)

var blogID = uuid.MustParse("00000000-0000-0000-0000-00000000bb01")

type fixture struct {
	svc      posts.Service
	taxoRepo *taxonomy.MemoryRepository
	taxos    taxonomy.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	registry := schema.NewRegistry()
	err := registry.Register(&schema.ContentType{
		ID:        "BlogPost",
		Kind:      schema.KindPost,
		UseBlocks: true,
		Regions: []schema.RegionType{
			{ID: "Body", Fields: []schema.FieldType{{ID: "Default", Type: "Html"}}},
		},
	})
	if err != nil {
		t.Fatalf("register schema: %v", err)
	}

	taxoRepo := taxonomy.NewMemoryRepository()
	taxos := taxonomy.NewService(taxoRepo)
	svc := posts.NewService(
		posts.NewMemoryRepository(),
		registry,
		taxos,
		blocks.NewService(blocks.NewMemoryRepository()),
	)
	return &fixture{svc: svc, taxoRepo: taxoRepo, taxos: taxos}
}

func newPost(title string, category *taxonomy.Taxonomy, tags ...*taxonomy.Taxonomy) *posts.Post {
	return &posts.Post{
		BlogID:   blogID,
		TypeID:   "BlogPost",
		Title:    title,
		Category: category,
		Tags:     tags,
	}
}

func TestSaveValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Save(ctx, &posts.Post{TypeID: "BlogPost", Title: "x", Category: &taxonomy.Taxonomy{Title: "c"}})
	if !errors.Is(err, posts.ErrBlogRequired) {
		t.Fatalf("expected ErrBlogRequired, got %v", err)
	}
	_, err = f.svc.Save(ctx, newPost("x", nil))
	if !errors.Is(err, posts.ErrCategoryRequired) {
		t.Fatalf("expected ErrCategoryRequired, got %v", err)
	}
	_, err = f.svc.Save(ctx, &posts.Post{BlogID: blogID, TypeID: "Missing", Title: "x", Category: &taxonomy.Taxonomy{Title: "c"}})
	if !errors.Is(err, schema.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestSaveRequiresExistingBlogPage(t *testing.T) {
	registry := schema.NewRegistry()
	if err := registry.Register(
		&schema.ContentType{ID: "BlogPost", Kind: schema.KindPost},
		&schema.ContentType{ID: "ArchivePage", Kind: schema.KindPage},
	); err != nil {
		t.Fatalf("register: %v", err)
	}
	pageRepo := pages.NewMemoryRepository()
	pageSvc := pages.NewService(pageRepo, registry, nil)
	svc := posts.NewService(
		posts.NewMemoryRepository(),
		registry,
		taxonomy.NewService(taxonomy.NewMemoryRepository()),
		nil,
		posts.WithBlogResolver(pageRepo),
	)
	ctx := context.Background()

	post := newPost("Hello", &taxonomy.Taxonomy{Title: "General"})
	if _, err := svc.Save(ctx, post); !errors.Is(err, posts.ErrUnknownBlog) {
		t.Fatalf("expected ErrUnknownBlog, got %v", err)
	}

	archive := &pages.Page{ID: blogID, SiteID: uuid.New(), TypeID: "ArchivePage", Title: "Blog"}
	if _, err := pageSvc.Save(ctx, archive); err != nil {
		t.Fatalf("save archive: %v", err)
	}
	if _, err := svc.Save(ctx, post); err != nil {
		t.Fatalf("save post under existing blog: %v", err)
	}
}

func TestSaveCreatesAndDeduplicatesTaxonomies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := newPost("First", &taxonomy.Taxonomy{Title: "Tech"})
	if _, err := f.svc.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if first.Category.Slug != "tech" {
		t.Fatalf("expected slug tech, got %q", first.Category.Slug)
	}

	// A slug-only reference must resolve to the same shared row.
	second := newPost("Second", &taxonomy.Taxonomy{Slug: "tech"})
	if _, err := f.svc.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}
	if second.Category.ID != first.Category.ID {
		t.Fatalf("expected shared category row, got %s and %s", first.Category.ID, second.Category.ID)
	}

	categories, err := f.taxos.List(ctx, blogID, taxonomy.KindCategory)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(categories) != 1 {
		t.Fatalf("expected one category row, got %d", len(categories))
	}
}

func TestDeletePrunesOnlyOrphanedTaxonomies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shared := func() *taxonomy.Taxonomy { return &taxonomy.Taxonomy{Title: "Drafts"} }
	first := newPost("First", &taxonomy.Taxonomy{Title: "News"}, shared())
	second := newPost("Second", &taxonomy.Taxonomy{Title: "News"}, shared())
	if _, err := f.svc.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if _, err := f.svc.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}
	draftsID := first.Tags[0].ID

	if _, err := f.svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete first: %v", err)
	}
	if _, err := f.taxoRepo.GetByID(ctx, draftsID); err != nil {
		t.Fatalf("tag still referenced by second post, must survive: %v", err)
	}

	if _, err := f.svc.Delete(ctx, second.ID); err != nil {
		t.Fatalf("delete second: %v", err)
	}
	if _, err := f.taxoRepo.GetByID(ctx, draftsID); err == nil {
		t.Fatalf("expected orphaned tag removed after last referencer")
	}
}

func TestRetaggingPrunesDroppedTag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := newPost("Post", &taxonomy.Taxonomy{Title: "News"}, &taxonomy.Taxonomy{Title: "Old"})
	if _, err := f.svc.Save(ctx, post); err != nil {
		t.Fatalf("save: %v", err)
	}
	oldTagID := post.Tags[0].ID

	post.Tags = []*taxonomy.Taxonomy{{Title: "New"}}
	if _, err := f.svc.Save(ctx, post); err != nil {
		t.Fatalf("retag: %v", err)
	}
	if _, err := f.taxoRepo.GetByID(ctx, oldTagID); err == nil {
		t.Fatalf("expected dropped tag pruned")
	}
}

func TestSaveReturnsPostAndBlogInvalidation(t *testing.T) {
	f := newFixture(t)
	post := newPost("Post", &taxonomy.Taxonomy{Title: "News"})
	changed, err := f.svc.Save(context.Background(), post)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(changed) != 2 || changed[0] != post.ID || changed[1] != blogID {
		t.Fatalf("expected [post, blog] invalidation set, got %v", changed)
	}
}

func TestGetByIDReattachesTaxonomiesAndBlocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := newPost("Post", &taxonomy.Taxonomy{Title: "News"}, &taxonomy.Taxonomy{Title: "Go"})
	post.Blocks = []*blocks.Block{{Type: "Html", Fields: map[string]any{"body": "<p>hi</p>"}}}
	if _, err := f.svc.Save(ctx, post); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := f.svc.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Category == nil || loaded.Category.Title != "News" {
		t.Fatalf("category not reattached: %#v", loaded.Category)
	}
	if len(loaded.Tags) != 1 || loaded.Tags[0].Title != "Go" {
		t.Fatalf("tags not reattached: %#v", loaded.Tags)
	}
	if len(loaded.Blocks) != 1 || loaded.Blocks[0].Type != "Html" {
		t.Fatalf("blocks not reattached: %#v", loaded.Blocks)
	}
}

type failingBlockService struct{}

func (failingBlockService) Load(context.Context, uuid.UUID) ([]*blocks.Block, error) {
	return nil, nil
}

func (failingBlockService) Replace(context.Context, uuid.UUID, []*blocks.Block) error {
	return errors.New("block storage unavailable")
}

func (failingBlockService) DeleteForContent(context.Context, uuid.UUID) error {
	return nil
}

func TestSaveUnwindsNewPostWhenBlockWriteFails(t *testing.T) {
	registry := schema.NewRegistry()
	if err := registry.Register(&schema.ContentType{
		ID:        "BlogPost",
		Kind:      schema.KindPost,
		UseBlocks: true,
	}); err != nil {
		t.Fatalf("register schema: %v", err)
	}
	taxos := taxonomy.NewService(taxonomy.NewMemoryRepository())
	repo := posts.NewMemoryRepository()
	svc := posts.NewService(repo, registry, taxos, failingBlockService{})
	ctx := context.Background()

	post := newPost("Doomed", &taxonomy.Taxonomy{Title: "Tech"}, &taxonomy.Taxonomy{Title: "Go"})
	if _, err := svc.Save(ctx, post); err == nil {
		t.Fatalf("expected block write failure to surface")
	}

	var notFound *posts.NotFoundError
	if _, err := repo.GetByID(ctx, post.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected failed save to leave no post row, got %v", err)
	}
	refs, err := taxos.References(ctx, post.ID)
	if err != nil {
		t.Fatalf("references: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("expected no references for a post that never existed, got %d", len(refs))
	}
	for _, kind := range []taxonomy.Kind{taxonomy.KindCategory, taxonomy.KindTag} {
		rows, err := taxos.List(ctx, blogID, kind)
		if err != nil {
			t.Fatalf("list %s: %v", kind, err)
		}
		if len(rows) != 0 {
			t.Fatalf("expected freshly created %s rows pruned, got %d", kind, len(rows))
		}
	}
}

func TestListForBlogHonorsArchivePageSize(t *testing.T) {
	registry := schema.NewRegistry()
	if err := registry.Register(&schema.ContentType{ID: "BlogPost", Kind: schema.KindPost}); err != nil {
		t.Fatalf("register schema: %v", err)
	}
	taxos := taxonomy.NewService(taxonomy.NewMemoryRepository())
	repo := posts.NewMemoryRepository()
	svc := posts.NewService(repo, registry, taxos, nil, posts.WithArchivePageSize(2))
	ctx := context.Background()

	for _, title := range []string{"One", "Two", "Three"} {
		if _, err := svc.Save(ctx, newPost(title, &taxonomy.Taxonomy{Title: "Tech"})); err != nil {
			t.Fatalf("save %q: %v", title, err)
		}
	}

	archive, err := svc.ListForBlog(ctx, blogID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(archive) != 2 {
		t.Fatalf("expected archive capped at 2 posts, got %d", len(archive))
	}
}
