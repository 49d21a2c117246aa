package taxonomy_test

import (
	"context"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/piranhacms/piranha-go/internal/taxonomy"
	"github.com/piranhacms/piranha-go/pkg/testsupport"
)

func TestTaxonomyService_WithBunStorageAndCache(t *testing.T) {
	ctx := context.Background()

	bunDB, err := testsupport.OpenSQLite()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = bunDB.Close()
	})
	registerTaxonomyModels(t, bunDB)

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	keySerializer := repocache.NewDefaultKeySerializer()

	repo := taxonomy.NewBunRepositoryWithCache(bunDB, cacheService, keySerializer)
	svc := taxonomy.NewService(repo)

	// Prune deletes below the cache layer, so verification reads go
	// through an uncached repository.
	verify := taxonomy.NewService(taxonomy.NewBunRepository(bunDB))

	group := uuid.New()
	postID := uuid.New()

	categoryID, err := svc.Resolve(ctx, group, &taxonomy.Taxonomy{Title: "Tech News"}, taxonomy.KindCategory)
	if err != nil {
		t.Fatalf("resolve category: %v", err)
	}
	again, err := svc.Resolve(ctx, group, &taxonomy.Taxonomy{Title: "tech news"}, taxonomy.KindCategory)
	if err != nil {
		t.Fatalf("resolve duplicate: %v", err)
	}
	if again != categoryID {
		t.Fatalf("expected duplicate title to resolve to %s, got %s", categoryID, again)
	}

	if err := svc.ReplaceReferences(ctx, postID, []uuid.UUID{categoryID}); err != nil {
		t.Fatalf("replace references: %v", err)
	}
	attached, err := svc.References(ctx, postID)
	if err != nil {
		t.Fatalf("references: %v", err)
	}
	if len(attached) != 1 || attached[0].Slug != "tech-news" {
		t.Fatalf("expected one tech-news reference, got %+v", attached)
	}

	if err := svc.PruneUnused(ctx, group); err != nil {
		t.Fatalf("prune with live reference: %v", err)
	}
	rows, err := verify.List(ctx, group, taxonomy.KindCategory)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected referenced row to survive prune, got %d rows", len(rows))
	}

	if err := svc.ClearReferences(ctx, postID); err != nil {
		t.Fatalf("clear references: %v", err)
	}
	if err := svc.PruneUnused(ctx, group); err != nil {
		t.Fatalf("prune orphaned: %v", err)
	}
	rows, err = verify.List(ctx, group, taxonomy.KindCategory)
	if err != nil {
		t.Fatalf("list after prune: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected orphaned row pruned, got %d rows", len(rows))
	}
}

func registerTaxonomyModels(t *testing.T, db *bun.DB) {
	t.Helper()
	ctx := context.Background()
	models := []any{
		(*taxonomy.Taxonomy)(nil),
		(*taxonomy.Reference)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}
}
