package blocks_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/piranhacms/piranha-go/internal/blocks"
)

func TestServiceReplaceThenLoadRoundTrip(t *testing.T) {
	repo := blocks.NewMemoryRepository()
	svc := blocks.NewService(repo)
	ctx := context.Background()
	contentID := uuid.New()

	tree := sampleTree()
	if err := svc.Replace(ctx, contentID, tree); err != nil {
		t.Fatalf("replace: %v", err)
	}
	loaded, err := svc.Load(ctx, contentID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != len(tree) {
		t.Fatalf("expected %d roots, got %d", len(tree), len(loaded))
	}
	if loaded[1].Type != "ColumnGroup" || len(loaded[1].Items) != 2 {
		t.Fatalf("group structure lost on round trip: %#v", loaded[1])
	}
}

func TestServiceAssignsMissingIDs(t *testing.T) {
	repo := blocks.NewMemoryRepository()
	svc := blocks.NewService(repo)
	contentID := uuid.New()

	tree := []*blocks.Block{{Type: "Html", Items: []*blocks.Block{{Type: "Text"}}}}
	if err := svc.Replace(context.Background(), contentID, tree); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if tree[0].ID == uuid.Nil || tree[0].Items[0].ID == uuid.Nil {
		t.Fatalf("expected ids assigned to every node")
	}
}

func TestServiceReplaceDropsStaleRows(t *testing.T) {
	repo := blocks.NewMemoryRepository()
	svc := blocks.NewService(repo)
	ctx := context.Background()
	contentID := uuid.New()

	first := []*blocks.Block{node("Html"), node("Quote")}
	if err := svc.Replace(ctx, contentID, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	second := []*blocks.Block{first[0]}
	if err := svc.Replace(ctx, contentID, second); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if _, ok := repo.Get(first[1].ID); ok {
		t.Fatalf("expected stale quote block removed")
	}
	if _, ok := repo.Get(first[0].ID); !ok {
		t.Fatalf("expected surviving block kept")
	}
}

func TestReusableBlocksSurviveContentDeletion(t *testing.T) {
	repo := blocks.NewMemoryRepository()
	svc := blocks.NewService(repo)
	ctx := context.Background()
	contentID := uuid.New()

	shared := node("Banner")
	shared.IsReusable = true
	owned := node("Html")
	if err := svc.Replace(ctx, contentID, []*blocks.Block{shared, owned}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if err := svc.DeleteForContent(ctx, contentID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.Get(owned.ID); ok {
		t.Fatalf("expected owned block destroyed with its content")
	}
	row, ok := repo.Get(shared.ID)
	if !ok {
		t.Fatalf("expected reusable block to survive")
	}
	if row.ContentID != nil {
		t.Fatalf("expected reusable block detached from deleted content")
	}

	remaining, err := svc.Load(ctx, contentID)
	if err != nil {
		t.Fatalf("load after delete: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no blocks listed for deleted content, got %d", len(remaining))
	}
}

func TestReusableBlockSharedAcrossContentItems(t *testing.T) {
	repo := blocks.NewMemoryRepository()
	svc := blocks.NewService(repo)
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	shared := node("Banner")
	shared.IsReusable = true
	if err := svc.Replace(ctx, first, []*blocks.Block{node("Html"), shared}); err != nil {
		t.Fatalf("replace first: %v", err)
	}
	if err := svc.Replace(ctx, second, []*blocks.Block{shared.Clone()}); err != nil {
		t.Fatalf("replace second: %v", err)
	}

	for _, contentID := range []uuid.UUID{first, second} {
		tree, err := svc.Load(ctx, contentID)
		if err != nil {
			t.Fatalf("load %s: %v", contentID, err)
		}
		found := false
		for _, root := range tree {
			if root.ID == shared.ID {
				found = true
			}
		}
		if !found {
			t.Fatalf("content %s lost the shared block", contentID)
		}
	}

	// Dropping the block from one item must not take it off the other.
	if err := svc.Replace(ctx, second, nil); err != nil {
		t.Fatalf("clear second: %v", err)
	}
	tree, err := svc.Load(ctx, first)
	if err != nil {
		t.Fatalf("load first after clear: %v", err)
	}
	if len(tree) != 2 || tree[1].ID != shared.ID {
		t.Fatalf("shared block vanished from the remaining referencer: %#v", tree)
	}
}

func TestReusableGroupKeepsItemsOnEveryReferencer(t *testing.T) {
	repo := blocks.NewMemoryRepository()
	svc := blocks.NewService(repo)
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	hero := node("HeroGroup", node("Text"), node("Image"))
	hero.IsReusable = true
	if err := svc.Replace(ctx, first, []*blocks.Block{hero}); err != nil {
		t.Fatalf("replace first: %v", err)
	}
	if err := svc.Replace(ctx, second, []*blocks.Block{hero.Clone()}); err != nil {
		t.Fatalf("replace second: %v", err)
	}

	tree, err := svc.Load(ctx, first)
	if err != nil {
		t.Fatalf("load first: %v", err)
	}
	if len(tree) != 1 || len(tree[0].Items) != 2 {
		t.Fatalf("shared group lost its items: %#v", tree)
	}
}

func TestReusableBlocksDisabledTreatsEveryBlockAsOwned(t *testing.T) {
	repo := blocks.NewMemoryRepository()
	svc := blocks.NewService(repo, blocks.WithReusableBlocks(false))
	ctx := context.Background()
	contentID := uuid.New()

	banner := node("Banner")
	banner.IsReusable = true
	if err := svc.Replace(ctx, contentID, []*blocks.Block{banner}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := svc.DeleteForContent(ctx, contentID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.Get(banner.ID); ok {
		t.Fatalf("with reuse disabled the block must die with its content")
	}
}
