package blocks_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/piranhacms/piranha-go/internal/blocks"
	"github.com/piranhacms/piranha-go/pkg/testsupport"
)

func TestBlockService_WithBunStorage(t *testing.T) {
	ctx := context.Background()

	bunDB, err := testsupport.OpenSQLite()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = bunDB.Close()
	})
	registerBlockModels(t, bunDB)

	svc := blocks.NewService(blocks.NewBunRepository(bunDB))
	first := uuid.New()
	second := uuid.New()

	banner := node("Banner")
	banner.IsReusable = true
	if err := svc.Replace(ctx, first, []*blocks.Block{node("Html"), banner}); err != nil {
		t.Fatalf("replace first: %v", err)
	}
	if err := svc.Replace(ctx, second, []*blocks.Block{banner.Clone(), node("Quote")}); err != nil {
		t.Fatalf("replace second: %v", err)
	}

	// The second save must not steal the banner from the first item.
	tree, err := svc.Load(ctx, first)
	if err != nil {
		t.Fatalf("load first: %v", err)
	}
	if len(tree) != 2 || tree[1].ID != banner.ID {
		t.Fatalf("first item lost the shared banner: %#v", tree)
	}
	tree, err = svc.Load(ctx, second)
	if err != nil {
		t.Fatalf("load second: %v", err)
	}
	if len(tree) != 2 || tree[0].ID != banner.ID {
		t.Fatalf("second item misses the shared banner: %#v", tree)
	}

	if err := svc.DeleteForContent(ctx, second); err != nil {
		t.Fatalf("delete second: %v", err)
	}
	tree, err = svc.Load(ctx, first)
	if err != nil {
		t.Fatalf("load first after delete: %v", err)
	}
	if len(tree) != 2 || tree[1].ID != banner.ID {
		t.Fatalf("deleting one referencer took the banner with it: %#v", tree)
	}

	// A reusable group keeps its items for every referencer.
	hero := node("HeroGroup", node("Text"), node("Image"))
	hero.IsReusable = true
	third := uuid.New()
	if err := svc.Replace(ctx, third, []*blocks.Block{hero}); err != nil {
		t.Fatalf("replace third: %v", err)
	}
	if err := svc.Replace(ctx, first, []*blocks.Block{node("Html"), hero.Clone()}); err != nil {
		t.Fatalf("re-replace first: %v", err)
	}
	tree, err = svc.Load(ctx, third)
	if err != nil {
		t.Fatalf("load third: %v", err)
	}
	if len(tree) != 1 || len(tree[0].Items) != 2 {
		t.Fatalf("shared group lost its items: %#v", tree)
	}
}

func registerBlockModels(t *testing.T, db *bun.DB) {
	t.Helper()
	ctx := context.Background()
	models := []any{
		(*blocks.Row)(nil),
		(*blocks.Reference)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}
}
