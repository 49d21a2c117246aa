package sites_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/piranhacms/piranha-go/internal/factory"
	"github.com/piranhacms/piranha-go/internal/fields"
	"github.com/piranhacms/piranha-go/internal/schema"
	"github.com/piranhacms/piranha-go/internal/sites"
)

func newSiteService(t *testing.T) sites.Service {
	t.Helper()
	registry := schema.NewRegistry()
	err := registry.Register(&schema.ContentType{
		ID:   "SiteSettings",
		Kind: schema.KindSite,
		Regions: []schema.RegionType{
			{ID: "Footer", Fields: []schema.FieldType{{ID: "Default", Type: "Html"}}},
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	contentFactory := factory.New(registry, fields.DefaultRegistry())
	return sites.NewService(sites.NewMemoryRepository(), registry, contentFactory)
}

func TestCreateContentYieldsSchemaShapedInstance(t *testing.T) {
	svc := newSiteService(t)
	dynamic, err := svc.CreateContent(context.Background(), "SiteSettings")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	region, ok := dynamic.Region("Footer")
	if !ok || region.Kind != factory.RegionValueSingle {
		t.Fatalf("expected single footer region, got %#v", region)
	}
}

func TestSaveContentIsSingletonPerSiteAndType(t *testing.T) {
	svc := newSiteService(t)
	ctx := context.Background()
	siteID := uuid.New()

	first := &sites.Content{SiteID: siteID, TypeID: "SiteSettings", Regions: map[string]any{"Footer": "v1"}}
	if err := svc.SaveContent(ctx, first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	second := &sites.Content{SiteID: siteID, TypeID: "SiteSettings", Regions: map[string]any{"Footer": "v2"}}
	if err := svc.SaveContent(ctx, second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := svc.GetContent(ctx, siteID, "SiteSettings")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.ID != first.ID {
		t.Fatalf("expected singleton row reused, got %s and %s", first.ID, loaded.ID)
	}
	if loaded.Regions["Footer"] != "v2" {
		t.Fatalf("expected latest regions, got %v", loaded.Regions)
	}
}

func TestContentOperationsRejectNonSiteTypes(t *testing.T) {
	svc := newSiteService(t)
	ctx := context.Background()
	if _, err := svc.CreateContent(ctx, "Missing"); !errors.Is(err, schema.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	err := svc.SaveContent(ctx, &sites.Content{SiteID: uuid.New(), TypeID: "Missing"})
	if !errors.Is(err, schema.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestDeleteContentRemovesRow(t *testing.T) {
	svc := newSiteService(t)
	ctx := context.Background()
	siteID := uuid.New()

	if err := svc.SaveContent(ctx, &sites.Content{SiteID: siteID, TypeID: "SiteSettings"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.DeleteContent(ctx, siteID, "SiteSettings"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetContent(ctx, siteID, "SiteSettings"); err == nil {
		t.Fatalf("expected content gone")
	}
}
