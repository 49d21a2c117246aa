package schema_test

import (
	"errors"
	"testing"

	"github.com/piranhacms/piranha-go/internal/schema"
)

func blogType() *schema.ContentType {
	return &schema.ContentType{
		ID:   "Blog",
		Kind: schema.KindPage,
		Regions: []schema.RegionType{
			{ID: "Body", Fields: []schema.FieldType{{Type: "Html"}}},
		},
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := schema.NewRegistry()
	if err := reg.Register(blogType()); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, ok := reg.Get("Blog")
	if !ok {
		t.Fatalf("expected Blog to be registered")
	}
	if got.Regions[0].Fields[0].ID != schema.DefaultFieldID {
		t.Fatalf("expected registered type to be validated, field id %q", got.Regions[0].Fields[0].ID)
	}
}

func TestRegistryReplacesWholesale(t *testing.T) {
	reg := schema.NewRegistry()
	if err := reg.Register(blogType()); err != nil {
		t.Fatalf("register: %v", err)
	}

	replacement := blogType()
	replacement.Regions = append(replacement.Regions, schema.RegionType{
		ID:     "Teaser",
		Fields: []schema.FieldType{{Type: "Text"}},
	})
	if err := reg.Register(replacement); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	got, _ := reg.Get("Blog")
	if len(got.Regions) != 2 {
		t.Fatalf("expected replacement with 2 regions, got %d", len(got.Regions))
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	reg := schema.NewRegistry()
	if err := reg.Register(blogType()); err != nil {
		t.Fatalf("register: %v", err)
	}
	first, _ := reg.Get("Blog")
	first.Regions[0].ID = "Mutated"
	second, _ := reg.Get("Blog")
	if second.Regions[0].ID != "Body" {
		t.Fatalf("registry snapshot mutated through Get copy")
	}
}

func TestRegistryGetKindMismatch(t *testing.T) {
	reg := schema.NewRegistry()
	if err := reg.Register(blogType()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := reg.GetKind("Blog", schema.KindPost); !errors.Is(err, schema.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType for kind mismatch, got %v", err)
	}
}

func TestRegistryRegisterRejectsInvalid(t *testing.T) {
	reg := schema.NewRegistry()
	bad := blogType()
	bad.Regions = append(bad.Regions, schema.RegionType{ID: "Body", Fields: []schema.FieldType{{Type: "Text"}}})
	if err := reg.Register(bad); !errors.Is(err, schema.ErrDuplicateRegionID) {
		t.Fatalf("expected ErrDuplicateRegionID, got %v", err)
	}
	if _, ok := reg.Get("Blog"); ok {
		t.Fatalf("failed registration must not publish a partial snapshot")
	}
}
