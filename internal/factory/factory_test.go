package factory_test

import (
	"errors"
	"testing"

	"github.com/piranhacms/piranha-go/internal/factory"
	"github.com/piranhacms/piranha-go/internal/fields"
	"github.com/piranhacms/piranha-go/internal/schema"
)

func newRegistry(t *testing.T, types ...*schema.ContentType) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	if err := reg.Register(types...); err != nil {
		t.Fatalf("register types: %v", err)
	}
	return reg
}

func blogSchema() *schema.ContentType {
	return &schema.ContentType{
		ID:   "Blog",
		Kind: schema.KindPage,
		Regions: []schema.RegionType{
			{ID: "Body", Fields: []schema.FieldType{{Type: fields.KindHTML}}},
		},
	}
}

func heroSchema() *schema.ContentType {
	return &schema.ContentType{
		ID:   "Landing",
		Kind: schema.KindPage,
		Regions: []schema.RegionType{
			{ID: "Hero", Fields: []schema.FieldType{
				{ID: "Heading", Type: fields.KindText},
				{ID: "Banner", Type: fields.KindImage},
			}},
			{ID: "Teasers", Collection: true, Fields: []schema.FieldType{
				{ID: "Title", Type: fields.KindText},
				{ID: "Body", Type: fields.KindHTML},
			}},
		},
	}
}

func TestCreateDynamicSingleFieldRegion(t *testing.T) {
	f := factory.New(newRegistry(t, blogSchema()), fields.DefaultRegistry())

	instance, err := f.CreateDynamic("Blog")
	if err != nil {
		t.Fatalf("create dynamic: %v", err)
	}
	body, ok := instance.Region("Body")
	if !ok {
		t.Fatalf("expected Body region")
	}
	if body.Kind != factory.RegionValueSingle {
		t.Fatalf("expected single value, got kind %d", body.Kind)
	}
	html, ok := body.Single.(*fields.HTMLField)
	if !ok {
		t.Fatalf("expected *fields.HTMLField, got %T", body.Single)
	}
	if html.Value != "" {
		t.Fatalf("expected zero-valued field, got %q", html.Value)
	}
}

func TestCreateDynamicCompositeAndCollection(t *testing.T) {
	f := factory.New(newRegistry(t, heroSchema()), fields.DefaultRegistry())

	instance, err := f.CreateDynamic("Landing")
	if err != nil {
		t.Fatalf("create dynamic: %v", err)
	}

	hero, _ := instance.Region("Hero")
	if hero.Kind != factory.RegionValueComposite {
		t.Fatalf("expected composite region")
	}
	if _, ok := hero.Field("Heading"); !ok {
		t.Fatalf("expected Heading slot")
	}
	if _, ok := hero.Field("Banner"); !ok {
		t.Fatalf("expected Banner slot")
	}

	teasers, _ := instance.Region("Teasers")
	if teasers.Kind != factory.RegionValueCollection {
		t.Fatalf("expected collection region")
	}
	if teasers.Collection.Len() != 0 {
		t.Fatalf("collections start empty, got %d items", teasers.Collection.Len())
	}
}

func TestCreateDynamicUnknownType(t *testing.T) {
	f := factory.New(newRegistry(t, blogSchema()), fields.DefaultRegistry())
	if _, err := f.CreateDynamic("Missing"); !errors.Is(err, schema.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestCreateDynamicUnknownKindSingleFieldFails(t *testing.T) {
	ct := &schema.ContentType{
		ID:   "Broken",
		Kind: schema.KindPage,
		Regions: []schema.RegionType{
			{ID: "Body", Fields: []schema.FieldType{{Type: "Hologram"}}},
		},
	}
	f := factory.New(newRegistry(t, ct), fields.DefaultRegistry())
	if _, err := f.CreateDynamic("Broken"); !errors.Is(err, fields.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestCreateDynamicUnknownKindCompositeOmitsSlot(t *testing.T) {
	ct := &schema.ContentType{
		ID:   "Partial",
		Kind: schema.KindPage,
		Regions: []schema.RegionType{
			{ID: "Mixed", Fields: []schema.FieldType{
				{ID: "Known", Type: fields.KindText},
				{ID: "Unknown", Type: "Hologram"},
			}},
		},
	}
	f := factory.New(newRegistry(t, ct), fields.DefaultRegistry())
	instance, err := f.CreateDynamic("Partial")
	if err != nil {
		t.Fatalf("create dynamic: %v", err)
	}
	mixed, _ := instance.Region("Mixed")
	if _, ok := mixed.Field("Known"); !ok {
		t.Fatalf("expected resolvable slot to be present")
	}
	if _, ok := mixed.Field("Unknown"); ok {
		t.Fatalf("expected unresolvable slot to be omitted")
	}
}

func TestCreateRegionUnknownIsNotAnError(t *testing.T) {
	f := factory.New(newRegistry(t, blogSchema()), fields.DefaultRegistry())

	if _, found, err := f.CreateRegion("Blog", "Missing"); err != nil || found {
		t.Fatalf("unknown region must be (found=false, err=nil), got found=%v err=%v", found, err)
	}
	if _, found, err := f.CreateRegion("Missing", "Body"); err != nil || found {
		t.Fatalf("unknown type must be (found=false, err=nil), got found=%v err=%v", found, err)
	}

	value, found, err := f.CreateRegion("Blog", "Body")
	if err != nil || !found {
		t.Fatalf("create region: found=%v err=%v", found, err)
	}
	if value.Kind != factory.RegionValueSingle {
		t.Fatalf("expected single region value")
	}
}

type typedBlog struct {
	Body *fields.HTMLField
}

func (b *typedBlog) BindRegion(regionID string, value *factory.RegionValue) error {
	if regionID != "Body" {
		return nil
	}
	html, ok := value.Single.(*fields.HTMLField)
	if !ok {
		return factory.ErrFieldKindMismatch
	}
	b.Body = html
	return nil
}

func TestCreateTypedBindsRegions(t *testing.T) {
	f := factory.New(newRegistry(t, blogSchema()), fields.DefaultRegistry())

	var target typedBlog
	if err := f.CreateTyped("Blog", &target); err != nil {
		t.Fatalf("create typed: %v", err)
	}
	if target.Body == nil {
		t.Fatalf("expected Body to be bound")
	}
}

type mismatchedBlog struct{}

func (mismatchedBlog) BindRegion(regionID string, value *factory.RegionValue) error {
	if _, ok := value.Single.(*fields.TextField); !ok {
		return factory.ErrFieldKindMismatch
	}
	return nil
}

func TestCreateTypedKindMismatch(t *testing.T) {
	f := factory.New(newRegistry(t, blogSchema()), fields.DefaultRegistry())
	err := f.CreateTyped("Blog", mismatchedBlog{})
	if !errors.Is(err, factory.ErrFieldKindMismatch) {
		t.Fatalf("expected ErrFieldKindMismatch, got %v", err)
	}
}
