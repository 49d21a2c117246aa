package factory

import (
	"github.com/piranhacms/piranha-go/internal/fields"
	"github.com/piranhacms/piranha-go/internal/logging"
	"github.com/piranhacms/piranha-go/internal/schema"
	"github.com/piranhacms/piranha-go/pkg/interfaces"
)

// TypedTarget receives region values during typed instantiation. Concrete
// content structs implement it to bind region ids onto their properties,
// returning ErrFieldKindMismatch when a bound property exists but its kind
// differs from the manufactured value.
type TypedTarget interface {
	BindRegion(regionID string, value *RegionValue) error
}

// Factory builds content instances from validated schemas. Both registries
// are immutable-after-build snapshots, so a factory is safe for concurrent
// use.
type Factory struct {
	schemas *schema.Registry
	kinds   *fields.Registry
	logger  interfaces.Logger
}

// Option mutates the factory during construction.
type Option func(*Factory)

// WithLogger injects the factory logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New constructs a factory over the supplied schema and field registries.
func New(schemas *schema.Registry, kinds *fields.Registry, opts ...Option) *Factory {
	f := &Factory{
		schemas: schemas,
		kinds:   kinds,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// CreateDynamic builds a zero-valued dynamic instance for the type id: one
// region value per declared region, collections left empty.
func (f *Factory) CreateDynamic(typeID string) (*DynamicContent, error) {
	t, ok := f.schemas.Get(typeID)
	if !ok {
		return nil, &schema.UnknownTypeError{TypeID: typeID}
	}

	instance := &DynamicContent{
		TypeID:  t.ID,
		order:   make([]string, 0, len(t.Regions)),
		regions: make(map[string]*RegionValue, len(t.Regions)),
	}
	for _, region := range t.Regions {
		value, err := f.createRegionValue(t.ID, region)
		if err != nil {
			return nil, err
		}
		instance.order = append(instance.order, region.ID)
		instance.regions[region.ID] = value
	}
	return instance, nil
}

// CreateTyped builds region values for the type id and binds each onto the
// target in schema order. Bind failures abort instantiation.
func (f *Factory) CreateTyped(typeID string, target TypedTarget) error {
	if target == nil {
		return ErrTargetRequired
	}
	t, ok := f.schemas.Get(typeID)
	if !ok {
		return &schema.UnknownTypeError{TypeID: typeID}
	}

	for _, region := range t.Regions {
		value, err := f.createRegionValue(t.ID, region)
		if err != nil {
			return err
		}
		if err := target.BindRegion(region.ID, value); err != nil {
			return err
		}
	}
	return nil
}

// CreateRegion manufactures a fresh element value for a named region. The
// second return is false when the type or region id is unknown; callers must
// treat that as "no such region", not a fault.
func (f *Factory) CreateRegion(typeID, regionID string) (*RegionValue, bool, error) {
	return f.createElement(typeID, regionID)
}

func (f *Factory) createElement(typeID, regionID string) (*RegionValue, bool, error) {
	t, ok := f.schemas.Get(typeID)
	if !ok {
		return nil, false, nil
	}
	region, ok := t.Region(regionID)
	if !ok {
		return nil, false, nil
	}
	value, err := f.createFieldOrRegion(region)
	if err != nil {
		return nil, true, err
	}
	return value, true, nil
}

// createRegionValue materializes one region: an empty bound collection when
// repeatable, otherwise a single element value.
func (f *Factory) createRegionValue(typeID string, region schema.RegionType) (*RegionValue, error) {
	if region.Collection {
		elemKind := RegionValueSingle
		if len(region.Fields) != 1 {
			elemKind = RegionValueComposite
		}
		return &RegionValue{
			Kind: RegionValueCollection,
			Collection: &RegionCollection{
				typeID:   typeID,
				regionID: region.ID,
				elemKind: elemKind,
				factory:  f,
			},
		}, nil
	}
	return f.createFieldOrRegion(region)
}

// createFieldOrRegion builds one element. A single-field region resolves to
// a bare field value and fails on an unregistered kind. A multi-field region
// builds a composite with one slot per field, silently omitting slots whose
// kind cannot be resolved; typed targets surface mismatches when binding.
func (f *Factory) createFieldOrRegion(region schema.RegionType) (*RegionValue, error) {
	if len(region.Fields) == 1 {
		ctor, ok := f.kinds.Resolve(region.Fields[0].Type)
		if !ok {
			return nil, &fields.UnknownKindError{Kind: region.Fields[0].Type}
		}
		return &RegionValue{Kind: RegionValueSingle, Single: ctor()}, nil
	}

	composite := make(map[string]fields.Value, len(region.Fields))
	for _, field := range region.Fields {
		ctor, ok := f.kinds.Resolve(field.Type)
		if !ok {
			f.logger.Debug("factory.field.kind_unresolved", "region", region.ID, "field", field.ID, "kind", field.Type)
			continue
		}
		composite[field.ID] = ctor()
	}
	return &RegionValue{Kind: RegionValueComposite, Composite: composite}, nil
}
