package factory

import (
	"encoding/json"

	"github.com/piranhacms/piranha-go/internal/fields"
)

// RegionValueKind discriminates the closed set of region value shapes.
type RegionValueKind int

const (
	// RegionValueSingle holds exactly one field value.
	RegionValueSingle RegionValueKind = iota
	// RegionValueComposite holds one named slot per declared field.
	RegionValueComposite
	// RegionValueCollection holds a repeatable ordered list of elements.
	RegionValueCollection
)

// RegionValue is the tagged variant a region materializes to. Exactly one of
// Single, Composite, or Collection is populated according to Kind.
type RegionValue struct {
	Kind       RegionValueKind
	Single     fields.Value
	Composite  map[string]fields.Value
	Collection *RegionCollection
}

// MarshalJSON serializes the populated variant directly: a bare field value,
// an object keyed by field id, or an ordered array of elements.
func (v *RegionValue) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	switch v.Kind {
	case RegionValueSingle:
		return json.Marshal(v.Single)
	case RegionValueComposite:
		return json.Marshal(v.Composite)
	case RegionValueCollection:
		return json.Marshal(v.Collection)
	default:
		return []byte("null"), nil
	}
}

// Field returns the named slot of a composite value.
func (v *RegionValue) Field(id string) (fields.Value, bool) {
	if v == nil || v.Kind != RegionValueComposite {
		return nil, false
	}
	value, ok := v.Composite[id]
	return value, ok
}

// DynamicContent is a fully dynamic content instance: an open bag of region
// values keyed by region id, ordered as the schema declares them. Instances
// are owned exclusively by their creator until persisted.
type DynamicContent struct {
	TypeID  string
	order   []string
	regions map[string]*RegionValue
}

// Region returns the value bound to a region id.
func (c *DynamicContent) Region(id string) (*RegionValue, bool) {
	if c == nil {
		return nil, false
	}
	value, ok := c.regions[id]
	return value, ok
}

// RegionIDs returns the region ids in schema order.
func (c *DynamicContent) RegionIDs() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// SetRegion replaces the value bound to an existing region id. Unknown ids
// are ignored so callers can apply partial payloads safely.
func (c *DynamicContent) SetRegion(id string, value *RegionValue) {
	if c == nil || value == nil {
		return
	}
	if _, ok := c.regions[id]; ok {
		c.regions[id] = value
	}
}

// MarshalJSON serializes the bag keyed by region id.
func (c *DynamicContent) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.regions)
}

// ToMap flattens the instance into a plain map for jsonb persistence.
func (c *DynamicContent) ToMap() (map[string]any, error) {
	if c == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}
