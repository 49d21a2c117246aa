package factory

import "encoding/json"

// RegionCollection is a repeatable region bound to its owning type and
// region ids. It has no independent identity: exactly one content instance
// owns it and it serializes as an ordered array under that instance's
// region id. New elements are manufactured through the owning factory.
type RegionCollection struct {
	typeID   string
	regionID string
	elemKind RegionValueKind
	factory  *Factory
	items    []*RegionValue
}

// TypeID returns the owning content type id.
func (c *RegionCollection) TypeID() string { return c.typeID }

// RegionID returns the bound region id.
func (c *RegionCollection) RegionID() string { return c.regionID }

// Len returns the number of elements.
func (c *RegionCollection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Items returns the elements in insertion order.
func (c *RegionCollection) Items() []*RegionValue {
	if c == nil {
		return nil
	}
	out := make([]*RegionValue, len(c.items))
	copy(out, c.items)
	return out
}

// CreateAndAppend manufactures a fresh element via the owning factory,
// appends it, and returns it.
func (c *RegionCollection) CreateAndAppend() (*RegionValue, error) {
	if c == nil || c.factory == nil {
		return nil, ErrCollectionOrphan
	}
	value, found, err := c.factory.createElement(c.typeID, c.regionID)
	if err != nil {
		return nil, err
	}
	if !found {
		// The collection was built from this schema; a missing region means
		// the registry swapped the type out from under the instance.
		return nil, &unknownRegionError{typeID: c.typeID, regionID: c.regionID}
	}
	c.items = append(c.items, value)
	return value, nil
}

// Add appends an externally constructed element. It fails with
// ErrTypeMismatch when the element's runtime shape differs from the
// collection's element shape.
func (c *RegionCollection) Add(item *RegionValue) error {
	if c == nil {
		return ErrCollectionOrphan
	}
	if item == nil || item.Kind != c.elemKind {
		return ErrTypeMismatch
	}
	c.items = append(c.items, item)
	return nil
}

// MarshalJSON serializes the collection as an ordered array.
func (c *RegionCollection) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

type unknownRegionError struct {
	typeID   string
	regionID string
}

func (e *unknownRegionError) Error() string {
	return "factory: region " + e.regionID + " no longer declared by type " + e.typeID
}
