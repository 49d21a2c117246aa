package schema

// Kind partitions content types by the repository that owns their instances.
type Kind string

const (
	KindPage Kind = "page"
	KindPost Kind = "post"
	KindSite Kind = "site"
)

// ContentType declares the shape content instances must conform to: an
// ordered list of regions, each an ordered list of typed fields. A type is
// immutable once validated; re-registration replaces it wholesale.
type ContentType struct {
	ID        string       `json:"id"`
	Title     string       `json:"title,omitempty"`
	Kind      Kind         `json:"kind"`
	UseBlocks bool         `json:"use_blocks,omitempty"`
	Regions   []RegionType `json:"regions"`
}

// RegionType is a named section of a content item. When Collection is true
// the region holds a repeatable ordered list of elements.
type RegionType struct {
	ID         string      `json:"id"`
	Title      string      `json:"title,omitempty"`
	Collection bool        `json:"collection,omitempty"`
	Fields     []FieldType `json:"fields"`
}

// FieldType is a single typed value slot within a region. Type names a kind
// registered with the field type registry.
type FieldType struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// DefaultFieldID is assigned to single-field regions declared without an
// explicit field id.
const DefaultFieldID = "Default"

// Region returns the region declared with the given id.
func (t *ContentType) Region(id string) (RegionType, bool) {
	if t == nil {
		return RegionType{}, false
	}
	for _, region := range t.Regions {
		if region.ID == id {
			return region, true
		}
	}
	return RegionType{}, false
}

// Clone returns a deep copy so registry consumers can never mutate a
// validated type in place.
func (t *ContentType) Clone() *ContentType {
	if t == nil {
		return nil
	}
	copied := *t
	copied.Regions = make([]RegionType, len(t.Regions))
	for i, region := range t.Regions {
		copiedRegion := region
		copiedRegion.Fields = make([]FieldType, len(region.Fields))
		copy(copiedRegion.Fields, region.Fields)
		copied.Regions[i] = copiedRegion
	}
	return &copied
}
