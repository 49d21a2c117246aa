package schema

import "strings"

// Validate checks id uniqueness for the supplied content type and back-fills
// presentation defaults: a region or field without a title inherits its id,
// and a single-field region declared without a field id receives
// DefaultFieldID. The pass runs once at registration; instantiation never
// re-validates.
func Validate(t *ContentType) error {
	if t == nil || strings.TrimSpace(t.ID) == "" {
		return ErrTypeIDRequired
	}

	seenRegions := make(map[string]struct{}, len(t.Regions))
	for i := range t.Regions {
		region := &t.Regions[i]
		if _, dup := seenRegions[region.ID]; dup {
			return &DuplicateIDError{TypeID: t.ID, RegionID: region.ID}
		}
		seenRegions[region.ID] = struct{}{}

		if strings.TrimSpace(region.Title) == "" {
			region.Title = region.ID
		}

		if len(region.Fields) == 1 && strings.TrimSpace(region.Fields[0].ID) == "" {
			region.Fields[0].ID = DefaultFieldID
		}

		seenFields := make(map[string]struct{}, len(region.Fields))
		for j := range region.Fields {
			field := &region.Fields[j]
			if _, dup := seenFields[field.ID]; dup {
				return &DuplicateIDError{TypeID: t.ID, RegionID: region.ID, FieldID: field.ID}
			}
			seenFields[field.ID] = struct{}{}

			if strings.TrimSpace(field.Title) == "" {
				field.Title = field.ID
			}
		}
	}

	return nil
}
