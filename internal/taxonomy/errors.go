package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrGroupRequired   = errors.New("taxonomy: group id is required")
	ErrTitleRequired   = errors.New("taxonomy: title or slug is required")
	ErrSlugConflict    = errors.New("taxonomy: slug already exists in group")
	ErrOperationFailed = errors.New("taxonomy: operation failed")
)

// NotFoundError reports a missing taxonomy row.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e == nil || strings.TrimSpace(e.Key) == "" {
		return "taxonomy: not found"
	}
	return fmt.Sprintf("taxonomy: not found: %s", e.Key)
}

// SlugConflictError captures a (group, slug, type) uniqueness violation. The
// condition is transient: a concurrent save created the row first, so the
// reconciler retries resolution instead of failing.
type SlugConflictError struct {
	GroupID string
	Slug    string
	Type    Kind
}

func (e *SlugConflictError) Error() string {
	if e == nil {
		return ErrSlugConflict.Error()
	}
	return fmt.Sprintf("%s: group=%s slug=%s type=%s", ErrSlugConflict.Error(), e.GroupID, e.Slug, e.Type)
}

func (e *SlugConflictError) Unwrap() error {
	return ErrSlugConflict
}
