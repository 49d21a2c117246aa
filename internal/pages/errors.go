package pages

import (
	"errors"
	"fmt"
)

var (
	ErrSiteRequired    = errors.New("pages: site id is required")
	ErrTitleRequired   = errors.New("pages: title is required")
	ErrInvalidCopy     = errors.New("pages: invalid copy reference")
	ErrHasCopies       = errors.New("pages: page is referenced by copies")
	ErrHasChildren     = errors.New("pages: page has child pages")
	ErrSortConflict    = errors.New("pages: sibling sort order conflict")
	ErrOperationFailed = errors.New("pages: operation failed")
)

// NotFoundError reports a missing page row.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e == nil || e.Key == "" {
		return "pages: not found"
	}
	return fmt.Sprintf("pages: not found: %s", e.Key)
}

// CopyError explains why a copy reference was rejected.
type CopyError struct {
	PageID   string
	Original string
	Reason   string
}

func (e *CopyError) Error() string {
	if e == nil {
		return ErrInvalidCopy.Error()
	}
	return fmt.Sprintf("%s: page=%s original=%s: %s", ErrInvalidCopy.Error(), e.PageID, e.Original, e.Reason)
}

func (e *CopyError) Unwrap() error {
	return ErrInvalidCopy
}
