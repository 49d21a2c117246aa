package sites

import (
	"errors"
	"fmt"
)

var ErrSiteRequired = errors.New("sites: site id is required")

// NotFoundError reports missing site content.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e == nil || e.Key == "" {
		return "sites: content not found"
	}
	return fmt.Sprintf("sites: content not found: %s", e.Key)
}
