package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// CacheInvalidator receives the ids of content whose structural position or
// display title changed during a save, move, or delete. Subscribers use the
// set to drop sitemaps, archives, and rendered pages keyed by those ids.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, contentIDs []uuid.UUID) error
}

// CacheInvalidatorFunc adapts a function to the CacheInvalidator contract.
type CacheInvalidatorFunc func(ctx context.Context, contentIDs []uuid.UUID) error

// Invalidate satisfies CacheInvalidator.
func (f CacheInvalidatorFunc) Invalidate(ctx context.Context, contentIDs []uuid.UUID) error {
	if f == nil {
		return nil
	}
	return f(ctx, contentIDs)
}
