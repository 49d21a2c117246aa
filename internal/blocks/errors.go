package blocks

import (
	"errors"
	"fmt"
)

var (
	ErrOrphanBlock     = errors.New("blocks: row references a parent not emitted before it")
	ErrContentRequired = errors.New("blocks: content id is required")
)

// OrphanError reports a flat row whose parent id was never seen, which means
// the stored list violates the parent-before-children ordering.
type OrphanError struct {
	BlockID  string
	ParentID string
}

func (e *OrphanError) Error() string {
	if e == nil {
		return ErrOrphanBlock.Error()
	}
	return fmt.Sprintf("%s: block=%s parent=%s", ErrOrphanBlock.Error(), e.BlockID, e.ParentID)
}

func (e *OrphanError) Unwrap() error {
	return ErrOrphanBlock
}
