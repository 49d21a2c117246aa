package fields

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownKind  = errors.New("fields: unknown field kind")
	ErrKindRequired = errors.New("fields: field kind is required")
)

// UnknownKindError reports a field declaration referencing a kind that was
// never registered. The condition is terminal for the request; retrying
// cannot change registry contents mid-process.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	if e == nil || strings.TrimSpace(e.Kind) == "" {
		return ErrUnknownKind.Error()
	}
	return fmt.Sprintf("%s: kind=%s", ErrUnknownKind.Error(), e.Kind)
}

func (e *UnknownKindError) Unwrap() error {
	return ErrUnknownKind
}
