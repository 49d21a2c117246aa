package factory

import "errors"

var (
	ErrTypeMismatch      = errors.New("factory: item kind does not match collection element kind")
	ErrFieldKindMismatch = errors.New("factory: field kind does not match bound property")
	ErrTargetRequired    = errors.New("factory: typed target is required")
	ErrCollectionOrphan  = errors.New("factory: collection is not bound to a factory")
)
