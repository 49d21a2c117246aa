package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTypeIDRequired    = errors.New("schema: content type id is required")
	ErrDuplicateRegionID = errors.New("schema: duplicate region id")
	ErrDuplicateFieldID  = errors.New("schema: duplicate field id")
	ErrUnknownType       = errors.New("schema: content type not found")
	ErrDocumentInvalid   = errors.New("schema: document invalid")
)

// DuplicateIDError reports which region or field id collided during
// validation.
type DuplicateIDError struct {
	TypeID   string
	RegionID string
	FieldID  string
}

func (e *DuplicateIDError) Error() string {
	if e == nil {
		return ErrDuplicateRegionID.Error()
	}
	if strings.TrimSpace(e.FieldID) != "" {
		return fmt.Sprintf("%s: type=%s region=%s field=%s", ErrDuplicateFieldID.Error(), e.TypeID, e.RegionID, e.FieldID)
	}
	return fmt.Sprintf("%s: type=%s region=%s", ErrDuplicateRegionID.Error(), e.TypeID, e.RegionID)
}

func (e *DuplicateIDError) Unwrap() error {
	if e != nil && strings.TrimSpace(e.FieldID) != "" {
		return ErrDuplicateFieldID
	}
	return ErrDuplicateRegionID
}

// UnknownTypeError reports a lookup against a type id that was never
// registered.
type UnknownTypeError struct {
	TypeID string
}

func (e *UnknownTypeError) Error() string {
	if e == nil || strings.TrimSpace(e.TypeID) == "" {
		return ErrUnknownType.Error()
	}
	return fmt.Sprintf("%s: id=%s", ErrUnknownType.Error(), e.TypeID)
}

func (e *UnknownTypeError) Unwrap() error {
	return ErrUnknownType
}
