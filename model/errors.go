package model

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTitle     = errors.New("title is required")
	ErrUnknownVariant   = errors.New("unknown field variant")
	ErrFieldNotFound    = errors.New("field not found")
	ErrMissingFieldID   = errors.New("field id is required")
	ErrDuplicateFieldID = errors.New("duplicate field id")
	ErrMissingOptions   = errors.New("choice field needs at least one option")
	ErrDuplicateOption  = errors.New("duplicate option")
)

// FieldError ties a definition error to the field it was found on.
type FieldError struct {
	FieldID string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.FieldID, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
