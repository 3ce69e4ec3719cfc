package entity

import (
	"errors"
	"fmt"
)

var (
	ErrContainerNotFound = errors.New("container not found")
	ErrStoreTransport    = errors.New("store transport failure")
	ErrDuplicateKey      = errors.New("duplicate key")
)

// ValidationError rejects input before any store is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError reports a failed entity store call. Kind is ErrDuplicateKey or
// ErrStoreTransport.
type StoreError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("entity store %s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Outcome is the result of a best-effort operation. A nil Err means success.
type Outcome struct {
	Target string
	Err    error
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil
}
