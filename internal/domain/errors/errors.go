package errors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("invalid state transition")
	ErrForbidden         = errors.New("forbidden")
	ErrTransient         = errors.New("infrastructure failure")
)

// ValidationError describes malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError builds NotFoundError.
func NewNotFoundError(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientStockError reports the line that could not be reserved.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidStateError reports a rejected status transition.
type InvalidStateError struct {
	Op   string
	From string
	To   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: cannot move order from %s to %s", e.Op, e.From, e.To)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// Transient wraps an infrastructure failure so callers can match ErrTransient
// while the cause stays available for logging.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &transientError{op: op, err: err}
}

type transientError struct {
	op  string
	err error
}

func (e *transientError) Error() string { return e.op + ": " + e.err.Error() }

func (e *transientError) Unwrap() []error { return []error{ErrTransient, e.err} }
