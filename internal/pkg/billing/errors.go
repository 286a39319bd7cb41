package billing

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed workflow input. Nothing was written.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func newValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// NotFoundError reports a missing invoice, company, request or subscription.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func newNotFoundError(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var v *NotFoundError
	return errors.As(err, &v)
}

// ConflictError marks an operation that lost against already-committed
// state, e.g. a reminder level that exists in the ledger. Callers treat it
// as a safe no-op so retries stay idempotent.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func newConflictError(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var v *ConflictError
	return errors.As(err, &v)
}

// UnknownActionError is returned by the dispatcher for actions outside the
// closed action set.
type UnknownActionError struct {
	Action Action
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown workflow action %q", string(e.Action))
}

// IsUnknownAction reports whether err is an UnknownActionError.
func IsUnknownAction(err error) bool {
	var v *UnknownActionError
	return errors.As(err, &v)
}
