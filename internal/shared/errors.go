// ============================================================================
// internal/shared/errors.go
// Domain error taxonomy shared by services, storage, and the gateway
// ============================================================================

package shared

import (
	"errors"
	"fmt"
)

// Sentinel values for errors.Is checks. The typed errors below wrap these so
// callers can branch on category without caring about the detail message.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// NotFoundError indicates a referenced user, course, enrollment, or progress
// record does not exist. Surfaced to the caller; no retry.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound builds a NotFoundError for the given resource and id.
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidStateError indicates progress cannot be computed, e.g. a course with
// an unknown or zero total lesson count. Callers fall back to displaying 0%.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: %s", e.Reason)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// NewInvalidState builds an InvalidStateError with the given reason.
func NewInvalidState(reason string) error {
	return &InvalidStateError{Reason: reason}
}

// ConflictError indicates a write lost an optimistic-concurrency race or
// tried to create a document that already exists.
type ConflictError struct {
	Resource string
	ID       string
	Reason   string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s: %s", e.Resource, e.ID, e.Reason)
	}
	return fmt.Sprintf("%s %s already exists", e.Resource, e.ID)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflict builds a ConflictError for the given resource and id.
func NewConflict(resource, id, reason string) error {
	return &ConflictError{Resource: resource, ID: id, Reason: reason}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
