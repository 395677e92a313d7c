package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")

	// ErrHasDependents is returned when a delete is rejected because
	// child rows still reference the entity.
	ErrHasDependents = errors.New("entity still has dependents")
)

// NotFoundError is returned by the use cases when a referenced entity,
// or the parent referenced on creation, does not exist.
type NotFoundError struct {
	Kind Kind
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) match typed not-found errors.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFound builds a NotFoundError for the given kind and id.
func NewNotFound(kind Kind, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// TransitionError is returned when an event is not valid for the
// lifecycle state its entity is in.
type TransitionError struct {
	Event   EventType
	Current Lifecycle
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}
