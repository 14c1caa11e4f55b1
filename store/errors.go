package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned, wrapped, when an ID does not resolve to a record.
var ErrNotFound = errors.New("not found")

// NotFound wraps ErrNotFound with the entity and ID.
func NotFound(entity string, id int) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// ValidationError reports a missing or invalid field. It is raised before
// any store call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid returns a *ValidationError for msg.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// BackendError reports a failed call to a storage backend, or a remote
// backend answering success=false.
type BackendError struct {
	Op      string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsBackend reports whether err is a *BackendError.
func IsBackend(err error) bool {
	var b *BackendError
	return errors.As(err, &b)
}
