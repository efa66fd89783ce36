package academy

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("a user with this email already exists")
)

// NotFoundError is returned when a record does not exist.
type NotFoundError struct {
	Resource string
	ID       ID
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %d not found", e.Resource, e.ID) }

func NotFound(resource string, id ID) error { return &NotFoundError{Resource: resource, ID: id} }

// ConflictError is returned when a change would break the integrity of related records,
// ie: deleting a stream that still has cohorts.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}

func IsConflict(err error) bool {
	var cErr *ConflictError
	return errors.As(err, &cErr)
}
