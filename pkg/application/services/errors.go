package services

import (
	"errors"
	"fmt"

	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

var (
	// ErrInvalidCredentials is returned when a login does not match a user
	ErrInvalidCredentials = errors.New("Invalid username or password")
	// ErrLimitReached is matched by every LimitError
	ErrLimitReached = errors.New("limit reached")
)

// ValidationError reports rejected input. Details lists per-field problems
// when more than one check failed.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// LimitError reports that a configured cap was hit
type LimitError struct {
	Message string
}

func (e *LimitError) Error() string { return e.Message }

// Is matches ErrLimitReached
func (e *LimitError) Is(target error) bool { return target == ErrLimitReached }

// NotFoundError carries the user-facing message for a missing record
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// Is matches repositories.ErrNotFound
func (e *NotFoundError) Is(target error) bool { return target == repositories.ErrNotFound }

func notFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError carries the user-facing message for a uniqueness violation
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Is matches repositories.ErrConflict
func (e *ConflictError) Is(target error) bool { return target == repositories.ErrConflict }

// orNotFound replaces a bare repositories.ErrNotFound with a message
func orNotFound(err error, format string, args ...any) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(format, args...)
	}
	return err
}
