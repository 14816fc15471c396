// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Failures surfaced by the stores. Callers match them with errors.Is;
// the concrete error always wraps one of these with some detail.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrAlreadyRated      = errors.New("swap already rated")
)

// Map folds backend-specific errors into the store's taxonomy.
// Misses from gorm and redis become ErrNotFound; context errors and
// anything already in the taxonomy pass through untouched.
func Map(err error) error {
	switch {
	case err == nil:
		return nil

	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, redis.Nil):
		return fmt.Errorf("%w: %v", ErrNotFound, err)

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("store operation aborted: %w", err)

	default:
		return err
	}
}

// NotFound reports a missing record of the given kind.
func NotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

// InvalidArgument wraps a validation failure message.
func InvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// DuplicateEmail reports a signup or profile change colliding with an existing email.
func DuplicateEmail(email string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
}

// InvalidTransition reports a status change the swap state machine does not allow.
func InvalidTransition(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Unauthorized wraps an authentication or authorization failure.
func Unauthorized(msg string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
}

// IsNotFound reports whether err is, or maps to, a missing record.
func IsNotFound(err error) bool {
	return errors.Is(Map(err), ErrNotFound)
}
