// Package storeerr turns repository errors into the error kinds callers
// act on: domain not-found sentinels and application.PersistenceError.
package storeerr

import (
	"context"
	"errors"

	"scholarship-backend/internal/domain/application"

	"gorm.io/gorm"
)

// Wrap classifies a repository error. Missing rows become notFound when it
// is non-nil; anything else becomes a PersistenceError tagged with op.
func Wrap(op string, err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	var pe *application.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &application.PersistenceError{Op: op, Err: err}
}

// Settle classifies the result of a unit of work. fnErr is what the
// transaction body returned; it is already classified and wins. Otherwise
// err came from the unit of work itself (row lock or commit).
func Settle(op string, err, fnErr, notFound error) error {
	if err == nil {
		return nil
	}
	if fnErr != nil {
		return fnErr
	}
	return Wrap(op, err, notFound)
}

// IsNotFound reports whether err is gorm's missing-row error.
func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// Read runs an idempotent read and retries it once when the store failed.
// Missing rows and context errors are not retried.
func Read(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || IsNotFound(err) || ctx.Err() != nil {
		return err
	}
	return fn()
}
