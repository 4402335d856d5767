package apps

import (
	"errors"
	"fmt"
)

var (
	// ErrAppNotFound is returned when an application does not exist.
	ErrAppNotFound = errors.New("apps: application not found")

	// ErrNameExhausted is returned when no unique name could be derived
	// within the configured suffix limit.
	ErrNameExhausted = errors.New("apps: unique name limit reached")

	// ErrNotTranslatable is returned when an operation that only makes
	// sense for translation applications is invoked on another kind.
	ErrNotTranslatable = errors.New("apps: application is not a translation application")
)

// NotFoundError wraps ErrAppNotFound with the identifier that was looked up.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("apps: application %q not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrAppNotFound }
