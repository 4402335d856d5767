package ownership

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOwner is returned when no application owns the requested
	// language for a spec.
	ErrNoOwner = errors.New("ownership: language has no owner")

	// ErrOwnershipTaken is returned when declaring ownership of a language
	// that already has a different owner.
	ErrOwnershipTaken = errors.New("ownership: language already owned")

	// ErrNotOwner is returned when a transfer is requested by an
	// application that does not hold the ownership.
	ErrNotOwner = errors.New("ownership: application is not the owner")

	// ErrSpecMismatch is returned when a transfer target works against a
	// different upstream spec than the ownership being transferred.
	ErrSpecMismatch = errors.New("ownership: applications target different specs")

	// ErrNotTranslationApp is returned when a transfer target is not a
	// translation application.
	ErrNotTranslationApp = errors.New("ownership: target is not a translation application")
)

// TakenError wraps ErrOwnershipTaken with the contested language.
type TakenError struct {
	SpecURL     string
	PartialCode string
}

func (e *TakenError) Error() string {
	return fmt.Sprintf("ownership: %s already owned for %s", e.PartialCode, e.SpecURL)
}

func (e *TakenError) Unwrap() error { return ErrOwnershipTaken }
