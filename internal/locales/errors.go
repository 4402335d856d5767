package locales

import (
	"errors"
	"fmt"
)

// ErrMalformedCode reports a locale code whose syntax is not recognized.
var ErrMalformedCode = errors.New("locales: malformed locale code")

// MalformedCodeError carries the offending code alongside the sentinel.
type MalformedCodeError struct {
	Code string
}

func (e *MalformedCodeError) Error() string {
	if e == nil {
		return ErrMalformedCode.Error()
	}
	return fmt.Sprintf("%s: %q", ErrMalformedCode.Error(), e.Code)
}

func (e *MalformedCodeError) Unwrap() error {
	return ErrMalformedCode
}
