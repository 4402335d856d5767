package bundles

import (
	"errors"
	"fmt"
)

var (
	// ErrBundleExists reports an attempt to add a bundle under a code that is
	// already present in the manager.
	ErrBundleExists = errors.New("bundles: bundle already exists")
	// ErrMessageNotFound reports removal of a message key that is not present.
	ErrMessageNotFound = errors.New("bundles: message not found")
	// ErrNoDefaultLanguage reports a gadget spec (or bundle set) lacking the
	// default locale. Such a spec is not eligible for translation.
	ErrNoDefaultLanguage = errors.New("bundles: no default language")
	// ErrSpecRetrieval reports a failed fetch or parse of an external document
	// during a full spec load.
	ErrSpecRetrieval = errors.New("bundles: spec retrieval failed")
	// ErrSpecInvalid reports a gadget spec whose XML shape is not the
	// documented Locale/ModulePrefs structure.
	ErrSpecInvalid = errors.New("bundles: spec document invalid")
	// ErrDocumentInvalid reports a bundle or manager JSON document that does
	// not match the expected shape.
	ErrDocumentInvalid = errors.New("bundles: document invalid")
)

// errResolverRequired guards renders on managers built without a resolver.
var errResolverRequired = errors.New("bundles: url resolver is required")

// BundleExistsError carries the conflicting bundle code.
type BundleExistsError struct {
	Code string
}

func (e *BundleExistsError) Error() string {
	if e == nil {
		return ErrBundleExists.Error()
	}
	return fmt.Sprintf("%s: %s", ErrBundleExists.Error(), e.Code)
}

func (e *BundleExistsError) Unwrap() error {
	return ErrBundleExists
}

// KeyNotFoundError carries the missing message key.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	if e == nil {
		return ErrMessageNotFound.Error()
	}
	return fmt.Sprintf("%s: %s", ErrMessageNotFound.Error(), e.Key)
}

func (e *KeyNotFoundError) Unwrap() error {
	return ErrMessageNotFound
}

// SpecRetrievalError carries the URL that failed and the underlying cause.
type SpecRetrievalError struct {
	URL   string
	Cause error
}

func (e *SpecRetrievalError) Error() string {
	if e == nil {
		return ErrSpecRetrieval.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrSpecRetrieval.Error(), e.URL, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrSpecRetrieval.Error(), e.URL)
}

func (e *SpecRetrievalError) Unwrap() error {
	return ErrSpecRetrieval
}

// DocumentError carries detail about a rejected bundle or manager document.
type DocumentError struct {
	Detail string
	Cause  error
}

func (e *DocumentError) Error() string {
	if e == nil {
		return ErrDocumentInvalid.Error()
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", ErrDocumentInvalid.Error(), e.Detail)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", ErrDocumentInvalid.Error(), e.Cause)
	}
	return ErrDocumentInvalid.Error()
}

func (e *DocumentError) Unwrap() error {
	return ErrDocumentInvalid
}
