package translations

import (
	"context"
	"errors"
	"time"
)

// ErrBundleNotFound is returned when no bundle exists for the requested
// URL, language and target.
var ErrBundleNotFound = errors.New("translations: bundle not found")

// Repository stores shared translation bundles keyed by upstream spec URL,
// partial language code and target group.
type Repository interface {
	// UpsertBundle returns the bundle for the key, creating it when absent.
	UpsertBundle(ctx context.Context, url, language, target string) (*Bundle, error)
	// GetBundle returns the bundle or ErrBundleNotFound.
	GetBundle(ctx context.Context, url, language, target string) (*Bundle, error)
	BundlesForURL(ctx context.Context, url string) ([]*Bundle, error)
	ListBundles(ctx context.Context) ([]*Bundle, error)

	// SetMessages reconciles the bundle's messages against the supplied
	// map: new and changed values are stamped with now, unchanged values
	// keep their timestamp, and keys missing from the map are deactivated.
	SetMessages(ctx context.Context, bundleID int64, messages map[string]string, now time.Time) error
	// ActiveMessages returns the bundle's active messages sorted by key.
	ActiveMessages(ctx context.Context, bundleID int64) ([]Message, error)
}
