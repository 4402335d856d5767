package translations

import (
	"context"
	"time"
)

// Store is a convenience facade over Repository for callers that think in
// bundle IDs, full locale codes and plain message maps.
type Store struct {
	repo Repository
}

// NewStore wraps the repository.
func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// UpsertBundle returns the ID of the bundle for the key, creating it when
// absent.
func (s *Store) UpsertBundle(ctx context.Context, url, language, target string) (int64, error) {
	bundle, err := s.repo.UpsertBundle(ctx, url, language, target)
	if err != nil {
		return 0, err
	}
	return bundle.ID, nil
}

// SetMessages reconciles a bundle's messages. See Repository.SetMessages.
func (s *Store) SetMessages(ctx context.Context, bundleID int64, messages map[string]string, now time.Time) error {
	return s.repo.SetMessages(ctx, bundleID, messages, now)
}

// BundleMessages returns the active messages of a bundle as a map, or
// ErrBundleNotFound.
func (s *Store) BundleMessages(ctx context.Context, url, language, target string) (map[string]string, error) {
	bundle, err := s.repo.GetBundle(ctx, url, language, target)
	if err != nil {
		return nil, err
	}
	messages, err := s.repo.ActiveMessages(ctx, bundle.ID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(messages))
	for _, msg := range messages {
		out[msg.Key] = msg.Value
	}
	return out, nil
}

// BundleCodes lists the full locale codes stored for a spec URL.
func (s *Store) BundleCodes(ctx context.Context, url string) ([]string, error) {
	bundles, err := s.repo.BundlesForURL(ctx, url)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(bundles))
	for _, bundle := range bundles {
		codes = append(codes, bundle.FullCode())
	}
	return codes, nil
}
