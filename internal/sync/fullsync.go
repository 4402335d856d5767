package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/morelab/appcomposer/internal/logging"
	"github.com/morelab/appcomposer/internal/replica"
	"github.com/morelab/appcomposer/internal/translations"
	"github.com/morelab/appcomposer/pkg/interfaces"
)

// SyncStats summarizes a full sync pass.
type SyncStats struct {
	Bundles     int
	PrunedURLs  int
	PrunedApps  int
	StartedAt   time.Time
	CompletedAt time.Time
}

// Syncer runs the periodic full pass: re-push every stored bundle, then
// prune replica records that were neither written nor current.
type Syncer struct {
	translations translations.Repository
	store        replica.Store
	pusher       *Pusher
	logger       interfaces.Logger
	now          func() time.Time
}

// SyncerOption configures the syncer.
type SyncerOption func(*Syncer)

// WithSyncerLogger overrides the default logger.
func WithSyncerLogger(logger interfaces.Logger) SyncerOption {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSyncerClock overrides the time source, mostly for tests.
func WithSyncerClock(now func() time.Time) SyncerOption {
	return func(s *Syncer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSyncer creates a full sync runner.
func NewSyncer(repo translations.Repository, store replica.Store, pusher *Pusher, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		translations: repo,
		store:        store,
		pusher:       pusher,
		logger:       logging.NoOp(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FullSync pushes every stored bundle and removes replica records that are
// no longer backed by a bundle. The cutoff is snapshotted before the first
// push, so records written concurrently are never pruned. Any push failure
// aborts the pass without pruning; deleting on a partial written-set would
// drop records that are still valid.
func (s *Syncer) FullSync(ctx context.Context) (SyncStats, error) {
	stats := SyncStats{StartedAt: s.now().UTC()}

	bundles, err := s.translations.ListBundles(ctx)
	if err != nil {
		return stats, err
	}

	keepURLs := make([]string, 0, len(bundles))
	var keepApps []string
	for _, bundle := range bundles {
		result, err := s.pusher.Push(ctx, bundle.TranslationURL, bundle.Language, bundle.Target)
		if err != nil {
			return stats, fmt.Errorf("sync: pushing %s for %s: %w",
				bundle.FullCode(), bundle.TranslationURL, err)
		}
		keepURLs = append(keepURLs, result.URLRecordID)
		keepApps = append(keepApps, result.AppRecordIDs...)
		stats.Bundles++
	}

	stats.PrunedURLs, err = s.store.DeleteStale(ctx, replica.CollectionTranslationURLs, keepURLs, stats.StartedAt)
	if err != nil {
		return stats, err
	}
	stats.PrunedApps, err = s.store.DeleteStale(ctx, replica.CollectionApplications, keepApps, stats.StartedAt)
	if err != nil {
		return stats, err
	}

	stats.CompletedAt = s.now().UTC()
	s.logger.Info("full sync completed",
		"bundles", stats.Bundles,
		"pruned_urls", stats.PrunedURLs,
		"pruned_apps", stats.PrunedApps,
		"elapsed", stats.CompletedAt.Sub(stats.StartedAt))
	return stats, nil
}
