// Package sync replicates translation bundles into the replica store: one
// push per bundle on save, plus a periodic full pass that also prunes
// records nothing refers to anymore.
package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/morelab/appcomposer/internal/logging"
	"github.com/morelab/appcomposer/internal/replica"
	"github.com/morelab/appcomposer/internal/translations"
	"github.com/morelab/appcomposer/pkg/interfaces"
)

// AppRef identifies a hosted application consuming a spec's translations.
type AppRef struct {
	ID  uuid.UUID
	URL string
}

// AppDirectory lists the translation applications working against a spec.
type AppDirectory interface {
	AppsForSpec(ctx context.Context, specURL string) ([]AppRef, error)
}

// PushResult reports the replica records a push touched. IDs are included
// whether the write landed or was skipped for being older; either way the
// record is current and must survive pruning.
type PushResult struct {
	URLRecordID  string
	AppRecordIDs []string
}

// Pusher replicates a single bundle: one record keyed by the spec URL and
// one per hosted application. The record watermark is the newest message
// modification time, so replays of stale payloads never win.
type Pusher struct {
	translations translations.Repository
	store        replica.Store
	apps         AppDirectory
	logger       interfaces.Logger
}

// PusherOption configures the pusher.
type PusherOption func(*Pusher)

// WithPusherLogger overrides the default logger.
func WithPusherLogger(logger interfaces.Logger) PusherOption {
	return func(p *Pusher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPusher creates a bundle pusher.
func NewPusher(repo translations.Repository, store replica.Store, apps AppDirectory, opts ...PusherOption) *Pusher {
	p := &Pusher{
		translations: repo,
		store:        store,
		apps:         apps,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Push replicates the bundle identified by URL, partial language code and
// target group. Each record write is independent; the first failure aborts
// and surfaces so the job layer can retry.
func (p *Pusher) Push(ctx context.Context, url, language, target string) (PushResult, error) {
	logger := logging.WithTranslationContext(p.logger, "", url, language+"_"+target)

	bundle, err := p.translations.GetBundle(ctx, url, language, target)
	if err != nil {
		return PushResult{}, err
	}
	messages, err := p.translations.ActiveMessages(ctx, bundle.ID)
	if err != nil {
		return PushResult{}, err
	}

	payload := make(map[string]string, len(messages))
	watermark := time.Unix(0, 0).UTC()
	for _, msg := range messages {
		payload[msg.Key] = msg.Value
		if msg.UpdatedAt.After(watermark) {
			watermark = msg.UpdatedAt
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return PushResult{}, err
	}

	langPack := language + "_" + target
	result := PushResult{URLRecordID: replica.RecordID(langPack, url)}

	written, err := p.store.UpsertNotOlder(ctx, replica.CollectionTranslationURLs, replica.Record{
		ID:     result.URLRecordID,
		Bundle: langPack,
		URL:    url,
		Data:   string(data),
		Time:   watermark,
	})
	if err != nil {
		return PushResult{}, err
	}
	if !written {
		logger.Debug("replica has fresher data, skipping",
			"record", result.URLRecordID)
	}

	apps, err := p.apps.AppsForSpec(ctx, url)
	if err != nil {
		return PushResult{}, err
	}
	for _, app := range apps {
		id := replica.RecordID(langPack, app.URL)
		if _, err := p.store.UpsertNotOlder(ctx, replica.CollectionApplications, replica.Record{
			ID:     id,
			Bundle: langPack,
			URL:    app.URL,
			Data:   string(data),
			Time:   watermark,
		}); err != nil {
			return PushResult{}, err
		}
		result.AppRecordIDs = append(result.AppRecordIDs, id)
	}

	logger.Info("bundle pushed",
		"apps", len(result.AppRecordIDs), "watermark", watermark)
	return result, nil
}
