package apps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/morelab/appcomposer/internal/bundles"
	"github.com/morelab/appcomposer/internal/locales"
	"github.com/morelab/appcomposer/internal/logging"
	"github.com/morelab/appcomposer/internal/scheduler"
	"github.com/morelab/appcomposer/pkg/interfaces"
)

const defaultSameNameLimit = 30

// OwnershipRegistry is the slice of the ownership service the application
// service needs: claiming free languages and releasing them on delete.
type OwnershipRegistry interface {
	Declare(ctx context.Context, specURL, code string, appID uuid.UUID) error
	HasOwner(ctx context.Context, specURL, code string) (bool, error)
	ReleaseApp(ctx context.Context, appID uuid.UUID) error
}

// TranslationStore is the slice of the translation repository used to keep
// the shared per-spec store in step with an application's bundles.
type TranslationStore interface {
	UpsertBundle(ctx context.Context, url, language, target string) (int64, error)
	SetMessages(ctx context.Context, bundleID int64, messages map[string]string, now time.Time) error
	BundleMessages(ctx context.Context, url, language, target string) (map[string]string, error)
	BundleCodes(ctx context.Context, url string) ([]string, error)
}

// Service manages translation applications: creation from an upstream spec,
// persistence of edited bundles, and the bookkeeping that feeds ownership
// and replication.
type Service struct {
	repo          Repository
	store         TranslationStore
	registry      OwnershipRegistry
	scheduler     interfaces.Scheduler
	fetcher       interfaces.Fetcher
	resolver      bundles.URLResolver
	logger        interfaces.Logger
	bundleLogger  interfaces.Logger
	now           func() time.Time
	idgen         func() uuid.UUID
	sameNameLimit int
}

// Option configures the application service.
type Option func(*Service)

// WithLogger overrides the default logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBundleLogger overrides the logger handed to the bundle managers the
// service builds. Defaults to the service logger.
func WithBundleLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.bundleLogger = logger
		}
	}
}

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the application ID generator.
func WithIDGenerator(idgen func() uuid.UUID) Option {
	return func(s *Service) {
		if idgen != nil {
			s.idgen = idgen
		}
	}
}

// WithSameNameLimit caps how many numbered suffixes UniqueName will try.
func WithSameNameLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.sameNameLimit = limit
		}
	}
}

// NewService creates an application service.
func NewService(
	repo Repository,
	store TranslationStore,
	registry OwnershipRegistry,
	sched interfaces.Scheduler,
	fetcher interfaces.Fetcher,
	resolver bundles.URLResolver,
	opts ...Option,
) *Service {
	s := &Service{
		repo:          repo,
		store:         store,
		registry:      registry,
		scheduler:     sched,
		fetcher:       fetcher,
		resolver:      resolver,
		logger:        logging.NoOp(),
		now:           time.Now,
		idgen:         uuid.New,
		sameNameLimit: defaultSameNameLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UniqueName returns base when free, otherwise the first numbered variant
// ("base (1)", "base (2)", ...) that is. ErrNameExhausted when the suffix
// limit runs out.
func (s *Service) UniqueName(ctx context.Context, base string) (string, error) {
	taken, err := s.nameTaken(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for n := 1; n <= s.sameNameLimit; n++ {
		candidate := fmt.Sprintf("%s (%d)", base, n)
		taken, err := s.nameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrNameExhausted
}

func (s *Service) managerLogger() interfaces.Logger {
	if s.bundleLogger != nil {
		return s.bundleLogger
	}
	return s.logger
}

func (s *Service) nameTaken(ctx context.Context, name string) (bool, error) {
	_, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrAppNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateRequest carries the inputs for creating a translation application.
type CreateRequest struct {
	Name    string
	Owner   string
	SpecURL string
}

// Create builds a translation application from an upstream gadget spec: it
// loads the spec and its message files, persists the application and its
// bundles, claims every unowned language, and schedules replication pushes.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Application, *bundles.Manager, error) {
	name, err := s.UniqueName(ctx, req.Name)
	if err != nil {
		return nil, nil, err
	}

	mgr := bundles.NewManager(s.fetcher, s.resolver,
		bundles.WithSpecURL(req.SpecURL),
		bundles.WithLogger(s.managerLogger()),
	)
	if err := mgr.LoadFullSpec(ctx, req.SpecURL); err != nil {
		return nil, nil, err
	}

	id := s.idgen()
	appURL, err := s.resolver.SpecURL(id.String())
	if err != nil {
		return nil, nil, err
	}

	data, err := encodeManager(mgr)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	app := &Application{
		ID:         id,
		Name:       name,
		Owner:      req.Owner,
		Composer:   ComposerTranslate,
		SpecURL:    req.SpecURL,
		URL:        appURL,
		Autoaccept: true,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.repo.Create(ctx, app); err != nil {
		return nil, nil, err
	}

	if err := s.persistBundles(ctx, app, mgr, now); err != nil {
		return nil, nil, err
	}
	s.claimFreeLanguages(ctx, app, mgr)

	s.logger.Info("application created",
		"app_id", app.ID, "name", app.Name, "spec_url", app.SpecURL)
	return app, mgr, nil
}

// Get returns the application by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Application, error) {
	return s.repo.GetByID(ctx, id)
}

// Manager rebuilds a bundle manager for the application from the shared
// translation store. The default language is re-claimed when it lost its
// owner, so every spec always has an answer for the fallback bundle.
func (s *Service) Manager(ctx context.Context, app *Application) (*bundles.Manager, error) {
	if app.Composer != ComposerTranslate {
		return nil, ErrNotTranslatable
	}

	mgr := bundles.NewManager(s.fetcher, s.resolver,
		bundles.WithSpecURL(app.SpecURL),
		bundles.WithLogger(s.managerLogger()),
	)

	codes, err := s.store.BundleCodes(ctx, app.SpecURL)
	if err != nil {
		return nil, err
	}
	for _, code := range codes {
		parsed, err := locales.Parse(code)
		if err != nil {
			s.logger.Warn("skipping malformed stored code", "code", code, "spec_url", app.SpecURL)
			continue
		}
		messages, err := s.store.BundleMessages(ctx, app.SpecURL, parsed.Lang+"_"+parsed.Country, parsed.Group)
		if err != nil {
			return nil, err
		}
		bundle := bundles.FromMessages(parsed.Lang, parsed.Country, parsed.Group, messages)
		if err := mgr.AddBundle(code, bundle); err != nil {
			return nil, err
		}
	}

	owned, err := s.registry.HasOwner(ctx, app.SpecURL, locales.DefaultPartialCode)
	if err == nil && !owned {
		if err := s.registry.Declare(ctx, app.SpecURL, locales.DefaultPartialCode, app.ID); err != nil {
			s.logger.Warn("could not re-claim default language",
				"spec_url", app.SpecURL, "app_id", app.ID, "error", err)
		}
	}
	return mgr, nil
}

// SaveBundles persists the manager's bundles into the shared translation
// store, refreshes the application's document blob, claims any newly added
// unowned languages, and schedules a replication push per bundle.
func (s *Service) SaveBundles(ctx context.Context, app *Application, mgr *bundles.Manager) error {
	if app.Composer != ComposerTranslate {
		return ErrNotTranslatable
	}

	now := s.now().UTC()
	if err := s.persistBundles(ctx, app, mgr, now); err != nil {
		return err
	}
	s.claimFreeLanguages(ctx, app, mgr)

	data, err := encodeManager(mgr)
	if err != nil {
		return err
	}
	app.Data = data
	app.UpdatedAt = now
	if _, err := s.repo.Update(ctx, app); err != nil {
		return err
	}
	return nil
}

// SetAutoaccept flips the automatic acceptance flag.
func (s *Service) SetAutoaccept(ctx context.Context, id uuid.UUID, value bool) (*Application, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	app.Autoaccept = value
	app.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, app)
}

// Delete removes the application and releases its ownerships. Shared
// translations survive; replica records tied to the application's URL are
// pruned by the next full sync.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.registry.ReleaseApp(ctx, id)
}

func (s *Service) persistBundles(ctx context.Context, app *Application, mgr *bundles.Manager, now time.Time) error {
	for _, code := range mgr.Codes() {
		bundle, ok := mgr.Bundle(code)
		if !ok {
			continue
		}
		bundleID, err := s.store.UpsertBundle(ctx, app.SpecURL, bundle.PartialCode(), bundle.Group())
		if err != nil {
			return err
		}
		if err := s.store.SetMessages(ctx, bundleID, bundle.Messages(), now); err != nil {
			return err
		}
		s.schedulePush(ctx, app.SpecURL, bundle.PartialCode(), bundle.Group())
	}
	return nil
}

// claimFreeLanguages declares ownership of the default language and of every
// bundled language that nobody owns yet. Contested languages are skipped.
func (s *Service) claimFreeLanguages(ctx context.Context, app *Application, mgr *bundles.Manager) {
	codes := append([]string{locales.DefaultCode}, mgr.Codes()...)
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		partial, err := locales.PartialCode(code)
		if err != nil {
			continue
		}
		if _, ok := seen[partial]; ok {
			continue
		}
		seen[partial] = struct{}{}

		owned, err := s.registry.HasOwner(ctx, app.SpecURL, partial)
		if err != nil || owned {
			continue
		}
		if err := s.registry.Declare(ctx, app.SpecURL, partial, app.ID); err != nil {
			s.logger.Debug("language claim lost",
				"spec_url", app.SpecURL, "partial_code", partial, "app_id", app.ID, "error", err)
		}
	}
}

func (s *Service) schedulePush(ctx context.Context, specURL, language, target string) {
	if s.scheduler == nil {
		return
	}
	_, err := s.scheduler.Enqueue(ctx, interfaces.JobSpec{
		Key:   scheduler.BundlePushJobKey(language, target, specURL),
		Type:  scheduler.JobTypeBundlePush,
		RunAt: s.now(),
		Payload: map[string]any{
			"translation_url": specURL,
			"language":        language,
			"target":          target,
		},
	})
	if err != nil {
		s.logger.Warn("could not schedule bundle push",
			"spec_url", specURL, "language", language, "target", target, "error", err)
	}
}

func encodeManager(mgr *bundles.Manager) (string, error) {
	doc := mgr.ToDocument()
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
