// Package di wires the composer runtime: configuration, storage,
// logging, services and the replication pipeline.
package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/morelab/appcomposer/internal/apps"
	"github.com/morelab/appcomposer/internal/bundles"
	"github.com/morelab/appcomposer/internal/fetch"
	composerhttp "github.com/morelab/appcomposer/internal/http"
	"github.com/morelab/appcomposer/internal/logging"
	"github.com/morelab/appcomposer/internal/logging/gologger"
	"github.com/morelab/appcomposer/internal/ownership"
	"github.com/morelab/appcomposer/internal/replica"
	"github.com/morelab/appcomposer/internal/runtimeconfig"
	"github.com/morelab/appcomposer/internal/scheduler"
	"github.com/morelab/appcomposer/internal/storage"
	composersync "github.com/morelab/appcomposer/internal/sync"
	"github.com/morelab/appcomposer/internal/translations"
	"github.com/morelab/appcomposer/pkg/interfaces"
)

// ErrDBRequired is returned when the configured storage driver needs a
// caller-supplied database connection.
var ErrDBRequired = errors.New("di: postgres storage requires a database via WithDB")

// Container owns every wired component of the composer runtime.
type Container struct {
	cfg runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	db             *bun.DB
	scheduler      interfaces.Scheduler
	fetcher        interfaces.Fetcher
	resolver       bundles.URLResolver

	appRepo         apps.Repository
	ownershipRepo   ownership.Repository
	translationRepo translations.Repository
	replicaStore    replica.Store

	appService       *apps.Service
	ownershipService *ownership.Service
	pusher           *composersync.Pusher
	syncer           *composersync.Syncer
	worker           *composersync.Worker

	migrators []storage.Migrator
}

// Option overrides a container dependency before wiring.
type Option func(*Container)

// WithDB injects an externally managed database connection.
func WithDB(db *bun.DB) Option {
	return func(c *Container) { c.db = db }
}

// WithLoggerProvider injects a logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithScheduler injects a scheduler implementation.
func WithScheduler(s interfaces.Scheduler) Option {
	return func(c *Container) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithFetcher injects the fetcher used for upstream specs and message files.
func WithFetcher(f interfaces.Fetcher) Option {
	return func(c *Container) {
		if f != nil {
			c.fetcher = f
		}
	}
}

// WithURLResolver injects the hosted URL resolver.
func WithURLResolver(r bundles.URLResolver) Option {
	return func(c *Container) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithReplicaStore injects the replica store.
func WithReplicaStore(s replica.Store) Option {
	return func(c *Container) {
		if s != nil {
			c.replicaStore = s
		}
	}
}

// NewContainer validates the configuration and wires the runtime.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.buildLogging(); err != nil {
		return nil, err
	}
	if err := c.buildStorage(); err != nil {
		return nil, err
	}
	c.buildResolver()
	c.buildPipeline()
	c.buildServices()
	return c, nil
}

func (c *Container) buildLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch c.cfg.Logging.Provider {
	case "noop":
		c.loggerProvider = noopProvider{}
		return nil
	default:
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.cfg.Logging.Level,
			Format:    consoleFormat(c.cfg.Logging),
			AddSource: c.cfg.Logging.AddSource,
			Focus:     c.cfg.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
		return nil
	}
}

// consoleFormat maps the "console" provider shorthand onto the go-logger
// console format unless an explicit format is set.
func consoleFormat(cfg runtimeconfig.Logging) string {
	if cfg.Format != "" {
		return cfg.Format
	}
	if cfg.Provider == "console" {
		return "console"
	}
	return ""
}

func (c *Container) buildStorage() error {
	switch strings.ToLower(strings.TrimSpace(c.cfg.Storage.Driver)) {
	case "memory":
		c.appRepo = apps.NewMemoryRepository()
		c.ownershipRepo = ownership.NewMemoryRepository()
		c.translationRepo = translations.NewMemoryRepository()
		if c.replicaStore == nil {
			c.replicaStore = replica.NewMemoryStore()
		}
		return nil
	case "sqlite":
		if c.db == nil {
			db, err := storage.Open(c.cfg.Storage.DSN)
			if err != nil {
				return err
			}
			c.db = db
		}
	case "postgres":
		if c.db == nil {
			return ErrDBRequired
		}
	default:
		return fmt.Errorf("di: unknown storage driver %q", c.cfg.Storage.Driver)
	}

	appRepo := apps.NewBunRepository(c.db)
	ownershipRepo := ownership.NewBunRepository(c.db)
	translationRepo := translations.NewBunRepository(c.db)

	c.appRepo = appRepo
	c.ownershipRepo = ownershipRepo
	c.translationRepo = translationRepo
	c.migrators = append(c.migrators, appRepo, ownershipRepo, translationRepo)

	if c.replicaStore == nil {
		replicaStore := replica.NewBunStore(c.db)
		c.replicaStore = replicaStore
		c.migrators = append(c.migrators, replicaStore)
	}
	return nil
}

func (c *Container) buildResolver() {
	if c.resolver != nil {
		return
	}
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "hosting",
				BaseURL: c.cfg.Hosting.BaseURL,
				Paths: map[string]string{
					"spec":     c.cfg.Hosting.SpecPath,
					"langfile": c.cfg.Hosting.LangfilePath,
				},
			},
		},
	})
	c.resolver = bundles.NewURLKitResolver(bundles.URLKitResolverOptions{Manager: manager})
}

func (c *Container) buildPipeline() {
	if c.scheduler == nil {
		if c.cfg.Sync.Disabled {
			c.scheduler = scheduler.NewNoOp()
		} else {
			c.scheduler = scheduler.NewInMemory(
				scheduler.WithDefaultMaxAttempts(c.cfg.Sync.Retry.MaxAttempts),
				scheduler.WithBackoff(c.cfg.Sync.Retry.BaseDelay, c.cfg.Sync.Retry.MaxDelay),
			)
		}
	}
	if c.fetcher == nil {
		c.fetcher = fetch.NewHTTPFetcher()
	}

	syncLogger := logging.SyncLogger(c.loggerProvider)
	c.pusher = composersync.NewPusher(
		c.translationRepo,
		c.replicaStore,
		syncAppDirectory{repo: c.appRepo},
		composersync.WithPusherLogger(syncLogger),
	)
	c.syncer = composersync.NewSyncer(
		c.translationRepo,
		c.replicaStore,
		c.pusher,
		composersync.WithSyncerLogger(syncLogger),
	)
	c.worker = composersync.NewWorker(
		c.scheduler,
		c.pusher,
		c.syncer,
		composersync.WithWorkerLogger(syncLogger),
		composersync.WithBatchSize(c.cfg.Sync.BatchSize),
	)
}

func (c *Container) buildServices() {
	c.ownershipService = ownership.NewService(
		c.ownershipRepo,
		ownershipAppDirectory{repo: c.appRepo},
		ownership.WithLogger(logging.OwnershipLogger(c.loggerProvider)),
	)
	c.appService = apps.NewService(
		c.appRepo,
		translations.NewStore(c.translationRepo),
		c.ownershipService,
		c.scheduler,
		c.fetcher,
		c.resolver,
		apps.WithLogger(logging.AppsLogger(c.loggerProvider)),
		apps.WithBundleLogger(logging.BundlesLogger(c.loggerProvider)),
		apps.WithSameNameLimit(c.cfg.Apps.SameNameLimit),
	)
}

// Migrate creates the database schema for every Bun-backed repository.
func (c *Container) Migrate(ctx context.Context) error {
	return storage.Migrate(ctx, c.migrators...)
}

// Apps returns the application service.
func (c *Container) Apps() *apps.Service { return c.appService }

// Ownership returns the ownership registry.
func (c *Container) Ownership() *ownership.Service { return c.ownershipService }

// Pusher returns the bundle pusher.
func (c *Container) Pusher() *composersync.Pusher { return c.pusher }

// Syncer returns the full sync runner.
func (c *Container) Syncer() *composersync.Syncer { return c.syncer }

// Worker returns the replication worker.
func (c *Container) Worker() *composersync.Worker { return c.worker }

// Scheduler returns the job scheduler.
func (c *Container) Scheduler() interfaces.Scheduler { return c.scheduler }

// LoggerProvider returns the wired logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// DB returns the wired database, nil for memory storage.
func (c *Container) DB() *bun.DB { return c.db }

// Handler builds the HTTP handler exposing the hosted surface.
func (c *Container) Handler() (http.Handler, error) {
	api := composerhttp.NewAPI(
		composerhttp.WithAppService(c.appService),
		composerhttp.WithOwnershipService(c.ownershipService),
		composerhttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	)
	mux := http.NewServeMux()
	if err := api.Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

type noopProvider struct{}

func (noopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

// ownershipAppDirectory adapts the application repository for the ownership
// registry.
type ownershipAppDirectory struct {
	repo apps.Repository
}

func (d ownershipAppDirectory) App(ctx context.Context, id uuid.UUID) (ownership.AppInfo, error) {
	app, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return ownership.AppInfo{}, err
	}
	return ownership.AppInfo{
		ID:         app.ID,
		Name:       app.Name,
		Owner:      app.Owner,
		SpecURL:    app.SpecURL,
		Composer:   app.Composer,
		Autoaccept: app.Autoaccept,
	}, nil
}

// syncAppDirectory adapts the application repository for the replication
// pusher.
type syncAppDirectory struct {
	repo apps.Repository
}

func (d syncAppDirectory) AppsForSpec(ctx context.Context, specURL string) ([]composersync.AppRef, error) {
	records, err := d.repo.ListBySpec(ctx, specURL, apps.ComposerTranslate)
	if err != nil {
		return nil, err
	}
	refs := make([]composersync.AppRef, 0, len(records))
	for _, app := range records {
		refs = append(refs, composersync.AppRef{ID: app.ID, URL: app.URL})
	}
	return refs, nil
}
