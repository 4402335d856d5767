// Package appcomposer assembles translated copies of OpenSocial gadget
// specs: it pulls a spec and its message bundles from the upstream server,
// lets applications edit the translations, tracks per-language ownership,
// and replicates rendered bundles into a replica store consumed by gadget
// servers.
package appcomposer

import (
	"context"
	"net/http"

	"github.com/morelab/appcomposer/internal/apps"
	"github.com/morelab/appcomposer/internal/di"
	"github.com/morelab/appcomposer/internal/ownership"
	"github.com/morelab/appcomposer/internal/sync"
	"github.com/morelab/appcomposer/pkg/interfaces"
)

// AppService exports the application service contract for consumers of the module.
type AppService = *apps.Service

// OwnershipService exports the ownership registry contract.
type OwnershipService = *ownership.Service

// SyncWorker exports the replication worker contract.
type SyncWorker = *sync.Worker

// Application exports the application record type.
type Application = apps.Application

// OwnerInfo exports the resolved ownership listing type.
type OwnerInfo = ownership.OwnerInfo

// Module is the top level composer runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a composer module using the provided configuration and
// optional dependency overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying wiring for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Migrate creates the database schema when running on Bun storage.
func (m *Module) Migrate(ctx context.Context) error {
	return m.container.Migrate(ctx)
}

// Apps returns the application service.
func (m *Module) Apps() AppService {
	return m.container.Apps()
}

// Ownership returns the ownership registry.
func (m *Module) Ownership() OwnershipService {
	return m.container.Ownership()
}

// Sync returns the replication worker.
func (m *Module) Sync() SyncWorker {
	return m.container.Worker()
}

// Scheduler returns the job scheduler backing the replication pipeline.
func (m *Module) Scheduler() interfaces.Scheduler {
	return m.container.Scheduler()
}

// Handler returns the HTTP handler exposing the hosted surface.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.Handler()
}
