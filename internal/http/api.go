// Package http exposes the composer's hosted surface: rendered gadget
// specs, language files, and the translation ownership API.
package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/morelab/appcomposer/internal/apps"
	"github.com/morelab/appcomposer/internal/logging"
	"github.com/morelab/appcomposer/internal/ownership"
	"github.com/morelab/appcomposer/pkg/interfaces"
)

// API registers the composer endpoints.
type API struct {
	basePath  string
	apps      *apps.Service
	ownership *ownership.Service
	logger    interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance.
func NewAPI(opts ...Option) *API {
	api := &API{
		basePath: "",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base path (defaults to the mux root).
func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithAppService wires the application service.
func WithAppService(service *apps.Service) Option {
	return func(api *API) {
		api.apps = service
	}
}

// WithOwnershipService wires the ownership registry.
func WithOwnershipService(service *ownership.Service) Option {
	return func(api *API) {
		api.ownership = service
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the composer endpoints to the provided mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api.apps == nil {
		return fmt.Errorf("http: application service is required")
	}
	if api.ownership == nil {
		return fmt.Errorf("http: ownership service is required")
	}

	base := strings.TrimRight(api.basePath, "/")

	mux.HandleFunc("GET "+base+"/app/{appid}/app.xml", api.handleRenderedSpec)
	mux.HandleFunc("GET "+base+"/app/{appid}/i18n/{langfile}", api.handleLangfile)
	mux.HandleFunc("GET "+base+"/translations/ownerships", api.handleOwnerships)
	mux.HandleFunc("GET "+base+"/translations/autoaccept", api.handleGetAutoaccept)
	mux.HandleFunc("POST "+base+"/translations/autoaccept", api.handleSetAutoaccept)

	return nil
}
