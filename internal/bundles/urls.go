package bundles

import (
	"fmt"

	urlkit "github.com/goliatone/go-urlkit"
)

// URLResolver produces the externally visible URLs under which the composer
// hosts rewritten gadget specs and generated message-bundle files.
type URLResolver interface {
	SpecURL(appID string) (string, error)
	LangfileURL(appID, code string) (string, error)
}

// URLKitResolverOptions configures the go-urlkit backed resolver.
type URLKitResolverOptions struct {
	Manager       *urlkit.RouteManager
	Group         string
	SpecRoute     string
	LangfileRoute string
	AppParam      string
	LangfileParam string
}

// URLKitResolver resolves hosted URLs through a go-urlkit RouteManager.
type URLKitResolver struct {
	manager       *urlkit.RouteManager
	group         string
	specRoute     string
	langfileRoute string
	appParam      string
	langfileParam string
}

// NewURLKitResolver constructs a resolver backed by go-urlkit.
func NewURLKitResolver(opts URLKitResolverOptions) *URLKitResolver {
	if opts.Group == "" {
		opts.Group = "hosting"
	}
	if opts.SpecRoute == "" {
		opts.SpecRoute = "spec"
	}
	if opts.LangfileRoute == "" {
		opts.LangfileRoute = "langfile"
	}
	if opts.AppParam == "" {
		opts.AppParam = "appid"
	}
	if opts.LangfileParam == "" {
		opts.LangfileParam = "langfile"
	}
	return &URLKitResolver{
		manager:       opts.Manager,
		group:         opts.Group,
		specRoute:     opts.SpecRoute,
		langfileRoute: opts.LangfileRoute,
		appParam:      opts.AppParam,
		langfileParam: opts.LangfileParam,
	}
}

// SpecURL returns the hosted URL of the rewritten gadget spec for an app.
func (r *URLKitResolver) SpecURL(appID string) (string, error) {
	builder, err := r.safeBuilder(r.specRoute)
	if err != nil {
		return "", err
	}
	return builder.WithParam(r.appParam, appID).Build()
}

// LangfileURL returns the hosted URL of one generated message-bundle file.
// The langfile path segment is the file name, full locale code plus ".xml".
func (r *URLKitResolver) LangfileURL(appID, code string) (string, error) {
	builder, err := r.safeBuilder(r.langfileRoute)
	if err != nil {
		return "", err
	}
	return builder.
		WithParam(r.appParam, appID).
		WithParam(r.langfileParam, code+".xml").
		Build()
}

// safeBuilder shields callers from urlkit panics on unknown groups/routes.
func (r *URLKitResolver) safeBuilder(route string) (builder *urlkit.Builder, err error) {
	if r == nil || r.manager == nil {
		return nil, fmt.Errorf("bundles: url route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("bundles: url route %q not available: %v", route, rec)
		}
	}()
	builder = r.manager.Group(r.group).Builder(route)
	return builder, err
}
