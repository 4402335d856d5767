package bundles

import (
	"context"
	"sort"

	"github.com/morelab/appcomposer/internal/locales"
	"github.com/morelab/appcomposer/internal/logging"
	"github.com/morelab/appcomposer/pkg/interfaces"
)

// Manager owns the set of bundles for one application. It loads bundles from
// an external gadget spec, (de)serializes the whole set to its JSON document
// form, and rewrites gadget-spec XML so every Locale element points at the
// composer-hosted bundle files.
type Manager struct {
	specURL string

	fetcher  interfaces.Fetcher
	resolver URLResolver
	logger   interfaces.Logger

	codes   []string
	bundles map[string]*Bundle
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSpecURL points the manager at the authoritative upstream spec without
// loading it.
func WithSpecURL(url string) ManagerOption {
	return func(m *Manager) {
		m.specURL = url
	}
}

// WithLogger injects the bundle-management logger.
func WithLogger(logger interfaces.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager constructs an empty manager. The fetcher retrieves external
// documents; the resolver builds the hosted URLs injected during renders.
func NewManager(fetcher interfaces.Fetcher, resolver URLResolver, opts ...ManagerOption) *Manager {
	m := &Manager{
		fetcher:  fetcher,
		resolver: resolver,
		logger:   logging.NoOp(),
		bundles:  make(map[string]*Bundle),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SpecURL returns the URL of the authoritative upstream gadget spec.
func (m *Manager) SpecURL() string {
	return m.specURL
}

// Bundle returns the bundle stored under the given full code.
func (m *Manager) Bundle(code string) (*Bundle, bool) {
	bundle, ok := m.bundles[code]
	return bundle, ok
}

// Codes returns the stored bundle codes in insertion order.
func (m *Manager) Codes() []string {
	out := make([]string, len(m.codes))
	copy(out, m.codes)
	return out
}

// AddBundle stores a bundle under the given full code. Adding a code that is
// already present fails with a BundleExistsError.
func (m *Manager) AddBundle(code string, bundle *Bundle) error {
	if _, ok := m.bundles[code]; ok {
		return &BundleExistsError{Code: code}
	}
	m.setBundle(code, bundle)
	return nil
}

// setBundle inserts or replaces without the duplicate guard.
func (m *Manager) setBundle(code string, bundle *Bundle) {
	if _, ok := m.bundles[code]; !ok {
		m.codes = append(m.codes, code)
	}
	m.bundles[code] = bundle
}

// RemoveBundle drops the bundle stored under the given code, if any.
func (m *Manager) RemoveBundle(code string) {
	if _, ok := m.bundles[code]; !ok {
		return
	}
	delete(m.bundles, code)
	for i, c := range m.codes {
		if c == code {
			m.codes = append(m.codes[:i], m.codes[i+1:]...)
			break
		}
	}
}

// LoadFullSpec fetches the gadget spec at url, fetches every message file its
// Locale elements reference, and stores one bundle per (lang, country)
// under the "ALL" group: imported specs never carry groups. A failure to
// retrieve or parse any document aborts the whole load; a manager with
// silently missing languages is worse than a visible hard failure.
func (m *Manager) LoadFullSpec(ctx context.Context, url string) error {
	m.specURL = url

	specXML, err := m.fetch(ctx, url)
	if err != nil {
		return err
	}
	specLocales, err := ExtractLocales(specXML)
	if err != nil {
		return &SpecRetrievalError{URL: url, Cause: err}
	}

	for _, locale := range specLocales {
		bundleXML, err := m.fetch(ctx, locale.MessagesURL)
		if err != nil {
			return err
		}
		bundle, err := FromXML(bundleXML, locale.Lang, locale.Country, locales.GroupAll)
		if err != nil {
			return &SpecRetrievalError{URL: locale.MessagesURL, Cause: err}
		}
		m.setBundle(bundle.Code(), bundle)
	}

	m.logger.Debug("bundles.spec.loaded", "spec_url", url, "locales", len(specLocales))
	return nil
}

func (m *Manager) fetch(ctx context.Context, url string) ([]byte, error) {
	if m.fetcher == nil {
		return nil, &SpecRetrievalError{URL: url}
	}
	data, err := m.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, &SpecRetrievalError{URL: url, Cause: err}
	}
	return data, nil
}

// ToDocument exports the manager to its whole-manager document form.
func (m *Manager) ToDocument() ManagerDocument {
	doc := ManagerDocument{
		Spec:    m.specURL,
		Bundles: make(map[string]Document, len(m.bundles)),
	}
	for code, bundle := range m.bundles {
		doc.Bundles[code] = bundle.ToDocument()
	}
	return doc
}

// FromDocument loads a manager document: existing bundles are replaced per
// code, new codes are added. No external requests are made. Codes are
// visited in sorted order so insertion order stays deterministic.
func (m *Manager) FromDocument(doc ManagerDocument) {
	if doc.Spec != "" {
		m.specURL = doc.Spec
	}
	codes := make([]string, 0, len(doc.Bundles))
	for code := range doc.Bundles {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		m.setBundle(code, FromDocument(doc.Bundles[code]))
	}
}

// LocaleInfo describes one stored bundle for listing purposes.
type LocaleInfo struct {
	Code        string
	PartialCode string
	Lang        string
	Country     string
	Group       string
	DisplayName string
}

// LocalesList returns, per stored bundle, its codes, segments and
// best-effort display name.
func (m *Manager) LocalesList() []LocaleInfo {
	out := make([]LocaleInfo, 0, len(m.codes))
	for _, code := range m.codes {
		bundle := m.bundles[code]
		out = append(out, LocaleInfo{
			Code:        code,
			PartialCode: bundle.PartialCode(),
			Lang:        bundle.Lang(),
			Country:     bundle.Country(),
			Group:       bundle.Group(),
			DisplayName: locales.DisplayName(bundle.Lang(), bundle.Country()),
		})
	}
	return out
}

// RenderSpec fetches the upstream spec fresh and rewrites it for the given
// application: existing Locale elements are replaced with links to the
// composer-hosted bundle files. The upstream document is never cached, so
// author edits propagate on the next render.
//
// With respectDefault set the original default-locale element is preserved
// and no element is emitted for the default bundle itself. A manager without
// the default bundle, or a spec without a default Locale element, is not
// publishable and fails with ErrNoDefaultLanguage.
func (m *Manager) RenderSpec(ctx context.Context, appID string, respectDefault bool) ([]byte, error) {
	if respectDefault {
		if _, ok := m.bundles[locales.DefaultCode]; !ok {
			return nil, ErrNoDefaultLanguage
		}
	}

	specXML, err := m.fetch(ctx, m.specURL)
	if err != nil {
		return nil, err
	}

	entries := make([]LocaleEntry, 0, len(m.codes))
	for _, code := range m.codes {
		if respectDefault && code == locales.DefaultCode {
			// The original default element is kept as-is; no replacement.
			continue
		}
		bundle := m.bundles[code]
		hosted, err := m.resolveLangfileURL(appID, bundle)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LocaleEntry{
			Lang:        bundle.Lang(),
			Country:     bundle.Country(),
			MessagesURL: hosted,
		})
	}

	return RewriteSpec(specXML, entries, respectDefault)
}

func (m *Manager) resolveLangfileURL(appID string, bundle *Bundle) (string, error) {
	if m.resolver == nil {
		return "", errResolverRequired
	}
	return m.resolver.LangfileURL(appID, bundle.Code())
}
