package bundles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

const testSpecXML = `<?xml version="1.0" encoding="UTF-8"?>
<Module>
  <ModulePrefs title="Test Gadget">
    <Locale messages="http://upstream.example.com/i18n/default.xml"/>
    <Locale lang="ca" country="ES" messages="http://upstream.example.com/i18n/ca.xml"/>
  </ModulePrefs>
  <Content type="html">hello</Content>
</Module>
`

const defaultMessagesXML = `<messagebundle>
  <msg name="greeting">hello</msg>
</messagebundle>
`

const catalanMessagesXML = `<messagebundle>
  <msg name="greeting">hola</msg>
</messagebundle>
`

type mapFetcher map[string][]byte

func (f mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	data, ok := f[url]
	if !ok {
		return nil, fmt.Errorf("no such url: %s", url)
	}
	return data, nil
}

type stubResolver struct{}

func (stubResolver) SpecURL(appID string) (string, error) {
	return "http://composer.example.com/app/" + appID + "/app.xml", nil
}

func (stubResolver) LangfileURL(appID, code string) (string, error) {
	return "http://composer.example.com/app/" + appID + "/i18n/" + code + ".xml", nil
}

func testFetcher() mapFetcher {
	return mapFetcher{
		"http://upstream.example.com/app.xml":          []byte(testSpecXML),
		"http://upstream.example.com/i18n/default.xml": []byte(defaultMessagesXML),
		"http://upstream.example.com/i18n/ca.xml":      []byte(catalanMessagesXML),
	}
}

func TestManager_LoadFullSpec(t *testing.T) {
	mgr := NewManager(testFetcher(), stubResolver{})
	if err := mgr.LoadFullSpec(context.Background(), "http://upstream.example.com/app.xml"); err != nil {
		t.Fatalf("LoadFullSpec() error = %v", err)
	}

	if mgr.SpecURL() != "http://upstream.example.com/app.xml" {
		t.Fatalf("SpecURL() = %q", mgr.SpecURL())
	}

	def, ok := mgr.Bundle("all_ALL_ALL")
	if !ok {
		t.Fatalf("default bundle missing, codes = %v", mgr.Codes())
	}
	if got, _ := def.Message("greeting"); got != "hello" {
		t.Fatalf("default greeting = %q", got)
	}

	ca, ok := mgr.Bundle("ca_ES_ALL")
	if !ok {
		t.Fatalf("ca_ES_ALL bundle missing, codes = %v", mgr.Codes())
	}
	if ca.Group() != "ALL" {
		t.Fatalf("imported group = %q, want ALL", ca.Group())
	}
	if got, _ := ca.Message("greeting"); got != "hola" {
		t.Fatalf("catalan greeting = %q", got)
	}
}

func TestManager_LoadFullSpec_MissingMessageFileAborts(t *testing.T) {
	fetcher := testFetcher()
	delete(fetcher, "http://upstream.example.com/i18n/ca.xml")

	mgr := NewManager(fetcher, stubResolver{})
	err := mgr.LoadFullSpec(context.Background(), "http://upstream.example.com/app.xml")
	if !errors.Is(err, ErrSpecRetrieval) {
		t.Fatalf("LoadFullSpec() error = %v, want ErrSpecRetrieval", err)
	}
}

func TestManager_LoadFullSpec_RootFetchFails(t *testing.T) {
	mgr := NewManager(mapFetcher{}, stubResolver{})
	err := mgr.LoadFullSpec(context.Background(), "http://upstream.example.com/app.xml")
	if !errors.Is(err, ErrSpecRetrieval) {
		t.Fatalf("LoadFullSpec() error = %v, want ErrSpecRetrieval", err)
	}
}

func TestManager_AddBundle_Duplicate(t *testing.T) {
	mgr := NewManager(nil, stubResolver{})
	if err := mgr.AddBundle("ca_ES_ALL", New("ca", "ES", "ALL")); err != nil {
		t.Fatalf("AddBundle() error = %v", err)
	}
	if err := mgr.AddBundle("ca_ES_ALL", New("ca", "ES", "ALL")); !errors.Is(err, ErrBundleExists) {
		t.Fatalf("AddBundle() duplicate error = %v, want ErrBundleExists", err)
	}
}

func TestManager_DocumentRoundTrip(t *testing.T) {
	mgr := NewManager(testFetcher(), stubResolver{})
	if err := mgr.LoadFullSpec(context.Background(), "http://upstream.example.com/app.xml"); err != nil {
		t.Fatalf("LoadFullSpec() error = %v", err)
	}

	doc := mgr.ToDocument()
	if doc.Spec != mgr.SpecURL() {
		t.Fatalf("ToDocument() spec = %q", doc.Spec)
	}

	restored := NewManager(nil, stubResolver{})
	restored.FromDocument(doc)

	if restored.SpecURL() != mgr.SpecURL() {
		t.Fatalf("FromDocument() spec = %q", restored.SpecURL())
	}
	for _, code := range mgr.Codes() {
		original, _ := mgr.Bundle(code)
		loaded, ok := restored.Bundle(code)
		if !ok {
			t.Fatalf("FromDocument() missing bundle %s", code)
		}
		for _, key := range original.Keys() {
			want, _ := original.Message(key)
			if got, _ := loaded.Message(key); got != want {
				t.Fatalf("FromDocument() %s/%s = %q, want %q", code, key, got, want)
			}
		}
	}
}

func TestManager_FromDocument_ReplacesByCode(t *testing.T) {
	mgr := NewManager(nil, stubResolver{})
	stale := New("ca", "ES", "ALL")
	stale.AddMessage("greeting", "stale")
	if err := mgr.AddBundle("ca_ES_ALL", stale); err != nil {
		t.Fatalf("AddBundle() error = %v", err)
	}

	mgr.FromDocument(ManagerDocument{
		Spec: "http://upstream.example.com/app.xml",
		Bundles: map[string]Document{
			"ca_ES_ALL": {Lang: "ca", Country: "ES", Group: "ALL", Messages: map[string]string{"greeting": "hola"}},
			"fr_FR_ALL": {Lang: "fr", Country: "FR", Group: "ALL", Messages: map[string]string{"greeting": "bonjour"}},
		},
	})

	ca, _ := mgr.Bundle("ca_ES_ALL")
	if got, _ := ca.Message("greeting"); got != "hola" {
		t.Fatalf("replaced bundle greeting = %q, want hola", got)
	}
	if _, ok := mgr.Bundle("fr_FR_ALL"); !ok {
		t.Fatal("new bundle fr_FR_ALL missing after FromDocument")
	}
}

func TestManager_RenderSpec(t *testing.T) {
	mgr := NewManager(testFetcher(), stubResolver{})
	if err := mgr.LoadFullSpec(context.Background(), "http://upstream.example.com/app.xml"); err != nil {
		t.Fatalf("LoadFullSpec() error = %v", err)
	}

	out, err := mgr.RenderSpec(context.Background(), "app-1", true)
	if err != nil {
		t.Fatalf("RenderSpec() error = %v", err)
	}
	text := string(out)

	// The original default element survives untouched.
	if !strings.Contains(text, "http://upstream.example.com/i18n/default.xml") {
		t.Fatalf("RenderSpec() dropped the default locale element:\n%s", text)
	}
	// The upstream catalan element is replaced with a hosted one.
	if strings.Contains(text, "http://upstream.example.com/i18n/ca.xml") {
		t.Fatalf("RenderSpec() kept an upstream locale element:\n%s", text)
	}
	if !strings.Contains(text, "http://composer.example.com/app/app-1/i18n/ca_ES_ALL.xml") {
		t.Fatalf("RenderSpec() missing hosted locale element:\n%s", text)
	}
	if !strings.Contains(text, `lang="ca"`) || !strings.Contains(text, `country="ES"`) {
		t.Fatalf("RenderSpec() missing lang/country attributes:\n%s", text)
	}
	// No element is emitted for the default bundle itself.
	if strings.Contains(text, "all_ALL_ALL") {
		t.Fatalf("RenderSpec() emitted an element for the default bundle:\n%s", text)
	}
	// The rest of the document survives.
	if !strings.Contains(text, "Test Gadget") || !strings.Contains(text, "hello") {
		t.Fatalf("RenderSpec() mangled the document:\n%s", text)
	}
}

func TestManager_RenderSpec_NoDefaultLocaleElement(t *testing.T) {
	spec := `<Module><ModulePrefs title="t"><Locale lang="ca" country="ES" messages="http://upstream.example.com/i18n/ca.xml"/></ModulePrefs><Content/></Module>`
	fetcher := mapFetcher{
		"http://upstream.example.com/app.xml":     []byte(spec),
		"http://upstream.example.com/i18n/ca.xml": []byte(catalanMessagesXML),
	}
	mgr := NewManager(fetcher, stubResolver{})
	if err := mgr.LoadFullSpec(context.Background(), "http://upstream.example.com/app.xml"); err != nil {
		t.Fatalf("LoadFullSpec() error = %v", err)
	}
	// Give the manager a default bundle so only the spec is at fault.
	if err := mgr.AddBundle("all_ALL_ALL", New("all", "ALL", "ALL")); err != nil {
		t.Fatalf("AddBundle() error = %v", err)
	}

	if _, err := mgr.RenderSpec(context.Background(), "app-1", true); !errors.Is(err, ErrNoDefaultLanguage) {
		t.Fatalf("RenderSpec() error = %v, want ErrNoDefaultLanguage", err)
	}
}

func TestManager_RenderSpec_NoDefaultBundle(t *testing.T) {
	mgr := NewManager(testFetcher(), stubResolver{})
	if err := mgr.AddBundle("ca_ES_ALL", New("ca", "ES", "ALL")); err != nil {
		t.Fatalf("AddBundle() error = %v", err)
	}
	if _, err := mgr.RenderSpec(context.Background(), "app-1", true); !errors.Is(err, ErrNoDefaultLanguage) {
		t.Fatalf("RenderSpec() error = %v, want ErrNoDefaultLanguage", err)
	}
}

func TestManager_LocalesList(t *testing.T) {
	mgr := NewManager(testFetcher(), stubResolver{})
	if err := mgr.LoadFullSpec(context.Background(), "http://upstream.example.com/app.xml"); err != nil {
		t.Fatalf("LoadFullSpec() error = %v", err)
	}

	list := mgr.LocalesList()
	if len(list) != 2 {
		t.Fatalf("LocalesList() len = %d, want 2", len(list))
	}

	byCode := map[string]LocaleInfo{}
	for _, info := range list {
		byCode[info.Code] = info
	}
	ca, ok := byCode["ca_ES_ALL"]
	if !ok {
		t.Fatalf("LocalesList() missing ca_ES_ALL: %+v", list)
	}
	if ca.PartialCode != "ca_ES" || ca.Lang != "ca" || ca.Country != "ES" || ca.Group != "ALL" {
		t.Fatalf("LocalesList() ca entry = %+v", ca)
	}
	if ca.DisplayName == "" || ca.DisplayName == "unknown" {
		t.Fatalf("LocalesList() ca display name = %q", ca.DisplayName)
	}
	def := byCode["all_ALL_ALL"]
	if def.DisplayName != "unknown" {
		t.Fatalf("LocalesList() default display name = %q, want unknown", def.DisplayName)
	}
}
