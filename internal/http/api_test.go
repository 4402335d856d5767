package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/morelab/appcomposer/internal/apps"
	"github.com/morelab/appcomposer/internal/ownership"
	"github.com/morelab/appcomposer/internal/translations"
)

const upstreamSpecURL = "http://upstream.example.com/app.xml"

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

type repoDirectory struct {
	repo apps.Repository
}

func (d repoDirectory) App(ctx context.Context, id uuid.UUID) (ownership.AppInfo, error) {
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

type apiFixture struct {
	mux *http.ServeMux
	app *apps.Application
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	fetcher := mapFetcher{
		upstreamSpecURL: []byte(testSpecXML),
		"http://upstream.example.com/i18n/default.xml": []byte(defaultMessagesXML),
		"http://upstream.example.com/i18n/ca.xml":      []byte(catalanMessagesXML),
	}

	appRepo := apps.NewMemoryRepository()
	ownershipSvc := ownership.NewService(ownership.NewMemoryRepository(), repoDirectory{repo: appRepo})
	appSvc := apps.NewService(
		appRepo,
		translations.NewStore(translations.NewMemoryRepository()),
		ownershipSvc,
		nil,
		fetcher,
		stubResolver{},
	)

	app, _, err := appSvc.Create(context.Background(), apps.CreateRequest{
		Name:    "Translator",
		Owner:   "alice",
		SpecURL: upstreamSpecURL,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	mux := http.NewServeMux()
	api := NewAPI(
		WithAppService(appSvc),
		WithOwnershipService(ownershipSvc),
	)
	if err := api.Register(mux); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return &apiFixture{mux: mux, app: app}
}

func (f *apiFixture) do(t *testing.T, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestRenderedSpec(t *testing.T) {
	fix := newAPIFixture(t)

	rec := fix.do(t, http.MethodGet, "/app/"+fix.app.ID.String()+"/app.xml", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Fatalf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	hosted := "http://composer.example.com/app/" + fix.app.ID.String() + "/i18n/ca_ES_ALL.xml"
	if !strings.Contains(body, hosted) {
		t.Fatalf("rendered spec does not reference hosted language file:\n%s", body)
	}
	// The default locale element is preserved as-is.
	if !strings.Contains(body, "http://upstream.example.com/i18n/default.xml") {
		t.Fatalf("default locale element was rewritten:\n%s", body)
	}
}

func TestRenderedSpecUnknownApp(t *testing.T) {
	fix := newAPIFixture(t)

	rec := fix.do(t, http.MethodGet, "/app/"+uuid.NewString()+"/app.xml", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	rec = fix.do(t, http.MethodGet, "/app/not-a-uuid/app.xml", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for malformed id", rec.Code)
	}
}

func TestLangfile(t *testing.T) {
	fix := newAPIFixture(t)

	rec := fix.do(t, http.MethodGet, "/app/"+fix.app.ID.String()+"/i18n/ca_ES_ALL.xml", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="greeting"`) || !strings.Contains(body, "hola") {
		t.Fatalf("unexpected language file body:\n%s", body)
	}
}

func TestLangfileUnknownBundle(t *testing.T) {
	fix := newAPIFixture(t)

	rec := fix.do(t, http.MethodGet, "/app/"+fix.app.ID.String()+"/i18n/fr_FR_ALL.xml", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestLangfileMalformedCode(t *testing.T) {
	fix := newAPIFixture(t)

	rec := fix.do(t, http.MethodGet, "/app/"+fix.app.ID.String()+"/i18n/nonsense.xml", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestOwnerships(t *testing.T) {
	fix := newAPIFixture(t)

	rec := fix.do(t, http.MethodGet, "/translations/ownerships?spec_url="+upstreamSpecURL, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SpecURL    string `json:"spec_url"`
		Ownerships []struct {
			Lang       string `json:"lang"`
			AppID      string `json:"app_id"`
			AppName    string `json:"app_name"`
			Owner      string `json:"owner"`
			Autoaccept string `json:"autoaccept"`
		} `json:"ownerships"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.SpecURL != upstreamSpecURL {
		t.Fatalf("spec_url = %q", resp.SpecURL)
	}
	if len(resp.Ownerships) != 2 {
		t.Fatalf("ownerships = %+v, want 2 entries", resp.Ownerships)
	}
	langs := map[string]bool{}
	for _, entry := range resp.Ownerships {
		langs[entry.Lang] = true
		if entry.AppID != fix.app.ID.String() {
			t.Fatalf("entry %s owned by %s, want %s", entry.Lang, entry.AppID, fix.app.ID)
		}
		if entry.Autoaccept != "1" {
			t.Fatalf("entry %s autoaccept = %q", entry.Lang, entry.Autoaccept)
		}
	}
	if !langs["all_ALL"] || !langs["ca_ES"] {
		t.Fatalf("ownership languages = %v", langs)
	}
}

func TestOwnershipsRequiresSpecURL(t *testing.T) {
	fix := newAPIFixture(t)

	rec := fix.do(t, http.MethodGet, "/translations/ownerships", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetAutoaccept(t *testing.T) {
	fix := newAPIFixture(t)

	rec := fix.do(t, http.MethodGet, "/translations/autoaccept?app_id="+fix.app.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["value"] != "1" {
		t.Fatalf("value = %q, want 1", resp["value"])
	}
}

func TestSetAutoaccept(t *testing.T) {
	fix := newAPIFixture(t)

	body := fmt.Sprintf(`{"app_id":%q,"value":"0"}`, fix.app.ID.String())
	rec := fix.do(t, http.MethodPost, "/translations/autoaccept", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["value"] != "0" {
		t.Fatalf("value = %q, want 0", resp["value"])
	}

	rec = fix.do(t, http.MethodGet, "/translations/autoaccept?app_id="+fix.app.ID.String(), "")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["value"] != "0" {
		t.Fatalf("persisted value = %q, want 0", resp["value"])
	}
}

func TestSetAutoacceptRejectsBadValue(t *testing.T) {
	fix := newAPIFixture(t)

	body := fmt.Sprintf(`{"app_id":%q,"value":"yes"}`, fix.app.ID.String())
	rec := fix.do(t, http.MethodPost, "/translations/autoaccept", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSetAutoacceptRejectsMalformedBody(t *testing.T) {
	fix := newAPIFixture(t)

	rec := fix.do(t, http.MethodPost, "/translations/autoaccept", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
