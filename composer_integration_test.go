package appcomposer_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appcomposer "github.com/morelab/appcomposer"
	"github.com/morelab/appcomposer/internal/apps"
	"github.com/morelab/appcomposer/internal/di"
	"github.com/morelab/appcomposer/internal/replica"
)

const upstreamSpecURL = "http://upstream.example.com/app.xml"

const upstreamSpecXML = `<?xml version="1.0" encoding="UTF-8"?>
<Module>
  <ModulePrefs title="Test Gadget">
    <Locale messages="http://upstream.example.com/i18n/default.xml"/>
    <Locale lang="ca" country="ES" messages="http://upstream.example.com/i18n/ca.xml"/>
  </ModulePrefs>
  <Content type="html">hello</Content>
</Module>
`

type mapFetcher map[string][]byte

func (f mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	data, ok := f[url]
	if !ok {
		return nil, fmt.Errorf("no such url: %s", url)
	}
	return data, nil
}

func upstreamFetcher() mapFetcher {
	return mapFetcher{
		upstreamSpecURL: []byte(upstreamSpecXML),
		"http://upstream.example.com/i18n/default.xml": []byte(`<messagebundle><msg name="greeting">hello</msg></messagebundle>`),
		"http://upstream.example.com/i18n/ca.xml":      []byte(`<messagebundle><msg name="greeting">hola</msg></messagebundle>`),
	}
}

func testConfig() appcomposer.Config {
	cfg := appcomposer.DefaultConfig()
	cfg.Hosting.BaseURL = "http://composer.example.com"
	cfg.Storage.Driver = "memory"
	cfg.Logging.Provider = "noop"
	return cfg
}

func TestModule_CreateServeAndReplicate(t *testing.T) {
	ctx := context.Background()
	store := replica.NewMemoryStore()

	module, err := appcomposer.New(testConfig(),
		di.WithFetcher(upstreamFetcher()),
		di.WithReplicaStore(store),
	)
	if err != nil {
		t.Fatalf("new composer module: %v", err)
	}

	app, mgr, err := module.Apps().Create(ctx, apps.CreateRequest{
		Name:    "Translator",
		Owner:   "alice",
		SpecURL: upstreamSpecURL,
	})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	if want := "http://composer.example.com/app/" + app.ID.String() + "/app.xml"; app.URL != want {
		t.Fatalf("app URL = %q, want %q", app.URL, want)
	}
	if _, ok := mgr.Bundle("ca_ES_ALL"); !ok {
		t.Fatalf("manager missing ca_ES_ALL, codes = %v", mgr.Codes())
	}

	// Creation schedules one push per bundle; drain them.
	if err := module.Sync().Process(ctx); err != nil {
		t.Fatalf("process replication jobs: %v", err)
	}

	rec, err := store.Get(ctx, replica.CollectionTranslationURLs, replica.RecordID("ca_ES_ALL", upstreamSpecURL))
	if err != nil {
		t.Fatalf("replica record missing: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(rec.Data), &payload); err != nil {
		t.Fatalf("replica payload is not JSON: %v", err)
	}
	if payload["greeting"] != "hola" {
		t.Fatalf("replica payload = %v", payload)
	}

	// The per-application copy is keyed by the hosted URL.
	if _, err := store.Get(ctx, replica.CollectionApplications, replica.RecordID("ca_ES_ALL", app.URL)); err != nil {
		t.Fatalf("application replica record missing: %v", err)
	}

	handler, err := module.Handler()
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/app/"+app.ID.String()+"/app.xml", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("rendered spec status = %d, body = %s", res.Code, res.Body.String())
	}
	hosted := "http://composer.example.com/app/" + app.ID.String() + "/i18n/ca_ES_ALL.xml"
	if !strings.Contains(res.Body.String(), hosted) {
		t.Fatalf("rendered spec does not reference %s:\n%s", hosted, res.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/app/"+app.ID.String()+"/i18n/ca_ES_ALL.xml", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("language file status = %d, body = %s", res.Code, res.Body.String())
	}
	if !strings.Contains(res.Body.String(), "hola") {
		t.Fatalf("language file body:\n%s", res.Body.String())
	}
}

func TestModule_FullSyncPrunesAfterDelete(t *testing.T) {
	ctx := context.Background()
	store := replica.NewMemoryStore()

	module, err := appcomposer.New(testConfig(),
		di.WithFetcher(upstreamFetcher()),
		di.WithReplicaStore(store),
	)
	if err != nil {
		t.Fatalf("new composer module: %v", err)
	}

	app, _, err := module.Apps().Create(ctx, apps.CreateRequest{
		Name:    "Translator",
		Owner:   "alice",
		SpecURL: upstreamSpecURL,
	})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	if err := module.Sync().Process(ctx); err != nil {
		t.Fatalf("process replication jobs: %v", err)
	}
	appRecordID := replica.RecordID("ca_ES_ALL", app.URL)
	if _, err := store.Get(ctx, replica.CollectionApplications, appRecordID); err != nil {
		t.Fatalf("application replica record missing: %v", err)
	}

	if err := module.Apps().Delete(ctx, app.ID); err != nil {
		t.Fatalf("delete application: %v", err)
	}

	stats, err := module.Container().Syncer().FullSync(ctx)
	if err != nil {
		t.Fatalf("full sync: %v", err)
	}
	if stats.PrunedApps == 0 {
		t.Fatal("full sync pruned no application records")
	}
	if _, err := store.Get(ctx, replica.CollectionApplications, appRecordID); err == nil {
		t.Fatal("deleted application's replica record survived the full sync")
	}
}
