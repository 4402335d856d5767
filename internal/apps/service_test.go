package apps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/morelab/appcomposer/internal/bundles"
	"github.com/morelab/appcomposer/internal/scheduler"
	"github.com/morelab/appcomposer/internal/translations"
	"github.com/morelab/appcomposer/pkg/interfaces"
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

type fakeRegistry struct {
	owners   map[string]uuid.UUID
	released []uuid.UUID
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{owners: make(map[string]uuid.UUID)}
}

func (r *fakeRegistry) ownerKey(specURL, code string) string {
	return code + "::" + specURL
}

func (r *fakeRegistry) Declare(_ context.Context, specURL, code string, appID uuid.UUID) error {
	key := r.ownerKey(specURL, code)
	if existing, ok := r.owners[key]; ok && existing != appID {
		return errors.New("fake: language taken")
	}
	r.owners[key] = appID
	return nil
}

func (r *fakeRegistry) HasOwner(_ context.Context, specURL, code string) (bool, error) {
	_, ok := r.owners[r.ownerKey(specURL, code)]
	return ok, nil
}

func (r *fakeRegistry) ReleaseApp(_ context.Context, appID uuid.UUID) error {
	r.released = append(r.released, appID)
	for key, owner := range r.owners {
		if owner == appID {
			delete(r.owners, key)
		}
	}
	return nil
}

type serviceFixture struct {
	svc      *Service
	repo     *MemoryRepository
	store    *translations.Store
	registry *fakeRegistry
	sched    interfaces.Scheduler
	now      time.Time
}

func newServiceFixture(t *testing.T, opts ...Option) *serviceFixture {
	t.Helper()

	fetcher := mapFetcher{
		upstreamSpecURL: []byte(testSpecXML),
		"http://upstream.example.com/i18n/default.xml": []byte(defaultMessagesXML),
		"http://upstream.example.com/i18n/ca.xml":      []byte(catalanMessagesXML),
	}

	fix := &serviceFixture{
		repo:     NewMemoryRepository(),
		store:    translations.NewStore(translations.NewMemoryRepository()),
		registry: newFakeRegistry(),
		sched:    scheduler.NewInMemory(),
		now:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	opts = append([]Option{WithClock(func() time.Time { return fix.now })}, opts...)
	fix.svc = NewService(fix.repo, fix.store, fix.registry, fix.sched, fetcher, stubResolver{}, opts...)
	return fix
}

func (f *serviceFixture) create(t *testing.T, name string) (*Application, *bundles.Manager) {
	t.Helper()
	app, mgr, err := f.svc.Create(context.Background(), CreateRequest{
		Name:    name,
		Owner:   "alice",
		SpecURL: upstreamSpecURL,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return app, mgr
}

func TestUniqueName(t *testing.T) {
	fix := newServiceFixture(t)
	ctx := context.Background()

	name, err := fix.svc.UniqueName(ctx, "Translator")
	if err != nil {
		t.Fatalf("UniqueName() error = %v", err)
	}
	if name != "Translator" {
		t.Fatalf("UniqueName() = %q, want Translator", name)
	}

	fix.create(t, "Translator")
	name, err = fix.svc.UniqueName(ctx, "Translator")
	if err != nil {
		t.Fatalf("UniqueName() error = %v", err)
	}
	if name != "Translator (1)" {
		t.Fatalf("UniqueName() = %q, want Translator (1)", name)
	}

	fix.create(t, "Translator")
	name, err = fix.svc.UniqueName(ctx, "Translator")
	if err != nil {
		t.Fatalf("UniqueName() error = %v", err)
	}
	if name != "Translator (2)" {
		t.Fatalf("UniqueName() = %q, want Translator (2)", name)
	}
}

func TestUniqueNameExhausted(t *testing.T) {
	fix := newServiceFixture(t, WithSameNameLimit(2))
	fix.create(t, "Translator")
	fix.create(t, "Translator")
	fix.create(t, "Translator")

	if _, err := fix.svc.UniqueName(context.Background(), "Translator"); !errors.Is(err, ErrNameExhausted) {
		t.Fatalf("UniqueName() error = %v, want ErrNameExhausted", err)
	}
}

func TestCreate(t *testing.T) {
	fix := newServiceFixture(t)
	ctx := context.Background()

	app, mgr := fix.create(t, "Translator")

	if app.Composer != ComposerTranslate {
		t.Fatalf("Composer = %q", app.Composer)
	}
	if !app.Autoaccept {
		t.Fatal("new applications must start with autoaccept enabled")
	}
	if want := "http://composer.example.com/app/" + app.ID.String() + "/app.xml"; app.URL != want {
		t.Fatalf("URL = %q, want %q", app.URL, want)
	}
	if !strings.Contains(app.Data, "greeting") {
		t.Fatalf("Data does not embed the loaded bundles: %q", app.Data)
	}

	if _, ok := mgr.Bundle("ca_ES_ALL"); !ok {
		t.Fatalf("ca_ES_ALL bundle missing, codes = %v", mgr.Codes())
	}

	codes, err := fix.store.BundleCodes(ctx, upstreamSpecURL)
	if err != nil {
		t.Fatalf("BundleCodes() error = %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("stored codes = %v, want 2 entries", codes)
	}

	for _, partial := range []string{"all_ALL", "ca_ES"} {
		owner, ok := fix.registry.owners[fix.registry.ownerKey(upstreamSpecURL, partial)]
		if !ok {
			t.Fatalf("language %s was not claimed", partial)
		}
		if owner != app.ID {
			t.Fatalf("language %s owned by %s, want %s", partial, owner, app.ID)
		}
	}

	job, err := fix.sched.GetByKey(ctx, scheduler.BundlePushJobKey("ca_ES", "ALL", upstreamSpecURL))
	if err != nil {
		t.Fatalf("push job for ca_ES missing: %v", err)
	}
	if job.Type != scheduler.JobTypeBundlePush {
		t.Fatalf("job type = %q", job.Type)
	}
	if job.Payload["translation_url"] != upstreamSpecURL {
		t.Fatalf("job payload = %v", job.Payload)
	}
}

func TestCreateKeepsExistingOwnerships(t *testing.T) {
	fix := newServiceFixture(t)

	first, _ := fix.create(t, "First")
	fix.create(t, "Second")

	owner := fix.registry.owners[fix.registry.ownerKey(upstreamSpecURL, "ca_ES")]
	if owner != first.ID {
		t.Fatalf("ca_ES owner = %s, want the first application %s", owner, first.ID)
	}
}

func TestManagerRebuildsFromStore(t *testing.T) {
	fix := newServiceFixture(t)
	ctx := context.Background()

	app, _ := fix.create(t, "Translator")

	rebuilt, err := fix.svc.Manager(ctx, app)
	if err != nil {
		t.Fatalf("Manager() error = %v", err)
	}
	ca, ok := rebuilt.Bundle("ca_ES_ALL")
	if !ok {
		t.Fatalf("rebuilt manager lost ca_ES_ALL, codes = %v", rebuilt.Codes())
	}
	if got, _ := ca.Message("greeting"); got != "hola" {
		t.Fatalf("greeting = %q, want hola", got)
	}
}

func TestManagerReclaimsDefaultLanguage(t *testing.T) {
	fix := newServiceFixture(t)
	ctx := context.Background()

	app, _ := fix.create(t, "Translator")
	delete(fix.registry.owners, fix.registry.ownerKey(upstreamSpecURL, "all_ALL"))

	if _, err := fix.svc.Manager(ctx, app); err != nil {
		t.Fatalf("Manager() error = %v", err)
	}
	if owner := fix.registry.owners[fix.registry.ownerKey(upstreamSpecURL, "all_ALL")]; owner != app.ID {
		t.Fatalf("default language owner = %s, want %s", owner, app.ID)
	}
}

func TestManagerRejectsOtherComposers(t *testing.T) {
	fix := newServiceFixture(t)
	app, _ := fix.create(t, "Translator")
	app.Composer = "adapt"

	if _, err := fix.svc.Manager(context.Background(), app); !errors.Is(err, ErrNotTranslatable) {
		t.Fatalf("Manager() error = %v, want ErrNotTranslatable", err)
	}
}

func TestSaveBundles(t *testing.T) {
	fix := newServiceFixture(t)
	ctx := context.Background()

	app, mgr := fix.create(t, "Translator")

	ca, _ := mgr.Bundle("ca_ES_ALL")
	ca.AddMessage("greeting", "bon dia")
	fix.now = fix.now.Add(time.Hour)

	if err := fix.svc.SaveBundles(ctx, app, mgr); err != nil {
		t.Fatalf("SaveBundles() error = %v", err)
	}

	messages, err := fix.store.BundleMessages(ctx, upstreamSpecURL, "ca_ES", "ALL")
	if err != nil {
		t.Fatalf("BundleMessages() error = %v", err)
	}
	if messages["greeting"] != "bon dia" {
		t.Fatalf("stored greeting = %q, want bon dia", messages["greeting"])
	}
	if !app.UpdatedAt.Equal(fix.now) {
		t.Fatalf("UpdatedAt = %v, want %v", app.UpdatedAt, fix.now)
	}
	if !strings.Contains(app.Data, "bon dia") {
		t.Fatal("Data was not refreshed with the edited bundle")
	}

	if _, err := fix.sched.GetByKey(ctx, scheduler.BundlePushJobKey("ca_ES", "ALL", upstreamSpecURL)); err != nil {
		t.Fatalf("push job missing after save: %v", err)
	}
}

func TestSetAutoaccept(t *testing.T) {
	fix := newServiceFixture(t)
	ctx := context.Background()

	app, _ := fix.create(t, "Translator")
	updated, err := fix.svc.SetAutoaccept(ctx, app.ID, false)
	if err != nil {
		t.Fatalf("SetAutoaccept() error = %v", err)
	}
	if updated.Autoaccept {
		t.Fatal("autoaccept still enabled")
	}

	stored, err := fix.svc.Get(ctx, app.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Autoaccept {
		t.Fatal("autoaccept flag was not persisted")
	}
}

func TestDeleteReleasesOwnerships(t *testing.T) {
	fix := newServiceFixture(t)
	ctx := context.Background()

	app, _ := fix.create(t, "Translator")
	if err := fix.svc.Delete(ctx, app.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := fix.svc.Get(ctx, app.ID); !errors.Is(err, ErrAppNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrAppNotFound", err)
	}
	if len(fix.registry.released) != 1 || fix.registry.released[0] != app.ID {
		t.Fatalf("released = %v, want [%s]", fix.registry.released, app.ID)
	}
	if _, ok := fix.registry.owners[fix.registry.ownerKey(upstreamSpecURL, "ca_ES")]; ok {
		t.Fatal("ca_ES still owned after delete")
	}
}
