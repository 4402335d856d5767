package replica

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUpsertNotOlderKeepsFresherRecord(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	id := RecordID("es_ES_ALL", "http://example.com/gadget.xml")
	written, err := store.UpsertNotOlder(ctx, CollectionTranslationURLs, Record{
		ID: id, Bundle: "es_ES_ALL", URL: "http://example.com/gadget.xml",
		Data: `{"title":"nuevo"}`, Time: base,
	})
	if err != nil {
		t.Fatalf("UpsertNotOlder() error = %v", err)
	}
	if !written {
		t.Fatal("first write should land")
	}

	// Older payload must be rejected.
	written, err = store.UpsertNotOlder(ctx, CollectionTranslationURLs, Record{
		ID: id, Bundle: "es_ES_ALL", URL: "http://example.com/gadget.xml",
		Data: `{"title":"viejo"}`, Time: base.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("UpsertNotOlder() error = %v", err)
	}
	if written {
		t.Fatal("stale write should be skipped")
	}
	rec, err := store.Get(ctx, CollectionTranslationURLs, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Data != `{"title":"nuevo"}` {
		t.Fatalf("stale write clobbered data: %s", rec.Data)
	}

	// Equal timestamps let the incoming record through.
	written, err = store.UpsertNotOlder(ctx, CollectionTranslationURLs, Record{
		ID: id, Bundle: "es_ES_ALL", URL: "http://example.com/gadget.xml",
		Data: `{"title":"empate"}`, Time: base,
	})
	if err != nil {
		t.Fatalf("UpsertNotOlder() error = %v", err)
	}
	if !written {
		t.Fatal("equal-watermark write should land")
	}
}

func TestGetMissingRecord(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), CollectionApplications, "nope"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("Get() error = %v, want ErrRecordNotFound", err)
	}
}

func TestDeleteStale(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	cutoff := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	put := func(id string, at time.Time) {
		t.Helper()
		if _, err := store.UpsertNotOlder(ctx, CollectionTranslationURLs, Record{ID: id, Time: at}); err != nil {
			t.Fatalf("UpsertNotOlder(%s) error = %v", id, err)
		}
	}
	put("kept-by-list", cutoff.Add(-time.Hour))
	put("kept-by-time", cutoff.Add(time.Minute))
	put("pruned", cutoff.Add(-time.Hour))

	removed, err := store.DeleteStale(ctx, CollectionTranslationURLs, []string{"kept-by-list"}, cutoff)
	if err != nil {
		t.Fatalf("DeleteStale() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("DeleteStale() removed %d, want 1", removed)
	}

	records, err := store.List(ctx, CollectionTranslationURLs)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(records))
	}
	for _, rec := range records {
		if rec.ID == "pruned" {
			t.Fatal("stale record survived pruning")
		}
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	id := RecordID("all_ALL_ALL", "http://example.com/gadget.xml")
	if _, err := store.UpsertNotOlder(ctx, CollectionTranslationURLs, Record{ID: id, Time: now}); err != nil {
		t.Fatalf("UpsertNotOlder() error = %v", err)
	}
	if _, err := store.Get(ctx, CollectionApplications, id); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("record leaked across collections: err = %v", err)
	}
}
