// Package replica mirrors rendered translation payloads into a replica
// store consumed by external gadget servers. Writes are guarded by a
// per-record watermark so a slow writer can never clobber fresher data.
package replica

import (
	"context"
	"errors"
	"time"
)

// Collection names the two replica keyspaces.
type Collection string

const (
	// CollectionTranslationURLs holds one record per language per upstream
	// spec URL.
	CollectionTranslationURLs Collection = "translation_urls"
	// CollectionApplications holds one record per language per hosted
	// application URL.
	CollectionApplications Collection = "bundles"
)

// ErrRecordNotFound is returned when a replica record does not exist.
var ErrRecordNotFound = errors.New("replica: record not found")

// RecordID builds the replica key for a language and URL. The language pack
// is the full locale code (partial code plus target group).
func RecordID(langPack, url string) string {
	return langPack + "::" + url
}

// Record is one replicated bundle.
type Record struct {
	// ID is RecordID(bundle, url).
	ID string
	// Bundle is the language pack identifier, e.g. "es_ES_ALL".
	Bundle string
	// URL is the spec URL or the hosted application URL, depending on the
	// collection.
	URL string
	// Data is the serialized key-to-value payload.
	Data string
	// Time is the watermark: the latest modification time of any message
	// in the payload.
	Time time.Time
}

// Store persists replica records. UpsertNotOlder is the only write path for
// payloads; it must be atomic per record.
type Store interface {
	// UpsertNotOlder writes the record unless the stored copy has a
	// strictly newer watermark. It reports whether the write took effect.
	// Equal watermarks let the incoming record through.
	UpsertNotOlder(ctx context.Context, col Collection, rec Record) (bool, error)
	Get(ctx context.Context, col Collection, id string) (Record, error)
	List(ctx context.Context, col Collection) ([]Record, error)
	// DeleteStale removes records whose ID is not in keep and whose
	// watermark is older than the cutoff. It returns the number of
	// records removed.
	DeleteStale(ctx context.Context, col Collection, keep []string, olderThan time.Time) (int, error)
}
