package scheduler

const (
	// JobTypeBundlePush replicates one translation bundle.
	JobTypeBundlePush = "composer.translations.push"
	// JobTypeFullSync replicates every bundle and prunes stale records.
	JobTypeFullSync = "composer.translations.full_sync"
)

// FullSyncJobKey is the unique key of the periodic full sync job. A single
// key keeps repeated scheduling idempotent.
const FullSyncJobKey = "translations:full_sync"

// BundlePushJobKey builds the unique key for a bundle push so repeated saves
// of the same bundle collapse into one pending job.
func BundlePushJobKey(language, target, url string) string {
	return "push:" + language + "_" + target + "::" + url
}
