package apps

import (
	"time"

	"github.com/google/uuid"
)

// ComposerTranslate identifies applications managed by the translation
// composer. Ownership and spec queries are scoped to this composer kind so
// records written by unrelated composers against the same storage never
// leak into translation results.
const ComposerTranslate = "translate"

// Application is a composer application: one user's working copy of a gadget
// spec's translations.
type Application struct {
	ID uuid.UUID
	// Name is unique per deployment; see Service.UniqueName.
	Name string
	// Owner is the login of the user the application belongs to.
	Owner string
	// Composer marks the application kind; translation queries only ever
	// consider ComposerTranslate applications.
	Composer string
	// SpecURL points at the authoritative upstream gadget spec.
	SpecURL string
	// URL is the application's own hosted reference URL. Per-application
	// replica records are keyed by it.
	URL string
	// Autoaccept controls whether translation proposals are accepted
	// automatically. Defaults to true.
	Autoaccept bool
	// Data carries the legacy JSON document form of the application.
	Data string

	CreatedAt time.Time
	UpdatedAt time.Time
}
