package ownership

import (
	"time"

	"github.com/google/uuid"
)

// Ownership records which application owns a language for a given upstream
// spec. The language is identified by its partial code (lang_COUNTRY); the
// group segment never participates in ownership.
type Ownership struct {
	ID          uuid.UUID
	SpecURL     string
	PartialCode string
	AppID       uuid.UUID
	CreatedAt   time.Time
}

// OwnerInfo is the listing view of an ownership: the owning application and
// the user behind it, resolved for API responses.
type OwnerInfo struct {
	SpecURL     string
	PartialCode string
	AppID       uuid.UUID
	AppName     string
	Owner       string
	Autoaccept  bool
}
