package ownership

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores ownership records. Lookups key on the upstream spec URL
// plus the partial language code.
type Repository interface {
	Create(ctx context.Context, record *Ownership) (*Ownership, error)
	Get(ctx context.Context, specURL, partialCode string) (*Ownership, error)
	ListBySpec(ctx context.Context, specURL string) ([]*Ownership, error)
	ListByApp(ctx context.Context, appID uuid.UUID) ([]*Ownership, error)
	Update(ctx context.Context, record *Ownership) (*Ownership, error)
	DeleteByApp(ctx context.Context, appID uuid.UUID) error
}
