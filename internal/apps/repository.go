package apps

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores composer applications.
type Repository interface {
	Create(ctx context.Context, app *Application) (*Application, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Application, error)
	GetByName(ctx context.Context, name string) (*Application, error)
	// ListBySpec returns applications of the given composer kind that work
	// against the given upstream spec URL.
	ListBySpec(ctx context.Context, specURL, composer string) ([]*Application, error)
	// DistinctSpecs lists every spec URL referenced by at least one
	// application of the given composer kind.
	DistinctSpecs(ctx context.Context, composer string) ([]string, error)
	Update(ctx context.Context, app *Application) (*Application, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
