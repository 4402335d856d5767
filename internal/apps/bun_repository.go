package apps

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists applications using a Bun-backed database.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed application repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// Migrate creates the applications table when missing.
func (r *BunRepository) Migrate(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*applicationModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *BunRepository) Create(ctx context.Context, app *Application) (*Application, error) {
	model := modelFromApplication(app)
	if _, err := r.db.NewInsert().Model(&model).Exec(ctx); err != nil {
		return nil, err
	}
	return modelToApplication(&model), nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Application, error) {
	var model applicationModel
	err := r.db.NewSelect().Model(&model).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{ID: id.String()}
		}
		return nil, err
	}
	return modelToApplication(&model), nil
}

func (r *BunRepository) GetByName(ctx context.Context, name string) (*Application, error) {
	var model applicationModel
	err := r.db.NewSelect().Model(&model).Where("name = ?", name).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{ID: name}
		}
		return nil, err
	}
	return modelToApplication(&model), nil
}

func (r *BunRepository) ListBySpec(ctx context.Context, specURL, composer string) ([]*Application, error) {
	var models []applicationModel
	err := r.db.NewSelect().
		Model(&models).
		Where("spec_url = ?", specURL).
		Where("composer = ?", composer).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Application, 0, len(models))
	for i := range models {
		out = append(out, modelToApplication(&models[i]))
	}
	return out, nil
}

func (r *BunRepository) DistinctSpecs(ctx context.Context, composer string) ([]string, error) {
	var specs []string
	err := r.db.NewSelect().
		Model((*applicationModel)(nil)).
		ColumnExpr("DISTINCT spec_url").
		Where("composer = ?", composer).
		Order("spec_url ASC").
		Scan(ctx, &specs)
	if err != nil {
		return nil, err
	}
	return specs, nil
}

func (r *BunRepository) Update(ctx context.Context, app *Application) (*Application, error) {
	model := modelFromApplication(app)
	res, err := r.db.NewUpdate().Model(&model).WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, &NotFoundError{ID: app.ID.String()}
	}
	return modelToApplication(&model), nil
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*applicationModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{ID: id.String()}
	}
	return nil
}

type applicationModel struct {
	bun.BaseModel `bun:"table:applications,alias:app"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	Name       string    `bun:"name,notnull,unique"`
	Owner      string    `bun:"owner,notnull"`
	Composer   string    `bun:"composer,notnull"`
	SpecURL    string    `bun:"spec_url,notnull"`
	URL        string    `bun:"url,notnull"`
	Autoaccept bool      `bun:"autoaccept,notnull"`
	Data       string    `bun:"data"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

func modelFromApplication(app *Application) applicationModel {
	return applicationModel{
		ID:         app.ID,
		Name:       app.Name,
		Owner:      app.Owner,
		Composer:   app.Composer,
		SpecURL:    app.SpecURL,
		URL:        app.URL,
		Autoaccept: app.Autoaccept,
		Data:       app.Data,
		CreatedAt:  app.CreatedAt,
		UpdatedAt:  app.UpdatedAt,
	}
}

func modelToApplication(model *applicationModel) *Application {
	if model == nil {
		return nil
	}
	return &Application{
		ID:         model.ID,
		Name:       model.Name,
		Owner:      model.Owner,
		Composer:   model.Composer,
		SpecURL:    model.SpecURL,
		URL:        model.URL,
		Autoaccept: model.Autoaccept,
		Data:       model.Data,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
