package ownership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists ownership records using a Bun-backed database.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed ownership repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// Migrate creates the ownerships table when missing.
func (r *BunRepository) Migrate(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*ownershipModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *BunRepository) Create(ctx context.Context, record *Ownership) (*Ownership, error) {
	var existing ownershipModel
	err := r.db.NewSelect().Model(&existing).
		Where("spec_url = ?", record.SpecURL).
		Where("partial_code = ?", record.PartialCode).
		Scan(ctx)
	if err == nil {
		return nil, &TakenError{SpecURL: record.SpecURL, PartialCode: record.PartialCode}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	model := modelFromOwnership(record)
	if _, err := r.db.NewInsert().Model(&model).Exec(ctx); err != nil {
		return nil, err
	}
	return modelToOwnership(&model), nil
}

func (r *BunRepository) Get(ctx context.Context, specURL, partialCode string) (*Ownership, error) {
	var model ownershipModel
	err := r.db.NewSelect().Model(&model).
		Where("spec_url = ?", specURL).
		Where("partial_code = ?", partialCode).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoOwner
		}
		return nil, err
	}
	return modelToOwnership(&model), nil
}

func (r *BunRepository) ListBySpec(ctx context.Context, specURL string) ([]*Ownership, error) {
	var models []ownershipModel
	err := r.db.NewSelect().Model(&models).
		Where("spec_url = ?", specURL).
		Order("partial_code ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return modelsToOwnerships(models), nil
}

func (r *BunRepository) ListByApp(ctx context.Context, appID uuid.UUID) ([]*Ownership, error) {
	var models []ownershipModel
	err := r.db.NewSelect().Model(&models).
		Where("app_id = ?", appID).
		Order("partial_code ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return modelsToOwnerships(models), nil
}

func (r *BunRepository) Update(ctx context.Context, record *Ownership) (*Ownership, error) {
	model := modelFromOwnership(record)
	res, err := r.db.NewUpdate().Model(&model).
		Column("app_id").
		Where("spec_url = ?", record.SpecURL).
		Where("partial_code = ?", record.PartialCode).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrNoOwner
	}
	return modelToOwnership(&model), nil
}

func (r *BunRepository) DeleteByApp(ctx context.Context, appID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*ownershipModel)(nil)).
		Where("app_id = ?", appID).
		Exec(ctx)
	return err
}

type ownershipModel struct {
	bun.BaseModel `bun:"table:ownerships,alias:own"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	SpecURL     string    `bun:"spec_url,notnull,unique:uq_ownership_spec_lang"`
	PartialCode string    `bun:"partial_code,notnull,unique:uq_ownership_spec_lang"`
	AppID       uuid.UUID `bun:"app_id,notnull,type:uuid"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

func modelFromOwnership(record *Ownership) ownershipModel {
	return ownershipModel{
		ID:          record.ID,
		SpecURL:     record.SpecURL,
		PartialCode: record.PartialCode,
		AppID:       record.AppID,
		CreatedAt:   record.CreatedAt,
	}
}

func modelToOwnership(model *ownershipModel) *Ownership {
	if model == nil {
		return nil
	}
	return &Ownership{
		ID:          model.ID,
		SpecURL:     model.SpecURL,
		PartialCode: model.PartialCode,
		AppID:       model.AppID,
		CreatedAt:   model.CreatedAt,
	}
}

func modelsToOwnerships(models []ownershipModel) []*Ownership {
	out := make([]*Ownership, 0, len(models))
	for i := range models {
		out = append(out, modelToOwnership(&models[i]))
	}
	return out
}
