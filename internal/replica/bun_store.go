package replica

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// BunStore persists replica records in a Bun-backed database. The
// not-older-wins guard rides on a single conditional upsert so concurrent
// writers for the same record cannot interleave.
type BunStore struct {
	db *bun.DB
}

// NewBunStore constructs a Bun-backed replica store.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// Migrate creates the replica table when missing.
func (s *BunStore) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*recordModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (s *BunStore) UpsertNotOlder(ctx context.Context, col Collection, rec Record) (bool, error) {
	model := modelFromRecord(col, rec)
	res, err := s.db.NewInsert().
		Model(&model).
		On("CONFLICT (collection, id) DO UPDATE").
		Set("url = EXCLUDED.url").
		Set("bundle = EXCLUDED.bundle").
		Set("data = EXCLUDED.data").
		Set("time = EXCLUDED.time").
		Where("EXCLUDED.time >= rr.time").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *BunStore) Get(ctx context.Context, col Collection, id string) (Record, error) {
	var model recordModel
	err := s.db.NewSelect().Model(&model).
		Where("collection = ?", string(col)).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}
	return modelToRecord(&model), nil
}

func (s *BunStore) List(ctx context.Context, col Collection) ([]Record, error) {
	var models []recordModel
	err := s.db.NewSelect().Model(&models).
		Where("collection = ?", string(col)).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(models))
	for i := range models {
		out = append(out, modelToRecord(&models[i]))
	}
	return out, nil
}

func (s *BunStore) DeleteStale(ctx context.Context, col Collection, keep []string, olderThan time.Time) (int, error) {
	query := s.db.NewDelete().
		Model((*recordModel)(nil)).
		Where("collection = ?", string(col)).
		Where("time < ?", olderThan)
	if len(keep) > 0 {
		query = query.Where("id NOT IN (?)", bun.In(keep))
	}
	res, err := query.Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

type recordModel struct {
	bun.BaseModel `bun:"table:replica_records,alias:rr"`

	Collection string    `bun:"collection,pk"`
	ID         string    `bun:"id,pk"`
	Bundle     string    `bun:"bundle,notnull"`
	URL        string    `bun:"url,notnull"`
	Data       string    `bun:"data"`
	Time       time.Time `bun:"time,notnull"`
}

func modelFromRecord(col Collection, rec Record) recordModel {
	return recordModel{
		Collection: string(col),
		ID:         rec.ID,
		Bundle:     rec.Bundle,
		URL:        rec.URL,
		Data:       rec.Data,
		Time:       rec.Time,
	}
}

func modelToRecord(model *recordModel) Record {
	return Record{
		ID:     model.ID,
		Bundle: model.Bundle,
		URL:    model.URL,
		Data:   model.Data,
		Time:   model.Time,
	}
}
