package translations

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// BunRepository persists translation bundles using a Bun-backed database.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed translation repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// Migrate creates the translation tables when missing.
func (r *BunRepository) Migrate(ctx context.Context) error {
	for _, model := range []any{
		(*bundleModel)(nil),
		(*messageModel)(nil),
	} {
		if _, err := r.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *BunRepository) UpsertBundle(ctx context.Context, url, language, target string) (*Bundle, error) {
	existing, err := r.GetBundle(ctx, url, language, target)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrBundleNotFound) {
		return nil, err
	}

	model := bundleModel{TranslationURL: url, Language: language, Target: target}
	if _, err := r.db.NewInsert().Model(&model).Exec(ctx); err != nil {
		return nil, err
	}
	return modelToBundle(&model), nil
}

func (r *BunRepository) GetBundle(ctx context.Context, url, language, target string) (*Bundle, error) {
	var model bundleModel
	err := r.db.NewSelect().Model(&model).
		Where("translation_url = ?", url).
		Where("language = ?", language).
		Where("target = ?", target).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBundleNotFound
		}
		return nil, err
	}
	return modelToBundle(&model), nil
}

func (r *BunRepository) BundlesForURL(ctx context.Context, url string) ([]*Bundle, error) {
	var models []bundleModel
	err := r.db.NewSelect().Model(&models).
		Where("translation_url = ?", url).
		Order("language ASC", "target ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return modelsToBundles(models), nil
}

func (r *BunRepository) ListBundles(ctx context.Context) ([]*Bundle, error) {
	var models []bundleModel
	err := r.db.NewSelect().Model(&models).
		Order("translation_url ASC", "language ASC", "target ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return modelsToBundles(models), nil
}

func (r *BunRepository) SetMessages(ctx context.Context, bundleID int64, messages map[string]string, now time.Time) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var stored []messageModel
		if err := tx.NewSelect().Model(&stored).Where("bundle_id = ?", bundleID).Scan(ctx); err != nil {
			return err
		}

		current := make(map[string]*messageModel, len(stored))
		for i := range stored {
			current[stored[i].Key] = &stored[i]
		}

		for key, existing := range current {
			if _, present := messages[key]; present {
				continue
			}
			if !existing.Active {
				continue
			}
			existing.Active = false
			if _, err := tx.NewUpdate().Model(existing).Column("active").WherePK().Exec(ctx); err != nil {
				return err
			}
		}

		for key, value := range messages {
			existing, present := current[key]
			if present && existing.Value == value {
				if existing.Active {
					continue
				}
				existing.Active = true
				if _, err := tx.NewUpdate().Model(existing).Column("active").WherePK().Exec(ctx); err != nil {
					return err
				}
				continue
			}
			if present {
				existing.Value = value
				existing.UpdatedAt = now
				existing.Active = true
				if _, err := tx.NewUpdate().Model(existing).
					Column("value", "updated_at", "active").
					WherePK().
					Exec(ctx); err != nil {
					return err
				}
				continue
			}
			model := messageModel{
				BundleID:  bundleID,
				Key:       key,
				Value:     value,
				UpdatedAt: now,
				Active:    true,
			}
			if _, err := tx.NewInsert().Model(&model).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *BunRepository) ActiveMessages(ctx context.Context, bundleID int64) ([]Message, error) {
	var models []messageModel
	err := r.db.NewSelect().Model(&models).
		Where("bundle_id = ?", bundleID).
		Where("active = ?", true).
		Order("key ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(models))
	for _, model := range models {
		out = append(out, Message{
			Key:       model.Key,
			Value:     model.Value,
			UpdatedAt: model.UpdatedAt,
			Active:    model.Active,
		})
	}
	return out, nil
}

type bundleModel struct {
	bun.BaseModel `bun:"table:translation_bundles,alias:tb"`

	ID             int64  `bun:"id,pk,autoincrement"`
	TranslationURL string `bun:"translation_url,notnull,unique:uq_bundle_url_lang_target"`
	Language       string `bun:"language,notnull,unique:uq_bundle_url_lang_target"`
	Target         string `bun:"target,notnull,unique:uq_bundle_url_lang_target"`
}

type messageModel struct {
	bun.BaseModel `bun:"table:translation_messages,alias:tm"`

	ID        int64     `bun:"id,pk,autoincrement"`
	BundleID  int64     `bun:"bundle_id,notnull,unique:uq_message_bundle_key"`
	Key       string    `bun:"key,notnull,unique:uq_message_bundle_key"`
	Value     string    `bun:"value"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
	Active    bool      `bun:"active,notnull"`
}

func modelToBundle(model *bundleModel) *Bundle {
	return &Bundle{
		ID:             model.ID,
		TranslationURL: model.TranslationURL,
		Language:       model.Language,
		Target:         model.Target,
	}
}

func modelsToBundles(models []bundleModel) []*Bundle {
	out := make([]*Bundle, 0, len(models))
	for i := range models {
		out = append(out, modelToBundle(&models[i]))
	}
	return out
}
