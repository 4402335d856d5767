package ownership

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/morelab/appcomposer/internal/locales"
	"github.com/morelab/appcomposer/internal/logging"
	"github.com/morelab/appcomposer/pkg/interfaces"
)

// composerTranslate mirrors the translation composer kind; ownership results
// are scoped to it.
const composerTranslate = "translate"

// AppInfo is the slice of application state the registry needs to resolve
// owners and scope results to translation applications.
type AppInfo struct {
	ID         uuid.UUID
	Name       string
	Owner      string
	SpecURL    string
	Composer   string
	Autoaccept bool
}

// AppDirectory resolves application metadata for listings and transfer
// validation.
type AppDirectory interface {
	App(ctx context.Context, id uuid.UUID) (AppInfo, error)
}

// Service is the language ownership registry. Every (spec URL, partial code)
// pair has at most one owning application; only translation applications
// participate.
type Service struct {
	repo   Repository
	apps   AppDirectory
	logger interfaces.Logger
	now    func() time.Time
	idgen  func() uuid.UUID
}

// Option configures the ownership service.
type Option func(*Service)

// WithLogger overrides the default ownership logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates an ownership registry backed by the given repository.
func NewService(repo Repository, apps AppDirectory, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		apps:   apps,
		logger: logging.NoOp(),
		now:    time.Now,
		idgen:  uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// normalizePartial accepts a full or partial locale code and returns the
// partial form ownership is keyed by.
func normalizePartial(code string) (string, error) {
	parsed, err := locales.Parse(code)
	if err != nil {
		return "", err
	}
	if parsed.IsPartial() {
		return parsed.String(), nil
	}
	return locales.PartialCode(code)
}

// Declare claims a language for an application. It fails with
// ErrOwnershipTaken when a different application already holds it; a repeat
// declaration by the current owner is a no-op.
func (s *Service) Declare(ctx context.Context, specURL, code string, appID uuid.UUID) error {
	partial, err := normalizePartial(code)
	if err != nil {
		return err
	}

	existing, err := s.repo.Get(ctx, specURL, partial)
	if err == nil {
		if existing.AppID == appID {
			return nil
		}
		return &TakenError{SpecURL: specURL, PartialCode: partial}
	}
	if !errors.Is(err, ErrNoOwner) {
		return err
	}

	_, err = s.repo.Create(ctx, &Ownership{
		ID:          s.idgen(),
		SpecURL:     specURL,
		PartialCode: partial,
		AppID:       appID,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return err
	}
	s.logger.Info("ownership declared", "spec_url", specURL, "partial_code", partial, "app_id", appID)
	return nil
}

// Owner returns the ownership record for a language, or ErrNoOwner.
func (s *Service) Owner(ctx context.Context, specURL, code string) (*Ownership, error) {
	partial, err := normalizePartial(code)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, specURL, partial)
}

// HasOwner reports whether any application owns the language.
func (s *Service) HasOwner(ctx context.Context, specURL, code string) (bool, error) {
	_, err := s.Owner(ctx, specURL, code)
	if err != nil {
		if errors.Is(err, ErrNoOwner) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Transfer moves a language from its current owner to another application
// working against the same spec. The caller must be the current owner.
func (s *Service) Transfer(ctx context.Context, specURL, code string, from, to uuid.UUID) error {
	partial, err := normalizePartial(code)
	if err != nil {
		return err
	}

	current, err := s.repo.Get(ctx, specURL, partial)
	if err != nil {
		return err
	}
	if current.AppID != from {
		return ErrNotOwner
	}

	target, err := s.apps.App(ctx, to)
	if err != nil {
		return err
	}
	if target.Composer != composerTranslate {
		return ErrNotTranslationApp
	}
	if target.SpecURL != specURL {
		return ErrSpecMismatch
	}

	current.AppID = to
	if _, err := s.repo.Update(ctx, current); err != nil {
		return err
	}
	s.logger.Info("ownership transferred",
		"spec_url", specURL, "partial_code", partial, "from", from, "to", to)
	return nil
}

// ForSpec lists every owned language of a spec with the owning application
// resolved. Records whose application is missing or belongs to another
// composer kind are skipped.
func (s *Service) ForSpec(ctx context.Context, specURL string) ([]OwnerInfo, error) {
	records, err := s.repo.ListBySpec(ctx, specURL)
	if err != nil {
		return nil, err
	}

	out := make([]OwnerInfo, 0, len(records))
	for _, rec := range records {
		info, err := s.apps.App(ctx, rec.AppID)
		if err != nil {
			s.logger.Warn("ownership points at unresolvable application",
				"spec_url", specURL, "partial_code", rec.PartialCode, "app_id", rec.AppID)
			continue
		}
		if info.Composer != composerTranslate {
			continue
		}
		out = append(out, OwnerInfo{
			SpecURL:     rec.SpecURL,
			PartialCode: rec.PartialCode,
			AppID:       rec.AppID,
			AppName:     info.Name,
			Owner:       info.Owner,
			Autoaccept:  info.Autoaccept,
		})
	}
	return out, nil
}

// ForApp lists the languages owned by an application.
func (s *Service) ForApp(ctx context.Context, appID uuid.UUID) ([]*Ownership, error) {
	return s.repo.ListByApp(ctx, appID)
}

// ReleaseApp drops every ownership held by an application. Used when the
// application is deleted; freed languages can be re-claimed afterwards.
func (s *Service) ReleaseApp(ctx context.Context, appID uuid.UUID) error {
	return s.repo.DeleteByApp(ctx, appID)
}
