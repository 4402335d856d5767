package apps

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory application store for scaffolding and tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	records   map[uuid.UUID]*Application
	nameIndex map[string]uuid.UUID
}

// NewMemoryRepository creates an empty in-memory application repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records:   make(map[uuid.UUID]*Application),
		nameIndex: make(map[string]uuid.UUID),
	}
}

func (m *MemoryRepository) Create(_ context.Context, app *Application) (*Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneApplication(app)
	m.records[copied.ID] = copied
	m.nameIndex[copied.Name] = copied.ID
	return cloneApplication(copied), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{ID: id.String()}
	}
	return cloneApplication(rec), nil
}

func (m *MemoryRepository) GetByName(_ context.Context, name string) (*Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.nameIndex[name]
	if !ok {
		return nil, &NotFoundError{ID: name}
	}
	return cloneApplication(m.records[id]), nil
}

func (m *MemoryRepository) ListBySpec(_ context.Context, specURL, composer string) ([]*Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Application
	for _, rec := range m.records {
		if rec.SpecURL == specURL && rec.Composer == composer {
			out = append(out, cloneApplication(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) DistinctSpecs(_ context.Context, composer string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, rec := range m.records {
		if rec.Composer != composer {
			continue
		}
		if _, ok := seen[rec.SpecURL]; ok {
			continue
		}
		seen[rec.SpecURL] = struct{}{}
		out = append(out, rec.SpecURL)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryRepository) Update(_ context.Context, app *Application) (*Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[app.ID]
	if !ok {
		return nil, &NotFoundError{ID: app.ID.String()}
	}
	delete(m.nameIndex, existing.Name)

	copied := cloneApplication(app)
	m.records[copied.ID] = copied
	m.nameIndex[copied.Name] = copied.ID
	return cloneApplication(copied), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return &NotFoundError{ID: id.String()}
	}
	delete(m.nameIndex, rec.Name)
	delete(m.records, id)
	return nil
}

func cloneApplication(app *Application) *Application {
	if app == nil {
		return nil
	}
	copied := *app
	return &copied
}
