package ownership

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory ownership store for scaffolding and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Ownership
}

// NewMemoryRepository creates an empty in-memory ownership repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*Ownership)}
}

func ownershipKey(specURL, partialCode string) string {
	return partialCode + "::" + specURL
}

func (m *MemoryRepository) Create(_ context.Context, record *Ownership) (*Ownership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ownershipKey(record.SpecURL, record.PartialCode)
	if _, ok := m.records[key]; ok {
		return nil, &TakenError{SpecURL: record.SpecURL, PartialCode: record.PartialCode}
	}
	copied := *record
	m.records[key] = &copied
	out := copied
	return &out, nil
}

func (m *MemoryRepository) Get(_ context.Context, specURL, partialCode string) (*Ownership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[ownershipKey(specURL, partialCode)]
	if !ok {
		return nil, ErrNoOwner
	}
	copied := *rec
	return &copied, nil
}

func (m *MemoryRepository) ListBySpec(_ context.Context, specURL string) ([]*Ownership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Ownership
	for _, rec := range m.records {
		if rec.SpecURL == specURL {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartialCode < out[j].PartialCode })
	return out, nil
}

func (m *MemoryRepository) ListByApp(_ context.Context, appID uuid.UUID) ([]*Ownership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Ownership
	for _, rec := range m.records {
		if rec.AppID == appID {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartialCode < out[j].PartialCode })
	return out, nil
}

func (m *MemoryRepository) Update(_ context.Context, record *Ownership) (*Ownership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ownershipKey(record.SpecURL, record.PartialCode)
	if _, ok := m.records[key]; !ok {
		return nil, ErrNoOwner
	}
	copied := *record
	m.records[key] = &copied
	out := copied
	return &out, nil
}

func (m *MemoryRepository) DeleteByApp(_ context.Context, appID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, rec := range m.records {
		if rec.AppID == appID {
			delete(m.records, key)
		}
	}
	return nil
}
