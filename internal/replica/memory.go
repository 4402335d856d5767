package replica

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory replica store for scaffolding and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[Collection]map[string]Record
}

// NewMemoryStore creates an empty in-memory replica store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[Collection]map[string]Record)}
}

func (m *MemoryStore) UpsertNotOlder(_ context.Context, col Collection, rec Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, ok := m.collections[col]
	if !ok {
		records = make(map[string]Record)
		m.collections[col] = records
	}

	if existing, ok := records[rec.ID]; ok && existing.Time.After(rec.Time) {
		return false, nil
	}
	records[rec.ID] = rec
	return true, nil
}

func (m *MemoryStore) Get(_ context.Context, col Collection, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.collections[col][id]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

func (m *MemoryStore) List(_ context.Context, col Collection) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.collections[col]
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) DeleteStale(_ context.Context, col Collection, keep []string, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[id] = struct{}{}
	}

	removed := 0
	for id, rec := range m.collections[col] {
		if _, ok := kept[id]; ok {
			continue
		}
		if !rec.Time.Before(olderThan) {
			continue
		}
		delete(m.collections[col], id)
		removed++
	}
	return removed, nil
}
