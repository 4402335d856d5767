package translations

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory translation store for scaffolding and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	bundles  map[int64]*Bundle
	index    map[string]int64
	messages map[int64]map[string]*Message
}

// NewMemoryRepository creates an empty in-memory translation repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:   1,
		bundles:  make(map[int64]*Bundle),
		index:    make(map[string]int64),
		messages: make(map[int64]map[string]*Message),
	}
}

func bundleKey(url, language, target string) string {
	return language + "_" + target + "::" + url
}

func (m *MemoryRepository) UpsertBundle(_ context.Context, url, language, target string) (*Bundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := bundleKey(url, language, target)
	if id, ok := m.index[key]; ok {
		copied := *m.bundles[id]
		return &copied, nil
	}

	bundle := &Bundle{
		ID:             m.nextID,
		TranslationURL: url,
		Language:       language,
		Target:         target,
	}
	m.nextID++
	m.bundles[bundle.ID] = bundle
	m.index[key] = bundle.ID
	m.messages[bundle.ID] = make(map[string]*Message)

	copied := *bundle
	return &copied, nil
}

func (m *MemoryRepository) GetBundle(_ context.Context, url, language, target string) (*Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.index[bundleKey(url, language, target)]
	if !ok {
		return nil, ErrBundleNotFound
	}
	copied := *m.bundles[id]
	return &copied, nil
}

func (m *MemoryRepository) BundlesForURL(_ context.Context, url string) ([]*Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Bundle
	for _, bundle := range m.bundles {
		if bundle.TranslationURL == url {
			copied := *bundle
			out = append(out, &copied)
		}
	}
	sortBundles(out)
	return out, nil
}

func (m *MemoryRepository) ListBundles(_ context.Context) ([]*Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Bundle, 0, len(m.bundles))
	for _, bundle := range m.bundles {
		copied := *bundle
		out = append(out, &copied)
	}
	sortBundles(out)
	return out, nil
}

func (m *MemoryRepository) SetMessages(_ context.Context, bundleID int64, messages map[string]string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.messages[bundleID]
	if !ok {
		return ErrBundleNotFound
	}

	for key, msg := range stored {
		if _, present := messages[key]; !present {
			msg.Active = false
		}
	}
	for key, value := range messages {
		msg, present := stored[key]
		if present && msg.Value == value {
			msg.Active = true
			continue
		}
		stored[key] = &Message{Key: key, Value: value, UpdatedAt: now, Active: true}
	}
	return nil
}

func (m *MemoryRepository) ActiveMessages(_ context.Context, bundleID int64) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.messages[bundleID]
	if !ok {
		return nil, ErrBundleNotFound
	}

	out := make([]Message, 0, len(stored))
	for _, msg := range stored {
		if msg.Active {
			out = append(out, *msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func sortBundles(bundles []*Bundle) {
	sort.Slice(bundles, func(i, j int) bool {
		if bundles[i].TranslationURL != bundles[j].TranslationURL {
			return bundles[i].TranslationURL < bundles[j].TranslationURL
		}
		return bundles[i].FullCode() < bundles[j].FullCode()
	})
}
