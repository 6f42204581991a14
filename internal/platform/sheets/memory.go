package sheets

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps tabs in process. It backs local development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	order  []string
	tabs   map[string]memoryTab
}

type memoryTab struct {
	id     int64
	values [][]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tabs: make(map[string]memoryTab)}
}

func (m *MemoryStore) Tabs(ctx context.Context) ([]Tab, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Tab, 0, len(m.order))
	for _, title := range m.order {
		out = append(out, Tab{ID: m.tabs[title].id, Title: title})
	}
	return out, nil
}

func (m *MemoryStore) Read(ctx context.Context, title string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tab, ok := m.tabs[title]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTabNotFound, title)
	}
	return cloneGrid(tab.values), nil
}

func (m *MemoryStore) Write(ctx context.Context, title string, values [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tab, ok := m.tabs[title]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTabNotFound, title)
	}
	tab.values = cloneGrid(values)
	m.tabs[title] = tab
	return nil
}

func (m *MemoryStore) AddTab(ctx context.Context, title string) (Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tabs[title]; ok {
		return Tab{}, fmt.Errorf("sheets: tab %q already exists", title)
	}
	m.nextID++
	m.tabs[title] = memoryTab{id: m.nextID}
	m.order = append(m.order, title)
	return Tab{ID: m.nextID, Title: title}, nil
}

func (m *MemoryStore) DeleteTabs(ctx context.Context, ids ...int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.order[:0]
	for _, title := range m.order {
		if drop[m.tabs[title].id] {
			delete(m.tabs, title)
			continue
		}
		kept = append(kept, title)
	}
	m.order = kept
	return nil
}

func cloneGrid(values [][]string) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = append([]string(nil), row...)
	}
	return out
}
