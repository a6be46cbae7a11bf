package web

import (
	"strconv"
	"strings"
	"sync"
)

// layoutMemo caches rendered layout responses. Keys embed the snapshot
// version, so a refresh never serves a stale layout; purge drops the
// superseded entries eagerly. Eviction is first-in first-out.
type layoutMemo struct {
	mu      sync.RWMutex
	size    int
	entries map[string]layoutResponse
	order   []string
}

func newLayoutMemo(size int) *layoutMemo {
	return &layoutMemo{
		size:    size,
		entries: make(map[string]layoutResponse),
	}
}

func memoKey(version uint64, month, filterKey string, maxRows int) string {
	return strings.Join([]string{
		strconv.FormatUint(version, 10), month, filterKey, strconv.Itoa(maxRows),
	}, "|")
}

func (m *layoutMemo) get(key string) (layoutResponse, bool) {
	if m == nil || m.size <= 0 {
		return layoutResponse{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp, ok := m.entries[key]
	return resp, ok
}

func (m *layoutMemo) put(key string, resp layoutResponse) {
	if m == nil || m.size <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; ok {
		m.entries[key] = resp
		return
	}
	for len(m.order) >= m.size {
		delete(m.entries, m.order[0])
		m.order = m.order[1:]
	}
	m.entries[key] = resp
	m.order = append(m.order, key)
}

func (m *layoutMemo) purge() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]layoutResponse)
	m.order = nil
}

func (m *layoutMemo) count() int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
