package presence

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryTracker struct {
	mu       sync.RWMutex
	lastSeen map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryTracker(ttl time.Duration) *MemoryTracker {
	return &MemoryTracker{
		lastSeen: make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (m *MemoryTracker) WithClock(now func() time.Time) *MemoryTracker {
	m.now = now
	return m
}

func (m *MemoryTracker) Touch(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSeen[userID] = m.now()
	return nil
}

func (m *MemoryTracker) Forget(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lastSeen, userID)
	return nil
}

func (m *MemoryTracker) ActiveUserIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.ttl)
	ids := make([]string, 0, len(m.lastSeen))
	for id, seen := range m.lastSeen {
		if seen.Before(cutoff) {
			delete(m.lastSeen, id)
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryTracker) IsActive(_ context.Context, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen, ok := m.lastSeen[userID]
	if !ok {
		return false, nil
	}
	return !seen.Before(m.now().Add(-m.ttl)), nil
}
