package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage keeps audit events in memory. It is the default backend and
// the one tests use; all events are lost on process exit.
//
// MemoryStorage is safe for concurrent use.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []*Event

	// maxEvents caps memory; oldest events drop first once exceeded.
	maxEvents int
}

// NewMemoryStorage creates a memory backend holding at most maxEvents
// (default 10000 when <= 0).
func NewMemoryStorage(maxEvents int) *MemoryStorage {
	if maxEvents <= 0 {
		maxEvents = 10000
	}
	return &MemoryStorage{maxEvents: maxEvents}
}

// Store implements Storage.
func (m *MemoryStorage) Store(_ context.Context, ev *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, ev)
	if len(m.events) > m.maxEvents {
		m.events = append(m.events[:0], m.events[len(m.events)-m.maxEvents:]...)
	}
	return nil
}

// List implements Storage, returning newest first.
func (m *MemoryStorage) List(_ context.Context, limit int) ([]*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.events) {
		limit = len(m.events)
	}
	out := make([]*Event, 0, limit)
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

// Count implements Storage.
func (m *MemoryStorage) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.events)), nil
}

// DeleteOlderThan implements Storage.
func (m *MemoryStorage) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.events[:0]
	var deleted int64
	for _, ev := range m.events {
		if ev.OccurredAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, ev)
	}
	m.events = kept
	return deleted, nil
}

// Close implements Storage.
func (m *MemoryStorage) Close() error {
	return nil
}
