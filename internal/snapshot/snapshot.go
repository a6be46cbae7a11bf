// Package snapshot holds the current event set and keeps it fresh.
//
// Layout requests read one immutable Snapshot; a refresh builds a new one
// and swaps it in, so a layout never observes a collection changing under
// it.
package snapshot

import (
	"sync"
	"time"

	"monthcal/internal/model"
)

// Snapshot is one loaded event set. Version increases with every Replace
// and is used as a cache key by readers.
type Snapshot struct {
	Version   uint64
	Events    []model.Event
	UpdatedAt time.Time
}

// Store holds the current Snapshot.
type Store struct {
	mu   sync.RWMutex
	cur  Snapshot
	now  func() time.Time
	subs []func(Snapshot)
}

func NewStore() *Store {
	return &Store{
		cur: Snapshot{Events: []model.Event{}},
		now: time.Now,
	}
}

// Current returns the current snapshot. The Events slice must not be
// modified.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Replace installs a copy of events as the new snapshot and returns it.
func (s *Store) Replace(events []model.Event) Snapshot {
	cp := make([]model.Event, len(events))
	copy(cp, events)

	s.mu.Lock()
	s.cur = Snapshot{
		Version:   s.cur.Version + 1,
		Events:    cp,
		UpdatedAt: s.now().UTC(),
	}
	snap := s.cur
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

// OnReplace registers fn to be called after every Replace, outside the
// store lock.
func (s *Store) OnReplace(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}
