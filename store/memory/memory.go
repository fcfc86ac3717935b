// Package memory is an in-process genview.Store keeping entities in
// insertion order.
package memory

import (
	"context"
	"sync"

	"github.com/pthm/genview"
	"github.com/pthm/genview/store"
)

// Store keeps entities of type E in memory. It is safe for concurrent use.
// Save keeps a shallow copy, and Get and All hand out fresh copies, so a
// caller editing an entity never touches what other readers see until it
// saves.
type Store[E store.Entity] struct {
	mu    sync.RWMutex
	order []string
	items map[string]E
}

var _ genview.Store[store.Entity] = (*Store[store.Entity])(nil)

// New creates a store holding entities.
func New[E store.Entity](entities ...E) *Store[E] {
	s := &Store[E]{items: make(map[string]E)}
	for _, e := range entities {
		s.put(e)
	}
	return s
}

func (s *Store[E]) put(e E) {
	store.EnsureID(e)
	id := e.EntityID()
	if _, ok := s.items[id]; !ok {
		s.order = append(s.order, id)
	}
	s.items[id] = store.Clone(e)
}

// Get returns the entity with id.
func (s *Store[E]) Get(_ context.Context, id string) (E, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	if !ok {
		return e, false, nil
	}
	return store.Clone(e), true, nil
}

// All returns every entity in insertion order.
func (s *Store[E]) All(context.Context) ([]E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]E, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, store.Clone(s.items[id]))
	}
	return out, nil
}

// Save inserts or replaces e, assigning an identifier when it has none.
func (s *Store[E]) Save(_ context.Context, e E) error {
	if store.IsNil(e) {
		return store.ErrNilEntity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(e)
	return nil
}

// Delete removes e. Deleting an absent entity is not an error.
func (s *Store[E]) Delete(_ context.Context, e E) error {
	if store.IsNil(e) {
		return store.ErrNilEntity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := e.EntityID()
	if _, ok := s.items[id]; !ok {
		return nil
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored entities.
func (s *Store[E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
