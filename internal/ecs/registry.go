package ecs

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrDeadEntity is returned when a component is attached to an entity that
	// was never created or has been destroyed.
	ErrDeadEntity = errors.New("entity is not alive")
	// ErrDuplicateComponent is returned when a component id is registered twice.
	ErrDuplicateComponent = errors.New("component already registered")
)

// Entity identifies a set of components.
type Entity = uuid.UUID

// ComponentID names a component type.
type ComponentID string

type componentStore interface {
	remove(e Entity) bool
	has(e Entity) bool
	Len() int
}

// Registry owns entity liveness and the component stores.
type Registry struct {
	mu     sync.RWMutex
	alive  map[Entity]struct{}
	stores map[ComponentID]componentStore
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		alive:  make(map[Entity]struct{}),
		stores: make(map[ComponentID]componentStore),
	}
}

// Create allocates a new live entity.
func (r *Registry) Create() Entity {
	e := uuid.New()
	r.mu.Lock()
	r.alive[e] = struct{}{}
	r.mu.Unlock()
	return e
}

// Alive reports whether e exists and has not been destroyed.
func (r *Registry) Alive(e Entity) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.alive[e]
	return ok
}

// Destroy removes e and all of its components. Returns false if e was not alive.
func (r *Registry) Destroy(e Entity) bool {
	r.mu.Lock()
	if _, ok := r.alive[e]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.alive, e)
	stores := make([]componentStore, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.mu.Unlock()

	for _, s := range stores {
		s.remove(e)
	}
	return true
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.alive)
}

// Count returns how many entities carry component id. Unknown ids count zero.
func (r *Registry) Count(id ComponentID) int {
	r.mu.RLock()
	s, ok := r.stores[id]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	return s.Len()
}

// Has reports whether e carries component id.
func (r *Registry) Has(e Entity, id ComponentID) bool {
	r.mu.RLock()
	s, ok := r.stores[id]
	r.mu.RUnlock()
	return ok && s.has(e)
}

func (r *Registry) register(id ComponentID, s componentStore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, id)
	}
	r.stores[id] = s
	return nil
}

// Store holds one component type densely, in insertion order with
// swap-removal.
type Store[T any] struct {
	id       ComponentID
	registry *Registry

	mu       sync.RWMutex
	entities []Entity
	values   []T
	index    map[Entity]int
}

// Register creates the store for component id.
func Register[T any](r *Registry, id ComponentID) (*Store[T], error) {
	s := &Store[T]{
		id:       id,
		registry: r,
		index:    make(map[Entity]int),
	}
	if err := r.register(id, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the component id of the store.
func (s *Store[T]) ID() ComponentID { return s.id }

// Set attaches or replaces the component of e.
func (s *Store[T]) Set(e Entity, v T) error {
	if !s.registry.Alive(e) {
		return fmt.Errorf("set %s: %w", s.id, ErrDeadEntity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[e]; ok {
		s.values[i] = v
		return nil
	}
	s.index[e] = len(s.entities)
	s.entities = append(s.entities, e)
	s.values = append(s.values, v)
	return nil
}

// Get returns the component of e.
func (s *Store[T]) Get(e Entity) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[e]; ok {
		return s.values[i], true
	}
	var zero T
	return zero, false
}

// Remove detaches the component of e.
func (s *Store[T]) Remove(e Entity) bool {
	return s.remove(e)
}

func (s *Store[T]) remove(e Entity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[e]
	if !ok {
		return false
	}
	last := len(s.entities) - 1
	if i != last {
		s.entities[i] = s.entities[last]
		s.values[i] = s.values[last]
		s.index[s.entities[i]] = i
	}
	var zero T
	s.values[last] = zero
	s.entities = s.entities[:last]
	s.values = s.values[:last]
	delete(s.index, e)
	return true
}

func (s *Store[T]) has(e Entity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[e]
	return ok
}

// Len returns the number of entities carrying the component.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Each calls fn for a snapshot of the store. fn may add or remove components;
// iteration stops when fn returns false.
func (s *Store[T]) Each(fn func(e Entity, v T) bool) {
	s.mu.RLock()
	entities := make([]Entity, len(s.entities))
	values := make([]T, len(s.values))
	copy(entities, s.entities)
	copy(values, s.values)
	s.mu.RUnlock()

	for i, e := range entities {
		if !fn(e, values[i]) {
			return
		}
	}
}
