package dao

import (
	"sort"
	"sync"

	"github.com/dropbox/sqlbricks/errors"
)

// Registry maps entity names to entities.  Relationships name their target
// entity, which is resolved through the registry when traversed.  Safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]*Entity
}

func NewRegistry(entities ...*Entity) (*Registry, error) {
	r := &Registry{entities: make(map[string]*Entity)}
	for _, e := range entities {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register fails if another entity already uses e's name.
func (r *Registry) Register(e *Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entities[e.Name()]; ok && existing != e {
		return errors.Newf("Entity '%s' is already registered", e.Name())
	}
	r.entities[e.Name()] = e
	return nil
}

func (r *Registry) Lookup(name string) (*Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entities[name]
	if !ok {
		return nil, newUnknownEntity(name)
	}
	return e, nil
}

// Sorted entity names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
