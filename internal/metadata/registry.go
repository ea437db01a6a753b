package metadata

import (
	"fmt"
	"sync"
)

// Registry holds entity descriptors keyed by logical name. Registration
// is append-only: descriptors are never replaced or removed, so a
// reference obtained from Lookup stays valid for the process lifetime.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]*Entity
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*Entity),
	}
}

// Register adds an entity descriptor under its logical name. Registering
// a name twice returns ErrDuplicateEntity.
func (r *Registry) Register(e *Entity) error {
	if e == nil {
		return fmt.Errorf("cannot register nil entity")
	}
	if e.Name() == "" {
		return fmt.Errorf("cannot register entity without a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entities[e.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEntity, e.Name())
	}

	r.entities[e.Name()] = e
	r.order = append(r.order, e.Name())
	return nil
}

// Lookup returns the descriptor registered under the logical name.
func (r *Registry) Lookup(name string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entities[name]
	return e, ok
}

// Names returns the registered logical names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entities)
}
