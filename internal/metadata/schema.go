package metadata

import (
	"errors"
	"fmt"
	"sync"
)

// Schema is a named, ordered grouping of registered entities. It is
// assembled during startup, validated and locked by Finalize, and only
// then readable by consumers. Finalize is the visibility barrier:
// facades built after it observe every descriptor the schema names.
type Schema struct {
	mu        sync.RWMutex
	name      string
	registry  *Registry
	entities  []*Entity
	index     map[string]*Entity
	finalized bool
}

// NewSchema creates a schema over the given registry and adds the named
// entities in order. A name with no registered descriptor is an error.
func NewSchema(name string, registry *Registry, entityNames ...string) (*Schema, error) {
	if registry == nil {
		return nil, fmt.Errorf("schema %s: registry is required", name)
	}

	s := &Schema{
		name:     name,
		registry: registry,
	}
	if err := s.Add(entityNames...); err != nil {
		return nil, err
	}
	return s, nil
}

// Add appends registered entities to the schema in the order given.
// Adding to a finalized schema returns ErrSchemaFinalized.
func (s *Schema) Add(entityNames ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return fmt.Errorf("%w: %s", ErrSchemaFinalized, s.name)
	}

	for _, name := range entityNames {
		e, ok := s.registry.Lookup(name)
		if !ok {
			return fmt.Errorf("schema %s: entity %s is not registered", s.name, name)
		}
		for _, existing := range s.entities {
			if existing.Name() == name {
				return fmt.Errorf("schema %s: entity %s added twice", s.name, name)
			}
		}
		s.entities = append(s.entities, e)
	}
	return nil
}

// Finalize validates every entity in the schema and locks it. All
// violations are collected and returned joined; on failure nothing is
// locked and the schema stays unreadable. Finalizing an already
// finalized schema is a no-op.
func (s *Schema) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return nil
	}

	violations := validateSchema(s.name, s.entities, s.registry)
	if len(violations) > 0 {
		errs := make([]error, len(violations))
		for i, v := range violations {
			errs[i] = v
		}
		return errors.Join(errs...)
	}

	s.index = make(map[string]*Entity, len(s.entities))
	for _, e := range s.entities {
		s.index[e.Name()] = e
	}
	s.finalized = true
	return nil
}

// Entities returns the schema's entities in the order they were added.
// It fails with ErrSchemaNotFinalized until Finalize has succeeded.
func (s *Schema) Entities() ([]*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.finalized {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFinalized, s.name)
	}
	return append([]*Entity(nil), s.entities...), nil
}

// Entity returns the named entity from a finalized schema.
func (s *Schema) Entity(name string) (*Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.finalized {
		return nil, false
	}
	e, ok := s.index[name]
	return e, ok
}

// Name returns the schema name.
func (s *Schema) Name() string {
	return s.name
}

// Finalized reports whether Finalize has succeeded.
func (s *Schema) Finalized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.finalized
}
