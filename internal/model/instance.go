package model

import (
	"fmt"

	"github.com/joinery-data/joinery/internal/metadata"
)

// State is the lifecycle position of an instance.
type State int

const (
	// StateStaged is an in-memory instance that has never been saved.
	StateStaged State = iota
	// StatePersisted is an instance whose values match a stored row.
	StatePersisted
	// StateDeleted is the terminal state after an instance delete.
	StateDeleted
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStaged:
		return "staged"
	case StatePersisted:
		return "persisted"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Instance is a mutable buffer of column values tied to one entity.
// It moves staged -> persisted -> deleted; a failed transition leaves
// both state and values untouched.
type Instance struct {
	entity *metadata.Entity
	values Record
	state  State
}

// Entity returns the descriptor the instance belongs to.
func (i *Instance) Entity() *metadata.Entity {
	return i.entity
}

// State returns the instance's lifecycle state.
func (i *Instance) State() State {
	return i.state
}

// Get returns the buffered value for a column.
func (i *Instance) Get(column string) (interface{}, bool) {
	v, ok := i.values[column]
	return v, ok
}

// Set buffers a value for a declared column. Deleted instances reject
// further writes.
func (i *Instance) Set(column string, value interface{}) error {
	if i.state == StateDeleted {
		return fmt.Errorf("%w: %s", ErrDeletedInstance, i.entity.Name())
	}
	if _, ok := i.entity.Column(column); !ok {
		return newValidationError(i.entity.Name(), column, "unknown column")
	}
	i.values[column] = value
	return nil
}

// Values returns a copy of the buffered column values.
func (i *Instance) Values() Record {
	out := make(Record, len(i.values))
	for k, v := range i.values {
		out[k] = v
	}
	return out
}
