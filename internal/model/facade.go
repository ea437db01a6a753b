// Package model implements the generic per-entity data-access facade.
// A Facade binds one entity descriptor to the shared database handle
// and offers a uniform contract across tables and read-only views:
// staged creation, save, equality-filtered reads, bulk updates and
// deletes with affected counts, and offset pagination. Concurrency
// control and pooling belong to the *sql.DB collaborator; every
// operation here is one request to the store.
package model

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/joinery-data/joinery/internal/metadata"
)

// Record is one row keyed by column name.
type Record map[string]interface{}

// Filter selects rows by column equality. All pairs must match.
type Filter map[string]interface{}

// Page is one slice of a paginated result set. Total counts every row
// matching the filter, not just the returned slice.
type Page struct {
	Data  []Record
	Total int64
}

// Facade provides data access for a single entity over the shared
// connection. It keeps no per-call state and is safe for concurrent use.
type Facade struct {
	entity *metadata.Entity
	db     *sql.DB
}

// New binds an entity descriptor to a live database handle.
func New(entity *metadata.Entity, db *sql.DB) *Facade {
	return &Facade{entity: entity, db: db}
}

// Entity returns the descriptor the facade serves.
func (f *Facade) Entity() *metadata.Entity {
	return f.entity
}

// Create stages a new instance from the given fields without touching
// the store. Static column defaults are filled immediately; generator
// defaults stay unresolved until Save. Unknown fields are rejected.
func (f *Facade) Create(fields Record) (*Instance, error) {
	var fieldErrs []FieldError
	for name := range fields {
		if _, ok := f.entity.Column(name); !ok {
			fieldErrs = append(fieldErrs, FieldError{Field: name, Message: "unknown column"})
		}
	}
	if len(fieldErrs) > 0 {
		sort.Slice(fieldErrs, func(i, j int) bool { return fieldErrs[i].Field < fieldErrs[j].Field })
		return nil, &ValidationError{Entity: f.entity.Name(), Errors: fieldErrs}
	}

	values := make(Record, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	for _, col := range f.entity.Columns() {
		if _, present := values[col.Name()]; present {
			continue
		}
		if v, ok := col.DefaultValue(); ok {
			values[col.Name()] = v
		}
	}

	return &Instance{
		entity: f.entity,
		values: values,
		state:  StateStaged,
	}, nil
}

// validateColumns checks that every key names a declared column.
func (f *Facade) validateColumns(keys map[string]interface{}, context string) error {
	var fieldErrs []FieldError
	for name := range keys {
		if _, ok := f.entity.Column(name); !ok {
			fieldErrs = append(fieldErrs, FieldError{Field: name, Message: fmt.Sprintf("unknown column in %s", context)})
		}
	}
	if len(fieldErrs) > 0 {
		sort.Slice(fieldErrs, func(i, j int) bool { return fieldErrs[i].Field < fieldErrs[j].Field })
		return &ValidationError{Entity: f.entity.Name(), Errors: fieldErrs}
	}
	return nil
}

// whereClause builds an equality WHERE clause from a filter. Keys are
// sorted so the generated SQL is stable. The placeholder counter starts
// at next, letting callers bind SET arguments first.
func whereClause(filter Filter, next int) (string, []interface{}) {
	if len(filter) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, len(keys))
	values := make([]interface{}, len(keys))
	for i, k := range keys {
		clauses[i] = fmt.Sprintf("%s = $%d", k, next+i)
		values[i] = filter[k]
	}
	return " WHERE " + strings.Join(clauses, " AND "), values
}

// columnList joins the entity's column names in declaration order.
func (f *Facade) columnList() string {
	return strings.Join(f.entity.ColumnNames(), ", ")
}
