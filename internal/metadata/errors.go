package metadata

import (
	"errors"
	"fmt"
)

// Common metadata errors.
var (
	// ErrDuplicateEntity is returned when a logical name is registered twice.
	ErrDuplicateEntity = errors.New("entity already registered")

	// ErrSchemaFinalized is returned when a finalized schema is modified.
	ErrSchemaFinalized = errors.New("schema is finalized")

	// ErrSchemaNotFinalized is returned when entities are requested from a
	// schema that has not been successfully finalized.
	ErrSchemaNotFinalized = errors.New("schema is not finalized")
)

// SchemaValidationError describes a single structural violation found
// while finalizing a schema.
type SchemaValidationError struct {
	Schema  string
	Entity  string
	Column  string
	Message string
}

// Error implements the error interface.
func (e *SchemaValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("schema %s: entity %s: column %s: %s", e.Schema, e.Entity, e.Column, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("schema %s: entity %s: %s", e.Schema, e.Entity, e.Message)
	}
	return fmt.Sprintf("schema %s: %s", e.Schema, e.Message)
}

// IsSchemaValidation reports whether err contains a schema validation
// violation.
func IsSchemaValidation(err error) bool {
	var ve *SchemaValidationError
	return errors.As(err, &ve)
}
