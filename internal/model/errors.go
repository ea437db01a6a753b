package model

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common facade error types.
var (
	// ErrUniqueViolation is returned when a save violates a uniqueness
	// constraint.
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrForeignKeyViolation is returned when a write violates a foreign
	// key constraint.
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")

	// ErrNotNullViolation is returned when a write leaves a required
	// column empty.
	ErrNotNullViolation = errors.New("not null constraint violation")

	// ErrUnsupportedOperation is returned when a mutation is attempted
	// on a view-kind entity.
	ErrUnsupportedOperation = errors.New("operation not supported for views")

	// ErrNotPersisted is returned when an operation requires a persisted
	// instance.
	ErrNotPersisted = errors.New("instance is not persisted")

	// ErrDeletedInstance is returned when a deleted instance is used again.
	ErrDeletedInstance = errors.New("instance is deleted")
)

// FieldError describes a validation failure on a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports caller mistakes such as unknown column names
// or out-of-range pagination arguments.
type ValidationError struct {
	Entity string
	Errors []FieldError
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return fmt.Sprintf("%s: validation failed", ve.Entity)
	}
	if len(ve.Errors) == 1 {
		return fmt.Sprintf("%s: validation failed: %s: %s", ve.Entity, ve.Errors[0].Field, ve.Errors[0].Message)
	}
	return fmt.Sprintf("%s: validation failed: %d errors", ve.Entity, len(ve.Errors))
}

func newValidationError(entity, field, message string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// ConvertStoreError converts driver errors to facade errors.
func ConvertStoreError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.Detail)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pgErr.Detail)
		case "23502": // not_null_violation
			return fmt.Errorf("%w: column %s", ErrNotNullViolation, pgErr.ColumnName)
		}
	}

	return err
}

// IsUniqueViolation returns true if the error is ErrUniqueViolation.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation)
}

// IsForeignKeyViolation returns true if the error is ErrForeignKeyViolation.
func IsForeignKeyViolation(err error) bool {
	return errors.Is(err, ErrForeignKeyViolation)
}

// IsUnsupported returns true if the error is ErrUnsupportedOperation.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedOperation)
}

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
