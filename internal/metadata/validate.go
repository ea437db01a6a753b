package metadata

import (
	"fmt"
	"strings"
)

// validateSchema checks every entity of a schema for structural
// violations. It returns all violations found rather than stopping at
// the first, so a failed Finalize reports the full picture.
func validateSchema(schemaName string, entities []*Entity, registry *Registry) []*SchemaValidationError {
	var violations []*SchemaValidationError

	for _, e := range entities {
		violations = append(violations, validateColumns(schemaName, e)...)
		switch e.Kind() {
		case KindTable:
			violations = append(violations, validatePrimaryKey(schemaName, e)...)
			violations = append(violations, validateForeignKeys(schemaName, e, registry)...)
		case KindView:
			violations = append(violations, validateView(schemaName, e)...)
		}
	}

	return violations
}

// validateColumns rejects duplicate column names within one entity.
func validateColumns(schemaName string, e *Entity) []*SchemaValidationError {
	var violations []*SchemaValidationError

	seen := make(map[string]bool)
	for _, c := range e.Columns() {
		if c.Name() == "" {
			violations = append(violations, &SchemaValidationError{
				Schema:  schemaName,
				Entity:  e.Name(),
				Message: "column declared without a name",
			})
			continue
		}
		if seen[c.Name()] {
			violations = append(violations, &SchemaValidationError{
				Schema:  schemaName,
				Entity:  e.Name(),
				Column:  c.Name(),
				Message: "column declared more than once",
			})
		}
		seen[c.Name()] = true
	}

	return violations
}

// validatePrimaryKey requires exactly one primary key column on tables.
func validatePrimaryKey(schemaName string, e *Entity) []*SchemaValidationError {
	var keys []string
	for _, c := range e.Columns() {
		if c.IsPrimaryKey() {
			keys = append(keys, c.Name())
		}
	}

	switch len(keys) {
	case 1:
		return nil
	case 0:
		return []*SchemaValidationError{{
			Schema:  schemaName,
			Entity:  e.Name(),
			Message: "table must declare exactly one primary key column",
		}}
	default:
		return []*SchemaValidationError{{
			Schema:  schemaName,
			Entity:  e.Name(),
			Message: fmt.Sprintf("table declares multiple primary key columns: %s", strings.Join(keys, ", ")),
		}}
	}
}

// validateForeignKeys resolves every reference against the registry and
// the involved entities' column lists.
func validateForeignKeys(schemaName string, e *Entity, registry *Registry) []*SchemaValidationError {
	var violations []*SchemaValidationError

	for _, fk := range e.ForeignKeys() {
		if len(fk.Columns) == 0 {
			violations = append(violations, &SchemaValidationError{
				Schema:  schemaName,
				Entity:  e.Name(),
				Message: fmt.Sprintf("foreign key to %s declares no columns", fk.TargetEntity),
			})
			continue
		}

		for _, name := range fk.Columns {
			if _, ok := e.Column(name); !ok {
				violations = append(violations, &SchemaValidationError{
					Schema:  schemaName,
					Entity:  e.Name(),
					Column:  name,
					Message: "foreign key column does not exist on entity",
				})
			}
		}

		target, ok := registry.Lookup(fk.TargetEntity)
		if !ok {
			violations = append(violations, &SchemaValidationError{
				Schema:  schemaName,
				Entity:  e.Name(),
				Message: fmt.Sprintf("foreign key references unregistered entity %s", fk.TargetEntity),
			})
			continue
		}

		if len(fk.TargetColumns) == 0 {
			if _, ok := target.PrimaryKey(); !ok {
				violations = append(violations, &SchemaValidationError{
					Schema:  schemaName,
					Entity:  e.Name(),
					Message: fmt.Sprintf("foreign key target %s has no primary key", fk.TargetEntity),
				})
			} else if len(fk.Columns) != 1 {
				violations = append(violations, &SchemaValidationError{
					Schema:  schemaName,
					Entity:  e.Name(),
					Message: fmt.Sprintf("foreign key to %s primary key must declare exactly one column", fk.TargetEntity),
				})
			}
			continue
		}

		if len(fk.TargetColumns) != len(fk.Columns) {
			violations = append(violations, &SchemaValidationError{
				Schema:  schemaName,
				Entity:  e.Name(),
				Message: fmt.Sprintf("foreign key to %s has mismatched column counts", fk.TargetEntity),
			})
			continue
		}

		for _, name := range fk.TargetColumns {
			if _, ok := target.Column(name); !ok {
				violations = append(violations, &SchemaValidationError{
					Schema:  schemaName,
					Entity:  e.Name(),
					Column:  name,
					Message: fmt.Sprintf("foreign key target column does not exist on %s", fk.TargetEntity),
				})
			}
		}
	}

	return violations
}

// validateView requires a backing query on view entities.
func validateView(schemaName string, e *Entity) []*SchemaValidationError {
	if strings.TrimSpace(e.ViewQuery()) == "" {
		return []*SchemaValidationError{{
			Schema:  schemaName,
			Entity:  e.Name(),
			Message: "view declared without a backing query",
		}}
	}
	return nil
}
