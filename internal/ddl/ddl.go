// Package ddl renders PostgreSQL DDL from finalized schemas. Generation
// is pure; executing the statements is the caller's decision. Versioned
// migrations are out of scope, so every statement is idempotent.
package ddl

import (
	"fmt"
	"strings"

	"github.com/joinery-data/joinery/internal/metadata"
)

// Generator renders DDL statements for one finalized schema.
type Generator struct {
	schema *metadata.Schema
}

// NewGenerator creates a DDL generator for the given schema.
func NewGenerator(schema *metadata.Schema) *Generator {
	return &Generator{schema: schema}
}

// Statements renders the full DDL for a finalized schema: tables in
// schema order, then views, so view queries can reference the tables.
func Statements(schema *metadata.Schema) ([]string, error) {
	return NewGenerator(schema).Statements()
}

// Statements renders the schema's DDL.
func (g *Generator) Statements() ([]string, error) {
	entities, err := g.schema.Entities()
	if err != nil {
		return nil, err
	}

	var tables, views []string
	for _, e := range entities {
		if e.IsView() {
			stmt, err := g.CreateView(e)
			if err != nil {
				return nil, err
			}
			views = append(views, stmt)
			continue
		}
		stmt, err := g.CreateTable(e)
		if err != nil {
			return nil, err
		}
		tables = append(tables, stmt)
	}

	return append(tables, views...), nil
}

// CreateTable renders an idempotent CREATE TABLE statement for a
// table-kind entity.
func (g *Generator) CreateTable(e *metadata.Entity) (string, error) {
	if e == nil {
		return "", fmt.Errorf("entity cannot be nil")
	}
	if e.IsView() {
		return "", fmt.Errorf("entity %s is a view", e.Name())
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n", quoteIdentifier(e.SchemaName())))

	var defs []string
	for _, col := range e.Columns() {
		def, err := columnDefinition(col)
		if err != nil {
			return "", fmt.Errorf("column %s: %w", col.Name(), err)
		}
		defs = append(defs, def)
	}
	for _, fk := range e.ForeignKeys() {
		clause, err := g.foreignKeyClause(fk)
		if err != nil {
			return "", fmt.Errorf("foreign key to %s: %w", fk.TargetEntity, err)
		}
		defs = append(defs, clause)
	}

	for i, def := range defs {
		b.WriteString("  ")
		b.WriteString(def)
		if i < len(defs)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}

	b.WriteString(");")
	return b.String(), nil
}

// CreateView renders an idempotent CREATE VIEW statement for a
// view-kind entity.
func (g *Generator) CreateView(e *metadata.Entity) (string, error) {
	if e == nil {
		return "", fmt.Errorf("entity cannot be nil")
	}
	if !e.IsView() {
		return "", fmt.Errorf("entity %s is not a view", e.Name())
	}

	return fmt.Sprintf("CREATE OR REPLACE VIEW %s AS\n%s;",
		quoteIdentifier(e.SchemaName()), e.ViewQuery()), nil
}

// foreignKeyClause renders a table-level FOREIGN KEY constraint. The
// target entity must belong to the same schema so its relation name is
// known.
func (g *Generator) foreignKeyClause(fk metadata.ForeignKey) (string, error) {
	target, ok := g.schema.Entity(fk.TargetEntity)
	if !ok {
		return "", fmt.Errorf("target entity is not part of schema %s", g.schema.Name())
	}

	local := make([]string, len(fk.Columns))
	for i, c := range fk.Columns {
		local[i] = quoteIdentifier(c)
	}

	clause := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s",
		strings.Join(local, ", "), quoteIdentifier(target.SchemaName()))

	if len(fk.TargetColumns) > 0 {
		cols := make([]string, len(fk.TargetColumns))
		for i, c := range fk.TargetColumns {
			cols[i] = quoteIdentifier(c)
		}
		clause += fmt.Sprintf(" (%s)", strings.Join(cols, ", "))
	}

	clause += " ON DELETE " + actionSQL(fk.OnDelete)
	clause += " ON UPDATE " + actionSQL(fk.OnUpdate)
	return clause, nil
}

// columnDefinition renders one column: name, type, constraints, and any
// static default. Generator defaults live in the application, so they
// render nothing.
func columnDefinition(col metadata.Column) (string, error) {
	parts := []string{quoteIdentifier(col.Name())}

	columnType, err := mapType(col)
	if err != nil {
		return "", err
	}
	parts = append(parts, columnType)

	if !col.IsNullable() {
		parts = append(parts, "NOT NULL")
	}
	if col.IsUnique() {
		parts = append(parts, "UNIQUE")
	}
	if v, ok := col.DefaultValue(); ok {
		literal, err := defaultLiteral(v)
		if err != nil {
			return "", err
		}
		parts = append(parts, "DEFAULT "+literal)
	}
	if col.IsPrimaryKey() {
		parts = append(parts, "PRIMARY KEY")
	}

	return strings.Join(parts, " "), nil
}

// mapType maps a descriptor type to its PostgreSQL column type.
// Auto-increment integer keys become serial columns.
func mapType(col metadata.Column) (string, error) {
	switch col.DataType() {
	case metadata.TypeString:
		if length, ok := col.MaxLength(); ok {
			return fmt.Sprintf("VARCHAR(%d)", length), nil
		}
		return "VARCHAR(255)", nil
	case metadata.TypeText:
		return "TEXT", nil
	case metadata.TypeInt:
		if col.IsAutoIncrement() {
			return "SERIAL", nil
		}
		return "INTEGER", nil
	case metadata.TypeBigInt:
		if col.IsAutoIncrement() {
			return "BIGSERIAL", nil
		}
		return "BIGINT", nil
	case metadata.TypeFloat:
		return "DOUBLE PRECISION", nil
	case metadata.TypeBool:
		return "BOOLEAN", nil
	case metadata.TypeTimestamp:
		return "TIMESTAMPTZ", nil
	case metadata.TypeDate:
		return "DATE", nil
	case metadata.TypeUUID:
		return "UUID", nil
	case metadata.TypeJSON:
		return "JSONB", nil
	default:
		return "", fmt.Errorf("unmapped data type %s", col.DataType())
	}
}

// defaultLiteral renders a static default value as a SQL literal.
func defaultLiteral(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'", nil
	case bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int, int32, int64, uint, uint32, uint64:
		return fmt.Sprintf("%d", val), nil
	case float32, float64:
		return fmt.Sprintf("%v", val), nil
	default:
		return "", fmt.Errorf("unsupported default literal type %T", v)
	}
}

// actionSQL maps a referential action to its SQL spelling.
func actionSQL(a metadata.ReferentialAction) string {
	switch a {
	case metadata.ActionRestrict:
		return "RESTRICT"
	case metadata.ActionCascade:
		return "CASCADE"
	case metadata.ActionSetNull:
		return "SET NULL"
	default:
		return "NO ACTION"
	}
}

// quoteIdentifier quotes an identifier, doubling internal quotes.
func quoteIdentifier(identifier string) string {
	escaped := strings.ReplaceAll(identifier, `"`, `""`)
	return fmt.Sprintf(`"%s"`, escaped)
}
