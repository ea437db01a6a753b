// Package metadata provides the descriptor types, registry, and schema
// grouping that describe relational entities to the data-access layer.
// Descriptors are declared with explicit builders, registered once, and
// frozen by a schema before any facade consumes them.
package metadata

import "fmt"

// DataType identifies the logical column type of a descriptor. The
// storage collaborator decides the physical representation.
type DataType int

const (
	// TypeString is a length-limited character type.
	TypeString DataType = iota
	// TypeText is an unbounded character type.
	TypeText
	// TypeInt is a 32-bit integer type.
	TypeInt
	// TypeBigInt is a 64-bit integer type.
	TypeBigInt
	// TypeFloat is a double-precision floating point type.
	TypeFloat
	// TypeBool is a boolean type.
	TypeBool
	// TypeTimestamp is a point-in-time type with zone.
	TypeTimestamp
	// TypeDate is a calendar date type.
	TypeDate
	// TypeUUID is a universally unique identifier type.
	TypeUUID
	// TypeJSON is a structured document type.
	TypeJSON
)

// String returns the string representation of the data type.
func (t DataType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeText:
		return "text"
	case TypeInt:
		return "int"
	case TypeBigInt:
		return "bigint"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeTimestamp:
		return "timestamp"
	case TypeDate:
		return "date"
	case TypeUUID:
		return "uuid"
	case TypeJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseDataType converts a string to a DataType.
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "string":
		return TypeString, nil
	case "text":
		return TypeText, nil
	case "int":
		return TypeInt, nil
	case "bigint":
		return TypeBigInt, nil
	case "float":
		return TypeFloat, nil
	case "bool":
		return TypeBool, nil
	case "timestamp":
		return TypeTimestamp, nil
	case "date":
		return TypeDate, nil
	case "uuid":
		return TypeUUID, nil
	case "json":
		return TypeJSON, nil
	default:
		return TypeString, fmt.Errorf("unknown data type: %s", s)
	}
}

// Generator produces a value for a column at persistence time. Columns
// declared with DefaultFunc are filled by one generator call per save.
type Generator func() interface{}

// ReferentialAction defines what happens to dependent rows when a
// referenced row is deleted or updated.
type ReferentialAction int

const (
	// ActionNoAction leaves dependents untouched and lets the store reject.
	ActionNoAction ReferentialAction = iota
	// ActionRestrict prevents deletion or update of the referenced row.
	ActionRestrict
	// ActionCascade propagates the deletion or update to dependents.
	ActionCascade
	// ActionSetNull clears the referencing columns.
	ActionSetNull
)

// String returns the string representation of the referential action.
func (a ReferentialAction) String() string {
	switch a {
	case ActionNoAction:
		return "no_action"
	case ActionRestrict:
		return "restrict"
	case ActionCascade:
		return "cascade"
	case ActionSetNull:
		return "set_null"
	default:
		return "unknown"
	}
}

// ParseReferentialAction converts a string to a ReferentialAction.
func ParseReferentialAction(s string) (ReferentialAction, error) {
	switch s {
	case "no_action":
		return ActionNoAction, nil
	case "restrict":
		return ActionRestrict, nil
	case "cascade":
		return ActionCascade, nil
	case "set_null":
		return ActionSetNull, nil
	default:
		return ActionNoAction, fmt.Errorf("unknown referential action: %s", s)
	}
}

// Column describes a single column of an entity. Columns are immutable
// values: the chained builder methods return modified copies, so a
// descriptor shared between entities cannot be changed underneath them.
type Column struct {
	name          string
	dataType      DataType
	maxLength     int
	nullable      bool
	unique        bool
	autoIncrement bool
	primaryKey    bool
	defaultValue  interface{}
	hasDefault    bool
	generator     Generator
}

// NewColumn creates a column descriptor with the given name and type.
// The column is non-nullable until Nullable is applied.
func NewColumn(name string, t DataType) Column {
	return Column{name: name, dataType: t}
}

// Length sets the maximum length for character types.
func (c Column) Length(n int) Column {
	c.maxLength = n
	return c
}

// Nullable marks the column as accepting NULL.
func (c Column) Nullable() Column {
	c.nullable = true
	return c
}

// Unique marks the column as carrying a uniqueness constraint.
func (c Column) Unique() Column {
	c.unique = true
	return c
}

// Default sets a static default value applied when a staged instance
// omits the column.
func (c Column) Default(v interface{}) Column {
	c.defaultValue = v
	c.hasDefault = true
	return c
}

// DefaultFunc sets a generator invoked once per save to fill the column
// when the instance omits it.
func (c Column) DefaultFunc(g Generator) Column {
	c.generator = g
	return c
}

// AutoIncrement marks the column as store-assigned on insert.
func (c Column) AutoIncrement() Column {
	c.autoIncrement = true
	return c
}

// PrimaryKey marks the column as the entity's primary key.
func (c Column) PrimaryKey() Column {
	c.primaryKey = true
	return c
}

// Name returns the column name.
func (c Column) Name() string { return c.name }

// DataType returns the column's logical type.
func (c Column) DataType() DataType { return c.dataType }

// MaxLength returns the declared maximum length and whether one is set.
func (c Column) MaxLength() (int, bool) { return c.maxLength, c.maxLength > 0 }

// IsNullable reports whether the column accepts NULL.
func (c Column) IsNullable() bool { return c.nullable }

// IsUnique reports whether the column carries a uniqueness constraint.
func (c Column) IsUnique() bool { return c.unique }

// IsAutoIncrement reports whether the store assigns the column on insert.
func (c Column) IsAutoIncrement() bool { return c.autoIncrement }

// IsPrimaryKey reports whether the column is the entity's primary key.
func (c Column) IsPrimaryKey() bool { return c.primaryKey }

// DefaultValue returns the static default and whether one is set.
func (c Column) DefaultValue() (interface{}, bool) { return c.defaultValue, c.hasDefault }

// DefaultGenerator returns the generator default, or nil when none is set.
func (c Column) DefaultGenerator() Generator { return c.generator }

// ForeignKey describes a reference from one entity's columns to another
// entity. Empty TargetColumns means the target's primary key.
type ForeignKey struct {
	Columns       []string
	TargetEntity  string
	TargetColumns []string
	OnDelete      ReferentialAction
	OnUpdate      ReferentialAction
}

// EntityKind distinguishes writable tables from read-only views.
type EntityKind int

const (
	// KindTable is a writable base table.
	KindTable EntityKind = iota
	// KindView is a read-only stored query.
	KindView
)

// String returns the string representation of the entity kind.
func (k EntityKind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindView:
		return "view"
	default:
		return "unknown"
	}
}

// Entity is the immutable descriptor for one table or view: its logical
// name, its name in the store, and its column list in declaration order.
type Entity struct {
	name        string
	schemaName  string
	kind        EntityKind
	columns     []Column
	foreignKeys []ForeignKey
	viewQuery   string
}

// NewTable creates a table entity descriptor. The logical name keys
// registry lookups; the table name is the relation in the store.
func NewTable(name, tableName string, columns []Column, foreignKeys ...ForeignKey) *Entity {
	return &Entity{
		name:        name,
		schemaName:  tableName,
		kind:        KindTable,
		columns:     append([]Column(nil), columns...),
		foreignKeys: append([]ForeignKey(nil), foreignKeys...),
	}
}

// NewView creates a view entity descriptor backed by the given query.
// Result ordering is whatever the query declares.
func NewView(name, viewName, query string, columns ...Column) *Entity {
	return &Entity{
		name:       name,
		schemaName: viewName,
		kind:       KindView,
		columns:    append([]Column(nil), columns...),
		viewQuery:  query,
	}
}

// Name returns the logical entity name.
func (e *Entity) Name() string { return e.name }

// SchemaName returns the table or view name in the store.
func (e *Entity) SchemaName() string { return e.schemaName }

// Kind returns whether the entity is a table or a view.
func (e *Entity) Kind() EntityKind { return e.kind }

// IsView reports whether the entity is a read-only view.
func (e *Entity) IsView() bool { return e.kind == KindView }

// ViewQuery returns the backing query for view entities.
func (e *Entity) ViewQuery() string { return e.viewQuery }

// Columns returns the column descriptors in declaration order.
func (e *Entity) Columns() []Column {
	return append([]Column(nil), e.columns...)
}

// ColumnNames returns the column names in declaration order.
func (e *Entity) ColumnNames() []string {
	names := make([]string, len(e.columns))
	for i, c := range e.columns {
		names[i] = c.name
	}
	return names
}

// Column returns the descriptor for the named column.
func (e *Entity) Column(name string) (Column, bool) {
	for _, c := range e.columns {
		if c.name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKey returns the primary key column, if one is declared.
func (e *Entity) PrimaryKey() (Column, bool) {
	for _, c := range e.columns {
		if c.primaryKey {
			return c, true
		}
	}
	return Column{}, false
}

// ForeignKeys returns the entity's foreign key declarations.
func (e *Entity) ForeignKeys() []ForeignKey {
	return append([]ForeignKey(nil), e.foreignKeys...)
}
