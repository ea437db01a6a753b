package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/joinery-data/joinery/internal/metadata"
)

// Save persists an instance. A staged instance is inserted and promoted
// to persisted, with store-assigned keys written back; a persisted
// instance is upserted by primary key. Generator defaults are resolved
// here, one generator call per absent column in declaration order, so
// two generated timestamps in one save may differ. On failure the
// instance keeps its previous state and values.
func (f *Facade) Save(ctx context.Context, inst *Instance) error {
	if inst == nil {
		return fmt.Errorf("cannot save nil instance")
	}
	if inst.entity != f.entity {
		return fmt.Errorf("instance belongs to %s, not %s", inst.entity.Name(), f.entity.Name())
	}
	if f.entity.IsView() {
		return fmt.Errorf("%w: cannot save into view %s", ErrUnsupportedOperation, f.entity.Name())
	}

	switch inst.state {
	case StateDeleted:
		return fmt.Errorf("%w: %s", ErrDeletedInstance, f.entity.Name())
	case StateStaged:
		return f.insert(ctx, inst)
	default:
		return f.upsert(ctx, inst)
	}
}

// insert writes a staged instance as a new row.
func (f *Facade) insert(ctx context.Context, inst *Instance) error {
	values := inst.Values()
	resolveGeneratedDefaults(f.entity, values)

	var columns []string
	var args []interface{}
	for _, col := range f.entity.Columns() {
		v, present := values[col.Name()]
		if !present {
			continue
		}
		columns = append(columns, col.Name())
		args = append(args, v)
	}

	var query string
	if len(columns) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s",
			f.entity.SchemaName(), f.columnList())
	} else {
		placeholders := make([]string, len(columns))
		for i := range columns {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			f.entity.SchemaName(),
			strings.Join(columns, ", "),
			strings.Join(placeholders, ", "),
			f.columnList())
	}

	row := f.db.QueryRowContext(ctx, query, args...)
	stored, err := scanRow(row, f.entity.ColumnNames())
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", f.entity.Name(), ConvertStoreError(err))
	}

	inst.values = stored
	inst.state = StatePersisted
	return nil
}

// upsert writes a persisted instance back by primary key.
func (f *Facade) upsert(ctx context.Context, inst *Instance) error {
	pk, ok := f.entity.PrimaryKey()
	if !ok {
		return fmt.Errorf("entity %s has no primary key", f.entity.Name())
	}

	values := inst.Values()
	pkVal, present := values[pk.Name()]
	if !present || pkVal == nil {
		return fmt.Errorf("cannot save %s: primary key %s has no value", f.entity.Name(), pk.Name())
	}

	var columns []string
	var args []interface{}
	for _, col := range f.entity.Columns() {
		v, present := values[col.Name()]
		if !present {
			continue
		}
		columns = append(columns, col.Name())
		args = append(args, v)
	}

	placeholders := make([]string, len(columns))
	var updates []string
	for i, name := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if name != pk.Name() {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", name, name))
		}
	}
	if len(updates) == 0 {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", pk.Name(), pk.Name()))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING %s",
		f.entity.SchemaName(),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		pk.Name(),
		strings.Join(updates, ", "),
		f.columnList())

	row := f.db.QueryRowContext(ctx, query, args...)
	stored, err := scanRow(row, f.entity.ColumnNames())
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", f.entity.Name(), ConvertStoreError(err))
	}

	inst.values = stored
	return nil
}

// resolveGeneratedDefaults fills absent columns from their generators,
// one generator call per column, in declaration order.
func resolveGeneratedDefaults(entity *metadata.Entity, values Record) {
	for _, col := range entity.Columns() {
		if _, present := values[col.Name()]; present {
			continue
		}
		if gen := col.DefaultGenerator(); gen != nil {
			values[col.Name()] = gen()
		}
	}
}
