package model

import (
	"context"
	"fmt"
	"strings"
)

// Update applies a partial change set to every record matching the
// filter and returns the affected row count. Zero affected rows is a
// normal outcome, not an error.
func (f *Facade) Update(ctx context.Context, filter Filter, changes Record) (int64, error) {
	if f.entity.IsView() {
		return 0, fmt.Errorf("%w: cannot update view %s", ErrUnsupportedOperation, f.entity.Name())
	}
	if len(changes) == 0 {
		return 0, newValidationError(f.entity.Name(), "changes", "no columns to update")
	}
	if err := f.validateColumns(changes, "changes"); err != nil {
		return 0, err
	}
	if err := f.validateColumns(filter, "filter"); err != nil {
		return 0, err
	}

	var sets []string
	var args []interface{}
	for _, col := range f.entity.Columns() {
		v, present := changes[col.Name()]
		if !present {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col.Name(), len(args)+1))
		args = append(args, v)
	}

	where, whereArgs := whereClause(filter, len(args)+1)
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s%s", f.entity.SchemaName(), strings.Join(sets, ", "), where)

	result, err := f.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", f.entity.Name(), ConvertStoreError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows for %s: %w", f.entity.Name(), err)
	}
	return affected, nil
}

// Delete removes every record matching the filter and returns the
// affected row count. An empty filter removes all rows.
func (f *Facade) Delete(ctx context.Context, filter Filter) (int64, error) {
	if f.entity.IsView() {
		return 0, fmt.Errorf("%w: cannot delete from view %s", ErrUnsupportedOperation, f.entity.Name())
	}
	if err := f.validateColumns(filter, "filter"); err != nil {
		return 0, err
	}

	where, args := whereClause(filter, 1)
	query := fmt.Sprintf("DELETE FROM %s%s", f.entity.SchemaName(), where)

	result, err := f.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", f.entity.Name(), ConvertStoreError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows for %s: %w", f.entity.Name(), err)
	}
	return affected, nil
}

// DeleteInstance removes a persisted instance's row by primary key and
// moves the instance to its terminal deleted state. The transition
// holds even when the row was already gone; deleted is about the end
// state, not about who removed the row.
func (f *Facade) DeleteInstance(ctx context.Context, inst *Instance) error {
	if inst == nil {
		return fmt.Errorf("cannot delete nil instance")
	}
	if inst.entity != f.entity {
		return fmt.Errorf("instance belongs to %s, not %s", inst.entity.Name(), f.entity.Name())
	}
	if f.entity.IsView() {
		return fmt.Errorf("%w: cannot delete from view %s", ErrUnsupportedOperation, f.entity.Name())
	}

	switch inst.state {
	case StateDeleted:
		return fmt.Errorf("%w: %s", ErrDeletedInstance, f.entity.Name())
	case StateStaged:
		return fmt.Errorf("%w: save %s before deleting it", ErrNotPersisted, f.entity.Name())
	}

	pk, ok := f.entity.PrimaryKey()
	if !ok {
		return fmt.Errorf("entity %s has no primary key", f.entity.Name())
	}
	pkVal, present := inst.values[pk.Name()]
	if !present {
		return fmt.Errorf("cannot delete %s: primary key %s has no value", f.entity.Name(), pk.Name())
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", f.entity.SchemaName(), pk.Name())
	if _, err := f.db.ExecContext(ctx, query, pkVal); err != nil {
		return fmt.Errorf("failed to delete %s: %w", f.entity.Name(), ConvertStoreError(err))
	}

	inst.state = StateDeleted
	return nil
}
