package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// FindOne retrieves a single record matching all filter pairs. A zero
// match is reported through the boolean, never as an error.
func (f *Facade) FindOne(ctx context.Context, filter Filter) (Record, bool, error) {
	if err := f.validateColumns(filter, "filter"); err != nil {
		return nil, false, err
	}

	where, args := whereClause(filter, 1)
	query := fmt.Sprintf("SELECT %s FROM %s%s LIMIT 1", f.columnList(), f.entity.SchemaName(), where)

	row := f.db.QueryRowContext(ctx, query, args...)
	record, err := scanRow(row, f.entity.ColumnNames())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find %s: %w", f.entity.Name(), ConvertStoreError(err))
	}

	return record, true, nil
}

// Find retrieves every record matching the filter; an empty filter
// returns all rows. Table results come back in store order, view
// results in the order the view's query declares.
func (f *Facade) Find(ctx context.Context, filter Filter) ([]Record, error) {
	if err := f.validateColumns(filter, "filter"); err != nil {
		return nil, err
	}

	where, args := whereClause(filter, 1)
	query := fmt.Sprintf("SELECT %s FROM %s%s", f.columnList(), f.entity.SchemaName(), where)

	rows, err := f.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", f.entity.Name(), ConvertStoreError(err))
	}
	defer rows.Close()

	results, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s results: %w", f.entity.Name(), ConvertStoreError(err))
	}
	return results, nil
}

// Count returns how many records match the filter.
func (f *Facade) Count(ctx context.Context, filter Filter) (int64, error) {
	if err := f.validateColumns(filter, "filter"); err != nil {
		return 0, err
	}

	where, args := whereClause(filter, 1)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", f.entity.SchemaName(), where)

	var count int64
	if err := f.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", f.entity.Name(), ConvertStoreError(err))
	}
	return count, nil
}

// FindPaginated returns one 1-based page of filter matches along with
// the total match count. A page past the end yields empty data and the
// real total. The count and the slice are two separate store requests.
func (f *Facade) FindPaginated(ctx context.Context, filter Filter, page, pageSize int) (*Page, error) {
	if page < 1 {
		return nil, newValidationError(f.entity.Name(), "page", "must be at least 1")
	}
	if pageSize < 1 {
		return nil, newValidationError(f.entity.Name(), "page_size", "must be at least 1")
	}
	if err := f.validateColumns(filter, "filter"); err != nil {
		return nil, err
	}

	total, err := f.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	where, args := whereClause(filter, 1)
	query := fmt.Sprintf("SELECT %s FROM %s%s LIMIT %d OFFSET %d",
		f.columnList(), f.entity.SchemaName(), where, pageSize, (page-1)*pageSize)

	rows, err := f.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s page %d: %w", f.entity.Name(), page, ConvertStoreError(err))
	}
	defer rows.Close()

	data, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s page %d: %w", f.entity.Name(), page, ConvertStoreError(err))
	}

	return &Page{Data: data, Total: total}, nil
}
