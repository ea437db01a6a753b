package model

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConvertStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "unique violation",
			err:  &pgconn.PgError{Code: "23505", Detail: "Key (name)=(Books) already exists."},
			want: ErrUniqueViolation,
		},
		{
			name: "foreign key violation",
			err:  &pgconn.PgError{Code: "23503", Detail: "Key (category_id)=(9) is not present."},
			want: ErrForeignKeyViolation,
		},
		{
			name: "not null violation",
			err:  &pgconn.PgError{Code: "23502", ColumnName: "name"},
			want: ErrNotNullViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			converted := ConvertStoreError(tt.err)
			assert.True(t, errors.Is(converted, tt.want))
		})
	}

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, ConvertStoreError(nil))
	})

	t.Run("unrelated errors pass through", func(t *testing.T) {
		plain := errors.New("connection refused")
		assert.Equal(t, plain, ConvertStoreError(plain))
	})
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsUniqueViolation(ConvertStoreError(&pgconn.PgError{Code: "23505"})))
	assert.True(t, IsForeignKeyViolation(ConvertStoreError(&pgconn.PgError{Code: "23503"})))
	assert.True(t, IsUnsupported(ErrUnsupportedOperation))
	assert.True(t, IsValidation(newValidationError("Category", "label", "unknown column")))
	assert.False(t, IsValidation(errors.New("plain")))
}

func TestValidationErrorMessages(t *testing.T) {
	one := newValidationError("Category", "label", "unknown column")
	assert.Contains(t, one.Error(), "label")
	assert.Contains(t, one.Error(), "Category")

	many := &ValidationError{
		Entity: "Product",
		Errors: []FieldError{
			{Field: "color", Message: "unknown column"},
			{Field: "weight", Message: "unknown column"},
		},
	}
	assert.Contains(t, many.Error(), "2 errors")
}
