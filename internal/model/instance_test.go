package model

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func persistedCategory(t *testing.T, facade *Facade, mock sqlmock.Sqlmock, id int64, name string) *Instance {
	t.Helper()

	inst, err := facade.Create(Record{"name": name})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories (name) VALUES ($1) RETURNING id, name")).
		WithArgs(name).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(id, name))
	require.NoError(t, facade.Save(context.Background(), inst))
	return inst
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "staged", StateStaged.String())
	assert.Equal(t, "persisted", StatePersisted.String())
	assert.Equal(t, "deleted", StateDeleted.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestInstanceSet(t *testing.T) {
	facade, _ := newMockFacade(t, categoryEntity())

	inst, err := facade.Create(Record{"name": "Games"})
	require.NoError(t, err)

	require.NoError(t, inst.Set("name", "Board Games"))

	err = inst.Set("label", "x")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	name, _ := inst.Get("name")
	assert.Equal(t, "Board Games", name)
}

func TestInstanceValuesIsCopy(t *testing.T) {
	facade, _ := newMockFacade(t, categoryEntity())

	inst, err := facade.Create(Record{"name": "Games"})
	require.NoError(t, err)

	values := inst.Values()
	values["name"] = "Tampered"

	name, _ := inst.Get("name")
	assert.Equal(t, "Games", name)
}

func TestDeleteInstance(t *testing.T) {
	t.Run("persisted instance reaches the terminal state", func(t *testing.T) {
		facade, mock := newMockFacade(t, categoryEntity())
		inst := persistedCategory(t, facade, mock, 5, "Music")

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, facade.DeleteInstance(context.Background(), inst))
		assert.Equal(t, StateDeleted, inst.State())
	})

	t.Run("row already gone still ends deleted", func(t *testing.T) {
		facade, mock := newMockFacade(t, categoryEntity())
		inst := persistedCategory(t, facade, mock, 6, "Film")

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
			WithArgs(int64(6)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, facade.DeleteInstance(context.Background(), inst))
		assert.Equal(t, StateDeleted, inst.State())
	})

	t.Run("staged instance rejected", func(t *testing.T) {
		facade, _ := newMockFacade(t, categoryEntity())

		inst, err := facade.Create(Record{"name": "Games"})
		require.NoError(t, err)

		err = facade.DeleteInstance(context.Background(), inst)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotPersisted))
		assert.Equal(t, StateStaged, inst.State())
	})

	t.Run("deleted instance is terminal", func(t *testing.T) {
		facade, mock := newMockFacade(t, categoryEntity())
		inst := persistedCategory(t, facade, mock, 7, "Art")

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, facade.DeleteInstance(context.Background(), inst))

		err := facade.DeleteInstance(context.Background(), inst)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDeletedInstance))

		err = facade.Save(context.Background(), inst)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDeletedInstance))

		err = inst.Set("name", "Fine Art")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDeletedInstance))
	})

	t.Run("store failure keeps the instance persisted", func(t *testing.T) {
		facade, mock := newMockFacade(t, categoryEntity())
		inst := persistedCategory(t, facade, mock, 8, "Maps")

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
			WithArgs(int64(8)).
			WillReturnError(errors.New("connection reset"))

		err := facade.DeleteInstance(context.Background(), inst)
		require.Error(t, err)
		assert.Equal(t, StatePersisted, inst.State())
	})
}
