package omega

import (
	"context"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var widgetType = reflect.TypeOf(Widget{})

const (
	widgetByID    = "SELECT t.Id, t.Name FROM widgets t WHERE t.Id = ?"
	widgetByName  = "SELECT t.Id, t.Name FROM widgets t WHERE t.Name = ?"
	widgetCountBy = "SELECT COUNT(*) FROM widgets t WHERE t.Name = ?"
	widgetCount   = "SELECT COUNT(*) FROM widgets t"
)

func widgetRows(pairs ...any) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"Id", "Name"})
	for i := 0; i < len(pairs); i += 2 {
		rows.AddRow(pairs[i], pairs[i+1])
	}
	return rows
}

func TestFindByID(t *testing.T) {
	t.Run("hydrates a row", func(t *testing.T) {
		em, mock := newMockManager(t)
		mock.ExpectQuery(widgetByID).
			WithArgs(int64(7)).
			WillReturnRows(widgetRows(int64(7), "gizmo"))

		entity, err := em.FindByID(context.Background(), widgetType, int64(7))
		require.NoError(t, err)

		widget := entity.(*Widget)
		assert.Equal(t, int64(7), widget.ID)
		assert.Equal(t, "gizmo", widget.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second read is served from the identity cache", func(t *testing.T) {
		em, mock := newMockManager(t)
		mock.ExpectQuery(widgetByID).
			WithArgs(int64(7)).
			WillReturnRows(widgetRows(int64(7), "gizmo"))

		first, err := em.FindByID(context.Background(), widgetType, int64(7))
		require.NoError(t, err)
		second, err := em.FindByID(context.Background(), widgetType, int64(7))
		require.NoError(t, err)

		assert.Same(t, first.(*Widget), second.(*Widget))
		assert.NoError(t, mock.ExpectationsWereMet(), "the cached read must not query")
	})

	t.Run("integer widths address the same cache entry", func(t *testing.T) {
		em, mock := newMockManager(t)
		mock.ExpectQuery(widgetByID).
			WithArgs(int32(7)).
			WillReturnRows(widgetRows(int64(7), "gizmo"))

		first, err := em.FindByID(context.Background(), widgetType, int32(7))
		require.NoError(t, err)
		second, err := em.FindByID(context.Background(), widgetType, int64(7))
		require.NoError(t, err)

		assert.Same(t, first.(*Widget), second.(*Widget))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid identifiers short-circuit to nil", func(t *testing.T) {
		em, mock := newMockManager(t)

		for _, id := range []any{nil, 0, int64(-1), ""} {
			entity, err := em.FindByID(context.Background(), widgetType, id)
			require.NoError(t, err)
			assert.Nil(t, entity)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matching row yields nil", func(t *testing.T) {
		em, mock := newMockManager(t)
		mock.ExpectQuery(widgetByID).
			WithArgs(int64(404)).
			WillReturnRows(widgetRows())

		entity, err := em.FindByID(context.Background(), widgetType, int64(404))
		require.NoError(t, err)
		assert.Nil(t, entity)
	})
}

func TestFindBy(t *testing.T) {
	t.Run("filters AND in declaration order", func(t *testing.T) {
		em, mock := newMockManager(t)
		mock.ExpectQuery(widgetCountBy).
			WithArgs("gizmo").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
		mock.ExpectQuery(widgetByName).
			WithArgs("gizmo").
			WillReturnRows(widgetRows(int64(1), "gizmo", int64(2), "gizmo"))

		entities, err := em.FindBy(context.Background(), widgetType, Filters{{Column: "Name", Value: "gizmo"}})
		require.NoError(t, err)
		require.Len(t, entities, 2)
		assert.Equal(t, int64(1), entities[0].(*Widget).ID)
		assert.Equal(t, int64(2), entities[1].(*Widget).ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no match returns a nil slice", func(t *testing.T) {
		em, mock := newMockManager(t)
		mock.ExpectQuery(widgetCountBy).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectQuery(widgetByName).
			WithArgs("nope").
			WillReturnRows(widgetRows())

		entities, err := em.FindBy(context.Background(), widgetType, Filters{{Column: "Name", Value: "nope"}})
		require.NoError(t, err)
		assert.Nil(t, entities)
	})

	t.Run("listing events fire with counts", func(t *testing.T) {
		var began, ended bool
		events := Events{
			BeginListing: func(entityType reflect.Type, expected int64) {
				began = true
				assert.Equal(t, widgetType, entityType)
				assert.Equal(t, int64(1), expected)
			},
			EndListing: func(entityType reflect.Type, actual int64) {
				ended = true
				assert.Equal(t, int64(1), actual)
			},
		}

		em, mock := newMockManager(t, WithEvents(events))
		mock.ExpectQuery(widgetCountBy).
			WithArgs("gizmo").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
		mock.ExpectQuery(widgetByName).
			WithArgs("gizmo").
			WillReturnRows(widgetRows(int64(1), "gizmo"))

		_, err := em.FindBy(context.Background(), widgetType, Filters{{Column: "Name", Value: "gizmo"}})
		require.NoError(t, err)
		assert.True(t, began)
		assert.True(t, ended)
	})
}

func TestFindOneBy(t *testing.T) {
	t.Run("first match", func(t *testing.T) {
		em, mock := newMockManager(t)
		mock.ExpectQuery(widgetCountBy).
			WithArgs("gizmo").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
		mock.ExpectQuery(widgetByName).
			WithArgs("gizmo").
			WillReturnRows(widgetRows(int64(1), "gizmo", int64(2), "gizmo"))

		entity, err := em.FindOneBy(context.Background(), widgetType, Filters{{Column: "Name", Value: "gizmo"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), entity.(*Widget).ID)
	})

	t.Run("no match is nil", func(t *testing.T) {
		em, mock := newMockManager(t)
		mock.ExpectQuery(widgetCountBy).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectQuery(widgetByName).
			WithArgs("nope").
			WillReturnRows(widgetRows())

		entity, err := em.FindOneBy(context.Background(), widgetType, Filters{{Column: "Name", Value: "nope"}})
		require.NoError(t, err)
		assert.Nil(t, entity)
	})
}

func TestFindAll(t *testing.T) {
	em, mock := newMockManager(t)
	mock.ExpectQuery(widgetCount).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery("SELECT t.Id, t.Name FROM widgets t").
		WillReturnRows(widgetRows(int64(1), "a", int64(2), "b"))

	entities, err := em.FindAll(context.Background(), widgetType)
	require.NoError(t, err)
	assert.Len(t, entities, 2)
}

func TestCount(t *testing.T) {
	em, mock := newMockManager(t)
	mock.ExpectQuery(widgetCountBy).
		WithArgs("gizmo").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	n, err := em.Count(context.Background(), widgetType, Filters{{Column: "Name", Value: "gizmo"}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestGetResult(t *testing.T) {
	t.Run("raw rows", func(t *testing.T) {
		em, mock := newMockManager(t)
		mock.ExpectQuery("SELECT Name FROM widgets WHERE Id > ?").
			WithArgs(int64(0)).
			WillReturnRows(sqlmock.NewRows([]string{"Name"}).AddRow("gizmo"))

		rows, err := em.GetResult(context.Background(),
			"SELECT Name FROM widgets WHERE Id > @min",
			map[string]any{"min": int64(0)})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "gizmo", rows[0]["Name"])
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		em, _ := newMockManager(t)
		_, err := em.GetResult(context.Background(), "", nil)
		assert.Error(t, err)
	})
}

func TestGetSingleScalarResult(t *testing.T) {
	em, mock := newMockManager(t)
	mock.ExpectQuery("SELECT MAX(Id) FROM widgets").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(9)))

	value, err := em.GetSingleScalarResult(context.Background(), "SELECT MAX(Id) FROM widgets", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9), value)
}
