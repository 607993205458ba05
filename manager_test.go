package omega

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Widget is the minimal entity used by the statement-level tests.
type Widget struct {
	ID   int64  `orm:"column=Id,type=int64,identity"`
	Name string `orm:"column=Name,type=string"`
}

// newMockManager builds an EntityManager over a sqlmock connection with exact
// query matching. The sqlite dialect keeps expected SQL free of positional
// numbering.
func newMockManager(t *testing.T, opts ...Option) (*EntityManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	em, err := New(db, "sqlite3", opts...)
	require.NoError(t, err)
	return em, mock
}

func TestNew(t *testing.T) {
	t.Run("nil database handle", func(t *testing.T) {
		_, err := New(nil, "sqlite3")
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		_, err = New(db, "oracle")
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		em, _ := newMockManager(t)
		assert.Equal(t, DefaultMaxRetries, em.MaxRetries())
		assert.NotNil(t, em.DB())
	})

	t.Run("options apply", func(t *testing.T) {
		em, _ := newMockManager(t, WithMaxRetries(7))
		assert.Equal(t, 7, em.MaxRetries())
	})
}

func TestValidIdentifier(t *testing.T) {
	tests := []struct {
		name string
		id   any
		want bool
	}{
		{"nil", nil, false},
		{"zero int", 0, false},
		{"negative int", -3, false},
		{"positive int", 1, true},
		{"zero int64", int64(0), false},
		{"positive int64", int64(9), true},
		{"zero uint", uint(0), false},
		{"positive uint", uint(2), true},
		{"empty string", "", false},
		{"guid string", "7cfa4b48-2f0e-4a6f-9b16-1bfc0d5b63ce", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validIdentifier(tt.id))
		})
	}
}

func TestAsInt64(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
		ok   bool
	}{
		{"int64", int64(5), 5, true},
		{"int32", int32(5), 5, true},
		{"int", 5, 5, true},
		{"uint64", uint64(5), 5, true},
		{"bytes", []byte("12"), 12, true},
		{"string", "12", 12, true},
		{"garbage string", "twelve", 0, false},
		{"float", 1.5, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := asInt64(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
