// Package dialect abstracts the driver-specific corners of SQL generation:
// positional placeholder style and generated-identifier retrieval.
package dialect

import (
	"errors"
	"fmt"
)

// ErrUnknownDriver is returned when no dialect is registered for a driver name.
var ErrUnknownDriver = errors.New("unknown database driver")

// Dialect describes driver-specific SQL behavior.
type Dialect interface {
	// Name returns the dialect's canonical name.
	Name() string
	// Placeholder renders the positional placeholder for 1-based index n.
	Placeholder(n int) string
	// LastInsertIDQuery returns the statement resolving the most recently
	// generated numeric identifier on the current connection.
	LastInsertIDQuery() string
}

type postgres struct{}

func (postgres) Name() string              { return "postgres" }
func (postgres) Placeholder(n int) string  { return fmt.Sprintf("$%d", n) }
func (postgres) LastInsertIDQuery() string { return "SELECT lastval()" }

type sqlite struct{}

func (sqlite) Name() string              { return "sqlite" }
func (sqlite) Placeholder(n int) string  { return "?" }
func (sqlite) LastInsertIDQuery() string { return "SELECT last_insert_rowid()" }

// ForDriver resolves the dialect for a database/sql driver name.
func ForDriver(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx", "pq":
		return postgres{}, nil
	case "sqlite3", "sqlite":
		return sqlite{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
