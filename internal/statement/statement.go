// Package statement executes parameterized SQL against an open connection or
// transaction. It binds named @parameter maps to driver placeholders and
// exposes the four result shapes the engine needs: none, tabular, single row,
// and scalar.
package statement

import (
	"context"
	"database/sql"
	"errors"

	"github.com/omega-orm/omega/internal/dialect"
)

// ErrMissingParameter is returned when a query placeholder has no bound value.
var ErrMissingParameter = errors.New("missing statement parameter")

// Querier is satisfied by *sql.DB and *sql.Tx; building a Statement over a
// transaction associates it with that transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Statement is one parameterized SQL statement bound to a connection scope.
type Statement struct {
	db      Querier
	dialect dialect.Dialect
	query   string
	params  map[string]any
}

// New creates a statement over db, which may be a connection pool or an open
// transaction.
func New(db Querier, d dialect.Dialect, query string) *Statement {
	return &Statement{
		db:      db,
		dialect: d,
		query:   query,
		params:  make(map[string]any),
	}
}

// Bind binds a single named parameter. The name may carry the @ prefix.
func (s *Statement) Bind(name string, value any) *Statement {
	if len(name) > 0 && name[0] == '@' {
		name = name[1:]
	}
	s.params[name] = value
	return s
}

// BindMap binds every parameter of the map.
func (s *Statement) BindMap(params map[string]any) *Statement {
	for name, value := range params {
		s.Bind(name, value)
	}
	return s
}

// SQL returns the statement's parameterized query text.
func (s *Statement) SQL() string {
	return s.query
}

// Execute runs the statement and discards any result rows.
func (s *Statement) Execute(ctx context.Context) (sql.Result, error) {
	q, args, err := expand(s.query, s.dialect, s.params)
	if err != nil {
		return nil, err
	}
	return s.db.ExecContext(ctx, q, args...)
}

// Fetch runs the statement and returns the full tabular result.
func (s *Statement) Fetch(ctx context.Context) ([]Row, error) {
	q, args, err := expand(s.query, s.dialect, s.params)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

// FetchRow runs the statement and returns the first row, or nil when the
// result is empty.
func (s *Statement) FetchRow(ctx context.Context) (Row, error) {
	rows, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FetchScalar runs the statement and returns the first column of the first
// row, or nil when the result is empty.
func (s *Statement) FetchScalar(ctx context.Context) (any, error) {
	q, args, err := expand(s.query, s.dialect, s.params)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var value any
	if err := rows.Scan(&value); err != nil {
		return nil, err
	}
	return value, rows.Err()
}
