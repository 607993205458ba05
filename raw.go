package omega

import (
	"context"
	"fmt"

	"github.com/omega-orm/omega/internal/statement"
)

// GetResult executes a raw parameterized query and returns the full tabular
// result, sharing the engine's retry policy. The result is nil when the
// query produced no rows.
func (em *EntityManager) GetResult(ctx context.Context, q string, params map[string]any) ([]statement.Row, error) {
	if q == "" {
		return nil, fmt.Errorf("empty query")
	}

	var rows []statement.Row
	err := em.withRetry(ctx, "GetResult", func(ctx context.Context) error {
		r, err := em.statementOn(em.db, q).BindMap(params).Fetch(ctx)
		if err != nil {
			return err
		}
		rows = r
		return nil
	})
	if err != nil {
		return nil, &StatementError{SQL: q, Err: ConvertDBError(err)}
	}
	return rows, nil
}

// GetSingleResult executes a raw parameterized query and returns the first
// row, or nil when the result is empty.
func (em *EntityManager) GetSingleResult(ctx context.Context, q string, params map[string]any) (statement.Row, error) {
	if q == "" {
		return nil, fmt.Errorf("empty query")
	}

	var row statement.Row
	err := em.withRetry(ctx, "GetSingleResult", func(ctx context.Context) error {
		r, err := em.statementOn(em.db, q).BindMap(params).FetchRow(ctx)
		if err != nil {
			return err
		}
		row = r
		return nil
	})
	if err != nil {
		return nil, &StatementError{SQL: q, Err: ConvertDBError(err)}
	}
	return row, nil
}

// GetSingleScalarResult executes a raw parameterized query and returns the
// first column of the first row, or nil when the result is empty.
func (em *EntityManager) GetSingleScalarResult(ctx context.Context, q string, params map[string]any) (any, error) {
	if q == "" {
		return nil, fmt.Errorf("empty query")
	}

	var value any
	err := em.withRetry(ctx, "GetSingleScalarResult", func(ctx context.Context) error {
		v, err := em.statementOn(em.db, q).BindMap(params).FetchScalar(ctx)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		return nil, &StatementError{SQL: q, Err: ConvertDBError(err)}
	}
	return value, nil
}
