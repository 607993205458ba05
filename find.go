package omega

import (
	"context"
	"reflect"
	"time"

	"github.com/omega-orm/omega/internal/metadata"
	"github.com/omega-orm/omega/internal/query"
	"github.com/omega-orm/omega/internal/statement"
)

// Filter is a single equality condition on a plain column.
type Filter struct {
	Column string
	Value  any
}

// Filters is an ordered conjunction of equality conditions; order is
// preserved in the generated WHERE clause.
type Filters []Filter

// FindByID retrieves the entity with the given identifier, serving it from
// the identity cache when possible. A nil, zero, or negative identifier is
// treated as "not found" and returns nil without querying.
func (em *EntityManager) FindByID(ctx context.Context, entityType reflect.Type, id any) (any, error) {
	start := time.Now()

	if !validIdentifier(id) {
		return nil, nil
	}

	meta, err := em.metadata.Resolve(entityType)
	if err != nil {
		return nil, err
	}

	if cached, ok := em.cache.Get(meta.Type, id); ok {
		em.emitEntityLoaded(meta.Type, id)
		return cached, nil
	}

	q := query.SelectEntity(meta).
		Where(query.NewEq(query.Alias+"."+meta.IdentifierColumn, metadata.ParamIdentifier)).
		SQL()

	var row statement.Row
	err = em.withRetry(ctx, "FindByID", func(ctx context.Context) error {
		r, err := em.statementOn(em.db, q).
			Bind(metadata.ParamIdentifier, id).
			FetchRow(ctx)
		if err != nil {
			return err
		}
		row = r
		return nil
	})
	if err != nil {
		em.emitOperationComplete("FindByID", start, false)
		return nil, &StatementError{SQL: q, Err: ConvertDBError(err)}
	}

	entity, err := em.hydrate(ctx, row, meta)
	if err != nil {
		em.emitOperationComplete("FindByID", start, false)
		return nil, err
	}

	em.emitOperationComplete("FindByID", start, true)
	return entity, nil
}

// FindBy retrieves every entity matching the filters, ANDed together in the
// given order. A query that runs but matches no rows returns a nil slice,
// distinct from a non-nil empty one.
func (em *EntityManager) FindBy(ctx context.Context, entityType reflect.Type, filters Filters) ([]any, error) {
	start := time.Now()

	meta, err := em.metadata.Resolve(entityType)
	if err != nil {
		return nil, err
	}

	expected, err := em.fastCount(ctx, meta.TableName, filters)
	if err != nil {
		em.emitOperationComplete("FindBy", start, false)
		return nil, err
	}

	b := query.SelectEntity(meta)
	for i, f := range filters {
		eq := query.NewEq(query.Alias+"."+f.Column, f.Column)
		if i == 0 {
			b.Where(eq)
		} else {
			b.AndWhere(eq)
		}
	}
	q := b.SQL()

	var rows []statement.Row
	err = em.withRetry(ctx, "FindBy", func(ctx context.Context) error {
		r, err := em.statementOn(em.db, q).BindMap(filterParams(filters)).Fetch(ctx)
		if err != nil {
			return err
		}
		rows = r
		return nil
	})
	if err != nil {
		em.emitOperationComplete("FindBy", start, false)
		return nil, &StatementError{SQL: q, Err: ConvertDBError(err)}
	}

	em.emitBeginListing(meta.Type, expected)

	if len(rows) == 0 {
		em.emitEndListing(meta.Type, 0)
		em.emitOperationComplete("FindBy", start, true)
		return nil, nil
	}

	entities := make([]any, 0, len(rows))
	for _, row := range rows {
		entity, err := em.hydrate(ctx, row, meta)
		if err != nil {
			em.emitOperationComplete("FindBy", start, false)
			return nil, err
		}
		entities = append(entities, entity)
	}

	em.emitEndListing(meta.Type, int64(len(entities)))
	em.emitOperationComplete("FindBy", start, true)
	return entities, nil
}

// FindOneBy retrieves the first entity matching the filters, or nil.
func (em *EntityManager) FindOneBy(ctx context.Context, entityType reflect.Type, filters Filters) (any, error) {
	entities, err := em.FindBy(ctx, entityType, filters)
	if err != nil || len(entities) == 0 {
		return nil, err
	}
	return entities[0], nil
}

// FindAll retrieves every entity of the type.
func (em *EntityManager) FindAll(ctx context.Context, entityType reflect.Type) ([]any, error) {
	return em.FindBy(ctx, entityType, nil)
}

// Count returns the number of rows matching the filters.
func (em *EntityManager) Count(ctx context.Context, entityType reflect.Type, filters Filters) (int64, error) {
	meta, err := em.metadata.Resolve(entityType)
	if err != nil {
		return 0, err
	}
	return em.fastCount(ctx, meta.TableName, filters)
}

// fastCount is the cheap existence and enumeration probe: COUNT(*) with the
// filters ANDed in order, sharing the uniform retry policy.
func (em *EntityManager) fastCount(ctx context.Context, table string, filters Filters) (int64, error) {
	b := query.Count(table)
	for i, f := range filters {
		eq := query.NewEq(query.Alias+"."+f.Column, f.Column)
		if i == 0 {
			b.Where(eq)
		} else {
			b.AndWhere(eq)
		}
	}
	q := b.SQL()

	var count int64
	err := em.withRetry(ctx, "FastCount", func(ctx context.Context) error {
		value, err := em.statementOn(em.db, q).BindMap(filterParams(filters)).FetchScalar(ctx)
		if err != nil {
			return err
		}
		n, ok := asInt64(value)
		if !ok {
			n = 0
		}
		count = n
		return nil
	})
	if err != nil {
		return 0, &StatementError{SQL: q, Err: ConvertDBError(err)}
	}
	return count, nil
}

// exists probes whether a row with the identifier is already present.
func (em *EntityManager) exists(ctx context.Context, meta *metadata.ClassMetadata, id any) (bool, error) {
	count, err := em.fastCount(ctx, meta.TableName, Filters{{Column: meta.IdentifierColumn, Value: id}})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func filterParams(filters Filters) map[string]any {
	params := make(map[string]any, len(filters))
	for _, f := range filters {
		params[f.Column] = f.Value
	}
	return params
}
