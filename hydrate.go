package omega

import (
	"context"
	"reflect"

	"go.uber.org/zap"

	"github.com/omega-orm/omega/internal/metadata"
	"github.com/omega-orm/omega/internal/query"
	"github.com/omega-orm/omega/internal/statement"
)

// hydrate materializes one entity instance from a result row, recursively
// resolving relationships and merging custom-column values. A nil row yields
// a nil entity: it models "no relationship target", not an error.
func (em *EntityManager) hydrate(ctx context.Context, row statement.Row, meta *metadata.ClassMetadata) (any, error) {
	if row == nil {
		return nil, nil
	}

	// A row is never re-materialized once its identity is cached; this is
	// what breaks cycles in relationship graphs.
	idValue := row[meta.IdentifierColumn]
	if idValue != nil {
		if cached, ok := em.cache.Get(meta.Type, idValue); ok {
			em.emitEntityLoaded(meta.Type, idValue)
			return cached, nil
		}
	}

	entity := meta.NewInstance()

	// Register the instance before resolving relationships: recursion back
	// into this row must find it in the cache, or cyclic graphs would never
	// terminate. Losing the put-if-absent race means another goroutine is
	// already materializing this row; its instance is the canonical one.
	if idValue != nil {
		if canonical := em.cache.Add(meta.Type, idValue, entity); canonical != entity {
			em.emitEntityLoaded(meta.Type, idValue)
			return canonical, nil
		}
	}

	for _, col := range meta.Columns {
		if col.IsCustomColumn {
			continue
		}

		var value any
		if col.ColumnName != "" {
			value = row[col.ColumnName]
		}

		if value == nil {
			if !col.IsRelationship {
				continue
			}
			// An absent foreign key means "no related row"; one-to-many is
			// resolved by a separate query and always processed.
			if col.RelationshipType == metadata.ManyToOne {
				continue
			}
		}

		switch {
		case col.IsRelationship && col.RelationshipType == metadata.ManyToOne:
			// The join key is the declared reference column on the target,
			// not its primary key.
			related, err := em.FindOneBy(ctx, col.TargetType, Filters{
				{Column: col.ReferenceColumn, Value: value},
			})
			if err != nil {
				em.discard(meta.Type, idValue)
				return nil, err
			}
			if related != nil {
				if err := col.SetValue(entity, related); err != nil {
					em.discard(meta.Type, idValue)
					return nil, err
				}
			}
		case col.IsRelationship && col.RelationshipType == metadata.OneToMany:
			related, err := em.FindBy(ctx, col.TargetType, Filters{
				{Column: col.ReferenceColumn, Value: idValue},
			})
			if err != nil {
				em.discard(meta.Type, idValue)
				return nil, err
			}
			if err := col.SetValue(entity, typedSlice(col.FieldType, related)); err != nil {
				em.discard(meta.Type, idValue)
				return nil, err
			}
		default:
			if err := col.SetValue(entity, value); err != nil {
				em.discard(meta.Type, idValue)
				return nil, err
			}
		}
	}

	if meta.HasCustomColumns() {
		if err := em.hydrateCustomColumns(ctx, entity, meta); err != nil {
			em.discard(meta.Type, idValue)
			return nil, err
		}
	}

	em.emitEntityLoaded(meta.Type, idValue)
	return entity, nil
}

// discard drops a half-built instance from the identity cache after a failed
// hydration.
func (em *EntityManager) discard(entityType reflect.Type, id any) {
	if id != nil {
		em.cache.Remove(entityType, id)
	}
}

// hydrateCustomColumns merges the entity's sparse side-table values into the
// instance. Unresolvable field ids and unconvertible or unassignable values
// are skipped field by field; a partially populated object beats a failed
// read.
func (em *EntityManager) hydrateCustomColumns(ctx context.Context, entity any, meta *metadata.ClassMetadata) error {
	id, err := meta.Identifier(entity)
	if err != nil {
		return err
	}

	q := query.Select(meta.CustomReference, metadata.CustomIDColumn, metadata.CustomValueColumn).
		From(meta.CustomTable).
		Where(query.NewEq(query.Alias+"."+meta.CustomReference, metadata.ParamIdentifier)).
		SQL()

	var rows []statement.Row
	err = em.withRetry(ctx, "HydrateCustomColumns", func(ctx context.Context) error {
		r, err := em.statementOn(em.db, q).
			Bind(metadata.ParamIdentifier, id).
			Fetch(ctx)
		if err != nil {
			return err
		}
		rows = r
		return nil
	})
	if err != nil {
		return &StatementError{SQL: q, Err: ConvertDBError(err)}
	}

	for _, row := range rows {
		value := row[metadata.CustomValueColumn]
		if value == nil {
			continue
		}

		fieldID, ok := asInt64(row[metadata.CustomIDColumn])
		if !ok {
			continue
		}
		col, err := meta.CustomColumn(int(fieldID))
		if err != nil {
			// Unknown field id in the side table; leave the field unset.
			continue
		}

		converted, err := col.Convert(value)
		if err != nil {
			em.logger.Debug("skipping unconvertible custom column value",
				zap.String("entity", meta.Type.Name()),
				zap.Int("customFieldId", col.CustomFieldID),
				zap.Error(err))
			continue
		}

		// Assignment failures are swallowed per field.
		_ = col.SetValue(entity, converted)
	}

	return nil
}

// typedSlice converts hydrated results into the field's concrete slice type.
func typedSlice(sliceType reflect.Type, entities []any) any {
	out := reflect.MakeSlice(sliceType, 0, len(entities))
	for _, e := range entities {
		out = reflect.Append(out, reflect.ValueOf(e))
	}
	return out.Interface()
}
