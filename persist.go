package omega

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/omega-orm/omega/internal/metadata"
	"github.com/omega-orm/omega/internal/query"
)

// Persist inserts an entity as one transactional unit of work, resolving the
// generated identifier and writing it back. When the entity already has a
// valid identifier and a matching row exists, the call delegates to Update.
// The returned instance is the canonical one re-fetched through the read
// path; it is not guaranteed to be the caller's object.
func (em *EntityManager) Persist(ctx context.Context, entity any) (any, error) {
	start := time.Now()

	if entity == nil {
		return nil, ErrNilEntity
	}
	meta, err := em.metadata.ResolveOf(entity)
	if err != nil {
		return nil, err
	}

	id, err := meta.Identifier(entity)
	if err != nil {
		return nil, err
	}
	if validIdentifier(id) {
		exists, err := em.exists(ctx, meta, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return em.Update(ctx, entity)
		}
	}

	if meta.HasGuidColumn() {
		if err := em.populateGuid(meta, entity); err != nil {
			return nil, err
		}
	}

	insertSQL := query.Insert(meta).SQL()
	params, err := em.metadata.ParameterMap(meta, entity)
	if err != nil {
		return nil, err
	}

	var lastID int64
	err = em.withRetry(ctx, "Persist", func(ctx context.Context) error {
		tx, err := em.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := em.statementOn(tx, insertSQL).BindMap(params).Execute(ctx); err != nil {
			return err
		}

		insertedID, err := em.resolveInsertedID(ctx, tx, meta, entity)
		if err != nil {
			return err
		}

		if err := em.upsertCustomColumns(ctx, tx, meta, entity, insertedID); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
		lastID = insertedID
		return nil
	})
	if err != nil {
		em.emitOperationComplete("Persist", start, false)
		return nil, &StatementError{SQL: insertSQL, Err: ConvertDBError(err)}
	}

	if err := meta.SetIdentifier(entity, lastID); err != nil {
		return nil, err
	}

	// Re-enter the read path so the identity cache holds the canonical copy.
	canonical, err := em.FindByID(ctx, meta.Type, lastID)
	if err != nil {
		em.emitOperationComplete("Persist", start, false)
		return nil, err
	}

	em.emitOperationComplete("Persist", start, true)
	return canonical, nil
}

// Update rewrites every plain column of an entity keyed by its identifier,
// plus its custom columns, as one transactional unit of work. The entity
// must already carry a valid identifier.
func (em *EntityManager) Update(ctx context.Context, entity any) (any, error) {
	start := time.Now()

	if entity == nil {
		return nil, ErrNilEntity
	}
	meta, err := em.metadata.ResolveOf(entity)
	if err != nil {
		return nil, err
	}

	id, err := meta.Identifier(entity)
	if err != nil {
		return nil, err
	}
	if !validIdentifier(id) {
		return nil, ErrMissingIdentifier
	}

	updateSQL := query.Update(meta).
		Where(query.NewEq(meta.IdentifierColumn, metadata.ParamIdentifier)).
		SQL()
	params, err := em.metadata.ParameterMap(meta, entity)
	if err != nil {
		return nil, err
	}

	err = em.withRetry(ctx, "Update", func(ctx context.Context) error {
		tx, err := em.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := em.statementOn(tx, updateSQL).
			BindMap(params).
			Bind(metadata.ParamIdentifier, id).
			Execute(ctx); err != nil {
			return err
		}

		if err := em.upsertCustomColumns(ctx, tx, meta, entity, id); err != nil {
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		em.emitOperationComplete("Update", start, false)
		return nil, &StatementError{SQL: updateSQL, Err: ConvertDBError(err)}
	}

	// Evict any stale copy so the cache never serves a pre-update instance.
	em.cache.Replace(meta.Type, id, entity)

	em.emitOperationComplete("Update", start, true)
	return entity, nil
}

// Delete is not supported by the engine.
func (em *EntityManager) Delete(ctx context.Context, entity any) error {
	return ErrNotImplemented
}

// populateGuid fills an empty row GUID field before insert.
func (em *EntityManager) populateGuid(meta *metadata.ClassMetadata, entity any) error {
	guidCol := meta.GuidMeta()
	value, err := guidCol.Value(entity)
	if err != nil {
		return err
	}
	switch v := value.(type) {
	case uuid.UUID:
		if v == uuid.Nil {
			return guidCol.SetValue(entity, uuid.New())
		}
	case string:
		if v == "" {
			return guidCol.SetValue(entity, uuid.New().String())
		}
	case nil:
		return guidCol.SetValue(entity, uuid.New().String())
	}
	return nil
}

// resolveInsertedID reads back the identifier generated for the row just
// inserted: through the GUID column for GUID-keyed entities, through the
// database's last-identity mechanism otherwise. Runs inside the insert's
// transaction.
func (em *EntityManager) resolveInsertedID(ctx context.Context, tx *sql.Tx, meta *metadata.ClassMetadata, entity any) (int64, error) {
	var scalar any
	if meta.HasGuidColumn() {
		guid, err := meta.GuidMeta().Value(entity)
		if err != nil {
			return 0, err
		}
		q := query.Select(query.Alias+"."+meta.IdentifierColumn).
			FromEntity(meta).
			Where(query.NewEq(query.Alias+"."+meta.GuidColumn, "guid")).
			SQL()
		scalar, err = em.statementOn(tx, q).Bind("guid", guid).FetchScalar(ctx)
		if err != nil {
			return 0, err
		}
	} else {
		var err error
		scalar, err = em.statementOn(tx, em.dialect.LastInsertIDQuery()).FetchScalar(ctx)
		if err != nil {
			return 0, err
		}
	}

	id, ok := asInt64(scalar)
	if !ok {
		return 0, fmt.Errorf("could not resolve generated identifier for %s", meta.Type.Name())
	}
	return id, nil
}

// upsertCustomColumns writes every custom column inside the surrounding
// transaction: update first, insert only when no row was touched.
func (em *EntityManager) upsertCustomColumns(ctx context.Context, tx *sql.Tx, meta *metadata.ClassMetadata, entity any, id any) error {
	for _, col := range meta.CustomColumns() {
		params, err := col.UpsertParameters(entity, id)
		if err != nil {
			return err
		}

		updateSQL, insertSQL := col.UpsertSQL()
		result, err := em.statementOn(tx, updateSQL).BindMap(params).Execute(ctx)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			if _, err := em.statementOn(tx, insertSQL).BindMap(params).Execute(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}
