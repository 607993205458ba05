package omega

import (
	"context"
	"reflect"
)

// typeOf returns the entity struct type for T.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Find retrieves the entity of type T with the given identifier, or nil.
func Find[T any](ctx context.Context, em *EntityManager, id any) (*T, error) {
	entity, err := em.FindByID(ctx, typeOf[T](), id)
	if err != nil || entity == nil {
		return nil, err
	}
	return entity.(*T), nil
}

// FindBy retrieves every entity of type T matching the filters. The nil
// result means the query ran and matched no rows.
func FindBy[T any](ctx context.Context, em *EntityManager, filters Filters) ([]*T, error) {
	entities, err := em.FindBy(ctx, typeOf[T](), filters)
	if err != nil || entities == nil {
		return nil, err
	}
	out := make([]*T, len(entities))
	for i, e := range entities {
		out[i] = e.(*T)
	}
	return out, nil
}

// FindOneBy retrieves the first entity of type T matching the filters, or nil.
func FindOneBy[T any](ctx context.Context, em *EntityManager, filters Filters) (*T, error) {
	entity, err := em.FindOneBy(ctx, typeOf[T](), filters)
	if err != nil || entity == nil {
		return nil, err
	}
	return entity.(*T), nil
}

// FindAll retrieves every entity of type T.
func FindAll[T any](ctx context.Context, em *EntityManager) ([]*T, error) {
	return FindBy[T](ctx, em, nil)
}

// Persist inserts an entity of type T and returns the canonical re-fetched
// instance.
func Persist[T any](ctx context.Context, em *EntityManager, entity *T) (*T, error) {
	result, err := em.Persist(ctx, entity)
	if err != nil || result == nil {
		return nil, err
	}
	return result.(*T), nil
}

// Update rewrites an entity of type T and returns it.
func Update[T any](ctx context.Context, em *EntityManager, entity *T) (*T, error) {
	result, err := em.Update(ctx, entity)
	if err != nil || result == nil {
		return nil, err
	}
	return result.(*T), nil
}
