package metadata

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry resolves and memoizes class metadata per entity type. Resolution
// is deterministic and idempotent: the first call inspects the type field by
// field, every later call returns the same cached aggregate.
type Registry struct {
	mu    sync.RWMutex
	types map[reflect.Type]*ClassMetadata
}

// NewRegistry creates an empty metadata registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[reflect.Type]*ClassMetadata),
	}
}

// Resolve returns the class metadata for an entity struct type, building and
// caching it on first use. Pointer types are dereferenced.
func (r *Registry) Resolve(t reflect.Type) (*ClassMetadata, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrNotAStruct)
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	r.mu.RLock()
	meta, ok := r.types[t]
	r.mu.RUnlock()
	if ok {
		return meta, nil
	}

	meta, err := newClassMetadata(t)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have resolved the type in the meantime; keep the
	// first result so callers always see one reference-stable aggregate.
	if existing, ok := r.types[t]; ok {
		return existing, nil
	}
	r.types[t] = meta
	return meta, nil
}

// ResolveOf resolves metadata from an entity instance.
func (r *Registry) ResolveOf(entity any) (*ClassMetadata, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: nil entity", ErrNotAStruct)
	}
	return r.Resolve(reflect.TypeOf(entity))
}

// ParameterMap builds the named-parameter dictionary for an entity's plain
// columns, keyed by column name. The identifier column is excluded: inserts
// generate it and updates key on it separately. Many-to-one fields contribute
// the related entity's reference column value, or nil when unset.
func (r *Registry) ParameterMap(meta *ClassMetadata, entity any) (map[string]any, error) {
	params := make(map[string]any)
	for _, col := range meta.PlainColumns() {
		if col.IsIdentifier {
			continue
		}

		value, err := col.Value(entity)
		if err != nil {
			return nil, err
		}

		if col.IsRelationship && col.RelationshipType == ManyToOne {
			if value == nil {
				params[col.ColumnName] = nil
				continue
			}
			related := value
			targetMeta, err := r.Resolve(col.TargetType)
			if err != nil {
				return nil, err
			}
			refCol, err := targetMeta.Column(col.ReferenceColumn)
			if err != nil {
				return nil, err
			}
			// Value() unwrapped pointer fields; re-wrap for the accessor.
			ptr := reflect.New(col.TargetType)
			ptr.Elem().Set(reflect.ValueOf(related))
			refValue, err := refCol.Value(ptr.Interface())
			if err != nil {
				return nil, err
			}
			params[col.ColumnName] = refValue
			continue
		}

		params[col.ColumnName] = value
	}
	return params, nil
}
