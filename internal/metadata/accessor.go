package metadata

import (
	"fmt"
	"reflect"
)

// Value reads the struct field bound to this column. The field index is
// captured at resolve time, so no name lookups happen here.
func (c *ColumnMetadata) Value(entity any) (any, error) {
	v, err := structValue(entity)
	if err != nil {
		return nil, err
	}
	f := v.Field(c.fieldIndex)
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return nil, nil
		}
		return f.Elem().Interface(), nil
	}
	return f.Interface(), nil
}

// SetValue assigns value into the bound struct field, converting between
// compatible Go types. A nil value resets the field to its zero value.
func (c *ColumnMetadata) SetValue(entity any, value any) error {
	v, err := structValue(entity)
	if err != nil {
		return err
	}
	f := v.Field(c.fieldIndex)

	if value == nil {
		f.Set(reflect.Zero(f.Type()))
		return nil
	}

	val := reflect.ValueOf(value)
	target := f.Type()

	// Nullable fields may be declared as pointers.
	if target.Kind() == reflect.Ptr && val.Kind() != reflect.Ptr {
		elem := reflect.New(target.Elem())
		if err := assign(elem.Elem(), val); err != nil {
			return fmt.Errorf("column %s: %w", c.ColumnName, err)
		}
		f.Set(elem)
		return nil
	}

	if err := assign(f, val); err != nil {
		return fmt.Errorf("column %s: %w", c.ColumnName, err)
	}
	return nil
}

func assign(dst reflect.Value, src reflect.Value) error {
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %s to %s", src.Type(), dst.Type())
	}
	return nil
}

// structValue unwraps an entity instance to its addressable struct value.
func structValue(entity any) (reflect.Value, error) {
	if entity == nil {
		return reflect.Value{}, fmt.Errorf("nil entity")
	}
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("entity must be a non-nil pointer to a struct, got %T", entity)
	}
	return v.Elem(), nil
}
