package metadata

import (
	"reflect"
	"sync"
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Run("resolve dereferences pointers", func(t *testing.T) {
		r := NewRegistry()

		fromValue, err := r.Resolve(reflect.TypeOf(Book{}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fromPointer, err := r.Resolve(reflect.TypeOf(&Book{}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fromValue != fromPointer {
			t.Error("value and pointer types should resolve to one aggregate")
		}
	})

	t.Run("resolve is reference stable", func(t *testing.T) {
		r := NewRegistry()

		first, err := r.Resolve(reflect.TypeOf(Author{}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := r.Resolve(reflect.TypeOf(Author{}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first != second {
			t.Error("repeated resolution should return the cached aggregate")
		}
	})

	t.Run("concurrent resolution converges", func(t *testing.T) {
		r := NewRegistry()

		results := make([]*ClassMetadata, 16)
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				meta, err := r.Resolve(reflect.TypeOf(Author{}))
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				results[i] = meta
			}(i)
		}
		wg.Wait()

		for i := 1; i < len(results); i++ {
			if results[i] != results[0] {
				t.Fatal("concurrent resolutions returned different aggregates")
			}
		}
	})

	t.Run("resolve of nil", func(t *testing.T) {
		r := NewRegistry()
		if _, err := r.ResolveOf(nil); err == nil {
			t.Error("expected error for nil entity")
		}
	})
}

func TestParameterMap(t *testing.T) {
	r := NewRegistry()

	t.Run("excludes the identifier", func(t *testing.T) {
		meta, err := r.Resolve(reflect.TypeOf(Book{}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		params, err := r.ParameterMap(meta, &Book{ID: 9, Title: "Go in Anger"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := params["Id"]; ok {
			t.Error("identifier must not appear in the parameter map")
		}
		if params["Title"] != "Go in Anger" {
			t.Errorf("expected title, got %#v", params["Title"])
		}
	})

	t.Run("many2one contributes the reference value", func(t *testing.T) {
		meta, err := r.Resolve(reflect.TypeOf(Book{}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		author := &Author{ID: 4, Name: "K. Thompson"}
		params, err := r.ParameterMap(meta, &Book{Title: "B", Author: author})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if params["AuthorId"] != int64(4) {
			t.Errorf("expected AuthorId 4, got %#v", params["AuthorId"])
		}
	})

	t.Run("unset many2one binds NULL", func(t *testing.T) {
		meta, err := r.Resolve(reflect.TypeOf(Book{}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		params, err := r.ParameterMap(meta, &Book{Title: "B"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		value, ok := params["AuthorId"]
		if !ok {
			t.Fatal("AuthorId should be present")
		}
		if value != nil {
			t.Errorf("expected nil, got %#v", value)
		}
	})

	t.Run("excludes custom columns", func(t *testing.T) {
		meta, err := r.Resolve(reflect.TypeOf(Author{}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		params, err := r.ParameterMap(meta, &Author{Name: "A", Motto: "ship it"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := params[CustomValueColumn]; ok {
			t.Error("custom columns must not appear in the parameter map")
		}
		if len(params) != 2 {
			t.Errorf("expected Name and RowGuid only, got %v", params)
		}
	})
}
