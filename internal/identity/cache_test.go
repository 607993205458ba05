package identity

import (
	"reflect"
	"sync"
	"testing"
)

type account struct {
	ID int64
}

var accountType = reflect.TypeOf(account{})

func TestCache(t *testing.T) {
	t.Run("add and get", func(t *testing.T) {
		c := NewCache()
		a := &account{ID: 1}

		if got := c.Add(accountType, int64(1), a); got != a {
			t.Error("first add should return the added instance")
		}
		got, ok := c.Get(accountType, int64(1))
		if !ok || got != a {
			t.Error("get should return the cached instance")
		}
		if !c.Contains(accountType, int64(1)) {
			t.Error("contains should report the entry")
		}
	})

	t.Run("add is put-if-absent", func(t *testing.T) {
		c := NewCache()
		first := &account{ID: 1}
		second := &account{ID: 1}

		c.Add(accountType, int64(1), first)
		if got := c.Add(accountType, int64(1), second); got != first {
			t.Error("losing add should return the canonical instance")
		}
		if c.Len() != 1 {
			t.Errorf("expected 1 entry, got %d", c.Len())
		}
	})

	t.Run("integer identifiers normalize", func(t *testing.T) {
		c := NewCache()
		a := &account{ID: 7}

		c.Add(accountType, int32(7), a)
		if got, ok := c.Get(accountType, int64(7)); !ok || got != a {
			t.Error("int32 and int64 identifiers should address the same entry")
		}
		if got, ok := c.Get(accountType, 7); !ok || got != a {
			t.Error("plain int should address the same entry")
		}
		if got, ok := c.Get(accountType, uint16(7)); !ok || got != a {
			t.Error("unsigned kinds should address the same entry")
		}
	})

	t.Run("types do not collide", func(t *testing.T) {
		type other struct{ ID int64 }
		c := NewCache()

		c.Add(accountType, int64(1), &account{ID: 1})
		if _, ok := c.Get(reflect.TypeOf(other{}), int64(1)); ok {
			t.Error("entries must be keyed per type")
		}
	})

	t.Run("replace overwrites", func(t *testing.T) {
		c := NewCache()
		stale := &account{ID: 1}
		fresh := &account{ID: 1}

		c.Add(accountType, int64(1), stale)
		c.Replace(accountType, int64(1), fresh)
		if got, _ := c.Get(accountType, int64(1)); got != fresh {
			t.Error("replace should install the new instance")
		}
	})

	t.Run("remove drops the entry", func(t *testing.T) {
		c := NewCache()
		c.Add(accountType, int64(1), &account{ID: 1})
		c.Remove(accountType, int64(1))
		if c.Contains(accountType, int64(1)) {
			t.Error("entry should be gone")
		}
	})

	t.Run("concurrent adds converge", func(t *testing.T) {
		c := NewCache()

		results := make([]any, 32)
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = c.Add(accountType, int64(5), &account{ID: 5})
			}(i)
		}
		wg.Wait()

		for i := 1; i < len(results); i++ {
			if results[i] != results[0] {
				t.Fatal("concurrent adds returned different instances")
			}
		}
		if c.Len() != 1 {
			t.Errorf("expected 1 entry, got %d", c.Len())
		}
	})
}
