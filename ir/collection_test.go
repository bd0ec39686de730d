package ir

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type item struct {
	name  string
	alias string
	n     int
}

func itemKey(i *item) string { return i.name }

func TestCollectionGet(t *testing.T) {
	a, b := &item{name: "account", n: 1}, &item{name: "contact", n: 2}
	c, err := NewCollectionOf(itemKey, []*item{a, b}, WithUniqueKeys())
	if err != nil {
		t.Fatalf("NewCollectionOf() error: %v", err)
	}

	got, err := c.Get("contact")
	if err != nil {
		t.Fatalf("Get(contact) error: %v", err)
	}
	if got != b {
		t.Errorf("Get(contact) = %v; want %v", got, b)
	}
	if got := c.GetMaybe("nonexistent"); got != nil {
		t.Errorf("GetMaybe(nonexistent) = %v; want nil", got)
	}
	if !c.Has("account") || c.Has("nonexistent") {
		t.Errorf("Has() reports wrong membership")
	}

	_, err = c.Get("acount")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(acount) error = %v; want NotFoundError", err)
	}
	if diff := cmp.Diff([]string{"account"}, notFound.Suggestions); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectionOrderAndIteration(t *testing.T) {
	c := NewCollection(itemKey)
	for _, n := range []string{"zeta", "alpha", "mid"} {
		if err := c.add(&item{name: n}); err != nil {
			t.Fatalf("add(%s) error: %v", n, err)
		}
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, c.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	var seen []string
	for i, it := range c.All() {
		if c.At(i) != it {
			t.Errorf("At(%d) differs from iteration", i)
		}
		seen = append(seen, it.name)
		if len(seen) == 2 {
			break
		}
	}
	if diff := cmp.Diff([]string{"zeta", "alpha"}, seen); diff != "" {
		t.Errorf("All() with break mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectionDuplicates(t *testing.T) {
	first, second := &item{name: "add", n: 1}, &item{name: "add", n: 2}

	t.Run("non-unique keeps both", func(t *testing.T) {
		c, err := NewCollectionOf(itemKey, []*item{first, second})
		if err != nil {
			t.Fatalf("NewCollectionOf() error: %v", err)
		}
		got, err := c.Get("add")
		if err != nil || got != first {
			t.Errorf("Get(add) = %v, %v; want first item", got, err)
		}
		if diff := cmp.Diff([]int{1, 2}, []int{c.GetAll("add")[0].n, c.GetAll("add")[1].n}); diff != "" {
			t.Errorf("GetAll(add) order mismatch (-want +got):\n%s", diff)
		}
		if got := c.GetAll("missing"); len(got) != 0 {
			t.Errorf("GetAll(missing) = %v; want empty", got)
		}
	})

	t.Run("unique reports ambiguity", func(t *testing.T) {
		c, err := NewCollectionOf(itemKey, []*item{first, second}, WithUniqueKeys())
		if err != nil {
			t.Fatalf("NewCollectionOf() error: %v", err)
		}
		_, err = c.Get("add")
		var ambiguous *AmbiguousKeyError
		if !errors.As(err, &ambiguous) || ambiguous.Count != 2 {
			t.Fatalf("Get(add) error = %v; want AmbiguousKeyError with count 2", err)
		}
		if got := c.GetMaybe("add"); got != first {
			t.Errorf("GetMaybe(add) = %v; want first item", got)
		}
	})

	t.Run("throwing rejects insertion", func(t *testing.T) {
		_, err := NewCollectionOf(itemKey, []*item{first, second}, WithThrowOnDuplicate(), WithLabel("function"))
		if !errors.Is(err, ErrDuplicateKey) {
			t.Fatalf("NewCollectionOf() error = %v; want ErrDuplicateKey", err)
		}
		if got, want := err.Error(), `pgstructure: duplicate function "add"`; got != want {
			t.Errorf("error = %q; want %q", got, want)
		}
	})
}

func TestCollectionAliases(t *testing.T) {
	aliases := func(i *item) []string { return []string{i.alias} }
	c, err := NewCollectionOf(itemKey, []*item{
		{name: "int4", alias: "integer"},
		{name: "varchar", alias: "character varying"},
		{name: "text", alias: "text"},
	}, WithThrowOnDuplicate(), WithAliases(aliases))
	if err != nil {
		t.Fatalf("NewCollectionOf() error: %v", err)
	}

	byName, _ := c.Get("int4")
	byAlias, _ := c.Get("integer")
	if byName == nil || byName != byAlias {
		t.Errorf("Get(int4) and Get(integer) differ: %v, %v", byName, byAlias)
	}
	if _, err := c.Get("text"); err != nil {
		t.Errorf("alias equal to key must not make the key ambiguous: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d; want 3", c.Len())
	}
}

func TestCollectionFilter(t *testing.T) {
	c, _ := NewCollectionOf(itemKey, []*item{{name: "a", n: 1}, {name: "b", n: 2}, {name: "c", n: 3}}, WithUniqueKeys())
	odd := c.Filter(func(i *item) bool { return i.n%2 == 1 })
	if diff := cmp.Diff([]string{"a", "c"}, odd.Keys()); diff != "" {
		t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
	}
	if odd.Has("b") {
		t.Errorf("filtered collection still indexes b")
	}

	var nilCollection *Collection[*item]
	if nilCollection.Len() != 0 || nilCollection.Items() != nil {
		t.Errorf("nil collection must be empty")
	}
}
