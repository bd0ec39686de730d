package ir

import (
	"iter"

	"github.com/sahilm/fuzzy"
)

// Collection is an ordered sequence that doubles as a string-keyed dictionary.
// Every named set of the graph (schemas, entities, columns, constraints,
// indexes, relations, functions) is a Collection, so consumers iterate and
// look up the same way everywhere. Iteration order is insertion order.
//
// Collections returned by the graph are read-only.
type Collection[T any] struct {
	items    []T
	key      func(T) string
	aliases  func(T) []string
	unique   bool
	throwing bool
	name     string
	index    map[string][]int
}

// CollectionOption configures a Collection at construction.
type CollectionOption func(*collectionConfig)

type collectionConfig struct {
	unique   bool
	throwing bool
	name     string
	aliases  any
}

// WithUniqueKeys declares keys unique. Get fails with AmbiguousKeyError when
// the declaration is violated.
func WithUniqueKeys() CollectionOption {
	return func(c *collectionConfig) { c.unique = true }
}

// WithThrowOnDuplicate rejects an insertion whose key is already present.
// It implies WithUniqueKeys.
func WithThrowOnDuplicate() CollectionOption {
	return func(c *collectionConfig) {
		c.unique = true
		c.throwing = true
	}
}

// WithLabel names the collection in duplicate-key errors ("column", "schema", ...).
func WithLabel(name string) CollectionOption {
	return func(c *collectionConfig) { c.name = name }
}

// WithAliases makes every item reachable under additional keys.
func WithAliases[T any](fn func(T) []string) CollectionOption {
	return func(c *collectionConfig) { c.aliases = fn }
}

// NewCollection returns an empty collection keyed by key.
func NewCollection[T any](key func(T) string, opts ...CollectionOption) *Collection[T] {
	var cfg collectionConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Collection[T]{
		key:      key,
		unique:   cfg.unique,
		throwing: cfg.throwing,
		name:     cfg.name,
		index:    make(map[string][]int),
	}
	if fn, ok := cfg.aliases.(func(T) []string); ok {
		c.aliases = fn
	}
	return c
}

// NewCollectionOf builds a collection from items, failing on the first
// rejected insertion.
func NewCollectionOf[T any](key func(T) string, items []T, opts ...CollectionOption) (*Collection[T], error) {
	c := NewCollection(key, opts...)
	for _, item := range items {
		if err := c.add(item); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collection[T]) keysOf(item T) []string {
	keys := []string{c.key(item)}
	if c.aliases == nil {
		return keys
	}
	for _, alias := range c.aliases(item) {
		if alias != "" && alias != keys[0] {
			keys = append(keys, alias)
		}
	}
	return keys
}

func (c *Collection[T]) add(item T) error {
	keys := c.keysOf(item)
	// Aliases may overlap; only the primary key is enforced.
	if c.throwing && len(c.index[keys[0]]) > 0 {
		return &DuplicateKeyError{Index: c.name, Key: keys[0]}
	}
	pos := len(c.items)
	c.items = append(c.items, item)
	for _, k := range keys {
		c.index[k] = append(c.index[k], pos)
	}
	return nil
}

// Get returns the item stored under key.
func (c *Collection[T]) Get(key string) (T, error) {
	var zero T
	positions := c.index[key]
	switch {
	case len(positions) == 0:
		return zero, &NotFoundError{Key: key, Suggestions: c.suggest(key)}
	case len(positions) > 1 && c.unique:
		return zero, &AmbiguousKeyError{Key: key, Count: len(positions)}
	}
	return c.items[positions[0]], nil
}

// GetMaybe returns the item stored under key, or the zero value (nil for the
// pointer types the graph uses) when there is none. It never fails; for an
// ambiguous unique key the first inserted item is returned.
func (c *Collection[T]) GetMaybe(key string) T {
	var zero T
	positions := c.index[key]
	if len(positions) == 0 {
		return zero
	}
	return c.items[positions[0]]
}

// GetAll returns every item sharing key in insertion order.
func (c *Collection[T]) GetAll(key string) []T {
	positions := c.index[key]
	out := make([]T, 0, len(positions))
	for _, p := range positions {
		out = append(out, c.items[p])
	}
	return out
}

// Has reports whether any item is stored under key.
func (c *Collection[T]) Has(key string) bool {
	return len(c.index[key]) > 0
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// At returns the i-th item in insertion order.
func (c *Collection[T]) At(i int) T {
	return c.items[i]
}

// Items returns a copy of the items in insertion order.
func (c *Collection[T]) Items() []T {
	if c == nil {
		return nil
	}
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// All iterates over position and item in insertion order.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if c == nil {
			return
		}
		for i, item := range c.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Keys returns the primary key of every item in insertion order.
func (c *Collection[T]) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.items))
	for i, item := range c.items {
		keys[i] = c.key(item)
	}
	return keys
}

// Filter returns a new collection with the items matching fn, keeping
// this collection's key and uniqueness rules.
func (c *Collection[T]) Filter(fn func(T) bool) *Collection[T] {
	out := &Collection[T]{
		key:     c.key,
		aliases: c.aliases,
		unique:  c.unique,
		name:    c.name,
		index:   make(map[string][]int),
	}
	for _, item := range c.items {
		if fn(item) {
			_ = out.add(item)
		}
	}
	return out
}

func (c *Collection[T]) suggest(key string) []string {
	if key == "" || len(c.items) == 0 {
		return nil
	}
	matches := fuzzy.Find(key, c.Keys())
	var out []string
	for _, m := range matches {
		out = append(out, m.Str)
		if len(out) == 3 {
			break
		}
	}
	return out
}
