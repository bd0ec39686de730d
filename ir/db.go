// Package ir holds the linked, read-only object graph of a PostgreSQL
// database structure: schemas, entities, columns, types, indexes,
// constraints, functions and the relations inferred from foreign keys.
//
// The graph is built in one call to Build from raw catalog rows and is never
// mutated afterwards, so it is safe for concurrent readers.
package ir

import (
	"strings"
)

// Object is any graph node addressable by DB.Get.
type Object interface {
	FullName() string
}

// DB is the root of the graph and the arena every cross reference is
// resolved through. Objects keep the OIDs of what they reference; a
// reference to an object that was filtered out resolves to nil.
type DB struct {
	Metadata Metadata

	opts          Options
	schemas       *Collection[*Schema]
	systemSchemas *Collection[*Schema]

	schemasByOID     map[uint32]*Schema
	typesByOID       map[uint32]*Type
	entitiesByOID    map[uint32]*Entity
	indexesByOID     map[uint32]*Index
	constraintsByOID map[uint32]*Constraint
	functionsByOID   map[uint32]*Function
	// composite types by the pg_class OID they describe
	compositesByRelation map[uint32]*Type
	// join table OIDs by unordered table pair
	joinTablesByPair map[[2]uint32][]uint32

	collisions []NameCollision
}

func newDB(meta Metadata, opts Options) *DB {
	return &DB{
		Metadata:             meta,
		opts:                 opts,
		schemas:              NewCollection(schemaKey, WithThrowOnDuplicate(), WithLabel("schema")),
		systemSchemas:        NewCollection(schemaKey, WithThrowOnDuplicate(), WithLabel("schema")),
		schemasByOID:         make(map[uint32]*Schema),
		typesByOID:           make(map[uint32]*Type),
		entitiesByOID:        make(map[uint32]*Entity),
		indexesByOID:         make(map[uint32]*Index),
		constraintsByOID:     make(map[uint32]*Constraint),
		functionsByOID:       make(map[uint32]*Function),
		compositesByRelation: make(map[uint32]*Type),
		joinTablesByPair:     make(map[[2]uint32][]uint32),
	}
}

// Name returns the database name.
func (db *DB) Name() string {
	return db.Metadata.DatabaseName
}

// FullName implements Object.
func (db *DB) FullName() string {
	return db.Metadata.DatabaseName
}

// Options returns the options the graph was built with.
func (db *DB) Options() Options {
	return db.opts
}

// Schemas returns the user schemas that passed the schema filter.
func (db *DB) Schemas() *Collection[*Schema] {
	return db.schemas
}

// SystemSchemas returns pg_catalog and information_schema when present.
// Built-in types live here.
func (db *DB) SystemSchemas() *Collection[*Schema] {
	return db.systemSchemas
}

// Schema returns the user or system schema with the given name, or nil.
func (db *DB) Schema(name string) *Schema {
	if s := db.schemas.GetMaybe(name); s != nil {
		return s
	}
	return db.systemSchemas.GetMaybe(name)
}

// Tables returns every table of every user schema.
func (db *DB) Tables() []*Entity {
	var out []*Entity
	for _, s := range db.schemas.Items() {
		for _, e := range s.entities.Items() {
			if e.Kind == EntityTable {
				out = append(out, e)
			}
		}
	}
	return out
}

// NameCollisions returns relation names the naming functions could not make
// unique. Colliding relations keep their names; Relations().Get on such a
// name fails with AmbiguousKeyError.
func (db *DB) NameCollisions() []NameCollision {
	out := make([]NameCollision, len(db.collisions))
	copy(out, db.collisions)
	return out
}

// TypeByOID returns the type with the given OID, or nil.
func (db *DB) TypeByOID(oid uint32) *Type { return db.typesByOID[oid] }

// EntityByOID returns the entity with the given OID, or nil.
func (db *DB) EntityByOID(oid uint32) *Entity { return db.entitiesByOID[oid] }

// Get resolves a dotted path "schema", "schema.object" or
// "schema.object.member" to an object, or nil. Objects are searched among
// entities, then types, then functions; members among columns, then
// constraints, then indexes, then relations. Quoted parts may contain dots.
func (db *DB) Get(path string) Object {
	parts, err := SplitQualifiedName(path)
	if err != nil || len(parts) == 0 || len(parts) > 3 {
		return nil
	}
	schema := db.Schema(parts[0])
	if schema == nil {
		return nil
	}
	if len(parts) == 1 {
		return schema
	}
	return schema.get(parts[1:])
}

// Schema is a namespace of entities, types and functions.
type Schema struct {
	db      *DB
	OID     uint32
	Name    string
	System  bool
	Comment *Comment

	entities    *Collection[*Entity]
	types       *Collection[*Type]
	functions   *Collection[*Function]
	indexes     *Collection[*Index]
	constraints *Collection[*Constraint]
}

func schemaKey(s *Schema) string { return s.Name }

// DB returns the owning database.
func (s *Schema) DB() *DB { return s.db }

// FullName implements Object.
func (s *Schema) FullName() string { return s.Name }

// QuotedFullName returns the name quoted for use in SQL.
func (s *Schema) QuotedFullName() string { return QuoteIdentifier(s.Name) }

// Entities returns tables, views, materialized views and sequences.
func (s *Schema) Entities() *Collection[*Entity] { return s.entities }

// Tables returns the tables of the schema.
func (s *Schema) Tables() *Collection[*Entity] { return s.entitiesOfKind(EntityTable) }

// Views returns the views of the schema.
func (s *Schema) Views() *Collection[*Entity] { return s.entitiesOfKind(EntityView) }

// MaterializedViews returns the materialized views of the schema.
func (s *Schema) MaterializedViews() *Collection[*Entity] {
	return s.entitiesOfKind(EntityMaterializedView)
}

// Sequences returns the sequences of the schema.
func (s *Schema) Sequences() *Collection[*Entity] { return s.entitiesOfKind(EntitySequence) }

func (s *Schema) entitiesOfKind(kind EntityKind) *Collection[*Entity] {
	return s.entities.Filter(func(e *Entity) bool { return e.Kind == kind })
}

// Types returns the types of the schema, including composite types backing entities.
// Built-in types are reachable by both their internal and SQL names ("int4", "integer").
func (s *Schema) Types() *Collection[*Type] { return s.types }

// Functions returns the functions of the schema. Overloads share a name:
// use GetAll for them; Get fails with AmbiguousKeyError.
func (s *Schema) Functions() *Collection[*Function] { return s.functions }

// Indexes returns every index of the schema.
func (s *Schema) Indexes() *Collection[*Index] { return s.indexes }

// Constraints returns every table and domain constraint of the schema.
func (s *Schema) Constraints() *Collection[*Constraint] { return s.constraints }

// Get resolves "object" or "object.member" inside the schema, or returns nil.
func (s *Schema) Get(path string) Object {
	parts, err := SplitQualifiedName(path)
	if err != nil || len(parts) == 0 || len(parts) > 2 {
		return nil
	}
	return s.get(parts)
}

func (s *Schema) get(parts []string) Object {
	name := parts[0]
	if e := s.entities.GetMaybe(name); e != nil {
		if len(parts) == 1 {
			return e
		}
		return e.member(parts[1])
	}
	if t := s.types.GetMaybe(name); t != nil {
		if len(parts) == 1 {
			return t
		}
		if c := t.Columns().GetMaybe(parts[1]); c != nil {
			return c
		}
		if c := t.CheckConstraints().GetMaybe(parts[1]); c != nil {
			return c
		}
		return nil
	}
	if len(parts) == 1 {
		if f := s.functions.GetMaybe(name); f != nil {
			return f
		}
	}
	return nil
}

func qualify(parts ...string) string {
	return strings.Join(parts, ".")
}
