package ir

// EntityKind tags the entity variants.
type EntityKind int

const (
	EntityTable EntityKind = iota + 1
	EntityView
	EntityMaterializedView
	EntitySequence
)

func (k EntityKind) String() string {
	switch k {
	case EntityTable:
		return "table"
	case EntityView:
		return "view"
	case EntityMaterializedView:
		return "materialized view"
	case EntitySequence:
		return "sequence"
	}
	return "unknown"
}

// entityKindOf maps pg_class.relkind to a variant.
func entityKindOf(relkind byte) (kind EntityKind, partitioned bool, ok bool) {
	switch relkind {
	case 'r':
		return EntityTable, false, true
	case 'p':
		return EntityTable, true, true
	case 'v':
		return EntityView, false, true
	case 'm':
		return EntityMaterializedView, false, true
	case 'S':
		return EntitySequence, false, true
	}
	return 0, false, false
}

// Entity is a table, view, materialized view or sequence.
type Entity struct {
	db          *DB
	OID         uint32
	schemaOID   uint32
	Name        string
	Kind        EntityKind
	Partitioned bool
	Comment     *Comment

	columns    *Collection[*Column]
	byPosition map[int]*Column

	// Tables only; empty for other kinds.
	indexes     *Collection[*Index]
	constraints *Collection[*Constraint]
	referencing []uint32 // OIDs of foreign keys referencing this table
	joinTable   bool
	namingCase  NamingCase

	m2o, o2m, m2m *Collection[*Relation]
}

func entityKey(e *Entity) string { return e.Name }

func newEntity(db *DB, row EntityRow, kind EntityKind, partitioned bool) *Entity {
	return &Entity{
		db:          db,
		OID:         row.OID,
		schemaOID:   row.SchemaOID,
		Name:        row.Name,
		Kind:        kind,
		Partitioned: partitioned,
		Comment:     newComment(row.Comment, db.opts.commentDataToken()),
		columns:     NewCollection(columnKey, WithThrowOnDuplicate(), WithLabel("column")),
		byPosition:  make(map[int]*Column),
		indexes:     NewCollection(indexKey, WithThrowOnDuplicate(), WithLabel("index")),
		constraints: NewCollection(constraintKey, WithThrowOnDuplicate(), WithLabel("constraint")),
		m2o:         NewCollection(relationKey, WithUniqueKeys()),
		o2m:         NewCollection(relationKey, WithUniqueKeys()),
		m2m:         NewCollection(relationKey, WithUniqueKeys()),
	}
}

// Schema returns the owning schema.
func (e *Entity) Schema() *Schema { return e.db.schemasByOID[e.schemaOID] }

// FullName implements Object.
func (e *Entity) FullName() string { return qualify(e.Schema().Name, e.Name) }

// QuotedFullName returns the schema-qualified name quoted for use in SQL.
func (e *Entity) QuotedFullName() string {
	return QualifiedName(e.Schema().Name, e.Name)
}

// IsTable reports whether the entity is a (possibly partitioned) table.
func (e *Entity) IsTable() bool { return e.Kind == EntityTable }

// Columns returns the columns in ordinal order.
func (e *Entity) Columns() *Collection[*Column] { return e.columns }

// Column returns the column at the given ordinal position, or nil.
func (e *Entity) Column(position int) *Column { return e.byPosition[position] }

// Indexes returns the indexes of a table, keyed by name.
func (e *Entity) Indexes() *Collection[*Index] { return e.indexes }

// Constraints returns every constraint of a table, keyed by name.
func (e *Entity) Constraints() *Collection[*Constraint] { return e.constraints }

// PrimaryKey returns the primary key, or nil.
func (e *Entity) PrimaryKey() *Constraint {
	for _, c := range e.constraints.items {
		if c.Kind == ConstraintPrimaryKey {
			return c
		}
	}
	return nil
}

// UniqueConstraints returns the unique constraints.
func (e *Entity) UniqueConstraints() *Collection[*Constraint] {
	return e.constraintsOfKind(ConstraintUnique)
}

// CheckConstraints returns the check constraints.
func (e *Entity) CheckConstraints() *Collection[*Constraint] {
	return e.constraintsOfKind(ConstraintCheck)
}

// ExclusionConstraints returns the exclusion constraints.
func (e *Entity) ExclusionConstraints() *Collection[*Constraint] {
	return e.constraintsOfKind(ConstraintExclusion)
}

// ForeignKeys returns the foreign keys defined on the table.
func (e *Entity) ForeignKeys() *Collection[*Constraint] {
	return e.constraintsOfKind(ConstraintForeignKey)
}

func (e *Entity) constraintsOfKind(kind ConstraintKind) *Collection[*Constraint] {
	return e.constraints.Filter(func(c *Constraint) bool { return c.Kind == kind })
}

// ForeignKeysToThis returns the foreign keys of any table that reference this one.
func (e *Entity) ForeignKeysToThis() *Collection[*Constraint] {
	out := NewCollection(constraintKey)
	for _, oid := range e.referencing {
		if fk := e.db.constraintsByOID[oid]; fk != nil {
			_ = out.add(fk)
		}
	}
	return out
}

// IsJoinTable reports whether the primary key is covered exactly by two
// foreign keys, making the table a many-to-many bridge.
func (e *Entity) IsJoinTable() bool { return e.joinTable }

// NamingCase returns the identifier convention detected from the columns.
func (e *Entity) NamingCase() NamingCase { return e.namingCase }

// CompositeType returns the row type describing the entity, or nil.
func (e *Entity) CompositeType() *Type { return e.db.compositesByRelation[e.OID] }

// M2ORelations returns many-to-one relations with this table as source.
func (e *Entity) M2ORelations() *Collection[*Relation] { return e.m2o }

// O2MRelations returns one-to-many relations with this table as source.
func (e *Entity) O2MRelations() *Collection[*Relation] { return e.o2m }

// M2MRelations returns many-to-many relations with this table as source.
func (e *Entity) M2MRelations() *Collection[*Relation] { return e.m2m }

// Relations returns every relation with this table as source: many-to-one
// first, then one-to-many, then many-to-many.
func (e *Entity) Relations() *Collection[*Relation] {
	out := NewCollection(relationKey, WithUniqueKeys())
	for _, group := range []*Collection[*Relation]{e.m2o, e.o2m, e.m2m} {
		for _, r := range group.items {
			_ = out.add(r)
		}
	}
	return out
}

func (e *Entity) member(name string) Object {
	if c := e.columns.GetMaybe(name); c != nil {
		return c
	}
	if c := e.constraints.GetMaybe(name); c != nil {
		return c
	}
	if i := e.indexes.GetMaybe(name); i != nil {
		return i
	}
	for _, group := range []*Collection[*Relation]{e.m2o, e.o2m, e.m2m} {
		if r := group.GetMaybe(name); r != nil {
			return r
		}
	}
	return nil
}
