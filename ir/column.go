package ir

// Column belongs to exactly one entity or standalone composite type.
type Column struct {
	db        *DB
	parentOID uint32
	typeOID   uint32

	Name     string
	Position int
	// SQLType is the declaration as reported by the catalog, e.g. "numeric(3,2)[]".
	SQLType        string
	ArrayDimension int
	Length         *int
	Precision      *int
	Scale          *int
	NotNull        bool
	Default        *string
	Comment        *Comment
}

func columnKey(c *Column) string { return c.Name }

// Entity returns the owning entity, or nil for a composite type attribute.
func (c *Column) Entity() *Entity { return c.db.entitiesByOID[c.parentOID] }

// CompositeType returns the owning standalone composite type, or nil for an
// entity column.
func (c *Column) CompositeType() *Type {
	if c.db.entitiesByOID[c.parentOID] != nil {
		return nil
	}
	return c.db.compositesByRelation[c.parentOID]
}

// Type returns the column type (the element type for arrays). It is nil when
// the type lives in a filtered-out schema.
func (c *Column) Type() *Type { return c.db.typesByOID[c.typeOID] }

// IsArray reports whether the column holds an array.
func (c *Column) IsArray() bool { return c.ArrayDimension > 0 }

// FullName implements Object.
func (c *Column) FullName() string {
	if e := c.Entity(); e != nil {
		return qualify(e.FullName(), c.Name)
	}
	if t := c.CompositeType(); t != nil {
		return qualify(t.FullName(), c.Name)
	}
	return c.Name
}

// IsPrimaryKey reports whether the column is part of its table's primary key.
func (c *Column) IsPrimaryKey() bool {
	e := c.Entity()
	if e == nil {
		return false
	}
	pk := e.PrimaryKey()
	return pk != nil && pk.Columns().Has(c.Name)
}

// ForeignKeys returns the foreign keys of the owning table that include the column.
func (c *Column) ForeignKeys() *Collection[*Constraint] {
	e := c.Entity()
	if e == nil {
		return NewCollection(constraintKey)
	}
	return e.ForeignKeys().Filter(func(fk *Constraint) bool { return fk.Columns().Has(c.Name) })
}

// IsForeignKey reports whether the column takes part in any foreign key.
func (c *Column) IsForeignKey() bool { return c.ForeignKeys().Len() > 0 }
