package ir

// TypeKind tags the type variants.
type TypeKind int

const (
	TypeBuiltIn TypeKind = iota + 1
	TypeBase
	TypeDomain
	TypeEnum
	TypeComposite
	TypeRange
	TypeMultiRange
	TypePseudo
)

func (k TypeKind) String() string {
	switch k {
	case TypeBuiltIn:
		return "built-in"
	case TypeBase:
		return "base"
	case TypeDomain:
		return "domain"
	case TypeEnum:
		return "enum"
	case TypeComposite:
		return "composite"
	case TypeRange:
		return "range"
	case TypeMultiRange:
		return "multirange"
	case TypePseudo:
		return "pseudo"
	}
	return "unknown"
}

// typeKindOf maps pg_type.typtype to a variant. Base types of system schemas
// are built-in.
func typeKindOf(typtype byte, system bool) (TypeKind, bool) {
	switch typtype {
	case 'b':
		if system {
			return TypeBuiltIn, true
		}
		return TypeBase, true
	case 'c':
		return TypeComposite, true
	case 'd':
		return TypeDomain, true
	case 'e':
		return TypeEnum, true
	case 'r':
		return TypeRange, true
	case 'm':
		return TypeMultiRange, true
	case 'p':
		return TypePseudo, true
	}
	return 0, false
}

// Type is a data type identified by its schema-qualified name.
type Type struct {
	db        *DB
	OID       uint32
	schemaOID uint32

	Name     string // internal name, e.g. "int4"
	SQLName  string // SQL name, e.g. "integer"
	Kind     TypeKind
	Category byte
	Comment  *Comment

	// Domain
	baseTypeOID    uint32
	ArrayDimension int
	Length         *int
	Precision      *int
	Scale          *int
	NotNull        bool
	Default        *string
	checks         *Collection[*Constraint]

	// Enum
	Values []string

	// Composite
	relationOID uint32
	columns     *Collection[*Column]

	// Range and multirange
	subtypeOID uint32
}

func typeKey(t *Type) string { return t.Name }

func typeAliases(t *Type) []string { return []string{t.SQLName} }

// Schema returns the owning schema.
func (t *Type) Schema() *Schema { return t.db.schemasByOID[t.schemaOID] }

// FullName implements Object.
func (t *Type) FullName() string { return qualify(t.Schema().Name, t.Name) }

// BaseType returns the underlying type of a domain, or nil.
func (t *Type) BaseType() *Type {
	if t.Kind != TypeDomain {
		return nil
	}
	return t.db.typesByOID[t.baseTypeOID]
}

// Entity returns the entity a composite type describes, or nil for
// standalone composite types and other kinds.
func (t *Type) Entity() *Entity {
	if t.Kind != TypeComposite {
		return nil
	}
	return t.db.entitiesByOID[t.relationOID]
}

// Columns returns the attributes of a composite type. For entity-backed
// types these are the entity's columns.
func (t *Type) Columns() *Collection[*Column] {
	if e := t.Entity(); e != nil {
		return e.columns
	}
	if t.columns == nil {
		return NewCollection(columnKey)
	}
	return t.columns
}

// CheckConstraints returns the check constraints of a domain.
func (t *Type) CheckConstraints() *Collection[*Constraint] {
	if t.checks == nil {
		return NewCollection(constraintKey)
	}
	return t.checks
}

// Subtype returns the element type of a range or multirange, or nil.
func (t *Type) Subtype() *Type {
	if t.Kind != TypeRange && t.Kind != TypeMultiRange {
		return nil
	}
	return t.db.typesByOID[t.subtypeOID]
}
