package ir

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// ConstraintKind tags the constraint variants.
type ConstraintKind int

const (
	ConstraintPrimaryKey ConstraintKind = iota + 1
	ConstraintUnique
	ConstraintCheck
	ConstraintExclusion
	ConstraintForeignKey
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintPrimaryKey:
		return "primary key"
	case ConstraintUnique:
		return "unique"
	case ConstraintCheck:
		return "check"
	case ConstraintExclusion:
		return "exclusion"
	case ConstraintForeignKey:
		return "foreign key"
	}
	return "unknown"
}

// constraintKindOf maps pg_constraint.contype. skip is set for kinds the
// graph does not model (constraint triggers, not-null constraints).
func constraintKindOf(contype byte) (kind ConstraintKind, skip bool, ok bool) {
	switch contype {
	case 'p':
		return ConstraintPrimaryKey, false, true
	case 'u':
		return ConstraintUnique, false, true
	case 'c':
		return ConstraintCheck, false, true
	case 'x':
		return ConstraintExclusion, false, true
	case 'f':
		return ConstraintForeignKey, false, true
	case 't', 'n':
		return 0, true, true
	}
	return 0, false, false
}

// Action is a foreign key referential action.
type Action string

const (
	ActionNoAction   Action = "NO ACTION"
	ActionRestrict   Action = "RESTRICT"
	ActionCascade    Action = "CASCADE"
	ActionSetNull    Action = "SET NULL"
	ActionSetDefault Action = "SET DEFAULT"
)

func actionOf(code byte) (Action, bool) {
	switch code {
	case 'a', 0:
		return ActionNoAction, true
	case 'r':
		return ActionRestrict, true
	case 'c':
		return ActionCascade, true
	case 'n':
		return ActionSetNull, true
	case 'd':
		return ActionSetDefault, true
	}
	return "", false
}

// MatchType is a foreign key match type.
type MatchType string

const (
	MatchSimple  MatchType = "SIMPLE"
	MatchFull    MatchType = "FULL"
	MatchPartial MatchType = "PARTIAL"
)

func matchTypeOf(code byte) (MatchType, bool) {
	switch code {
	case 's', 0:
		return MatchSimple, true
	case 'f':
		return MatchFull, true
	case 'p':
		return MatchPartial, true
	}
	return "", false
}

// Constraint is a table or domain constraint. Exactly one of Table and
// Domain is non-nil for constraints of objects inside the graph.
type Constraint struct {
	db        *DB
	OID       uint32
	schemaOID uint32
	tableOID  uint32
	domainOID uint32
	indexOID  uint32

	Name              string
	Kind              ConstraintKind
	Deferrable        bool
	InitiallyDeferred bool
	Comment           *Comment

	// Check
	Expression string

	// Foreign key
	OnUpdate           Action
	OnDelete           Action
	MatchType          MatchType
	referencedTableOID uint32
	referencedColumns  *Collection[*Column]
	mandatoryParent    bool

	columns *Collection[*Column]
}

func constraintKey(c *Constraint) string { return c.Name }

// Table returns the owning table, or nil for domain constraints.
func (c *Constraint) Table() *Entity { return c.db.entitiesByOID[c.tableOID] }

// Domain returns the owning domain, or nil for table constraints.
func (c *Constraint) Domain() *Type {
	if c.domainOID == 0 {
		return nil
	}
	return c.db.typesByOID[c.domainOID]
}

// Schema returns the schema the constraint lives in.
func (c *Constraint) Schema() *Schema { return c.db.schemasByOID[c.schemaOID] }

// FullName implements Object.
func (c *Constraint) FullName() string {
	if t := c.Table(); t != nil {
		return qualify(t.FullName(), c.Name)
	}
	if d := c.Domain(); d != nil {
		return qualify(d.FullName(), c.Name)
	}
	return qualify(c.Schema().Name, c.Name)
}

// Index returns the supporting index. For a foreign key this is the unique
// index of the referenced table. Nil for check constraints and for indexes
// in filtered-out schemas.
func (c *Constraint) Index() *Index { return c.db.indexesByOID[c.indexOID] }

// Columns returns the constrained columns in key order.
func (c *Constraint) Columns() *Collection[*Column] { return c.columns }

// ReferencedTable returns the table a foreign key points to, or nil when it
// was filtered out or the constraint is not a foreign key.
func (c *Constraint) ReferencedTable() *Entity {
	if c.Kind != ConstraintForeignKey {
		return nil
	}
	if idx := c.Index(); idx != nil {
		if t := idx.Table(); t != nil {
			return t
		}
	}
	return c.db.entitiesByOID[c.referencedTableOID]
}

// ReferencedColumns returns the referenced columns of a foreign key,
// positionally matching Columns.
func (c *Constraint) ReferencedColumns() *Collection[*Column] {
	if c.referencedColumns == nil {
		return NewCollection(columnKey)
	}
	return c.referencedColumns
}

// MandatoryParent reports whether every column of a foreign key is NOT NULL,
// so each row must have a parent.
func (c *Constraint) MandatoryParent() bool { return c.mandatoryParent }

// CorrespondingForeignKeys returns the other foreign keys of the same table
// that reference the same table.
func (c *Constraint) CorrespondingForeignKeys() []*Constraint {
	table, target := c.Table(), c.ReferencedTable()
	if c.Kind != ConstraintForeignKey || table == nil || target == nil {
		return nil
	}
	return foreignKeysBetween(table, target, c)
}

// NormalizedExpression returns a check expression in PostgreSQL's canonical
// formatting, or the expression unchanged when it cannot be parsed.
func (c *Constraint) NormalizedExpression() string {
	if c.Expression == "" {
		return ""
	}
	if normalized := normalizeExpression(c.Expression); normalized != "" {
		return normalized
	}
	return c.Expression
}

// foreignKeysBetween lists the foreign keys of table that reference target,
// except skip.
func foreignKeysBetween(table, target *Entity, skip *Constraint) []*Constraint {
	var out []*Constraint
	for _, fk := range table.constraints.items {
		if fk == skip || fk.Kind != ConstraintForeignKey {
			continue
		}
		if ref := fk.ReferencedTable(); ref != nil && ref.OID == target.OID {
			out = append(out, fk)
		}
	}
	return out
}

// normalizeExpression parses "SELECT <expr>" and deparses it.
func normalizeExpression(expr string) string {
	expr = strings.TrimSpace(expr)
	if inner, ok := strings.CutPrefix(expr, "CHECK "); ok {
		expr = strings.TrimSpace(inner)
	}

	parseResult, err := pg_query.Parse(fmt.Sprintf("SELECT %s", expr))
	if err != nil {
		return ""
	}
	deparsed, err := pg_query.Deparse(parseResult)
	if err != nil {
		return ""
	}
	if after, found := strings.CutPrefix(deparsed, "SELECT "); found {
		return strings.TrimSpace(after)
	}
	return ""
}
