package ir

import "fmt"

// RelationKind tags the relation variants.
type RelationKind int

const (
	RelationO2M RelationKind = iota + 1
	RelationM2O
	RelationM2M
)

func (k RelationKind) String() string {
	switch k {
	case RelationO2M:
		return "one-to-many"
	case RelationM2O:
		return "many-to-one"
	case RelationM2M:
		return "many-to-many"
	}
	return "unknown"
}

// Relation is an association between two tables inferred from foreign keys.
// It is not present in the catalog.
//
//   - M2O: source holds ForeignKey referencing target.
//   - O2M: target holds ForeignKey referencing source.
//   - M2M: JoinTable holds ForeignKey referencing source and
//     TargetForeignKey referencing target.
type Relation struct {
	db          *DB
	Kind        RelationKind
	Name        string
	sourceOID   uint32
	targetOID   uint32
	fkOID       uint32
	targetFKOID uint32
	joinOID     uint32
}

func relationKey(r *Relation) string { return r.Name }

// SourceTable returns the table the relation is attached to.
func (r *Relation) SourceTable() *Entity { return r.db.entitiesByOID[r.sourceOID] }

// TargetTable returns the table on the other end.
func (r *Relation) TargetTable() *Entity { return r.db.entitiesByOID[r.targetOID] }

// ForeignKey returns the driving foreign key.
func (r *Relation) ForeignKey() *Constraint { return r.db.constraintsByOID[r.fkOID] }

// TargetForeignKey returns the join table's foreign key to the target of an
// M2M relation, or nil.
func (r *Relation) TargetForeignKey() *Constraint {
	if r.Kind != RelationM2M {
		return nil
	}
	return r.db.constraintsByOID[r.targetFKOID]
}

// JoinTable returns the bridging table of an M2M relation, or nil.
func (r *Relation) JoinTable() *Entity {
	if r.Kind != RelationM2M {
		return nil
	}
	return r.db.entitiesByOID[r.joinOID]
}

// FullName returns "schema.table.name" of the source end.
func (r *Relation) FullName() string { return qualify(r.SourceTable().FullName(), r.Name) }

// String implements fmt.Stringer.
func (r *Relation) String() string {
	return fmt.Sprintf("%s %s -> %s (%s)", r.Kind, r.SourceTable().FullName(), r.TargetTable().FullName(), r.Name)
}

// CorrespondingForeignKeys returns the sibling foreign keys that make the
// relation ambiguous without a distinguishing name: for M2O and O2M the
// other foreign keys between the same two tables, for M2M the other foreign
// keys from the join table to the source table.
func (r *Relation) CorrespondingForeignKeys() []*Constraint {
	fk := r.ForeignKey()
	if fk == nil {
		return nil
	}
	switch r.Kind {
	case RelationM2M:
		return foreignKeysBetween(r.JoinTable(), r.SourceTable(), fk)
	default:
		return fk.CorrespondingForeignKeys()
	}
}

// JoinTables returns every join table connecting the two ends of an M2M
// relation, in either direction.
func (r *Relation) JoinTables() []*Entity {
	if r.Kind != RelationM2M {
		return nil
	}
	var out []*Entity
	for _, oid := range r.db.joinTablesByPair[pairKey(r.sourceOID, r.targetOID)] {
		out = append(out, r.db.entitiesByOID[oid])
	}
	return out
}

func pairKey(a, b uint32) [2]uint32 {
	if a > b {
		a, b = b, a
	}
	return [2]uint32{a, b}
}

// pendingRelations collects relations per source table until names are known.
type pendingRelations struct {
	m2o, o2m, m2m map[uint32][]*Relation
	order         []uint32
	seen          map[uint32]bool
}

func newPendingRelations() *pendingRelations {
	return &pendingRelations{
		m2o:  make(map[uint32][]*Relation),
		o2m:  make(map[uint32][]*Relation),
		m2m:  make(map[uint32][]*Relation),
		seen: make(map[uint32]bool),
	}
}

func (p *pendingRelations) add(r *Relation) {
	if !p.seen[r.sourceOID] {
		p.seen[r.sourceOID] = true
		p.order = append(p.order, r.sourceOID)
	}
	switch r.Kind {
	case RelationM2O:
		p.m2o[r.sourceOID] = append(p.m2o[r.sourceOID], r)
	case RelationO2M:
		p.o2m[r.sourceOID] = append(p.o2m[r.sourceOID], r)
	case RelationM2M:
		p.m2m[r.sourceOID] = append(p.m2m[r.sourceOID], r)
	}
}

// inferRelations derives an M2O/O2M pair for every foreign key and an M2M
// pair for every join table.
func (b *builder) inferRelations() error {
	tables := b.db.Tables()

	for _, table := range tables {
		for _, fk := range table.constraints.items {
			if fk.Kind != ConstraintForeignKey {
				continue
			}
			target := fk.ReferencedTable()
			if target == nil {
				b.log.Debug("Skipping relations of foreign key to filtered table", "foreign_key", fk.FullName())
				continue
			}
			b.relations.add(&Relation{db: b.db, Kind: RelationM2O, sourceOID: table.OID, targetOID: target.OID, fkOID: fk.OID})
			b.relations.add(&Relation{db: b.db, Kind: RelationO2M, sourceOID: target.OID, targetOID: table.OID, fkOID: fk.OID})
		}
	}

	for _, join := range tables {
		first, second, ok := joinForeignKeys(join)
		if !ok {
			continue
		}
		join.joinTable = true
		a, c := first.ReferencedTable(), second.ReferencedTable()
		key := pairKey(a.OID, c.OID)
		b.db.joinTablesByPair[key] = append(b.db.joinTablesByPair[key], join.OID)

		b.relations.add(&Relation{db: b.db, Kind: RelationM2M, sourceOID: a.OID, targetOID: c.OID,
			fkOID: first.OID, targetFKOID: second.OID, joinOID: join.OID})
		b.relations.add(&Relation{db: b.db, Kind: RelationM2M, sourceOID: c.OID, targetOID: a.OID,
			fkOID: second.OID, targetFKOID: first.OID, joinOID: join.OID})
		b.log.Debug("Detected join table", "table", join.FullName(), "between", a.FullName(), "and", c.FullName())
	}
	return nil
}

// joinForeignKeys returns the two foreign keys whose columns cover the
// primary key exactly. Any other count of foreign keys inside the primary
// key disqualifies the table.
func joinForeignKeys(table *Entity) (*Constraint, *Constraint, bool) {
	pk := table.PrimaryKey()
	if pk == nil || pk.columns.Len() == 0 {
		return nil, nil, false
	}
	pkColumns := make(map[string]bool, pk.columns.Len())
	for _, c := range pk.columns.items {
		pkColumns[c.Name] = true
	}

	var fks, inside []*Constraint
	for _, c := range table.constraints.items {
		if c.Kind == ConstraintForeignKey && c.ReferencedTable() != nil {
			fks = append(fks, c)
		}
	}
	if len(fks) < 2 {
		return nil, nil, false
	}
	for _, fk := range fks {
		if fk.columns.Len() > 0 && coveredBy(fk.columns.items, pkColumns) {
			inside = append(inside, fk)
		}
	}
	if len(inside) != 2 {
		return nil, nil, false
	}

	union := make(map[string]bool)
	for _, fk := range inside {
		for _, c := range fk.columns.items {
			union[c.Name] = true
		}
	}
	if len(union) != len(pkColumns) {
		return nil, nil, false
	}
	return inside[0], inside[1], true
}

func coveredBy(columns []*Column, set map[string]bool) bool {
	for _, c := range columns {
		if !set[c.Name] {
			return false
		}
	}
	return true
}
