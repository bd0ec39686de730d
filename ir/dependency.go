package ir

import (
	"slices"

	"github.com/yourbasic/graph"
)

// referenceGraph returns the tables of the user schemas and a graph with an
// edge from every referenced table to each table referencing it.
// Self references are left out. Neighbours are sorted so results are stable.
func (db *DB) referenceGraph() ([]*Entity, *graph.Immutable) {
	tables := db.Tables()
	index := make(map[uint32]int, len(tables))
	for i, t := range tables {
		index[t.OID] = i
	}

	g := graph.New(len(tables))
	for i, t := range tables {
		for _, fk := range t.constraints.items {
			if fk.Kind != ConstraintForeignKey {
				continue
			}
			target := fk.ReferencedTable()
			if target == nil || target.OID == t.OID {
				continue
			}
			if j, ok := index[target.OID]; ok {
				g.Add(j, i)
			}
		}
	}
	return tables, graph.Sort(g)
}

// DependencyOrder returns the tables so that every table comes after the
// tables it references. It fails with a *CycleError when foreign keys form
// a cycle between different tables.
func (db *DB) DependencyOrder() ([]*Entity, error) {
	tables, g := db.referenceGraph()
	order, ok := graph.TopSort(g)
	if !ok {
		cycles := db.ReferenceCycles()
		err := &CycleError{}
		for _, cycle := range cycles {
			names := make([]string, len(cycle))
			for i, t := range cycle {
				names[i] = t.FullName()
			}
			err.Cycles = append(err.Cycles, names)
		}
		return nil, err
	}
	out := make([]*Entity, len(order))
	for i, v := range order {
		out[i] = tables[v]
	}
	return out, nil
}

// ReferenceCycles returns each group of two or more tables that reference
// each other through foreign keys. Tables within a group keep catalog order.
func (db *DB) ReferenceCycles() [][]*Entity {
	tables, g := db.referenceGraph()
	var out [][]*Entity
	for _, component := range graph.StrongComponents(g) {
		if len(component) < 2 {
			continue
		}
		slices.Sort(component)
		group := make([]*Entity, len(component))
		for i, v := range component {
			group[i] = tables[v]
		}
		out = append(out, group)
	}
	slices.SortFunc(out, func(a, b []*Entity) int {
		return slices.Index(tables, a[0]) - slices.Index(tables, b[0])
	})
	return out
}
