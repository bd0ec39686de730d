package ir

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// IndexElement is one key of an index: a column, or an expression when
// Column is nil.
type IndexElement struct {
	Column     *Column
	Expression string
}

// Index is an index of a table.
type Index struct {
	db        *DB
	OID       uint32
	schemaOID uint32
	tableOID  uint32

	Name        string
	IsUnique    bool
	IsPrimary   bool
	IsExclusion bool
	// Method is the access method (btree, gin, gist, ...); empty when the
	// definition could not be parsed.
	Method     string
	Definition string
	// Predicate is the partial-index condition, or nil.
	Predicate *string
	Comment   *Comment

	elements []IndexElement
	columns  *Collection[*Column]
}

func indexKey(i *Index) string { return i.Name }

// Table returns the indexed table, or nil when it was filtered out.
func (i *Index) Table() *Entity { return i.db.entitiesByOID[i.tableOID] }

// Schema returns the schema the index lives in.
func (i *Index) Schema() *Schema { return i.db.schemasByOID[i.schemaOID] }

// FullName implements Object.
func (i *Index) FullName() string { return qualify(i.Schema().Name, i.Name) }

// Columns returns the indexed columns in key order, skipping expressions.
func (i *Index) Columns() *Collection[*Column] { return i.columns }

// Elements returns every key in order, expressions included.
func (i *Index) Elements() []IndexElement {
	out := make([]IndexElement, len(i.elements))
	copy(out, i.elements)
	return out
}

// IsPartial reports whether the index has a predicate.
func (i *Index) IsPartial() bool { return i.Predicate != nil }

// parseIndexMethod extracts the access method from a pg_get_indexdef string.
func parseIndexMethod(definition string) (string, error) {
	if definition == "" {
		return "", fmt.Errorf("empty index definition")
	}

	result, err := pg_query.Parse(definition)
	if err != nil {
		return "", fmt.Errorf("failed to parse index definition: %w", err)
	}

	for _, stmt := range result.Stmts {
		if node := stmt.GetStmt(); node != nil {
			if indexStmt := node.GetIndexStmt(); indexStmt != nil {
				if indexStmt.AccessMethod == "" {
					return "btree", nil
				}
				return indexStmt.AccessMethod, nil
			}
		}
	}
	return "", fmt.Errorf("no CREATE INDEX statement found in definition")
}
