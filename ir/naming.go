package ir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-openapi/inflect"
)

// NamingCase is the identifier convention of a table.
type NamingCase int

const (
	SnakeCase NamingCase = iota
	CamelCase
)

func (c NamingCase) String() string {
	if c == CamelCase {
		return "camelCase"
	}
	return "snake_case"
}

// Render converts a snake_case identifier to the convention.
func (c NamingCase) Render(snake string) string {
	if c == CamelCase {
		return inflect.CamelizeDownFirst(snake)
	}
	return snake
}

// detectNamingCase reads the convention from column names, then from the
// table name. Separators win over internal capitals.
func detectNamingCase(e *Entity) NamingCase {
	names := e.columns.Keys()
	for _, pass := range [][]string{names, {e.Name}} {
		for _, n := range pass {
			if strings.Contains(n, "_") {
				return SnakeCase
			}
		}
		for _, n := range pass {
			if hasInnerCapital(n) {
				return CamelCase
			}
		}
	}
	return SnakeCase
}

func hasInnerCapital(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' && s[i-1] >= 'a' && s[i-1] <= 'z' {
			return true
		}
	}
	return false
}

// RelationNameFunc returns the name of a relation end.
type RelationNameFunc func(*Relation) string

// RelationNameFunctions names each relation kind. Nil members fall back to
// the default strategy.
type RelationNameFunctions struct {
	O2M RelationNameFunc
	M2O RelationNameFunc
	M2M RelationNameFunc
}

func (f RelationNameFunctions) withDefaults(d RelationNameFunctions) RelationNameFunctions {
	if f.O2M == nil {
		f.O2M = d.O2M
	}
	if f.M2O == nil {
		f.M2O = d.M2O
	}
	if f.M2M == nil {
		f.M2M = d.M2M
	}
	return f
}

func (f RelationNameFunctions) forKind(kind RelationKind) RelationNameFunc {
	switch kind {
	case RelationO2M:
		return f.O2M
	case RelationM2O:
		return f.M2O
	default:
		return f.M2M
	}
}

// Built-in strategies.
//
// ShortNames uses table names and adds column adjectives only when several
// foreign keys connect the same tables. DescriptiveNames always includes
// adjectives and join table names. OptimalNames prefers column aliases for
// the owning side and table names for the referenced side.
var (
	ShortNames = RelationNameFunctions{
		O2M: func(r *Relation) string { return r.render(o2mName(r, false)) },
		M2O: func(r *Relation) string { return r.render(m2oShortName(r)) },
		M2M: func(r *Relation) string { return r.render(m2mName(r, true, false)) },
	}
	DescriptiveNames = RelationNameFunctions{
		O2M: func(r *Relation) string { return r.render(o2mName(r, true)) },
		M2O: func(r *Relation) string { return r.render(m2oDescriptiveName(r)) },
		M2M: func(r *Relation) string { return r.render(m2mName(r, false, true)) },
	}
	OptimalNames = RelationNameFunctions{
		O2M: func(r *Relation) string { return r.render(o2mName(r, false)) },
		M2O: func(r *Relation) string { return r.render(singularize(r.ForeignKey().TargetAlias())) },
		M2M: func(r *Relation) string { return r.render(m2mName(r, false, false)) },
	}
)

// RelationNameFunctionsByName returns "short", "descriptive" or "optimal".
func RelationNameFunctionsByName(name string) (RelationNameFunctions, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "short":
		return ShortNames, nil
	case "descriptive":
		return DescriptiveNames, nil
	case "optimal", "":
		return OptimalNames, nil
	}
	return RelationNameFunctions{}, fmt.Errorf("%w: %q (want short, descriptive or optimal)", ErrUnknownStrategy, name)
}

func (r *Relation) render(snake string) string {
	return r.SourceTable().NamingCase().Render(snake)
}

func (r *Relation) targetFirst() bool { return r.db.opts.ForeignKeyAliasTargetFirst }

func m2oShortName(r *Relation) string {
	if len(r.CorrespondingForeignKeys()) > 0 {
		return singularize(r.ForeignKey().TargetAlias())
	}
	return singularize(snake(r.TargetTable().Name))
}

func m2oDescriptiveName(r *Relation) string {
	fk := r.ForeignKey()
	return compose(fk.Adjective(), singularize(snake(r.TargetTable().Name)), r.targetFirst())
}

// o2mName names the children of the source table: the target is the table
// holding the foreign key.
func o2mName(r *Relation, eager bool) string {
	children := pluralize(snake(r.TargetTable().Name))
	if eager || len(r.CorrespondingForeignKeys()) > 0 {
		return compose(r.ForeignKey().Adjective(), children, r.targetFirst())
	}
	return children
}

// m2mName builds the name in three steps: the target alias, then the join
// table token when several join tables connect the pair, then the source
// adjective when the join table holds several keys to the source.
func m2mName(r *Relation, short, descriptive bool) string {
	fk, targetFK, join := r.ForeignKey(), r.TargetForeignKey(), r.JoinTable()
	selfReference := r.sourceOID == r.targetOID
	first := r.targetFirst()

	var name string
	switch {
	case descriptive:
		name = pluralize(compose(targetFK.Adjective(), singularize(snake(r.TargetTable().Name)), first))
	case short && !selfReference && len(foreignKeysBetween(join, r.TargetTable(), targetFK)) == 0:
		name = pluralize(snake(r.TargetTable().Name))
	default:
		name = pluralizeAlias(targetFK)
	}

	if descriptive || len(r.JoinTables()) > 1 {
		name = compose(snake(join.Name), name, first)
	}

	tolerance := 0
	if selfReference && !descriptive {
		tolerance = 1
	}
	if len(r.CorrespondingForeignKeys()) > tolerance {
		name = compose(fk.Adjective(), name, first)
	}
	return name
}

// pluralizeAlias pluralizes the target alias of fk. A participle alias such
// as "blocked" (from blocked_id) qualifies the plural table name instead:
// "blocked_members", not "blockeds".
func pluralizeAlias(fk *Constraint) string {
	alias := fk.TargetAlias()
	last := alias[strings.LastIndex(alias, "_")+1:]
	if t := fk.ReferencedTable(); t != nil && isParticiple(last) {
		return alias + "_" + pluralize(snake(t.Name))
	}
	return pluralize(alias)
}

// isParticiple matches words ending in "ed" but not "eed" ("seed", "feed").
func isParticiple(word string) bool {
	return len(word) >= 5 && strings.HasSuffix(word, "ed") && !strings.HasSuffix(word, "eed")
}

// TargetAlias returns the snake_case name the foreign key gives to the
// referenced table: its column name without the "_id" suffix, or the
// singular table name when nothing remains.
func (c *Constraint) TargetAlias() string {
	if base := c.columnBase(); base != "" {
		return base
	}
	if t := c.ReferencedTable(); t != nil {
		return singularize(snake(t.Name))
	}
	return ""
}

// Adjective returns the part of the foreign key column name that qualifies
// the referenced table, e.g. "primary" for primary_account_id referencing
// account. It is empty when the column only repeats the table name and the
// whole base name when the column does not mention the table at all
// ("sender" for sender_id referencing user).
func (c *Constraint) Adjective() string {
	base := c.columnBase()
	target := c.ReferencedTable()
	if base == "" || target == nil {
		return ""
	}
	forms := nameForms(target.Name)
	for _, f := range forms {
		if base == f {
			return ""
		}
	}

	prefixFirst := c.db.opts.ForeignKeyAliasTargetFirst
	for _, leading := range []bool{prefixFirst, !prefixFirst} {
		for _, f := range forms {
			if leading {
				if rest, ok := strings.CutPrefix(base, f+"_"); ok {
					return rest
				}
			} else if rest, ok := strings.CutSuffix(base, "_"+f); ok {
				return rest
			}
		}
	}
	return base
}

// columnBase returns the snake_case name of the representative column
// without the "_id" suffix. The representative column is the first one
// mentioning the referenced table, or the first column.
func (c *Constraint) columnBase() string {
	if c.columns.Len() == 0 {
		return ""
	}
	var forms []string
	if t := c.ReferencedTable(); t != nil {
		forms = nameForms(t.Name)
	}
	column := c.columns.items[0]
	for _, col := range c.columns.items {
		if mentionsAny(snake(col.Name), forms) {
			column = col
			break
		}
	}

	base := snake(column.Name)
	if base == "id" {
		return ""
	}
	return strings.TrimSuffix(base, "_id")
}

func mentionsAny(name string, forms []string) bool {
	segments := "_" + name + "_"
	for _, f := range forms {
		if strings.Contains(segments, "_"+f+"_") {
			return true
		}
	}
	return false
}

// nameForms returns the snake, singular and plural forms of a table name,
// longest first.
func nameForms(table string) []string {
	s := snake(table)
	forms := []string{s}
	for _, f := range []string{pluralize(s), singularize(s)} {
		if !slices.Contains(forms, f) {
			forms = append(forms, f)
		}
	}
	slices.SortStableFunc(forms, func(a, b string) int { return len(b) - len(a) })
	return forms
}

// compose joins an adjective and a noun, skipping empty parts. With
// targetFirst the adjective goes last.
func compose(adjective, noun string, targetFirst bool) string {
	switch {
	case adjective == "":
		return noun
	case noun == "":
		return adjective
	case targetFirst:
		return noun + "_" + adjective
	}
	return adjective + "_" + noun
}

func snake(name string) string {
	// "accountID" reads as "account_id", not "account_i_d".
	if n := len(name); n > 2 && strings.HasSuffix(name, "ID") && name[n-3] >= 'a' && name[n-3] <= 'z' {
		name = name[:n-2] + "Id"
	}
	return inflect.Underscore(name)
}

// pluralize and singularize inflect only the last snake_case segment.
func pluralize(s string) string { return inflectLast(s, inflect.Pluralize) }

func singularize(s string) string { return inflectLast(s, inflect.Singularize) }

func inflectLast(s string, fn func(string) string) string {
	if s == "" {
		return ""
	}
	i := strings.LastIndex(s, "_")
	return s[:i+1] + fn(s[i+1:])
}

// NameCollision reports relations of one kind on one table that received
// the same name.
type NameCollision struct {
	Table     *Entity
	Kind      RelationKind
	Name      string
	Relations []*Relation
}

// String implements fmt.Stringer.
func (c NameCollision) String() string {
	return fmt.Sprintf("%s relations of %s share name %q (%d relations)", c.Kind, c.Table.FullName(), c.Name, len(c.Relations))
}

// nameRelations names every pending relation and fills the relation
// collections of each table. Names that still coincide are recorded as
// collisions, never changed.
func (b *builder) nameRelations() error {
	funcs := b.opts.nameFunctions()
	for _, oid := range b.relations.order {
		table := b.db.entitiesByOID[oid]
		groups := []struct {
			kind      RelationKind
			relations []*Relation
			into      *Collection[*Relation]
		}{
			{RelationM2O, b.relations.m2o[oid], table.m2o},
			{RelationO2M, b.relations.o2m[oid], table.o2m},
			{RelationM2M, b.relations.m2m[oid], table.m2m},
		}

		for _, g := range groups {
			nameOf := funcs.forKind(g.kind)
			for _, r := range g.relations {
				r.Name = nameOf(r)
				if r.Name == "" {
					return &InputError{Object: r.String(), Message: "relation name function returned an empty name"}
				}
				if err := g.into.add(r); err != nil {
					return err
				}
			}
			b.recordCollisions(table, g.kind, g.into)
		}
	}
	return nil
}

func (b *builder) recordCollisions(table *Entity, kind RelationKind, relations *Collection[*Relation]) {
	seen := make(map[string]bool)
	for _, name := range relations.Keys() {
		same := relations.GetAll(name)
		if len(same) < 2 || seen[name] {
			continue
		}
		seen[name] = true
		b.db.collisions = append(b.db.collisions, NameCollision{Table: table, Kind: kind, Name: name, Relations: same})
		b.log.Warn("Relation name collision, use custom relation name functions to resolve it",
			"table", table.FullName(), "kind", kind.String(), "name", name, "count", len(same))
	}
}
