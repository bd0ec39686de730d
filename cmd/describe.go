package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pgstructure/pgstructure/internal/color"
	"github.com/pgstructure/pgstructure/ir"
)

// The views below are the printable form of graph objects, shared by the
// text and JSON outputs.

type databaseView struct {
	Database        string       `json:"database"`
	ServerVersion   string       `json:"server_version"`
	Schemas         []schemaView `json:"schemas"`
	DependencyOrder []string     `json:"dependency_order,omitempty"`
	ReferenceCycles [][]string   `json:"reference_cycles,omitempty"`
	Collisions      []string     `json:"name_collisions,omitempty"`
}

type schemaView struct {
	Name      string         `json:"name"`
	Comment   string         `json:"comment,omitempty"`
	Entities  []entityView   `json:"entities,omitempty"`
	Types     []typeView     `json:"types,omitempty"`
	Functions []functionView `json:"functions,omitempty"`
}

type entityView struct {
	Name        string           `json:"name"`
	Kind        string           `json:"kind"`
	Comment     string           `json:"comment,omitempty"`
	JoinTable   bool             `json:"join_table,omitempty"`
	Columns     []columnView     `json:"columns,omitempty"`
	Constraints []constraintView `json:"constraints,omitempty"`
	Indexes     []indexView      `json:"indexes,omitempty"`
	Relations   []relationView   `json:"relations,omitempty"`
}

type columnView struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	NotNull    bool    `json:"not_null,omitempty"`
	Default    *string `json:"default,omitempty"`
	PrimaryKey bool    `json:"primary_key,omitempty"`
	Comment    string  `json:"comment,omitempty"`
}

type constraintView struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Columns    []string `json:"columns,omitempty"`
	References string   `json:"references,omitempty"`
	OnUpdate   string   `json:"on_update,omitempty"`
	OnDelete   string   `json:"on_delete,omitempty"`
	Expression string   `json:"expression,omitempty"`
}

type indexView struct {
	Name      string   `json:"name"`
	Method    string   `json:"method,omitempty"`
	Unique    bool     `json:"unique,omitempty"`
	Primary   bool     `json:"primary,omitempty"`
	Elements  []string `json:"elements"`
	Predicate *string  `json:"predicate,omitempty"`
}

type relationView struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Target     string `json:"target"`
	ForeignKey string `json:"foreign_key"`
	JoinTable  string `json:"join_table,omitempty"`
}

type typeView struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Base   string   `json:"base,omitempty"`
	Values []string `json:"values,omitempty"`
}

type functionView struct {
	Signature string `json:"signature"`
	Kind      string `json:"kind"`
	Returns   string `json:"returns,omitempty"`
	Language  string `json:"language"`
}

func describeDatabase(db *ir.DB) databaseView {
	v := databaseView{Database: db.Name(), ServerVersion: db.Metadata.ServerVersion}
	for _, s := range db.Schemas().Items() {
		v.Schemas = append(v.Schemas, describeSchema(s))
	}
	if order, err := db.DependencyOrder(); err == nil {
		for _, e := range order {
			v.DependencyOrder = append(v.DependencyOrder, e.FullName())
		}
	}
	for _, cycle := range db.ReferenceCycles() {
		v.ReferenceCycles = append(v.ReferenceCycles, fullNames(cycle))
	}
	for _, c := range db.NameCollisions() {
		v.Collisions = append(v.Collisions, c.String())
	}
	return v
}

func describeSchema(s *ir.Schema) schemaView {
	v := schemaView{Name: s.Name, Comment: s.Comment.Text()}
	for _, e := range s.Entities().Items() {
		v.Entities = append(v.Entities, describeEntity(e))
	}
	for _, t := range s.Types().Items() {
		if t.Kind == ir.TypeComposite && t.Entity() != nil {
			continue
		}
		v.Types = append(v.Types, describeType(t))
	}
	for _, f := range s.Functions().Items() {
		v.Functions = append(v.Functions, describeFunction(f))
	}
	return v
}

func describeEntity(e *ir.Entity) entityView {
	v := entityView{Name: e.Name, Kind: e.Kind.String(), Comment: e.Comment.Text(), JoinTable: e.IsJoinTable()}
	for _, c := range e.Columns().Items() {
		v.Columns = append(v.Columns, describeColumn(c))
	}
	for _, c := range e.Constraints().Items() {
		v.Constraints = append(v.Constraints, describeConstraint(c))
	}
	for _, i := range e.Indexes().Items() {
		v.Indexes = append(v.Indexes, describeIndex(i))
	}
	for _, r := range e.Relations().Items() {
		v.Relations = append(v.Relations, describeRelation(r))
	}
	return v
}

func describeColumn(c *ir.Column) columnView {
	return columnView{
		Name:       c.Name,
		Type:       c.SQLType,
		NotNull:    c.NotNull,
		Default:    c.Default,
		PrimaryKey: c.IsPrimaryKey(),
		Comment:    c.Comment.Text(),
	}
}

func describeConstraint(c *ir.Constraint) constraintView {
	v := constraintView{Name: c.Name, Kind: c.Kind.String(), Columns: c.Columns().Keys(), Expression: c.NormalizedExpression()}
	if c.Kind == ir.ConstraintForeignKey {
		if target := c.ReferencedTable(); target != nil {
			v.References = target.FullName() + "(" + strings.Join(c.ReferencedColumns().Keys(), ", ") + ")"
		}
		v.OnUpdate, v.OnDelete = string(c.OnUpdate), string(c.OnDelete)
	}
	return v
}

func describeIndex(i *ir.Index) indexView {
	v := indexView{Name: i.Name, Method: i.Method, Unique: i.IsUnique, Primary: i.IsPrimary, Predicate: i.Predicate}
	for _, el := range i.Elements() {
		if el.Column != nil {
			v.Elements = append(v.Elements, el.Column.Name)
		} else {
			v.Elements = append(v.Elements, el.Expression)
		}
	}
	return v
}

func describeRelation(r *ir.Relation) relationView {
	v := relationView{Name: r.Name, Kind: r.Kind.String()}
	if target := r.TargetTable(); target != nil {
		v.Target = target.FullName()
	}
	if fk := r.ForeignKey(); fk != nil {
		v.ForeignKey = fk.Name
	}
	if join := r.JoinTable(); join != nil {
		v.JoinTable = join.FullName()
	}
	return v
}

func describeType(t *ir.Type) typeView {
	v := typeView{Name: t.Name, Kind: t.Kind.String(), Values: t.Values}
	if base := t.BaseType(); base != nil {
		v.Base = base.SQLName
	}
	if sub := t.Subtype(); sub != nil {
		v.Base = sub.SQLName
	}
	return v
}

func describeFunction(f *ir.Function) functionView {
	v := functionView{Signature: f.Signature(), Kind: f.Kind.String(), Language: f.Language}
	if rt := f.ReturnType(); rt != nil {
		v.Returns = rt.SQLName
		if f.ReturnsSet {
			v.Returns = "SETOF " + v.Returns
		}
	}
	return v
}

func fullNames(entities []*ir.Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.FullName()
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// textWriter prints views as an indented outline. A nil c prints plain text.
type textWriter struct {
	w     io.Writer
	c     *color.Color
	depth int
}

func (t *textWriter) line(format string, args ...any) {
	fmt.Fprintf(t.w, "%s%s\n", strings.Repeat("  ", t.depth), fmt.Sprintf(format, args...))
}

func (t *textWriter) nested(fn func()) {
	t.depth++
	fn()
	t.depth--
}

func (t *textWriter) database(v databaseView) {
	t.line("%s", t.c.Heading(fmt.Sprintf("Database %s (PostgreSQL %s)", v.Database, v.ServerVersion)))
	for _, s := range v.Schemas {
		t.line("")
		t.schema(s)
	}
	if len(v.DependencyOrder) > 0 {
		t.line("")
		t.line("Dependency order: %s", strings.Join(v.DependencyOrder, ", "))
	}
	for _, cycle := range v.ReferenceCycles {
		t.line("%s %s", t.c.Warning("Reference cycle:"), strings.Join(cycle, " -> "))
	}
	for _, c := range v.Collisions {
		t.line("%s %s", t.c.Warning("Name collision:"), c)
	}
}

func (t *textWriter) schema(v schemaView) {
	t.line("%s%s", t.c.Heading("Schema "+v.Name), t.comment(v.Comment))
	t.nested(func() {
		for _, e := range v.Entities {
			t.entity(e)
		}
		for _, ty := range v.Types {
			t.typ(ty)
		}
		for _, f := range v.Functions {
			t.function(f)
		}
	})
}

func (t *textWriter) entity(v entityView) {
	kind := v.Kind
	if v.JoinTable {
		kind = "join table"
	}
	t.line("%s %s%s", t.c.Kind(kind), v.Name, t.comment(v.Comment))
	t.nested(func() {
		for _, c := range v.Columns {
			t.column(c)
		}
		for _, c := range v.Constraints {
			t.constraint(c)
		}
		for _, i := range v.Indexes {
			t.index(i)
		}
		for _, r := range v.Relations {
			t.relation(r)
		}
	})
}

func (t *textWriter) column(v columnView) {
	var attrs []string
	if v.PrimaryKey {
		attrs = append(attrs, "PK")
	}
	if v.NotNull {
		attrs = append(attrs, "NOT NULL")
	}
	if v.Default != nil {
		attrs = append(attrs, "DEFAULT "+*v.Default)
	}
	t.line("%s %s %s%s%s", t.c.Kind("column"), v.Name, v.Type, attrSuffix(attrs), t.comment(v.Comment))
}

func (t *textWriter) constraint(v constraintView) {
	var attrs []string
	if v.References != "" {
		attrs = append(attrs, "REFERENCES "+v.References)
		if v.OnDelete != "" && v.OnDelete != string(ir.ActionNoAction) {
			attrs = append(attrs, "ON DELETE "+v.OnDelete)
		}
		if v.OnUpdate != "" && v.OnUpdate != string(ir.ActionNoAction) {
			attrs = append(attrs, "ON UPDATE "+v.OnUpdate)
		}
	}
	if v.Expression != "" {
		attrs = append(attrs, v.Expression)
	}
	t.line("%s %s (%s)%s", t.c.Kind(v.Kind), v.Name, strings.Join(v.Columns, ", "), attrSuffix(attrs))
}

func (t *textWriter) index(v indexView) {
	var attrs []string
	if v.Unique {
		attrs = append(attrs, "UNIQUE")
	}
	if v.Method != "" {
		attrs = append(attrs, "USING "+v.Method)
	}
	if v.Predicate != nil {
		attrs = append(attrs, "WHERE "+*v.Predicate)
	}
	t.line("%s %s (%s)%s", t.c.Kind("index"), v.Name, strings.Join(v.Elements, ", "), attrSuffix(attrs))
}

func (t *textWriter) relation(v relationView) {
	via := v.ForeignKey
	if v.JoinTable != "" {
		via = v.JoinTable
	}
	t.line("%s %s -> %s (via %s)", t.c.Kind(v.Kind), t.c.Relation(v.Name), v.Target, via)
}

func (t *textWriter) typ(v typeView) {
	var attrs []string
	if v.Base != "" {
		attrs = append(attrs, v.Base)
	}
	if len(v.Values) > 0 {
		attrs = append(attrs, "'"+strings.Join(v.Values, "', '")+"'")
	}
	t.line("%s %s %s%s", t.c.Kind("type"), v.Name, v.Kind, attrSuffix(attrs))
}

func (t *textWriter) function(v functionView) {
	returns := ""
	if v.Returns != "" {
		returns = " RETURNS " + v.Returns
	}
	t.line("%s %s%s LANGUAGE %s", t.c.Kind(v.Kind), v.Signature, returns, v.Language)
}

func attrSuffix(attrs []string) string {
	if len(attrs) == 0 {
		return ""
	}
	return " " + strings.Join(attrs, " ")
}

func (t *textWriter) comment(comment string) string {
	if comment == "" {
		return ""
	}
	return " " + t.c.Comment("-- "+strings.ReplaceAll(comment, "\n", " "))
}
