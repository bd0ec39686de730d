package ir

import (
	"strings"
	"testing"
)

// fixture assembles catalog rows the way the catalog loader reports them.
type fixture struct {
	rows    Rows
	nextOID uint32
	schemas map[string]uint32
	types   map[string]uint32 // by SQL name
	tables  map[string]uint32 // by "schema.table"
	columns map[uint32][]string
	pkIndex map[uint32]uint32
}

type col struct {
	name    string
	sqlType string
	notNull bool
}

func newFixture() *fixture {
	f := &fixture{
		rows:    Rows{Metadata: Metadata{DatabaseName: "app", ServerVersion: "17.2"}},
		nextOID: 20000,
		schemas: make(map[string]uint32),
		types:   make(map[string]uint32),
		tables:  make(map[string]uint32),
		columns: make(map[uint32][]string),
		pkIndex: make(map[uint32]uint32),
	}
	f.rows.Schemas = append(f.rows.Schemas, SchemaRow{OID: 11, Name: "pg_catalog", Comment: "system catalog schema"})
	f.schemas["pg_catalog"] = 11
	for _, b := range []struct {
		oid      uint32
		name     string
		sqlName  string
		category byte
	}{
		{16, "bool", "boolean", CategoryBoolean},
		{20, "int8", "bigint", CategoryNumeric},
		{23, "int4", "integer", CategoryNumeric},
		{25, "text", "text", CategoryString},
		{1043, "varchar", "character varying", CategoryString},
		{1700, "numeric", "numeric", CategoryNumeric},
		{1184, "timestamptz", "timestamp with time zone", CategoryDateTime},
	} {
		f.rows.Types = append(f.rows.Types, TypeRow{OID: b.oid, SchemaOID: 11, Name: b.name, SQLName: b.sqlName, Kind: 'b', Category: b.category})
		f.types[b.sqlName] = b.oid
	}
	f.schema("public")
	return f
}

func (f *fixture) oid() uint32 {
	f.nextOID++
	return f.nextOID
}

func (f *fixture) schema(name string) uint32 {
	if oid, ok := f.schemas[name]; ok {
		return oid
	}
	oid := f.oid()
	f.schemas[name] = oid
	f.rows.Schemas = append(f.rows.Schemas, SchemaRow{OID: oid, Name: name})
	return oid
}

func (f *fixture) split(qualified string) (string, string) {
	if schema, name, ok := strings.Cut(qualified, "."); ok {
		return schema, name
	}
	return "public", qualified
}

// typeOID returns the OID of a built-in type for a declaration such as
// "character varying(20)[]".
func (f *fixture) typeOID(sqlType string) uint32 {
	decl, _ := SplitArrayDimension(sqlType)
	if i := strings.IndexByte(decl, '('); i >= 0 {
		decl = decl[:i]
	}
	if oid, ok := f.types[decl]; ok {
		return oid
	}
	return f.types["text"]
}

func (f *fixture) entity(qualified string, kind byte, cols ...col) uint32 {
	schemaName, name := f.split(qualified)
	schemaOID := f.schema(schemaName)
	oid := f.oid()
	f.tables[schemaName+"."+name] = oid
	f.rows.Entities = append(f.rows.Entities, EntityRow{OID: oid, SchemaOID: schemaOID, Name: name, Kind: kind})
	f.rows.Types = append(f.rows.Types, TypeRow{OID: f.oid(), SchemaOID: schemaOID, Name: name, Kind: 'c', Category: CategoryComposite, RelationOID: oid})
	for i, c := range cols {
		f.rows.Columns = append(f.rows.Columns, ColumnRow{
			ParentOID: oid, Position: i + 1, Name: c.name,
			TypeOID: f.typeOID(c.sqlType), SQLType: c.sqlType, NotNull: c.notNull,
		})
		f.columns[oid] = append(f.columns[oid], c.name)
	}
	return oid
}

func (f *fixture) table(qualified string, cols ...col) uint32 {
	return f.entity(qualified, 'r', cols...)
}

func (f *fixture) tableOID(qualified string) uint32 {
	schemaName, name := f.split(qualified)
	return f.tables[schemaName+"."+name]
}

func (f *fixture) positions(table uint32, names []string) []int {
	var out []int
	for _, n := range names {
		for i, c := range f.columns[table] {
			if c == n {
				out = append(out, i+1)
			}
		}
	}
	return out
}

func (f *fixture) index(qualified, name string, unique, primary bool, columns ...string) uint32 {
	table := f.tableOID(qualified)
	schemaName, tableName := f.split(qualified)
	oid := f.oid()
	positions := f.positions(table, columns)
	kind := "INDEX"
	if unique {
		kind = "UNIQUE INDEX"
	}
	f.rows.Indexes = append(f.rows.Indexes, IndexRow{
		OID: oid, SchemaOID: f.schema(schemaName), TableOID: table, Name: name,
		IsUnique: unique, IsPrimary: primary, Positions: positions,
		Expressions: make([]string, len(positions)),
		Definition:  "CREATE " + kind + " " + name + " ON " + schemaName + "." + tableName + " USING btree (" + strings.Join(columns, ", ") + ")",
	})
	return oid
}

func (f *fixture) pk(qualified string, columns ...string) {
	_, tableName := f.split(qualified)
	name := tableName + "_pkey"
	idx := f.index(qualified, name, true, true, columns...)
	table := f.tableOID(qualified)
	f.pkIndex[table] = idx
	schemaName, _ := f.split(qualified)
	f.rows.Constraints = append(f.rows.Constraints, ConstraintRow{
		OID: f.oid(), SchemaOID: f.schema(schemaName), Name: name, Kind: 'p',
		TableOID: table, IndexOID: idx, Positions: f.positions(table, columns),
	})
}

func (f *fixture) fk(qualified string, columns []string, target string) string {
	table := f.tableOID(qualified)
	targetOID := f.tableOID(target)
	schemaName, tableName := f.split(qualified)
	name := tableName + "_" + strings.Join(columns, "_") + "_fkey"
	f.rows.Constraints = append(f.rows.Constraints, ConstraintRow{
		OID: f.oid(), SchemaOID: f.schema(schemaName), Name: name, Kind: 'f',
		TableOID: table, IndexOID: f.pkIndex[targetOID], ReferencedTableOID: targetOID,
		Positions: f.positions(table, columns),
		OnUpdate:  'a', OnDelete: 'c', MatchType: 's',
	})
	return name
}

func (f *fixture) build(t *testing.T, opts Options) *DB {
	t.Helper()
	db, err := Build(&f.rows, opts)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return db
}

func mustTable(t *testing.T, db *DB, path string) *Entity {
	t.Helper()
	e, ok := db.Get(path).(*Entity)
	if !ok || e == nil {
		t.Fatalf("table %s not found", path)
	}
	return e
}

func relationNames(c *Collection[*Relation]) []string {
	return c.Keys()
}

// Common schemas used across tests.

func contactAccountFixture() *fixture {
	f := newFixture()
	f.table("account", col{"id", "integer", true}, col{"name", "text", true})
	f.pk("account", "id")
	f.table("contact",
		col{"id", "integer", true},
		col{"primary_account_id", "integer", true},
		col{"secondary_account_id", "integer", false},
	)
	f.pk("contact", "id")
	f.fk("contact", []string{"primary_account_id"}, "account")
	f.fk("contact", []string{"secondary_account_id"}, "account")
	return f
}

func productCategoryFixture() *fixture {
	f := newFixture()
	f.table("product", col{"id", "integer", true}, col{"name", "text", true})
	f.pk("product", "id")
	f.table("category", col{"id", "integer", true}, col{"title", "character varying(40)", true})
	f.pk("category", "id")
	f.table("product_category", col{"product_id", "integer", true}, col{"category_id", "integer", true})
	f.pk("product_category", "product_id", "category_id")
	f.fk("product_category", []string{"product_id"}, "product")
	f.fk("product_category", []string{"category_id"}, "category")
	return f
}

func friendshipFixture() *fixture {
	f := newFixture()
	f.table("member", col{"id", "integer", true}, col{"name", "text", true})
	f.pk("member", "id")
	f.table("friendship", col{"member_id", "integer", true}, col{"friend_id", "integer", true})
	f.pk("friendship", "member_id", "friend_id")
	f.fk("friendship", []string{"member_id"}, "member")
	f.fk("friendship", []string{"friend_id"}, "member")
	return f
}
