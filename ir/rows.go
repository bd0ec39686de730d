package ir

// Rows is the raw catalog input of Build: one ordered slice per catalog
// subject. Cross references between rows are OIDs. Zero means "none".
type Rows struct {
	Metadata    Metadata
	Schemas     []SchemaRow
	Types       []TypeRow
	Entities    []EntityRow
	Columns     []ColumnRow
	Indexes     []IndexRow
	Constraints []ConstraintRow
	Functions   []FunctionRow
}

// Metadata describes the database the rows were read from.
type Metadata struct {
	DatabaseName  string
	ServerVersion string
}

// SchemaRow is a pg_namespace entry.
type SchemaRow struct {
	OID     uint32
	Name    string
	Comment string
}

// TypeRow is a pg_type entry. Array types are not listed; columns and
// arguments reference their element type and carry the dimension in SQLType.
type TypeRow struct {
	OID       uint32
	SchemaOID uint32
	Name      string // typname, e.g. "int4"
	SQLName   string // format_type of the type, e.g. "integer"; empty when equal to Name
	Kind      byte   // typtype: b c d e p r m
	Category  byte   // typcategory
	Comment   string

	// Composite: pg_class OID of the row type (typrelid).
	RelationOID uint32
	// Domain: base type and its formatted declaration, e.g. "character varying(20)".
	BaseTypeOID uint32
	BaseSQLType string
	NotNull     bool
	Default     *string
	// Enum labels in sort order.
	EnumValues []string
	// Range / multirange subtype.
	SubtypeOID uint32
}

// EntityRow is a pg_class entry for a table, view, materialized view or sequence.
type EntityRow struct {
	OID       uint32
	SchemaOID uint32
	Name      string
	Kind      byte // relkind: r p v m S
	Comment   string
}

// ColumnRow is a pg_attribute entry of an entity or a standalone composite type.
type ColumnRow struct {
	ParentOID uint32 // attrelid
	Position  int    // attnum
	Name      string
	TypeOID   uint32 // element type for arrays
	SQLType   string // format_type(atttypid, atttypmod), e.g. "numeric(3,2)[]"
	NotNull   bool
	Default   *string
	Comment   string
}

// IndexRow is a pg_index entry joined with its pg_class entry.
type IndexRow struct {
	OID         uint32
	SchemaOID   uint32
	TableOID    uint32
	Name        string
	IsUnique    bool
	IsPrimary   bool
	IsExclusion bool
	// Positions are indkey; 0 marks an expression element.
	Positions []int
	// Expressions holds the text of each element, aligned with Positions.
	Expressions []string
	// Definition is pg_get_indexdef(oid).
	Definition string
	// Predicate is the partial-index condition.
	Predicate *string
	Comment   string
}

// ConstraintRow is a pg_constraint entry.
type ConstraintRow struct {
	OID       uint32
	SchemaOID uint32
	Name      string
	Kind      byte   // contype: p u c x f (t is skipped)
	TableOID  uint32 // conrelid
	DomainOID uint32 // contypid
	IndexOID  uint32 // conindid; for foreign keys the referenced side
	// Positions is conkey, ReferencedPositions is confkey.
	Positions           []int
	ReferencedPositions []int
	ReferencedTableOID  uint32 // confrelid
	OnUpdate            byte   // confupdtype
	OnDelete            byte   // confdeltype
	MatchType           byte   // confmatchtype
	Deferrable          bool
	InitiallyDeferred   bool
	// Expression is the check expression, without the CHECK keyword.
	Expression string
	Comment    string
}

// FunctionRow is a pg_proc entry.
type FunctionRow struct {
	OID           uint32
	SchemaOID     uint32
	Name          string
	Kind          byte // prokind: f p a w
	ArgumentNames []string
	// ArgumentModes is proargmodes; empty means every argument is IN.
	ArgumentModes    []byte
	ArgumentTypeOIDs []uint32
	ReturnTypeOID    uint32
	ReturnsSet       bool
	Language         string
	Volatility       byte // i s v
	IsStrict         bool
	SecurityDefiner  bool
	Source           string
	Comment          string
}
