// Package catalog reads the raw PostgreSQL catalog rows the object graph is
// assembled from.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/pgstructure/pgstructure/internal/logger"
	"github.com/pgstructure/pgstructure/ir"
)

// Loader runs the catalog queries against one database.
type Loader struct {
	db *sql.DB
}

// NewLoader returns a loader for db. The connection may use any PostgreSQL
// database/sql driver.
func NewLoader(db *sql.DB) *Loader {
	return &Loader{db: db}
}

// userSchemaFilter removes system, toast and temporary schemas.
const userSchemaFilter = `n.nspname NOT IN ('pg_catalog', 'information_schema')
	AND n.nspname NOT LIKE 'pg_toast%'
	AND n.nspname NOT LIKE 'pg_temp_%'`

// Load reads every catalog subject. Metadata is read first; the seven row
// sets are then read concurrently.
func (l *Loader) Load(ctx context.Context) (*ir.Rows, error) {
	log := logger.Get()
	rows := &ir.Rows{}

	if err := l.loadMetadata(ctx, &rows.Metadata); err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	log.Debug("Loading catalog", "database", rows.Metadata.DatabaseName, "server_version", rows.Metadata.ServerVersion)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return wrap("schemas", l.loadSchemas(ctx, &rows.Schemas)) })
	g.Go(func() error { return wrap("types", l.loadTypes(ctx, &rows.Types)) })
	g.Go(func() error { return wrap("entities", l.loadEntities(ctx, &rows.Entities)) })
	g.Go(func() error { return wrap("columns", l.loadColumns(ctx, &rows.Columns)) })
	g.Go(func() error { return wrap("indexes", l.loadIndexes(ctx, &rows.Indexes)) })
	g.Go(func() error { return wrap("constraints", l.loadConstraints(ctx, &rows.Constraints)) })
	g.Go(func() error { return wrap("functions", l.loadFunctions(ctx, &rows.Functions)) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug("Catalog loaded",
		"schemas", len(rows.Schemas),
		"types", len(rows.Types),
		"entities", len(rows.Entities),
		"columns", len(rows.Columns),
		"indexes", len(rows.Indexes),
		"constraints", len(rows.Constraints),
		"functions", len(rows.Functions),
	)
	return rows, nil
}

func wrap(subject string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", subject, err)
	}
	return nil
}

func (l *Loader) loadMetadata(ctx context.Context, meta *ir.Metadata) error {
	return l.db.QueryRowContext(ctx,
		`SELECT current_database(), current_setting('server_version')`,
	).Scan(&meta.DatabaseName, &meta.ServerVersion)
}

func (l *Loader) loadSchemas(ctx context.Context, out *[]ir.SchemaRow) error {
	rows, err := l.db.QueryContext(ctx, `
		SELECT n.oid, n.nspname, COALESCE(obj_description(n.oid, 'pg_namespace'), '')
		FROM pg_namespace n
		WHERE n.nspname NOT LIKE 'pg_toast%' AND n.nspname NOT LIKE 'pg_temp_%'
		ORDER BY n.nspname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r ir.SchemaRow
		if err := rows.Scan(&r.OID, &r.Name, &r.Comment); err != nil {
			return err
		}
		*out = append(*out, r)
	}
	return rows.Err()
}

func (l *Loader) loadTypes(ctx context.Context, out *[]ir.TypeRow) error {
	rows, err := l.db.QueryContext(ctx, `
		SELECT t.oid, t.typnamespace, t.typname,
			CASE WHEN n.nspname = 'pg_catalog' THEN format_type(t.oid, NULL) ELSE t.typname END,
			t.typtype::text, t.typcategory::text,
			COALESCE(obj_description(t.oid, 'pg_type'), ''),
			t.typrelid, t.typbasetype,
			CASE WHEN t.typtype = 'd' THEN format_type(t.typbasetype, t.typtypmod) ELSE '' END,
			t.typnotnull, t.typdefault,
			CASE WHEN t.typtype = 'e' THEN (
				SELECT json_agg(e.enumlabel ORDER BY e.enumsortorder)
				FROM pg_enum e WHERE e.enumtypid = t.oid
			)::text END,
			COALESCE(r.rngsubtype, m.rngsubtype, 0)
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		LEFT JOIN pg_range r ON r.rngtypid = t.oid
		LEFT JOIN pg_range m ON m.rngmultitypid = t.oid
		WHERE t.typcategory <> 'A'
			AND n.nspname NOT LIKE 'pg_toast%' AND n.nspname NOT LIKE 'pg_temp_%'
			AND NOT (t.typtype = 'c' AND n.nspname IN ('pg_catalog', 'information_schema'))
			AND (t.typrelid = 0 OR EXISTS (
				SELECT 1 FROM pg_class c WHERE c.oid = t.typrelid AND c.relkind IN ('r', 'p', 'v', 'm', 'c')
			))
		ORDER BY n.nspname, t.typname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r                  ir.TypeRow
			kind, category     string
			defaultValue, enum sql.NullString
		)
		if err := rows.Scan(&r.OID, &r.SchemaOID, &r.Name, &r.SQLName, &kind, &category, &r.Comment,
			&r.RelationOID, &r.BaseTypeOID, &r.BaseSQLType, &r.NotNull, &defaultValue, &enum, &r.SubtypeOID); err != nil {
			return err
		}
		r.Kind, r.Category = firstByte(kind), firstByte(category)
		r.Default = nullable(defaultValue)
		if enum.Valid {
			var labels []any
			if err := json.Unmarshal([]byte(enum.String), &labels); err != nil {
				return fmt.Errorf("enum %s: %w", r.Name, err)
			}
			if r.EnumValues, err = ir.ParseEnumValues(labels); err != nil {
				return err
			}
		}
		*out = append(*out, r)
	}
	return rows.Err()
}

func (l *Loader) loadEntities(ctx context.Context, out *[]ir.EntityRow) error {
	rows, err := l.db.QueryContext(ctx, `
		SELECT c.oid, c.relnamespace, c.relname, c.relkind::text,
			COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind IN ('r', 'p', 'v', 'm', 'S') AND `+userSchemaFilter+`
		ORDER BY n.nspname, c.relname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r    ir.EntityRow
			kind string
		)
		if err := rows.Scan(&r.OID, &r.SchemaOID, &r.Name, &kind, &r.Comment); err != nil {
			return err
		}
		r.Kind = firstByte(kind)
		*out = append(*out, r)
	}
	return rows.Err()
}

// loadColumns reports array columns with their element type OID; the
// dimension stays visible in the formatted type.
func (l *Loader) loadColumns(ctx context.Context, out *[]ir.ColumnRow) error {
	rows, err := l.db.QueryContext(ctx, `
		SELECT a.attrelid, a.attnum, a.attname,
			CASE WHEN t.typcategory = 'A' THEN t.typelem ELSE a.atttypid END,
			format_type(a.atttypid, a.atttypmod),
			a.attnotnull,
			pg_get_expr(d.adbin, d.adrelid),
			COALESCE(col_description(a.attrelid, a.attnum), '')
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_type t ON t.oid = a.atttypid
		LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		WHERE a.attnum > 0 AND NOT a.attisdropped
			AND c.relkind IN ('r', 'p', 'v', 'm', 'c') AND `+userSchemaFilter+`
		ORDER BY a.attrelid, a.attnum`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r            ir.ColumnRow
			defaultValue sql.NullString
		)
		if err := rows.Scan(&r.ParentOID, &r.Position, &r.Name, &r.TypeOID, &r.SQLType,
			&r.NotNull, &defaultValue, &r.Comment); err != nil {
			return err
		}
		r.Default = nullable(defaultValue)
		*out = append(*out, r)
	}
	return rows.Err()
}

func (l *Loader) loadIndexes(ctx context.Context, out *[]ir.IndexRow) error {
	rows, err := l.db.QueryContext(ctx, `
		SELECT i.indexrelid, ic.relnamespace, i.indrelid, ic.relname,
			i.indisunique, i.indisprimary, i.indisexclusion,
			i.indkey::int2[]::text,
			ARRAY(
				SELECT CASE WHEN u.k = 0 THEN pg_get_indexdef(i.indexrelid, u.o::int, true) ELSE '' END
				FROM unnest(i.indkey::int2[]) WITH ORDINALITY AS u(k, o)
				ORDER BY u.o
			)::text,
			pg_get_indexdef(i.indexrelid),
			pg_get_expr(i.indpred, i.indrelid, true),
			COALESCE(obj_description(i.indexrelid, 'pg_class'), '')
		FROM pg_index i
		JOIN pg_class ic ON ic.oid = i.indexrelid
		JOIN pg_namespace n ON n.oid = ic.relnamespace
		WHERE `+userSchemaFilter+`
		ORDER BY n.nspname, ic.relname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r         ir.IndexRow
			positions []int64
			predicate sql.NullString
		)
		if err := rows.Scan(&r.OID, &r.SchemaOID, &r.TableOID, &r.Name,
			&r.IsUnique, &r.IsPrimary, &r.IsExclusion,
			pq.Array(&positions), pq.Array(&r.Expressions),
			&r.Definition, &predicate, &r.Comment); err != nil {
			return err
		}
		r.Positions = toInts(positions)
		r.Predicate = nullable(predicate)
		*out = append(*out, r)
	}
	return rows.Err()
}

func (l *Loader) loadConstraints(ctx context.Context, out *[]ir.ConstraintRow) error {
	rows, err := l.db.QueryContext(ctx, `
		SELECT co.oid, co.connamespace, co.conname, co.contype::text,
			co.conrelid, co.contypid, co.conindid,
			COALESCE(co.conkey::text, '{}'), COALESCE(co.confkey::text, '{}'),
			co.confrelid, co.confupdtype::text, co.confdeltype::text, co.confmatchtype::text,
			co.condeferrable, co.condeferred,
			CASE WHEN co.contype = 'c' THEN pg_get_constraintdef(co.oid, true) ELSE '' END,
			COALESCE(obj_description(co.oid, 'pg_constraint'), '')
		FROM pg_constraint co
		JOIN pg_namespace n ON n.oid = co.connamespace
		WHERE `+userSchemaFilter+`
			-- clones of a foreign key to a partitioned table, one per referenced partition
			AND NOT (co.contype = 'f' AND co.conparentid <> 0 AND EXISTS (
				SELECT 1 FROM pg_constraint pc WHERE pc.oid = co.conparentid AND pc.conrelid = co.conrelid
			))
		ORDER BY n.nspname, co.conrelid, co.conname`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r                               ir.ConstraintRow
			kind, onUpdate, onDelete, match string
			positions, referencedPositions  []int64
		)
		if err := rows.Scan(&r.OID, &r.SchemaOID, &r.Name, &kind,
			&r.TableOID, &r.DomainOID, &r.IndexOID,
			pq.Array(&positions), pq.Array(&referencedPositions),
			&r.ReferencedTableOID, &onUpdate, &onDelete, &match,
			&r.Deferrable, &r.InitiallyDeferred, &r.Expression, &r.Comment); err != nil {
			return err
		}
		r.Kind = firstByte(kind)
		r.OnUpdate, r.OnDelete, r.MatchType = firstByte(onUpdate), firstByte(onDelete), firstByte(match)
		if r.Kind != 'f' {
			r.OnUpdate, r.OnDelete, r.MatchType = 0, 0, 0
		}
		r.Positions, r.ReferencedPositions = toInts(positions), toInts(referencedPositions)
		r.Expression = checkExpression(r.Expression)
		*out = append(*out, r)
	}
	return rows.Err()
}

// loadFunctions reports array argument and return types by element type.
func (l *Loader) loadFunctions(ctx context.Context, out *[]ir.FunctionRow) error {
	rows, err := l.db.QueryContext(ctx, `
		SELECT p.oid, p.pronamespace, p.proname, p.prokind::text,
			COALESCE(p.proargnames, '{}')::text,
			COALESCE(p.proargmodes::text[], '{}')::text,
			ARRAY(
				SELECT CASE WHEN t.typcategory = 'A' THEN t.typelem ELSE t.oid END
				FROM unnest(COALESCE(p.proallargtypes, p.proargtypes::oid[])) WITH ORDINALITY AS u(oid, o)
				JOIN pg_type t ON t.oid = u.oid
				ORDER BY u.o
			)::text,
			CASE WHEN rt.typcategory = 'A' THEN rt.typelem ELSE p.prorettype END,
			p.proretset, l.lanname, p.provolatile::text, p.proisstrict, p.prosecdef,
			COALESCE(p.prosrc, ''),
			COALESCE(obj_description(p.oid, 'pg_proc'), '')
		FROM pg_proc p
		JOIN pg_language l ON l.oid = p.prolang
		JOIN pg_type rt ON rt.oid = p.prorettype
		JOIN pg_namespace n ON n.oid = p.pronamespace
		WHERE `+userSchemaFilter+`
		ORDER BY n.nspname, p.proname, p.oid`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r                ir.FunctionRow
			kind, volatility string
			modes            []string
			typeOIDs         []int64
		)
		if err := rows.Scan(&r.OID, &r.SchemaOID, &r.Name, &kind,
			pq.Array(&r.ArgumentNames), pq.Array(&modes), pq.Array(&typeOIDs),
			&r.ReturnTypeOID, &r.ReturnsSet, &r.Language, &volatility,
			&r.IsStrict, &r.SecurityDefiner, &r.Source, &r.Comment); err != nil {
			return err
		}
		r.Kind, r.Volatility = firstByte(kind), firstByte(volatility)
		for _, m := range modes {
			r.ArgumentModes = append(r.ArgumentModes, firstByte(m))
		}
		for _, oid := range typeOIDs {
			r.ArgumentTypeOIDs = append(r.ArgumentTypeOIDs, uint32(oid))
		}
		// Procedures report "void" for their return type.
		if r.Kind == 'p' {
			r.ReturnTypeOID = 0
		}
		*out = append(*out, r)
	}
	return rows.Err()
}

// checkExpression turns "CHECK ((a > 0)) NOT VALID" into "(a > 0)".
func checkExpression(def string) string {
	if def == "" {
		return ""
	}
	def = strings.TrimSuffix(strings.TrimSpace(def), " NOT VALID")
	def = strings.TrimSuffix(def, " NO INHERIT")
	if inner, ok := strings.CutPrefix(def, "CHECK "); ok {
		def = strings.TrimSpace(inner)
	}
	return def
}

func firstByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func toInts(values []int64) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}
