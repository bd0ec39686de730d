package ir

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/pgstructure/pgstructure/internal/logger"
)

// systemSchemaNames are always loaded and never filtered.
var systemSchemaNames = map[string]bool{
	"pg_catalog":         true,
	"information_schema": true,
}

// builder is the state of one Build call. It is discarded once the graph is
// returned.
type builder struct {
	rows      *Rows
	opts      Options
	db        *DB
	filter    SchemaFilter
	log       *slog.Logger
	relations *pendingRelations
}

// Build assembles the object graph from catalog rows. Passes run in a fixed
// order because each resolves references to objects built by earlier ones.
// Any error aborts the build; no partial graph is returned.
func Build(rows *Rows, opts Options) (*DB, error) {
	if rows == nil {
		return nil, &InputError{Object: "rows", Message: "nil input"}
	}
	b := &builder{
		rows:      rows,
		opts:      opts,
		db:        newDB(rows.Metadata, opts),
		filter:    SchemaFilter{Include: opts.IncludeSchemas, Exclude: opts.ExcludeSchemas},
		log:       logger.Get(),
		relations: newPendingRelations(),
	}

	passes := []struct {
		name string
		run  func() error
	}{
		{"schemas", b.buildSchemas},
		{"types", b.buildTypes},
		{"entities", b.buildEntities},
		{"columns", b.buildColumns},
		{"indexes", b.buildIndexes},
		{"constraints", b.buildConstraints},
		{"functions", b.buildFunctions},
		{"table links", b.linkTables},
		{"relations", b.inferRelations},
		{"relation names", b.nameRelations},
	}
	for _, pass := range passes {
		if err := pass.run(); err != nil {
			return nil, fmt.Errorf("failed to build %s: %w", pass.name, err)
		}
		b.log.Debug("Build pass completed", "pass", pass.name)
	}
	return b.db, nil
}

func kindLetter(k byte) string { return string(rune(k)) }

func (b *builder) buildSchemas() error {
	for _, row := range b.rows.Schemas {
		system := systemSchemaNames[row.Name]
		if !system && !b.filter.Allows(row.Name) {
			b.log.Debug("Skipping filtered schema", "schema", row.Name)
			continue
		}
		s := &Schema{
			db:          b.db,
			OID:         row.OID,
			Name:        row.Name,
			System:      system,
			Comment:     newComment(row.Comment, b.opts.commentDataToken()),
			entities:    NewCollection(entityKey, WithThrowOnDuplicate(), WithLabel("entity")),
			types:       NewCollection(typeKey, WithThrowOnDuplicate(), WithLabel("type"), WithAliases(typeAliases)),
			functions:   NewCollection(functionKey, WithUniqueKeys()),
			indexes:     NewCollection(indexKey, WithThrowOnDuplicate(), WithLabel("index")),
			constraints: NewCollection(constraintKey, WithUniqueKeys()),
		}
		target := b.db.schemas
		if system {
			target = b.db.systemSchemas
		}
		if err := target.add(s); err != nil {
			return err
		}
		b.db.schemasByOID[row.OID] = s
	}
	return nil
}

func (b *builder) buildTypes() error {
	for _, row := range b.rows.Types {
		schema := b.db.schemasByOID[row.SchemaOID]
		if schema == nil {
			continue
		}
		kind, ok := typeKindOf(row.Kind, schema.System)
		if !ok {
			return &KindError{Subject: "type", Name: qualify(schema.Name, row.Name), Kind: kindLetter(row.Kind)}
		}
		t := &Type{
			db:          b.db,
			OID:         row.OID,
			schemaOID:   row.SchemaOID,
			Name:        row.Name,
			SQLName:     row.SQLName,
			Kind:        kind,
			Category:    row.Category,
			Comment:     newComment(row.Comment, b.opts.commentDataToken()),
			baseTypeOID: row.BaseTypeOID,
			NotNull:     row.NotNull,
			Default:     row.Default,
			relationOID: row.RelationOID,
			subtypeOID:  row.SubtypeOID,
		}
		if t.SQLName == "" {
			t.SQLName = row.Name
		}
		if kind == TypeEnum {
			t.Values = slices.Clone(row.EnumValues)
		}
		if kind == TypeComposite && row.RelationOID != 0 {
			b.db.compositesByRelation[row.RelationOID] = t
		}
		if err := schema.types.add(t); err != nil {
			return err
		}
		b.db.typesByOID[row.OID] = t
	}

	// Domains may be declared before their base type.
	for _, row := range b.rows.Types {
		t := b.db.typesByOID[row.OID]
		if t == nil || t.Kind != TypeDomain || row.BaseSQLType == "" {
			continue
		}
		category := row.Category
		if base := t.BaseType(); base != nil {
			category = base.Category
		}
		decl, dims := SplitArrayDimension(row.BaseSQLType)
		t.ArrayDimension = dims
		parsed, err := ParseSQLType(decl, category)
		if err != nil {
			b.log.Warn("Cannot parse domain base type", "domain", t.FullName(), "error", err)
			continue
		}
		t.Length, t.Precision, t.Scale = parsed.Length, parsed.Precision, parsed.Scale
	}
	return nil
}

func (b *builder) buildEntities() error {
	for _, row := range b.rows.Entities {
		schema := b.db.schemasByOID[row.SchemaOID]
		if schema == nil {
			continue
		}
		kind, partitioned, ok := entityKindOf(row.Kind)
		if !ok {
			return &KindError{Subject: "entity", Name: qualify(schema.Name, row.Name), Kind: kindLetter(row.Kind)}
		}
		e := newEntity(b.db, row, kind, partitioned)
		if err := schema.entities.add(e); err != nil {
			return err
		}
		b.db.entitiesByOID[row.OID] = e
	}
	return nil
}

// buildColumns attaches columns to entities and to standalone composite
// types in ordinal order. System columns (position <= 0) are skipped.
func (b *builder) buildColumns() error {
	rows := slices.Clone(b.rows.Columns)
	slices.SortStableFunc(rows, func(x, y ColumnRow) int { return x.Position - y.Position })

	for _, row := range rows {
		if row.Position <= 0 {
			continue
		}
		entity := b.db.entitiesByOID[row.ParentOID]
		composite := b.db.compositesByRelation[row.ParentOID]
		if entity == nil && composite == nil {
			continue
		}

		c := &Column{
			db:        b.db,
			parentOID: row.ParentOID,
			typeOID:   row.TypeOID,
			Name:      row.Name,
			Position:  row.Position,
			SQLType:   row.SQLType,
			NotNull:   row.NotNull,
			Default:   row.Default,
			Comment:   newComment(row.Comment, b.opts.commentDataToken()),
		}
		b.resolveColumnType(c)

		if entity != nil {
			if err := entity.columns.add(c); err != nil {
				return fmt.Errorf("%s: %w", entity.FullName(), err)
			}
			entity.byPosition[c.Position] = c
			continue
		}
		if composite.columns == nil {
			composite.columns = NewCollection(columnKey, WithThrowOnDuplicate(), WithLabel("column"))
		}
		if err := composite.columns.add(c); err != nil {
			return fmt.Errorf("%s: %w", composite.FullName(), err)
		}
	}
	return nil
}

func (b *builder) resolveColumnType(c *Column) {
	if c.SQLType == "" {
		return
	}
	decl, dims := SplitArrayDimension(c.SQLType)
	c.ArrayDimension = dims
	var category byte
	if t := c.Type(); t != nil {
		category = t.Category
	}
	parsed, err := ParseSQLType(decl, category)
	if err != nil {
		b.log.Warn("Cannot parse column type", "column", c.FullName(), "type", c.SQLType, "error", err)
		return
	}
	c.Length, c.Precision, c.Scale = parsed.Length, parsed.Precision, parsed.Scale
}

func (b *builder) buildIndexes() error {
	for _, row := range b.rows.Indexes {
		schema := b.db.schemasByOID[row.SchemaOID]
		table := b.db.entitiesByOID[row.TableOID]
		if schema == nil || table == nil {
			continue
		}
		idx := &Index{
			db:          b.db,
			OID:         row.OID,
			schemaOID:   row.SchemaOID,
			tableOID:    row.TableOID,
			Name:        row.Name,
			IsUnique:    row.IsUnique,
			IsPrimary:   row.IsPrimary,
			IsExclusion: row.IsExclusion,
			Definition:  row.Definition,
			Predicate:   row.Predicate,
			Comment:     newComment(row.Comment, b.opts.commentDataToken()),
			columns:     NewCollection(columnKey),
		}

		for i, pos := range row.Positions {
			if pos == 0 {
				var expr string
				if i < len(row.Expressions) {
					expr = row.Expressions[i]
				}
				idx.elements = append(idx.elements, IndexElement{Expression: expr})
				continue
			}
			col := table.Column(pos)
			if col == nil {
				return &InputError{Object: qualify(schema.Name, row.Name), Message: fmt.Sprintf("no column at position %d of %s", pos, table.FullName())}
			}
			idx.elements = append(idx.elements, IndexElement{Column: col})
			_ = idx.columns.add(col)
		}

		if row.Definition != "" {
			method, err := parseIndexMethod(row.Definition)
			if err != nil {
				b.log.Debug("Cannot read index access method", "index", idx.FullName(), "error", err)
			}
			idx.Method = method
		}

		if err := table.indexes.add(idx); err != nil {
			return err
		}
		if err := schema.indexes.add(idx); err != nil {
			return err
		}
		b.db.indexesByOID[row.OID] = idx
	}
	return nil
}

func (b *builder) buildConstraints() error {
	for _, row := range b.rows.Constraints {
		schema := b.db.schemasByOID[row.SchemaOID]
		if schema == nil {
			continue
		}
		name := qualify(schema.Name, row.Name)
		kind, skip, ok := constraintKindOf(row.Kind)
		if !ok {
			return &KindError{Subject: "constraint", Name: name, Kind: kindLetter(row.Kind)}
		}
		if skip {
			continue
		}
		switch {
		case row.TableOID != 0 && row.DomainOID != 0:
			return &InputError{Object: name, Message: "constraint belongs to both a table and a domain"}
		case row.TableOID == 0 && row.DomainOID == 0:
			return &InputError{Object: name, Message: "constraint belongs to neither a table nor a domain"}
		}

		c := &Constraint{
			db:                 b.db,
			OID:                row.OID,
			schemaOID:          row.SchemaOID,
			tableOID:           row.TableOID,
			domainOID:          row.DomainOID,
			indexOID:           row.IndexOID,
			Name:               row.Name,
			Kind:               kind,
			Deferrable:         row.Deferrable,
			InitiallyDeferred:  row.InitiallyDeferred,
			Comment:            newComment(row.Comment, b.opts.commentDataToken()),
			Expression:         row.Expression,
			referencedTableOID: row.ReferencedTableOID,
			columns:            NewCollection(columnKey),
		}

		if row.DomainOID != 0 {
			domain := b.db.typesByOID[row.DomainOID]
			if domain == nil {
				continue
			}
			if domain.checks == nil {
				domain.checks = NewCollection(constraintKey, WithThrowOnDuplicate(), WithLabel("constraint"))
			}
			if err := domain.checks.add(c); err != nil {
				return err
			}
			_ = schema.constraints.add(c)
			b.db.constraintsByOID[row.OID] = c
			continue
		}

		table := b.db.entitiesByOID[row.TableOID]
		if table == nil {
			continue
		}
		for _, pos := range row.Positions {
			col := table.Column(pos)
			if col == nil {
				return &InputError{Object: name, Message: fmt.Sprintf("no column at position %d of %s", pos, table.FullName())}
			}
			_ = c.columns.add(col)
		}
		if kind == ConstraintForeignKey {
			if err := b.resolveForeignKey(c, row); err != nil {
				return err
			}
		}

		if err := table.constraints.add(c); err != nil {
			return err
		}
		_ = schema.constraints.add(c)
		b.db.constraintsByOID[row.OID] = c
	}
	return nil
}

func (b *builder) resolveForeignKey(c *Constraint, row ConstraintRow) error {
	name := qualify(c.Schema().Name, c.Name)
	var ok bool
	if c.OnUpdate, ok = actionOf(row.OnUpdate); !ok {
		return &KindError{Subject: "foreign key action", Name: name, Kind: kindLetter(row.OnUpdate)}
	}
	if c.OnDelete, ok = actionOf(row.OnDelete); !ok {
		return &KindError{Subject: "foreign key action", Name: name, Kind: kindLetter(row.OnDelete)}
	}
	if c.MatchType, ok = matchTypeOf(row.MatchType); !ok {
		return &KindError{Subject: "foreign key match", Name: name, Kind: kindLetter(row.MatchType)}
	}

	c.mandatoryParent = c.columns.Len() > 0
	for _, col := range c.columns.items {
		if !col.NotNull {
			c.mandatoryParent = false
			break
		}
	}

	target := c.ReferencedTable()
	if target == nil {
		b.log.Debug("Foreign key references a filtered table", "foreign_key", name)
		return nil
	}

	c.referencedColumns = NewCollection(columnKey)
	if len(row.ReferencedPositions) > 0 {
		for _, pos := range row.ReferencedPositions {
			col := target.Column(pos)
			if col == nil {
				return &InputError{Object: name, Message: fmt.Sprintf("no column at position %d of %s", pos, target.FullName())}
			}
			_ = c.referencedColumns.add(col)
		}
	} else if idx := c.Index(); idx != nil {
		for _, col := range idx.columns.items {
			_ = c.referencedColumns.add(col)
		}
	}
	if c.referencedColumns.Len() != c.columns.Len() {
		return &InputError{Object: name, Message: fmt.Sprintf("%d columns reference %d columns of %s",
			c.columns.Len(), c.referencedColumns.Len(), target.FullName())}
	}
	target.referencing = append(target.referencing, c.OID)
	return nil
}

func (b *builder) buildFunctions() error {
	for _, row := range b.rows.Functions {
		schema := b.db.schemasByOID[row.SchemaOID]
		if schema == nil {
			continue
		}
		name := qualify(schema.Name, row.Name)
		kind, ok := functionKindOf(row.Kind)
		if !ok {
			return &KindError{Subject: "function", Name: name, Kind: kindLetter(row.Kind)}
		}
		f := &Function{
			db:              b.db,
			OID:             row.OID,
			schemaOID:       row.SchemaOID,
			Name:            row.Name,
			Kind:            kind,
			ReturnsSet:      row.ReturnsSet,
			Language:        row.Language,
			Volatility:      volatilityOf(row.Volatility),
			IsStrict:        row.IsStrict,
			SecurityDefiner: row.SecurityDefiner,
			Source:          row.Source,
			Comment:         newComment(row.Comment, b.opts.commentDataToken()),
			returnTypeOID:   row.ReturnTypeOID,
			arguments:       NewCollection(argumentKey),
		}

		for i, typeOID := range row.ArgumentTypeOIDs {
			mode := ArgumentIn
			if i < len(row.ArgumentModes) {
				if mode, ok = argumentModeOf(row.ArgumentModes[i]); !ok {
					return &KindError{Subject: "argument mode", Name: name, Kind: kindLetter(row.ArgumentModes[i])}
				}
			}
			a := &Argument{db: b.db, typeOID: typeOID, Mode: mode, Position: i + 1}
			if i < len(row.ArgumentNames) {
				a.Name = row.ArgumentNames[i]
			}
			_ = f.arguments.add(a)
		}

		_ = schema.functions.add(f)
		b.db.functionsByOID[row.OID] = f
	}
	return nil
}

func (b *builder) linkTables() error {
	for _, table := range b.db.Tables() {
		table.namingCase = detectNamingCase(table)
	}
	return nil
}
