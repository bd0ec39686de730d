// Package pgstructure reads the structure of a PostgreSQL database into a
// linked, read-only object graph: schemas, tables, views, columns, types,
// indexes, constraints, functions, and the relations inferred from foreign
// keys with human-readable names.
package pgstructure

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgstructure/pgstructure/internal/catalog"
	"github.com/pgstructure/pgstructure/ir"
)

// Build assembles the graph from catalog rows fetched elsewhere.
func Build(rows *ir.Rows, opts ir.Options) (*ir.DB, error) {
	return ir.Build(rows, opts)
}

// Inspect reads the catalog of the database behind conn and builds the graph.
func Inspect(ctx context.Context, conn *sql.DB, opts ir.Options) (*ir.DB, error) {
	rows, err := LoadRows(ctx, conn)
	if err != nil {
		return nil, err
	}
	return ir.Build(rows, opts)
}

// LoadRows reads the raw catalog rows without building the graph.
func LoadRows(ctx context.Context, conn *sql.DB) (*ir.Rows, error) {
	rows, err := catalog.NewLoader(conn).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return rows, nil
}

// InspectDatabase connects with the given settings, inspects, and closes
// the connection.
func InspectDatabase(ctx context.Context, config DatabaseConfig, opts ir.Options) (*ir.DB, error) {
	conn, err := config.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return Inspect(ctx, conn, opts)
}
