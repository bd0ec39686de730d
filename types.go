package pgstructure

import (
	"context"
	"database/sql"

	"github.com/pgstructure/pgstructure/cmd/util"
	"github.com/pgstructure/pgstructure/ir"
)

// Re-export the graph types for external consumption

// DB is the root of the object graph.
type DB = ir.DB

// Rows is the raw catalog input of Build.
type Rows = ir.Rows

// Options configures graph construction.
type Options = ir.Options

// Schema is a namespace of entities, types and functions.
type Schema = ir.Schema

// Entity is a table, view, materialized view or sequence.
type Entity = ir.Entity

// Column is a column of an entity or composite type.
type Column = ir.Column

// Constraint is a table or domain constraint.
type Constraint = ir.Constraint

// Index is an index of a table.
type Index = ir.Index

// Type is a data type.
type Type = ir.Type

// Function is a function, procedure, aggregate or window function.
type Function = ir.Function

// Relation is an association between two tables inferred from foreign keys.
type Relation = ir.Relation

// RelationNameFunctions names each relation kind.
type RelationNameFunctions = ir.RelationNameFunctions

// DatabaseConfig holds connection details for a PostgreSQL database.
type DatabaseConfig struct {
	Host     string // Database server host
	Port     int    // Database server port
	Database string // Database name
	User     string // Database user
	Password string // Database password (optional)
	SSLMode  string // SSL mode (default: "prefer")
	DSN      string // Connection string; overrides the fields above
}

func (c DatabaseConfig) connect(ctx context.Context) (*sql.DB, error) {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	return util.Connect(ctx, &util.ConnectionConfig{
		Host:            c.Host,
		Port:            c.Port,
		Database:        c.Database,
		User:            c.User,
		Password:        c.Password,
		SSLMode:         sslMode,
		ApplicationName: "pgstructure",
		DSN:             c.DSN,
	})
}
