package pgstructure

import (
	"context"

	"github.com/pgstructure/pgstructure/internal/config"
	"github.com/pgstructure/pgstructure/ir"
)

// InspectWithConfigFile inspects a database with options read from a
// .toml, .yaml or .yml config file. A missing file means default options.
func InspectWithConfigFile(ctx context.Context, dbConfig DatabaseConfig, configPath string) (*ir.DB, error) {
	file, err := config.LoadFromPath(configPath)
	if err != nil {
		return nil, err
	}
	opts, err := file.Options()
	if err != nil {
		return nil, err
	}
	return InspectDatabase(ctx, dbConfig, opts)
}

// InspectSchemas inspects only the schemas matching the given patterns.
func InspectSchemas(ctx context.Context, dbConfig DatabaseConfig, patterns ...string) (*ir.DB, error) {
	return InspectDatabase(ctx, dbConfig, ir.Options{IncludeSchemas: patterns})
}

// OptionsWithStrategy returns options using one of the built-in relation
// naming strategies: "short", "descriptive" or "optimal".
func OptionsWithStrategy(name string) (ir.Options, error) {
	names, err := ir.RelationNameFunctionsByName(name)
	if err != nil {
		return ir.Options{}, err
	}
	return ir.Options{RelationNameFunctions: names}, nil
}
