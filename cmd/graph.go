package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgstructure/pgstructure/cmd/util"
	"github.com/pgstructure/pgstructure/internal/catalog"
	"github.com/pgstructure/pgstructure/internal/config"
	"github.com/pgstructure/pgstructure/internal/logger"
	"github.com/pgstructure/pgstructure/ir"
)

// graphFlags are shared by every command that builds the object graph.
type graphFlags struct {
	conn           util.ConnectionConfig
	configFile     string
	relationNames  string
	targetFirst    bool
	includeSchemas []string
	excludeSchemas []string
}

func (f *graphFlags) register(cmd *cobra.Command) {
	util.AddConnectionFlags(cmd, &f.conn)
	cmd.Flags().StringVar(&f.configFile, "config", config.FileName, "Config file (.toml, .yaml or .yml)")
	cmd.Flags().StringVar(&f.relationNames, "relation-names", "", "Relation naming strategy: short, descriptive or optimal")
	cmd.Flags().BoolVar(&f.targetFirst, "fk-alias-target-first", false, "Read foreign key columns as <target>_<adjective>_id")
	cmd.Flags().StringSliceVar(&f.includeSchemas, "include-schema", nil, "Schema patterns to include (glob, ! negates)")
	cmd.Flags().StringSliceVar(&f.excludeSchemas, "exclude-schema", nil, "Schema patterns to exclude (glob, ! negates)")
	cmd.PreRunE = util.PreRunEWithEnvVars(&f.conn)
}

// options merges the config file with the flags; explicitly set flags win.
func (f *graphFlags) options(cmd *cobra.Command) (ir.Options, error) {
	file, err := config.LoadFromPath(f.configFile)
	if err != nil {
		return ir.Options{}, err
	}
	if file == nil {
		if cmd.Flags().Changed("config") {
			return ir.Options{}, fmt.Errorf("config file %s not found", f.configFile)
		}
		file = &config.File{}
	} else {
		logger.Get().Debug("Loaded config file", "path", f.configFile)
	}

	if cmd.Flags().Changed("relation-names") {
		file.RelationNames = f.relationNames
	}
	if cmd.Flags().Changed("fk-alias-target-first") {
		file.ForeignKeyAliasTargetFirst = f.targetFirst
	}
	if cmd.Flags().Changed("include-schema") {
		file.IncludeSchemas = f.includeSchemas
	}
	if cmd.Flags().Changed("exclude-schema") {
		file.ExcludeSchemas = f.excludeSchemas
	}
	return file.Options()
}

// build connects, reads the catalog and assembles the graph.
func (f *graphFlags) build(ctx context.Context, cmd *cobra.Command) (*ir.DB, error) {
	opts, err := f.options(cmd)
	if err != nil {
		return nil, err
	}

	if f.conn.DSN != "" {
		logger.Get().Debug("Using connection string", "dsn", util.RedactDSN(f.conn.DSN))
	}
	conn, err := util.Connect(ctx, &f.conn)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := catalog.NewLoader(conn).Load(ctx)
	if err != nil {
		return nil, err
	}
	return ir.Build(rows, opts)
}
