package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	inspectFlags  graphFlags
	inspectFormat string
)

var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the structure of a database",
	Long: `Read the catalog of a database and print its schemas, tables, views, columns,
constraints, indexes, types, functions and the named relations between tables.`,
	RunE: runInspect,
}

func init() {
	inspectFlags.register(InspectCmd)
	InspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format: text or json")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if inspectFormat != "text" && inspectFormat != "json" {
		return fmt.Errorf("unsupported format %q (want text or json)", inspectFormat)
	}

	db, err := inspectFlags.build(cmd.Context(), cmd)
	if err != nil {
		return err
	}

	view := describeDatabase(db)
	if inspectFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), view)
	}
	(&textWriter{w: cmd.OutOrStdout(), c: outputColor(cmd)}).database(view)
	return nil
}
