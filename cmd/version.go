package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgstructure/pgstructure/internal/version"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version number of pgstructure",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pgstructure v%s\n", version.String())
	},
}
