package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pgstructure/pgstructure/internal/color"
	"github.com/pgstructure/pgstructure/internal/logger"
	"github.com/pgstructure/pgstructure/internal/version"
)

var (
	Debug   bool
	NoColor bool
)

var RootCmd = &cobra.Command{
	Use:   "pgstructure",
	Short: "PostgreSQL database structure as a linked object graph",
	Long: fmt.Sprintf(`pgstructure reads the catalog of a PostgreSQL database and shows its
structure, including the relations between tables inferred from foreign keys.

Version: %s

Commands:
  inspect  Print the structure of a database
  get      Print one object of a database
  version  Show version information

Use "pgstructure [command] --help" for more information about a command.`, version.String()),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.PersistentFlags().BoolVar(&NoColor, "no-color", false, "Disable colored output")
	RootCmd.AddCommand(InspectCmd)
	RootCmd.AddCommand(GetCmd)
	RootCmd.AddCommand(VersionCmd)
}

// outputColor colors text output written to a terminal-like stdout.
func outputColor(cmd *cobra.Command) *color.Color {
	if f, ok := cmd.OutOrStdout().(*os.File); !ok || f != os.Stdout {
		return nil
	}
	return color.New(!NoColor)
}

func setupLogger() {
	logger.SetGlobal(logger.New(os.Stderr, Debug), Debug)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
