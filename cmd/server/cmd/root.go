package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/eventrip/internal/config"
)

// Global flags
var (
	logLevel  string
	logFormat string
)

// newRootCmd builds the command tree. Running it without a subcommand serves the API.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "server",
		Short: "Eventrip - plan a trip around an event",
		Long: `Eventrip serves an events and travel-offer API and a step-by-step trip planner.

Commands:
- serve:  JSON API backed by PostgreSQL (default)
- web:    server-rendered trip wizard that reads from the API
- plan:   the same wizard in the terminal
- import: load events from a CSV export`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")

	serve := newServeCmd()
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return serve.RunE(cmd, args)
	}

	root.AddCommand(
		serve,
		newWebCmd(),
		newPlanCmd(),
		newImportCmd(),
		newMigrateCmd(),
		newHealthcheckCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyLogFlags lets --log-level and --log-format override the environment.
func applyLogFlags(cfg *config.Config) {
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
}
