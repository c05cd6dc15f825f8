package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/eventrip/internal/config"
	"github.com/Togather-Foundation/eventrip/internal/domain/events"
	"github.com/Togather-Foundation/eventrip/internal/metrics"
	"github.com/Togather-Foundation/eventrip/internal/storage/postgres"
)

func newImportCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import events from a CSV file",
		Long: `Import events from a CSV export into the database.

Required columns: externalId, name, industry, country, city, zipCode, street,
streetNumber, location, startDate, endDate.
Optional columns: description, region, latitude, longitude, websiteUrl,
ticketPrice, imageFileName, categories, tags (lists are ';' separated).

Rows whose externalId already exists are skipped. Invalid rows are reported
with their line number and the import continues.

Examples:
  # Import events
  server import events.csv

  # Validate only
  server import events.csv --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger := config.NewLogger(cfg.Logging)

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			pool, err := openPool(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()
			repo, err := postgres.NewRepository(pool)
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), repo.Events(), f, dryRun, logger)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate rows without writing")
	return cmd
}

func runImport(ctx context.Context, out io.Writer, repo events.Repository, src io.Reader, dryRun bool, logger zerolog.Logger) error {
	importer := events.NewImporter(repo, logger)
	report, err := importer.Import(ctx, src, events.ImportOptions{DryRun: dryRun})
	if err != nil {
		return err
	}
	if !dryRun {
		metrics.EventsImported.WithLabelValues("success").Add(float64(report.Success))
		metrics.EventsImported.WithLabelValues("skipped").Add(float64(report.Skipped))
		metrics.EventsImported.WithLabelValues("error").Add(float64(len(report.Errors)))
	}

	mode := "Imported"
	if dryRun {
		mode = "Valid (dry run)"
	}
	fmt.Fprintf(out, "Rows:     %d\n", report.Total)
	fmt.Fprintf(out, "%s: %d\n", mode, report.Success)
	fmt.Fprintf(out, "Skipped:  %d\n", report.Skipped)
	fmt.Fprintf(out, "Errors:   %d\n", len(report.Errors))
	for _, rowErr := range report.Errors {
		fmt.Fprintf(out, "  %s\n", rowErr.Error())
	}
	if len(report.Errors) > 0 {
		return fmt.Errorf("%d row(s) failed", len(report.Errors))
	}
	return nil
}
