package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/eventrip/internal/apiclient"
	"github.com/Togather-Foundation/eventrip/internal/config"
	"github.com/Togather-Foundation/eventrip/internal/metrics"
	"github.com/Togather-Foundation/eventrip/internal/telemetry"
	"github.com/Togather-Foundation/eventrip/internal/wizard"
)

func newWebCmd() *cobra.Command {
	var (
		host   string
		port   int
		apiURL string
	)
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Start the trip planning wizard",
		Long: `Start the server-rendered trip planning wizard.

The wizard keeps no state of its own: every page reads the trip from its
address and fetches events and offers from the Eventrip API.

Examples:
  # Wizard on :3000 reading from a local API
  server web

  # Point the wizard at another API
  server web --api http://api.internal:8080 --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(); err != nil {
				return err
			}
			cfg, err := config.LoadWizard()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			applyLogFlags(&cfg)
			if host != "" {
				cfg.Wizard.Host = host
			}
			if port != 0 {
				cfg.Wizard.Port = port
			}
			if apiURL != "" {
				cfg.Wizard.APIBaseURL = apiURL
			}

			logger := config.NewLogger(cfg.Logging)
			logger.Info().Str("api", cfg.Wizard.APIBaseURL).Msg("starting Eventrip wizard")

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			metrics.Init(Version, GitCommit, BuildDate, "wizard")
			shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
			if err != nil {
				return fmt.Errorf("tracing: %w", err)
			}
			defer flushTracing(shutdownTracing, logger)

			client := apiclient.New(cfg.Wizard.APIBaseURL,
				apiclient.WithTimeout(cfg.Wizard.FetchTimeout),
				apiclient.WithLogger(logger),
			)
			srv, err := wizard.New(client, wizard.Options{
				Env:           cfg.Environment,
				CSRFKey:       cfg.Wizard.CSRFKey,
				SecureCookies: cfg.Wizard.SecureCookies,
				Logger:        logger,
			})
			if err != nil {
				return err
			}
			return serveUntilDone(ctx, newHTTPServer(cfg.Wizard.Host, cfg.Wizard.Port, srv.Handler()), logger)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "wizard host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "wizard port (default: 3000)")
	cmd.Flags().StringVar(&apiURL, "api", "", "Eventrip API base URL (default: $WIZARD_API_BASE_URL)")
	return cmd
}
