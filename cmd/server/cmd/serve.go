package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/eventrip/internal/api"
	"github.com/Togather-Foundation/eventrip/internal/config"
	"github.com/Togather-Foundation/eventrip/internal/domain/events"
	"github.com/Togather-Foundation/eventrip/internal/domain/offers"
	"github.com/Togather-Foundation/eventrip/internal/domain/trips"
	"github.com/Togather-Foundation/eventrip/internal/metrics"
	"github.com/Togather-Foundation/eventrip/internal/storage/postgres"
	"github.com/Togather-Foundation/eventrip/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		host    string
		port    int
		migrate bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Eventrip API server",
		Long: `Start the Eventrip API server and begin accepting requests.

The server will:
- Load configuration from environment variables (and .env when present)
- Optionally apply pending database migrations
- Serve the /api/v1 JSON API, health probes, /version and /metrics
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), host, port, migrate)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "server port (default: 8080)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func runServer(parent context.Context, host string, port int, migrate bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting Eventrip API server")

	ctx, stop := signalContext(parent)
	defer stop()

	metrics.Init(Version, GitCommit, BuildDate, "api")
	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer flushTracing(shutdownTracing, logger)

	if migrate {
		if err := postgres.MigrateUp(cfg.Database.URL, ""); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
	}

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	dbCollector := metrics.NewDBCollector(pool)
	go dbCollector.Start(ctx, 15*time.Second)
	defer dbCollector.Stop()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}
	catalog, err := loadOfferCatalog(cfg.Offers)
	if err != nil {
		return err
	}
	recommended, err := trips.DefaultCatalog()
	if err != nil {
		return fmt.Errorf("load recommended trips: %w", err)
	}

	handler := api.NewRouter(ctx, cfg, api.Deps{
		Events: events.NewService(repo.Events()),
		Offers: offers.NewService(catalog, offers.Options{
			AffiliateID: cfg.Offers.AffiliateID,
			Currency:    cfg.Offers.Currency,
		}),
		Trips: recommended,
		DB:    pool,
		Build: buildInfo(),
	}, logger)

	server := newHTTPServer(cfg.Server.Host, cfg.Server.Port, handler)
	return serveUntilDone(ctx, server, logger)
}

func loadConfig() (config.Config, error) {
	if err := config.LoadEnvFile(); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	applyLogFlags(&cfg)
	return cfg, nil
}

func loadOfferCatalog(cfg config.OffersConfig) (offers.Catalog, error) {
	if cfg.CatalogPath != "" {
		catalog, err := offers.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return offers.Catalog{}, fmt.Errorf("load offer catalog %s: %w", cfg.CatalogPath, err)
		}
		return catalog, nil
	}
	catalog, err := offers.DefaultCatalog()
	if err != nil {
		return offers.Catalog{}, fmt.Errorf("load offer catalog: %w", err)
	}
	return catalog, nil
}

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MaxIdle > 0 {
		poolCfg.MinConns = int32(min(cfg.MaxIdle, int(poolCfg.MaxConns)))
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return pool, nil
}

func newHTTPServer(host string, port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second, // Total time to read request
		WriteTimeout:      30 * time.Second, // Total time to write response
		ReadHeaderTimeout: 5 * time.Second,  // Time to read headers
		MaxHeaderBytes:    1 << 20,          // 1 MB max header size
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// serveUntilDone runs server until ctx ends, then drains it.
func serveUntilDone(ctx context.Context, server *http.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func flushTracing(shutdown telemetry.ShutdownFunc, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("tracing shutdown")
	}
}
