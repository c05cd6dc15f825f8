package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/eventrip/internal/api/handlers"
	"github.com/Togather-Foundation/eventrip/internal/apiclient"
	"github.com/Togather-Foundation/eventrip/internal/retry"
)

func newHealthcheckCmd() *cobra.Command {
	var (
		timeout time.Duration
		baseURL string
		retries int
	)
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the API server is healthy",
		Long: `Performs a health check by calling /api/v1/health.

This command is used by the container HEALTHCHECK. It exits with code 0 when
the server reports healthy and non-zero otherwise. Failed attempts are retried
with backoff, which covers a server that is still starting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseURL == "" {
				port := os.Getenv("SERVER_PORT")
				if port == "" {
					port = "8080"
				}
				baseURL = "http://localhost:" + port
			}
			policy := retry.DefaultPolicy()
			policy.MaxAttempts = retries + 1

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout*time.Duration(policy.MaxAttempts)+policy.MaxDelay*time.Duration(retries))
			defer cancel()
			client := apiclient.New(baseURL, apiclient.WithTimeout(timeout), apiclient.WithRetryPolicy(policy))
			return checkHealth(ctx, client, cmd)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "timeout per attempt")
	cmd.Flags().StringVar(&baseURL, "url", "", "API base URL (default: http://localhost:{SERVER_PORT})")
	cmd.Flags().IntVar(&retries, "retries", 0, "retries after a failed attempt")
	return cmd
}

type healthSource interface {
	Health(ctx context.Context) (apiclient.Health, error)
}

func checkHealth(ctx context.Context, client healthSource, cmd *cobra.Command) error {
	health, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if health.Status != handlers.StatusHealthy {
		return fmt.Errorf("unhealthy: status=%s", health.Status)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "healthy (%s)\n", health.Timestamp)
	return nil
}
