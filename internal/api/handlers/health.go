package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Togather-Foundation/eventrip/internal/metrics"
	"github.com/jackc/pgx/v5"
)

const checkTimeout = 2 * time.Second

// Health statuses reported by /api/v1/health.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthCheck is the body of GET /api/v1/health.
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms"`
	Details   map[string]any `json:"details,omitempty"`
}

// DB is the slice of *pgxpool.Pool the health checks use.
type DB interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type HealthChecker struct {
	db        DB
	version   string
	gitCommit string
	now       func() time.Time
}

func NewHealthChecker(db DB, version, gitCommit string) *HealthChecker {
	return &HealthChecker{db: db, version: version, gitCommit: gitCommit, now: time.Now}
}

// Health runs every check and answers 503 when any of them fails.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Context().Err() != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]CheckResult{
			"database":   h.checkDatabase(ctx),
			"migrations": h.checkMigrations(ctx),
		}

		status := StatusHealthy
		code := http.StatusOK
		for name, check := range checks {
			metrics.HealthCheckLatency.WithLabelValues(name).Set(float64(check.LatencyMs))
			switch check.Status {
			case "fail":
				metrics.HealthCheckStatus.WithLabelValues(name).Set(0)
				status = StatusUnhealthy
				code = http.StatusServiceUnavailable
			case "warn":
				metrics.HealthCheckStatus.WithLabelValues(name).Set(0.5)
				if status == StatusHealthy {
					status = StatusDegraded
				}
			default:
				metrics.HealthCheckStatus.WithLabelValues(name).Set(1)
			}
		}
		switch status {
		case StatusHealthy:
			metrics.HealthStatus.Set(1)
		case StatusDegraded:
			metrics.HealthStatus.Set(0.5)
		default:
			metrics.HealthStatus.Set(0)
		}

		writeJSON(w, code, HealthCheck{
			Status:    status,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: h.now().UTC().Format(time.RFC3339),
		})
	}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{Status: "fail", Message: "Database pool not initialized"}
	}
	start := time.Now()
	dbCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	err := h.db.Ping(dbCtx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		message := "Database ping failed"
		if errors.Is(err, context.DeadlineExceeded) {
			message = fmt.Sprintf("Database ping timed out after %s", checkTimeout)
		}
		return CheckResult{
			Status:    "fail",
			Message:   message,
			LatencyMs: latency,
			Details:   map[string]any{"error": err.Error()},
		}
	}
	return CheckResult{Status: "pass", Message: "PostgreSQL connection successful", LatencyMs: latency}
}

// checkMigrations reads golang-migrate's bookkeeping table. A dirty version
// fails the check; an unmigrated database only warns.
func (h *HealthChecker) checkMigrations(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{Status: "fail", Message: "Database pool not initialized"}
	}
	start := time.Now()
	migCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var version int64
	var dirty bool
	err := h.db.QueryRow(migCtx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	latency := time.Since(start).Milliseconds()

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return CheckResult{Status: "warn", Message: "No migrations applied", LatencyMs: latency,
			Details: map[string]any{"remediation": "Run: server migrate up"}}
	case err != nil && strings.Contains(err.Error(), "does not exist"):
		return CheckResult{Status: "warn", Message: "Migrations table not found", LatencyMs: latency,
			Details: map[string]any{"remediation": "Run: server migrate up"}}
	case err != nil:
		return CheckResult{Status: "fail", Message: "Failed to query migration version", LatencyMs: latency,
			Details: map[string]any{"error": err.Error()}}
	case dirty:
		return CheckResult{Status: "fail", Message: "Database in dirty migration state", LatencyMs: latency,
			Details: map[string]any{"version": version, "dirty": true}}
	}
	return CheckResult{
		Status:    "pass",
		Message:   fmt.Sprintf("Migrations applied (version %d)", version),
		LatencyMs: latency,
		Details:   map[string]any{"version": version},
	}
}

// Healthz is the liveness probe; it never touches dependencies.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

// Readyz reports ready once the database answers a ping.
func (h *HealthChecker) Readyz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check := h.checkDatabase(r.Context()); check.Status != "pass" {
			respondHealth(w, http.StatusServiceUnavailable, "not_ready")
			return
		}
		respondHealth(w, http.StatusOK, "ready")
	})
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": value})
}
