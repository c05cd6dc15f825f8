package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func runHealthcheckAgainst(t *testing.T, handler http.HandlerFunc, extra ...string) (string, error) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"healthcheck", "--url", srv.URL, "--timeout", "2s"}, extra...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestHealthcheck(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        any
		expectError string
	}{
		{
			name:   "healthy server",
			status: http.StatusOK,
			body:   map[string]string{"status": "healthy", "timestamp": "2026-01-27T12:00:00Z"},
		},
		{
			name:        "degraded server",
			status:      http.StatusOK,
			body:        map[string]string{"status": "degraded"},
			expectError: "unhealthy: status=degraded",
		},
		{
			name:        "not found",
			status:      http.StatusNotFound,
			body:        map[string]string{"title": "Not Found"},
			expectError: "health check failed",
		},
		{
			name:        "invalid response",
			status:      http.StatusOK,
			body:        "not json",
			expectError: "health check failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := runHealthcheckAgainst(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/health" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				if s, ok := tt.body.(string); ok {
					_, _ = w.Write([]byte(s))
					return
				}
				_ = json.NewEncoder(w).Encode(tt.body)
			})

			if tt.expectError == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !strings.Contains(output, "healthy") {
					t.Errorf("expected healthy output, got %q", output)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.expectError) {
				t.Fatalf("expected error containing %q, got %v", tt.expectError, err)
			}
		})
	}
}

func TestHealthcheckRetriesUnavailableServer(t *testing.T) {
	var calls atomic.Int32
	_, err := runHealthcheckAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}, "--retries", "1")

	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}
