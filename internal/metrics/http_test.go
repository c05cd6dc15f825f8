package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "static path",
			input:    "/api/v1/events",
			expected: "/api/v1/events",
		},
		{
			name:     "single param",
			input:    "/api/v1/events/{id}",
			expected: "/api/v1/events/{param}",
		},
		{
			name:     "multiple params",
			input:    "/api/v1/trips/{id}/events/{ulid}",
			expected: "/api/v1/trips/{param}/events/{param}",
		},
		{
			name:     "empty path",
			input:    "",
			expected: "",
		},
		{
			name:     "non-path input",
			input:    "api/v1/events/{id}",
			expected: "api/v1/events/{id}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizePath(tt.input)
			if got != tt.expected {
				t.Fatalf("normalizePath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRouteLabelUsesMatchedPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/events/{id}", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/01HZX", nil)
	mux.ServeHTTP(httptest.NewRecorder(), req)
	if got := routeLabel(req); got != "/api/v1/events/{param}" {
		t.Fatalf("routeLabel() = %q, want %q", got, "/api/v1/events/{param}")
	}

	unmatched := httptest.NewRequest(http.MethodGet, "/nope/12345", nil)
	mux.ServeHTTP(httptest.NewRecorder(), unmatched)
	if got := routeLabel(unmatched); got != "unmatched" {
		t.Fatalf("routeLabel() = %q, want unmatched", got)
	}
}
