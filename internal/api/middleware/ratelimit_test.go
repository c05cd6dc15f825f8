package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Togather-Foundation/eventrip/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := RateLimit(ctx, config.RateLimitConfig{PublicPerMinute: 3})(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
		req.RemoteAddr = "192.168.1.100:12345"
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		require.Equal(t, http.StatusOK, res.Code, "request %d", i+1)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.RemoteAddr = "192.168.1.100:12345"
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	assert.Equal(t, http.StatusTooManyRequests, res.Code)
	assert.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
	assert.NotEmpty(t, res.Header().Get("Retry-After"))

	// A different client has its own bucket.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.RemoteAddr = "192.168.1.101:12345"
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestRateLimit_ProbesAreExempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := RateLimit(ctx, config.RateLimitConfig{PublicPerMinute: 1})(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		require.Equal(t, http.StatusOK, res.Code)
	}
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	handler := RateLimit(context.Background(), config.RateLimitConfig{})(okHandler())
	for i := 0; i < 50; i++ {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
		require.Equal(t, http.StatusOK, res.Code)
	}
}

func TestClientKey_TrustsForwardedOnlyFromProxy(t *testing.T) {
	trusted := []string{"10.0.0.0/8"}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:4000"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.1.2.3")
	assert.Equal(t, "203.0.113.9", clientKey(req, trusted))

	req.RemoteAddr = "198.51.100.7:4000"
	assert.Equal(t, "198.51.100.7", clientKey(req, trusted))

	req.RemoteAddr = "10.1.2.3:4000"
	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "203.0.113.10")
	assert.Equal(t, "203.0.113.10", clientKey(req, trusted))
}

func TestLimiterStoreCleanup(t *testing.T) {
	store := newLimiterStore(60)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.limiter("a")
	now = now.Add(10 * time.Minute)
	store.limiter("b")
	now = now.Add(10 * time.Minute)
	store.cleanup()

	assert.Equal(t, 1, store.size())
}
