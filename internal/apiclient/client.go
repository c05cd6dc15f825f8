// Package apiclient is the wizard's typed client for the eventrip API.
// Every call is rate limited, bounded by a per-attempt timeout and retried
// under the shared retry policy; failures come back as *Error.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Togather-Foundation/eventrip/internal/itinerary"
	"github.com/Togather-Foundation/eventrip/internal/metrics"
	"github.com/Togather-Foundation/eventrip/internal/retry"
	"github.com/Togather-Foundation/eventrip/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 5 * time.Second
	DefaultRateLimit = rate.Limit(20)
	DefaultUserAgent = "eventrip-wizard/1.0"
	// maxBodyBytes bounds how much of a response is read.
	maxBodyBytes = 4 << 20
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
	policy     retry.Policy
	limiter    *rate.Limiter
	logger     zerolog.Logger
	tracer     trace.Tracer
	group      singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout bounds each attempt; retries get a fresh budget.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithRateLimit sets the outbound request rate (requests per second).
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New returns a client for the API rooted at baseURL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  DefaultUserAgent,
		timeout:    DefaultTimeout,
		policy:     retry.DefaultPolicy(),
		limiter:    rate.NewLimiter(DefaultRateLimit, 5),
		logger:     zerolog.Nop(),
		tracer:     telemetry.Tracer(telemetry.TracerAPIClient),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// getJSON fetches path?query and decodes the body into out. op names the call
// in errors, spans and metrics.
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "apiclient."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.route", path)),
	)
	start := time.Now()
	defer func() {
		metrics.UpstreamFetchDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		metrics.UpstreamFetches.WithLabelValues(op, outcome(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	policy := c.policy
	policy.OnRetry = func(attempt int, delay time.Duration, cause error) {
		metrics.FetchRetries.WithLabelValues(op).Inc()
		span.AddEvent("retry", trace.WithAttributes(attribute.Int("attempt", attempt)))
		c.logger.Warn().
			Err(cause).
			Str("op", op).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("retrying api request")
	}

	var status int
	err = policy.Do(ctx, func(ctx context.Context) error {
		var attemptErr error
		status, attemptErr = c.attempt(ctx, requestURL, out)
		return attemptErr
	})
	if err != nil {
		return newError(op, status, err)
	}
	return nil
}

func (c *Client) attempt(ctx context.Context, requestURL string, out any) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return 0, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, &retry.StatusError{StatusCode: resp.StatusCode, Body: problemDetail(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, retry.Permanent(fmt.Errorf("parse json: %w", err))
	}
	return resp.StatusCode, nil
}

// problemDetail pulls a readable message out of a problem+json body.
func problemDetail(body []byte) string {
	var p struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &p); err == nil && (p.Title != "" || p.Detail != "") {
		if p.Detail != "" {
			return p.Detail
		}
		return p.Title
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, itinerary.ErrNotFound):
		return "not_found"
	case errors.Is(err, itinerary.ErrTransient):
		return "transient"
	default:
		return "error"
	}
}
