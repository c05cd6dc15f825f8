package api

import (
	"context"
	"net/http"

	"github.com/Togather-Foundation/eventrip/internal/api/handlers"
	"github.com/Togather-Foundation/eventrip/internal/api/middleware"
	"github.com/Togather-Foundation/eventrip/internal/config"
	"github.com/Togather-Foundation/eventrip/internal/domain/events"
	"github.com/Togather-Foundation/eventrip/internal/domain/offers"
	"github.com/Togather-Foundation/eventrip/internal/domain/trips"
	"github.com/Togather-Foundation/eventrip/internal/metrics"
	"github.com/Togather-Foundation/eventrip/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the services the API routes to. The caller owns their lifecycle.
type Deps struct {
	Events *events.Service
	Offers *offers.Service
	Trips  *trips.Catalog
	DB     handlers.DB
	Build  BuildInfo
}

// NewRouter wires the /api/v1 surface plus probes, /version and /metrics.
// ctx bounds background work started by the middleware.
func NewRouter(ctx context.Context, cfg config.Config, deps Deps, logger zerolog.Logger) http.Handler {
	env := cfg.Environment
	eventsHandler := handlers.NewEventsHandler(deps.Events, env)
	offersHandler := handlers.NewOffersHandler(deps.Offers, env)
	tripsHandler := handlers.NewTripsHandler(deps.Trips, env)
	health := handlers.NewHealthChecker(deps.DB, deps.Build.Version, deps.Build.GitCommit)

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", health.Readyz())
	mux.Handle("GET /version", VersionHandler(deps.Build))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{Registry: metrics.Registry}))
	mux.Handle("GET /api/v1/openapi.json", OpenAPIHandler())
	mux.Handle("GET /api/v1/health", health.Health())

	mux.HandleFunc("GET /api/v1/events", eventsHandler.List)
	mux.HandleFunc("GET /api/v1/events/cities", eventsHandler.Cities)
	mux.HandleFunc("GET /api/v1/events/industries", eventsHandler.Industries)
	mux.HandleFunc("GET /api/v1/events/{id}", eventsHandler.Get)
	mux.HandleFunc("GET /api/v1/categories", eventsHandler.Categories)
	mux.HandleFunc("GET /api/v1/categories/{slug}/events", eventsHandler.CategoryEvents)
	mux.HandleFunc("GET /api/v1/tags", eventsHandler.Tags)
	mux.HandleFunc("GET /api/v1/search", eventsHandler.Search)

	mux.HandleFunc("GET /api/v1/accommodations", offersHandler.Accommodations)
	mux.HandleFunc("GET /api/v1/accommodations/{id}", offersHandler.Accommodation)
	mux.HandleFunc("GET /api/v1/flights", offersHandler.Flights)
	mux.HandleFunc("GET /api/v1/flights/{id}", offersHandler.Flight)

	mux.HandleFunc("GET /api/v1/recommended-trips", tripsHandler.List)
	mux.HandleFunc("GET /api/v1/recommended-trips/{id}", tripsHandler.Get)

	var h http.Handler = metrics.HTTPMiddleware(mux)
	h = middleware.RateLimit(ctx, cfg.RateLimit)(h)
	h = middleware.CORS(cfg.CORS, logger)(h)
	h = middleware.SecurityHeaders(cfg.IsProduction())(h)
	h = middleware.Tracing(telemetry.TracerAPI)(h)
	h = middleware.RequestLogging(logger)(h)
	h = middleware.CorrelationID(logger)(h)
	return h
}
