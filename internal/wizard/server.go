// Package wizard serves the server-rendered trip planning flow. Pages keep no
// session: every request rebuilds its selection from the address.
package wizard

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/eventrip/internal/api/handlers"
	"github.com/Togather-Foundation/eventrip/internal/api/middleware"
	"github.com/Togather-Foundation/eventrip/internal/apiclient"
	"github.com/Togather-Foundation/eventrip/internal/domain/events"
	"github.com/Togather-Foundation/eventrip/internal/domain/offers"
	"github.com/Togather-Foundation/eventrip/internal/domain/trips"
	"github.com/Togather-Foundation/eventrip/internal/itinerary"
	"github.com/Togather-Foundation/eventrip/internal/metrics"
	"github.com/Togather-Foundation/eventrip/internal/telemetry"
	"github.com/Togather-Foundation/eventrip/web"
)

// API is the backend the wizard reads from. *apiclient.Client satisfies it.
type API interface {
	Industries(ctx context.Context) ([]string, error)
	Cities(ctx context.Context) ([]string, error)
	ListEvents(ctx context.Context, q apiclient.EventQuery) (apiclient.EventPage, error)
	Event(ctx context.Context, id string) (*events.Event, error)
	Accommodations(ctx context.Context, location string, stay itinerary.Range) ([]offers.Accommodation, error)
	Accommodation(ctx context.Context, id, location string, stay itinerary.Range) (*offers.Accommodation, error)
	Flights(ctx context.Context, origin, destination string, stay itinerary.Range) ([]offers.Flight, error)
	RecommendedTrips(ctx context.Context) ([]trips.Trip, error)
}

type Options struct {
	Env           string
	CSRFKey       []byte
	SecureCookies bool
	Logger        zerolog.Logger
}

type Server struct {
	api       API
	env       string
	csrfKey   []byte
	secure    bool
	logger    zerolog.Logger
	templates *templates
}

func New(api API, opts Options) (*Server, error) {
	tmpl, err := loadTemplates(web.Templates)
	if err != nil {
		return nil, err
	}
	return &Server{
		api:       api,
		env:       opts.Env,
		csrfKey:   opts.CSRFKey,
		secure:    opts.SecureCookies,
		logger:    opts.Logger.With().Str("component", "wizard").Logger(),
		templates: tmpl,
	}, nil
}

// Handler returns the wizard routes wrapped in the standard middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.eventsPage)
	mux.HandleFunc("GET /events", s.eventsPage)
	mux.HandleFunc("GET /accommodation", s.accommodationPage)
	mux.HandleFunc("GET /transportation", s.transportationPage)
	mux.HandleFunc("GET /results", s.resultsPage)
	mux.HandleFunc("GET /results.pdf", s.resultsPDF)
	mux.HandleFunc("GET /results.ics", s.resultsICS)

	csrf := middleware.CSRFProtection(s.csrfKey, s.secure)
	mux.Handle("GET /reset", csrf(http.HandlerFunc(s.resetForm)))
	mux.Handle("POST /reset", csrf(http.HandlerFunc(s.reset)))

	mux.Handle("GET /static/", web.StaticHandler())
	mux.Handle("GET /robots.txt", web.RobotsTxtHandler())
	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{Registry: metrics.Registry}))

	var h http.Handler = metrics.HTTPMiddleware(mux)
	h = middleware.RequestSize(middleware.DefaultMaxBodySize)(h)
	h = middleware.SecurityHeaders(s.secure)(h)
	h = middleware.Tracing(telemetry.TracerWizard)(h)
	h = middleware.RequestLogging(s.logger)(h)
	h = middleware.CorrelationID(s.logger)(h)
	return h
}
