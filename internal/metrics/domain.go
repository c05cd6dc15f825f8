package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Itinerary and offer metrics
var (
	// RangeValidations counts stay range validations by decision
	// (accepted|rejected|no_decision).
	RangeValidations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "range_validations_total",
			Help:      "Total number of stay range validations by decision",
		},
		[]string{"decision"},
	)

	// UpstreamFetches counts wizard calls to the backend API.
	UpstreamFetches = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_total",
			Help:      "Total number of backend API fetches by operation and outcome",
		},
		[]string{"op", "outcome"}, // outcome: success|not_found|transient|error
	)

	UpstreamFetchDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Backend API fetch latency in seconds, retries included",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"op"},
	)

	FetchRetries = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_retries_total",
			Help:      "Total number of retried backend API attempts",
		},
		[]string{"op"},
	)

	// StaleResponses counts search results discarded because a newer search superseded them.
	StaleResponses = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Total number of superseded search responses discarded",
		},
	)

	OfferSearches = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offer_searches_total",
			Help:      "Total number of offer searches served by kind",
		},
		[]string{"kind"}, // kind: accommodation|flight
	)

	// EventsImported counts importer rows by result (success|skipped|error).
	EventsImported = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_imported_total",
			Help:      "Total number of CSV event rows processed by result",
		},
		[]string{"result"},
	)
)
