// Package internal documents the Eventrip server internals.
//
// The internal tree is organized by responsibility:
// - api: the JSON API, its middleware and routing
// - wizard: the server-rendered trip planner
// - itinerary: step navigation, stay validation and trip summaries
// - domain: events, offers and recommended trips
// - storage: Postgres repositories and migrations
// - apiclient, retry: the wizard's client for the API
// - config, metrics, telemetry: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
