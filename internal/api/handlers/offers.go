package handlers

import (
	"errors"
	"net/http"

	"github.com/Togather-Foundation/eventrip/internal/api/problem"
	"github.com/Togather-Foundation/eventrip/internal/domain/offers"
	"github.com/Togather-Foundation/eventrip/internal/metrics"
)

// OffersHandler serves the accommodation and flight searches. Offers are
// generated per request from the catalog; nothing is stored.
type OffersHandler struct {
	Service *offers.Service
	Env     string
}

func NewOffersHandler(service *offers.Service, env string) *OffersHandler {
	return &OffersHandler{Service: service, Env: env}
}

func (h *OffersHandler) Accommodations(w http.ResponseWriter, r *http.Request) {
	q, err := h.Service.ParseAccommodationQuery(r.URL.Query())
	if err != nil {
		problem.BadRequest(w, r, err, h.Env)
		return
	}
	metrics.OfferSearches.WithLabelValues("accommodation").Inc()
	writeJSON(w, http.StatusOK, newList(h.Service.Accommodations(q), ""))
}

// Accommodation resolves one hotel priced for the queried stay.
func (h *OffersHandler) Accommodation(w http.ResponseWriter, r *http.Request) {
	q, err := h.Service.ParseAccommodationQuery(r.URL.Query())
	if err != nil {
		problem.BadRequest(w, r, err, h.Env)
		return
	}
	offer, err := h.Service.Accommodation(pathParam(r, "id"), q)
	if err != nil {
		h.offerError(w, r, "Accommodation not found", err)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

func (h *OffersHandler) Flights(w http.ResponseWriter, r *http.Request) {
	q, err := h.Service.ParseFlightQuery(r.URL.Query())
	if err != nil {
		problem.BadRequest(w, r, err, h.Env)
		return
	}
	metrics.OfferSearches.WithLabelValues("flight").Inc()
	writeJSON(w, http.StatusOK, newList(h.Service.Flights(q), ""))
}

func (h *OffersHandler) Flight(w http.ResponseWriter, r *http.Request) {
	q, err := h.Service.ParseFlightQuery(r.URL.Query())
	if err != nil {
		problem.BadRequest(w, r, err, h.Env)
		return
	}
	offer, err := h.Service.Flight(pathParam(r, "id"), q)
	if err != nil {
		h.offerError(w, r, "Flight not found", err)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

func (h *OffersHandler) offerError(w http.ResponseWriter, r *http.Request, title string, err error) {
	if errors.Is(err, offers.ErrNotFound) {
		problem.NotFound(w, r, title, err, h.Env)
		return
	}
	problem.ServerError(w, r, err, h.Env)
}
