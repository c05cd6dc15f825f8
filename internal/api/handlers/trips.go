package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Togather-Foundation/eventrip/internal/api/problem"
	"github.com/Togather-Foundation/eventrip/internal/domain/trips"
)

type TripsHandler struct {
	Catalog *trips.Catalog
	Env     string
}

func NewTripsHandler(catalog *trips.Catalog, env string) *TripsHandler {
	return &TripsHandler{Catalog: catalog, Env: env}
}

func (h *TripsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newList(h.Catalog.List(), ""))
}

// Get serves GET /api/v1/recommended-trips/{id}. Unknown and non-numeric ids
// are both not found.
func (h *TripsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(pathParam(r, "id"))
	if err != nil {
		problem.NotFound(w, r, "Recommended trip not found", trips.ErrNotFound, h.Env)
		return
	}
	trip, err := h.Catalog.Get(id)
	if err != nil {
		if errors.Is(err, trips.ErrNotFound) {
			problem.NotFound(w, r, "Recommended trip not found", err, h.Env)
			return
		}
		problem.ServerError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}
