package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Togather-Foundation/eventrip/internal/api/pagination"
	"github.com/Togather-Foundation/eventrip/internal/api/problem"
	"github.com/Togather-Foundation/eventrip/internal/domain/events"
	"github.com/Togather-Foundation/eventrip/internal/domain/ids"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

// List serves GET /api/v1/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, page, err := events.ParseFilters(r.URL.Query())
	if err != nil {
		problem.BadRequest(w, r, err, h.Env)
		return
	}

	result, err := h.Service.List(r.Context(), filters, page)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(result.Events, result.NextCursor))
}

// Get serves GET /api/v1/events/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := ids.ValidateULID(id); err != nil {
		problem.BadRequest(w, r, events.FilterError{Field: "id", Message: "must be a ULID"}, h.Env)
		return
	}

	item, err := h.Service.GetByULID(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *EventsHandler) Cities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.Service.Cities(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(cities, ""))
}

func (h *EventsHandler) Industries(w http.ResponseWriter, r *http.Request) {
	industries, err := h.Service.Industries(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(industries, ""))
}

func (h *EventsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.Categories(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(categories, ""))
}

func (h *EventsHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Service.Tags(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(tags, ""))
}

// CategoryEvents serves GET /api/v1/categories/{slug}/events.
func (h *EventsHandler) CategoryEvents(w http.ResponseWriter, r *http.Request) {
	page, err := events.ParsePagination(r.URL.Query())
	if err != nil {
		problem.BadRequest(w, r, err, h.Env)
		return
	}
	result, err := h.Service.ByCategory(r.Context(), pathParam(r, "slug"), page)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(result.Events, result.NextCursor))
}

type searchResponse struct {
	Query      string            `json:"query"`
	Events     []events.Event    `json:"events"`
	Categories []events.Category `json:"categories"`
	Tags       []events.Tag      `json:"tags"`
}

// Search serves GET /api/v1/search?q=.
func (h *EventsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			problem.BadRequest(w, r, events.FilterError{Field: "limit", Message: "must be a positive integer"}, h.Env)
			return
		}
		limit = n
	}

	result, err := h.Service.Search(r.Context(), q, limit)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	resp := searchResponse{
		Query:      q,
		Events:     result.Events,
		Categories: result.Categories,
		Tags:       result.Tags,
	}
	if resp.Events == nil {
		resp.Events = []events.Event{}
	}
	if resp.Categories == nil {
		resp.Categories = []events.Category{}
	}
	if resp.Tags == nil {
		resp.Tags = []events.Tag{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *EventsHandler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var filterErr events.FilterError
	switch {
	case errors.As(err, &filterErr), errors.Is(err, pagination.ErrInvalidCursor):
		problem.BadRequest(w, r, err, h.Env)
	case errors.Is(err, events.ErrNotFound):
		problem.NotFound(w, r, "Event not found", err, h.Env)
	default:
		problem.ServerError(w, r, err, h.Env)
	}
}
