package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Togather-Foundation/eventrip/internal/api/problem"
	"github.com/Togather-Foundation/eventrip/internal/domain/trips"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripsHandler(t *testing.T) {
	catalog, err := trips.DefaultCatalog()
	require.NoError(t, err)
	h := NewTripsHandler(catalog, "test")

	res := httptest.NewRecorder()
	h.List(res, httptest.NewRequest(http.MethodGet, "/api/v1/recommended-trips", nil))
	require.Equal(t, http.StatusOK, res.Code)
	var list struct {
		Items []trips.Trip `json:"items"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&list))
	assert.Len(t, list.Items, 4)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommended-trips/1", nil)
	req.SetPathValue("id", "1")
	res = httptest.NewRecorder()
	h.Get(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	var trip trips.Trip
	require.NoError(t, json.NewDecoder(res.Body).Decode(&trip))
	assert.Equal(t, "Lisbon, Portugal", trip.Destination)

	for _, id := range []string{"99", "lisbon"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/recommended-trips/"+id, nil)
		req.SetPathValue("id", id)
		res := httptest.NewRecorder()
		h.Get(res, req)
		require.Equal(t, http.StatusNotFound, res.Code, id)

		var body problem.ProblemDetails
		require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
		assert.Equal(t, "Recommended trip not found", body.Title)
	}
}
