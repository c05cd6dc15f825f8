package trips

import (
	"encoding/json"
	"testing"

	"github.com/Togather-Foundation/eventrip/internal/itinerary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	trips := c.List()
	require.Len(t, trips, 4)
	assert.Equal(t, "Oct 10-15, 2025", trips[0].Dates)
	assert.Equal(t, "Nov 5-8, 2025", trips[1].Dates)
	assert.Equal(t, "Dec 1-5, 2025", trips[2].Dates)
	assert.Equal(t, "Jan 20-25, 2026", trips[3].Dates)
	assert.Equal(t, 104, trips[3].EventID)

	trip, err := c.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "Berlin, Germany", trip.Destination)
	assert.Equal(t, 3, trip.Range().Nights())

	_, err = c.Get(99)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "recommended trip not found", err.Error())
}

func TestTripJSON(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	trip, err := c.Get(1)
	require.NoError(t, err)

	out, err := json.Marshal(trip)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "2025-10-10", decoded["startDate"])
	assert.Equal(t, "Oct 10-15, 2025", decoded["dates"])
	assert.EqualValues(t, 101, decoded["eventId"])
}

func TestFormatDates(t *testing.T) {
	d := func(s string) itinerary.Date {
		v, err := itinerary.ParseDate(s)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Nov 28 - Dec 2, 2025", formatDates(d("2025-11-28"), d("2025-12-02")))
	assert.Equal(t, "Dec 30, 2025 - Jan 2, 2026", formatDates(d("2025-12-30"), d("2026-01-02")))
	assert.Equal(t, "Oct 10, 2025", formatDates(d("2025-10-10"), d("2025-10-10")))
}

func TestParseRejectsInvertedDates(t *testing.T) {
	_, err := Parse([]byte(`
- id: 1
  title: Broken
  startDate: 2025-10-10
  endDate: 2025-10-01
`))
	require.Error(t, err)
}
