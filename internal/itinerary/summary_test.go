package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccommodationStatus(t *testing.T) {
	assert.Equal(t, "Skipped", AccommodationStatus(Skipped(), ""))
	assert.Equal(t, "Not selected", AccommodationStatus(Absent(), ""))
	assert.Equal(t, "Selected (ID: hotel2)", AccommodationStatus(Chosen("hotel2"), ""))
	assert.Equal(t, "Selected (Central Inn Lisbon)", AccommodationStatus(Chosen("hotel2"), "Central Inn Lisbon"))
}

func TestTransportationStatus(t *testing.T) {
	assert.Equal(t, "Skipped", TransportationStatus(Transport{Choice: Skipped()}))
	assert.Equal(t, "Not selected", TransportationStatus(Transport{}))
	assert.Equal(t, "Flights from LHR via MockAir", TransportationStatus(Transport{Choice: Chosen("flight1"), Origin: "LHR", Provider: "MockAir"}))
}

func TestSummarize(t *testing.T) {
	sel := fullSelection()
	sel.Accommodation = Skipped()

	summary := Summarize(sel, Names{Event: "Lisbon Tech Summit"})

	assert.Equal(t, "Lisbon Tech Summit", summary.Event)
	assert.Equal(t, 8, summary.Days)
	assert.Equal(t, 7, summary.Nights)
	assert.Equal(t, "Skipped", summary.Accommodation)

	lines := summary.Lines()
	assert.Contains(t, lines, Line{Label: "Accommodation", Value: "Skipped"})
	assert.Contains(t, lines, Line{Label: "Dates", Value: "2025-10-07 to 2025-10-14"})
	assert.Contains(t, lines, Line{Label: "Duration", Value: "8 days"})
	assert.Contains(t, lines, Line{Label: "Transportation", Value: "Flights from LHR via MockAir"})
}

func TestSummarizeFallsBackToIDs(t *testing.T) {
	summary := Summarize(Selection{EventID: "101"}, Names{})

	assert.Equal(t, "101", summary.Event)
	assert.Contains(t, summary.Lines(), Line{Label: "Dates", Value: "Not selected"})
}
