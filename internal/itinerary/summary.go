package itinerary

import "fmt"

const (
	StatusSkipped     = "Skipped"
	StatusNotSelected = "Not selected"
)

// Names holds display names fetched for ids in a selection. Empty names fall back to ids.
type Names struct {
	Event         string
	Accommodation string
}

// Summary is the read-only view of a finished selection.
type Summary struct {
	Event          string
	Location       string
	Stay           Range
	Days           int
	Nights         int
	Accommodation  string
	Transportation string
}

// Line is one labelled row of a rendered summary.
type Line struct {
	Label string
	Value string
}

func Summarize(sel Selection, names Names) Summary {
	event := names.Event
	if event == "" {
		event = sel.EventID
	}
	s := Summary{
		Event:          event,
		Location:       sel.Location,
		Stay:           sel.Stay,
		Accommodation:  AccommodationStatus(sel.Accommodation, names.Accommodation),
		Transportation: TransportationStatus(sel.Transport),
	}
	if sel.Stay.Complete() {
		s.Days = sel.Stay.Days()
		s.Nights = sel.Stay.Nights()
	}
	return s
}

// AccommodationStatus renders the accommodation decision. A skipped step is
// never shown as unselected.
func AccommodationStatus(c Choice, name string) string {
	switch c.Kind() {
	case ChoiceSkipped:
		return StatusSkipped
	case ChoiceChosen:
		if name != "" {
			return fmt.Sprintf("Selected (%s)", name)
		}
		return fmt.Sprintf("Selected (ID: %s)", c.ID())
	default:
		return StatusNotSelected
	}
}

func TransportationStatus(t Transport) string {
	switch t.Choice.Kind() {
	case ChoiceSkipped:
		return StatusSkipped
	case ChoiceChosen:
		switch {
		case t.Origin != "" && t.Provider != "":
			return fmt.Sprintf("Flights from %s via %s", t.Origin, t.Provider)
		case t.Origin != "":
			return fmt.Sprintf("Flights from %s", t.Origin)
		default:
			return fmt.Sprintf("Selected (ID: %s)", t.Choice.ID())
		}
	default:
		return StatusNotSelected
	}
}

func (s Summary) Lines() []Line {
	dates := StatusNotSelected
	duration := ""
	nights := ""
	if s.Stay.Complete() {
		dates = s.Stay.String()
		duration = plural(s.Days, "day")
		nights = plural(s.Nights, "night")
	}
	return []Line{
		{Label: "Event", Value: s.Event},
		{Label: "Location", Value: s.Location},
		{Label: "Dates", Value: dates},
		{Label: "Duration", Value: duration},
		{Label: "Nights", Value: nights},
		{Label: "Accommodation", Value: s.Accommodation},
		{Label: "Transportation", Value: s.Transportation},
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
