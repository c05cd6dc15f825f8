// Package trips serves the curated recommended-trip catalog.
package trips

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/Togather-Foundation/eventrip/internal/itinerary"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("recommended trip not found")

//go:embed trips.yaml
var defaultTrips []byte

type Trip struct {
	ID                      int            `yaml:"id" json:"id"`
	Title                   string         `yaml:"title" json:"title"`
	Description             string         `yaml:"description" json:"description"`
	ImageURL                string         `yaml:"imageUrl" json:"imageUrl"`
	EventID                 int            `yaml:"eventId" json:"eventId"`
	Destination             string         `yaml:"destination" json:"destination"`
	StartDate               itinerary.Date `yaml:"startDate" json:"startDate"`
	EndDate                 itinerary.Date `yaml:"endDate" json:"endDate"`
	Dates                   string         `yaml:"-" json:"dates"`
	AccommodationSuggestion string         `yaml:"accommodationSuggestion" json:"accommodationSuggestion"`
}

// Range is the suggested stay.
func (t Trip) Range() itinerary.Range {
	return itinerary.Range{CheckIn: t.StartDate, CheckOut: t.EndDate}
}

type Catalog struct {
	trips []Trip
	byID  map[int]Trip
}

func DefaultCatalog() (*Catalog, error) {
	return Parse(defaultTrips)
}

func Parse(data []byte) (*Catalog, error) {
	var trips []Trip
	if err := yaml.Unmarshal(data, &trips); err != nil {
		return nil, fmt.Errorf("parse recommended trips: %w", err)
	}
	c := &Catalog{byID: make(map[int]Trip, len(trips))}
	for i := range trips {
		t := &trips[i]
		if t.StartDate.IsZero() || t.EndDate.IsZero() || t.EndDate.Before(t.StartDate) {
			return nil, fmt.Errorf("recommended trip %d: invalid dates", t.ID)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("recommended trip %d: duplicate id", t.ID)
		}
		t.Dates = formatDates(t.StartDate, t.EndDate)
		c.byID[t.ID] = *t
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].ID < trips[j].ID })
	c.trips = trips
	return c, nil
}

func (c *Catalog) List() []Trip {
	out := make([]Trip, len(c.trips))
	copy(out, c.trips)
	return out
}

func (c *Catalog) Get(id int) (Trip, error) {
	t, ok := c.byID[id]
	if !ok {
		return Trip{}, ErrNotFound
	}
	return t, nil
}

// formatDates renders "Oct 10-15, 2025", widening as month and year differ.
func formatDates(start, end itinerary.Date) string {
	s, e := start.Time(), end.Time()
	switch {
	case s.Year() != e.Year():
		return fmt.Sprintf("%s - %s", s.Format("Jan 2, 2006"), e.Format("Jan 2, 2006"))
	case s.Month() != e.Month():
		return fmt.Sprintf("%s - %s, %d", s.Format("Jan 2"), e.Format("Jan 2"), s.Year())
	case s.Day() == e.Day():
		return s.Format("Jan 2, 2006")
	default:
		return fmt.Sprintf("%s %d-%d, %d", s.Format("Jan"), s.Day(), e.Day(), s.Year())
	}
}
