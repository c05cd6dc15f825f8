package wizard

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Togather-Foundation/eventrip/internal/apiclient"
	"github.com/Togather-Foundation/eventrip/internal/domain/events"
	"github.com/Togather-Foundation/eventrip/internal/domain/trips"
	"github.com/Togather-Foundation/eventrip/internal/itinerary"
)

const eventsPageSize = 12

type eventFilter struct {
	Industry  string
	Region    string
	City      string
	StartDate string
	EndDate   string
	After     string
}

func parseEventFilter(q url.Values) eventFilter {
	return eventFilter{
		Industry:  strings.TrimSpace(q.Get("industry")),
		Region:    strings.TrimSpace(q.Get("region")),
		City:      strings.TrimSpace(q.Get("destinationCity")),
		StartDate: strings.TrimSpace(q.Get("startDate")),
		EndDate:   strings.TrimSpace(q.Get("endDate")),
		After:     strings.TrimSpace(q.Get("after")),
	}
}

// query converts the filter to an API query, rejecting unparseable dates.
func (f eventFilter) query() (apiclient.EventQuery, error) {
	q := apiclient.EventQuery{
		Industry: f.Industry,
		Region:   f.Region,
		City:     f.City,
		After:    f.After,
		Limit:    eventsPageSize,
	}
	if f.StartDate != "" {
		d, err := itinerary.ParseDate(f.StartDate)
		if err != nil {
			return q, fmt.Errorf("start date must be a date like 2025-06-01")
		}
		q.StartDate = d
	}
	if f.EndDate != "" {
		d, err := itinerary.ParseDate(f.EndDate)
		if err != nil {
			return q, fmt.Errorf("end date must be a date like 2025-06-01")
		}
		q.EndDate = d
	}
	if !q.StartDate.IsZero() && !q.EndDate.IsZero() && q.EndDate.Before(q.StartDate) {
		return q, fmt.Errorf("end date must not be before start date")
	}
	return q, nil
}

func (f eventFilter) values() url.Values {
	v := url.Values{}
	for key, value := range map[string]string{
		"industry":        f.Industry,
		"region":          f.Region,
		"destinationCity": f.City,
		"startDate":       f.StartDate,
		"endDate":         f.EndDate,
		"after":           f.After,
	} {
		if value != "" {
			v.Set(key, value)
		}
	}
	return v
}

type eventCard struct {
	Name       string
	City       string
	Country    string
	Dates      string
	Categories string
	ImagePath  string
	Href       string
}

type tripCard struct {
	Title       string
	Description string
	Destination string
	Dates       string
	ImageURL    string
	Suggestion  string
	Href        string
}

type eventsView struct {
	Filter      eventFilter
	FilterError string
	Industries  []string
	Cities      []string
	Searched    bool
	Events      []eventCard
	NextHref    string
	Trips       []tripCard
}

func (s *Server) eventsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	view := eventsView{Filter: parseEventFilter(r.URL.Query())}

	query, filterErr := view.Filter.query()
	if filterErr != nil {
		view.FilterError = filterErr.Error()
	}
	search := view.Filter.Industry != "" && filterErr == nil

	var (
		list        apiclient.EventPage
		recommended []trips.Trip
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		industries, err := s.api.Industries(gctx)
		view.Industries = industries
		return err
	})
	g.Go(func() error {
		cities, err := s.api.Cities(gctx)
		if err != nil {
			logger.Warn().Err(err).Msg("city suggestions unavailable")
			return nil
		}
		view.Cities = cities
		return nil
	})
	g.Go(func() error {
		found, err := s.api.RecommendedTrips(gctx)
		if err != nil {
			logger.Warn().Err(err).Msg("recommended trips unavailable")
			return nil
		}
		recommended = found
		return nil
	})
	if search {
		g.Go(func() error {
			var err error
			list, err = s.api.ListEvents(gctx, query)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.fail(w, r, err)
		return
	}

	if search {
		view.Searched = true
		for _, ev := range list.Items {
			view.Events = append(view.Events, s.eventCard(r, ev))
		}
		if list.NextCursor != "" {
			next := view.Filter
			next.After = list.NextCursor
			view.NextHref = "/events?" + next.values().Encode()
		}
	}
	for _, trip := range recommended {
		view.Trips = append(view.Trips, newTripCard(trip, view.Filter.Industry))
	}

	s.render(w, r, http.StatusOK, "events", page{
		Title:    "Find an event",
		Progress: progressLinks(itinerary.StepEvent, itinerary.Selection{}, itinerary.Names{}),
		Data:     view,
	})
}

func (s *Server) eventCard(r *http.Request, ev events.Event) eventCard {
	card := eventCard{
		Name:      ev.Name,
		City:      ev.City,
		Country:   ev.Country,
		ImagePath: ev.ImagePath,
	}
	if span, err := ev.Span(); err == nil {
		card.Dates = formatSpan(span)
	}
	names := make([]string, 0, len(ev.Categories))
	for _, c := range ev.Categories {
		names = append(names, c.Name)
	}
	card.Categories = strings.Join(names, ", ")

	addr, err := itinerary.Advance(itinerary.StepEvent, itinerary.WithEvent(ev.ID, ev.City))
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("event_id", ev.ID).Msg("cannot link event")
		return card
	}
	card.Href = addr.String()
	return card
}

// newTripCard links a recommended trip to the event search for its destination.
func newTripCard(t trips.Trip, industry string) tripCard {
	card := tripCard{
		Title:       t.Title,
		Description: t.Description,
		Destination: t.Destination,
		Dates:       t.Dates,
		ImageURL:    t.ImageURL,
		Suggestion:  t.AccommodationSuggestion,
	}
	if card.Dates == "" && t.Range().Complete() {
		card.Dates = t.Range().String()
	}
	if industry != "" {
		card.Href = "/events?" + eventFilter{Industry: industry, City: t.Destination}.values().Encode()
	}
	return card
}

func formatSpan(span itinerary.EventSpan) string {
	if span.Start.Equal(span.End) {
		return span.Start.String()
	}
	return span.Start.String() + " to " + span.End.String()
}
