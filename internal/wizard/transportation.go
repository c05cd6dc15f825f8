package wizard

import (
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/eventrip/internal/domain/events"
	"github.com/Togather-Foundation/eventrip/internal/domain/offers"
	"github.com/Togather-Foundation/eventrip/internal/itinerary"
)

const maxOriginLength = 64

type flightCard struct {
	Airline     string
	Departure   string
	Arrival     string
	Duration    string
	Stops       string
	Price       string
	BookingLink string
	ChooseHref  string
}

type transportationView struct {
	Location    string
	Stay        string
	Origin      string
	Hidden      []hiddenField
	Searched    bool
	Flights     []flightCard
	Unavailable bool
	SkipHref    string
}

func (s *Server) transportationPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sel, err := itinerary.DecodeFor(itinerary.StepTransportation, r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ev, names, err := s.resolve(ctx, sel)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := checkStay(ev, sel); err != nil {
		s.fail(w, r, err)
		return
	}

	origin := truncateRunes(trimUpper(sel.Transport.Origin), maxOriginLength)

	here, err := itinerary.Encode(itinerary.StepTransportation, sel)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	view := transportationView{
		Location: sel.Location,
		Stay:     sel.Stay.String(),
		Origin:   origin,
		Hidden:   hiddenFields(here.Query),
	}

	skip := sel
	skip.Transport = itinerary.Transport{Choice: itinerary.Skipped()}
	skipAddr, err := itinerary.Advance(itinerary.StepTransportation, skip)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	view.SkipHref = skipAddr.String()

	var notice *banner
	if origin != "" {
		view.Searched = true
		flights, err := s.api.Flights(ctx, origin, sel.Location, sel.Stay)
		switch {
		case err == nil:
			for _, f := range flights {
				view.Flights = append(view.Flights, s.flightCard(r, sel, origin, f))
			}
		case errors.Is(err, itinerary.ErrTransient):
			zerolog.Ctx(ctx).Warn().Err(err).Msg("flight offers unavailable")
			view.Unavailable = true
			notice = transientBanner(r)
		default:
			s.fail(w, r, err)
			return
		}
	}

	s.render(w, r, http.StatusOK, "transportation", page{
		Title:    "Transportation",
		Progress: progressLinks(itinerary.StepTransportation, sel, names),
		Banner:   notice,
		Data:     view,
	})
}

// checkStay re-validates an address range against the event, since an
// address can be edited by hand.
func checkStay(ev *events.Event, sel itinerary.Selection) error {
	span, err := ev.Span()
	if err != nil {
		return fmt.Errorf("event %s: %w", ev.ID, err)
	}
	tentative := itinerary.TentativeRange{CheckIn: sel.Stay.CheckIn, CheckOut: sel.Stay.CheckOut}
	if itinerary.Validate(tentative, span).Decision != itinerary.Accepted {
		return &itinerary.ContextError{
			Step:      itinerary.StepAccommodation,
			Malformed: []string{itinerary.KeyCheckIn, itinerary.KeyCheckOut},
		}
	}
	return nil
}

func (s *Server) flightCard(r *http.Request, sel itinerary.Selection, origin string, f offers.Flight) flightCard {
	card := flightCard{
		Airline:     f.Airline,
		Departure:   formatFlightTime(f.DepartureTime),
		Arrival:     formatFlightTime(f.ArrivalTime),
		Duration:    f.Duration,
		Stops:       "Direct",
		Price:       f.Price.Format(f.Currency),
		BookingLink: f.BookingLink,
	}
	if f.Stops > 0 {
		card.Stops = plural(f.Stops, "stop")
	}
	sel.Transport = itinerary.Transport{
		Choice:   itinerary.Chosen(f.ID),
		Origin:   origin,
		Provider: f.Airline,
	}
	addr, err := itinerary.Advance(itinerary.StepTransportation, sel)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("flight_id", f.ID).Msg("cannot link flight offer")
		return card
	}
	card.ChooseHref = addr.String()
	return card
}

// truncateRunes cuts s to at most n characters without splitting one.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func formatFlightTime(value string) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return t.UTC().Format("02 Jan 15:04 UTC")
}
