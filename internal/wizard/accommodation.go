package wizard

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/eventrip/internal/domain/offers"
	"github.com/Togather-Foundation/eventrip/internal/itinerary"
	"github.com/Togather-Foundation/eventrip/internal/metrics"
)

// Form fields for a date edit. They are never part of an address.
const (
	keyProposedCheckIn  = "proposedCheckIn"
	keyProposedCheckOut = "proposedCheckOut"
)

type hiddenField struct {
	Name  string
	Value string
}

// hiddenFields turns an address query into form inputs so a GET form keeps
// the selection it was rendered with.
func hiddenFields(q url.Values) []hiddenField {
	keys := make([]string, 0, len(q))
	for key := range q {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]hiddenField, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, hiddenField{Name: key, Value: q.Get(key)})
	}
	return fields
}

type offerCard struct {
	Name        string
	Price       string
	Total       string
	Rating      string
	ImageURL    string
	BookingLink string
	ChooseHref  string
}

type accommodationView struct {
	Event            eventSummary
	EventDates       string
	Location         string
	Hidden           []hiddenField
	ProposedCheckIn  string
	ProposedCheckOut string
	Hint             string
	Stay             string
	Nights           string
	Offers           []offerCard
	Unavailable      bool
	SkipHref         string
}

type eventSummary struct {
	ID   string
	Name string
}

func (s *Server) accommodationPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	values := r.URL.Query()
	sel, err := itinerary.DecodeFor(itinerary.StepAccommodation, values)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ev, err := s.api.Event(ctx, sel.EventID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	span, err := ev.Span()
	if err != nil {
		s.serverError(w, r, fmt.Errorf("event %s: %w", ev.ID, err))
		return
	}

	stay := itinerary.NewStay(span, sel.Stay)
	if values.Has(keyProposedCheckIn) || values.Has(keyProposedCheckOut) {
		result, changed := stay.Edit(proposedRange(values))
		metrics.RangeValidations.WithLabelValues(result.Decision.String()).Inc()
		zerolog.Ctx(ctx).Debug().
			Str("decision", result.Decision.String()).
			Bool("changed", changed).
			Str("active", stay.Active().String()).
			Msg("stay edit")
	}
	active := stay.Active()
	sel.Stay = active

	view := accommodationView{
		Event:            eventSummary{ID: ev.ID, Name: ev.Name},
		EventDates:       formatSpan(span),
		Location:         sel.Location,
		ProposedCheckIn:  stay.Tentative().CheckIn.String(),
		ProposedCheckOut: stay.Tentative().CheckOut.String(),
		Hint:             stay.Hint(),
		Stay:             active.String(),
		Nights:           plural(active.Nights(), "night"),
	}
	carried := url.Values{}
	carried.Set(itinerary.KeyEventID, sel.EventID)
	carried.Set(itinerary.KeyLocation, sel.Location)
	carried.Set(itinerary.KeyCheckIn, active.CheckIn.String())
	carried.Set(itinerary.KeyCheckOut, active.CheckOut.String())
	view.Hidden = hiddenFields(carried)

	skip := sel
	skip.Accommodation = itinerary.Skipped()
	skipAddr, err := itinerary.Advance(itinerary.StepAccommodation, skip)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	view.SkipHref = skipAddr.String()

	var notice *banner
	list, err := s.api.Accommodations(ctx, sel.Location, active)
	switch {
	case err == nil:
		for _, offer := range list {
			view.Offers = append(view.Offers, s.offerCard(r, sel, offer))
		}
	case errors.Is(err, itinerary.ErrTransient):
		zerolog.Ctx(ctx).Warn().Err(err).Msg("accommodation offers unavailable")
		view.Unavailable = true
		notice = transientBanner(r)
	default:
		s.fail(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "accommodation", page{
		Title:    "Accommodation",
		Progress: progressLinks(itinerary.StepAccommodation, sel, itinerary.Names{Event: ev.Name}),
		Banner:   notice,
		Data:     view,
	})
}

// proposedRange reads the date picker fields. Blank or unparseable values
// leave that end absent, which validation treats as undecided.
func proposedRange(values url.Values) itinerary.TentativeRange {
	var t itinerary.TentativeRange
	if d, err := itinerary.ParseDate(values.Get(keyProposedCheckIn)); err == nil {
		t.CheckIn = d
	}
	if d, err := itinerary.ParseDate(values.Get(keyProposedCheckOut)); err == nil {
		t.CheckOut = d
	}
	return t
}

func (s *Server) offerCard(r *http.Request, sel itinerary.Selection, offer offers.Accommodation) offerCard {
	card := offerCard{
		Name:        offer.Name,
		Price:       offer.Price.Format(offer.Currency),
		Total:       offer.TotalPrice.Format(offer.Currency),
		BookingLink: offer.BookingLink,
	}
	if offer.Rating != nil {
		card.Rating = fmt.Sprintf("%.1f", *offer.Rating)
	}
	if offer.ImageURL != nil {
		card.ImageURL = *offer.ImageURL
	}
	sel.Accommodation = itinerary.Chosen(offer.ID)
	addr, err := itinerary.Advance(itinerary.StepAccommodation, sel)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("offer_id", offer.ID).Msg("cannot link accommodation offer")
		return card
	}
	card.ChooseHref = addr.String()
	return card
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func trimUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
