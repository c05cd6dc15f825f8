package wizard

import (
	"context"
	"errors"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Togather-Foundation/eventrip/internal/domain/events"
	"github.com/Togather-Foundation/eventrip/internal/itinerary"
)

type progressLink struct {
	Title     string
	Detail    string
	Href      string
	Current   bool
	Completed bool
}

// progressLinks renders the step indicator for current. Later steps get no
// link. Going back to the first step discards the selection, so that link
// asks for confirmation first. Steps already decided show what was picked,
// using names where they were resolved and ids otherwise.
func progressLinks(current itinerary.Step, sel itinerary.Selection, names itinerary.Names) []progressLink {
	state := itinerary.Progress(current.Path())
	here, _ := itinerary.Encode(current, sel)

	links := make([]progressLink, 0, len(state.Steps))
	for _, st := range state.Steps {
		link := progressLink{
			Title:     st.Step.Title(),
			Detail:    stepDetail(st.Step, sel, names),
			Current:   st.Current,
			Completed: st.Completed,
		}
		if st.Clickable {
			switch {
			case st.Step == itinerary.StepEvent && current > itinerary.StepEvent:
				link.Href = resetHref(here.String())
			default:
				if addr, ok, err := itinerary.Navigate(current, st.Step, sel); err == nil && ok {
					link.Href = addr.String()
				}
			}
		}
		links = append(links, link)
	}
	return links
}

func stepDetail(step itinerary.Step, sel itinerary.Selection, names itinerary.Names) string {
	switch step {
	case itinerary.StepEvent:
		if names.Event != "" {
			return names.Event
		}
		return sel.EventID
	case itinerary.StepAccommodation:
		if sel.Accommodation.IsAbsent() {
			return ""
		}
		return itinerary.AccommodationStatus(sel.Accommodation, names.Accommodation)
	case itinerary.StepTransportation:
		if sel.Transport.Choice.IsAbsent() {
			return ""
		}
		return itinerary.TransportationStatus(sel.Transport)
	default:
		return ""
	}
}

// resolve fetches the event and the chosen accommodation's name concurrently.
// The event must resolve; an accommodation name that cannot be fetched is
// left empty so the id is shown instead.
func (s *Server) resolve(ctx context.Context, sel itinerary.Selection) (*events.Event, itinerary.Names, error) {
	var (
		ev    *events.Event
		names itinerary.Names
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.api.Event(gctx, sel.EventID)
		if err != nil {
			return err
		}
		ev = found
		return nil
	})
	if sel.Accommodation.IsChosen() {
		g.Go(func() error {
			offer, err := s.api.Accommodation(gctx, sel.Accommodation.ID(), sel.Location, sel.Stay)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					zerolog.Ctx(ctx).Warn().Err(err).
						Str("accommodation_id", sel.Accommodation.ID()).
						Msg("accommodation name unavailable")
				}
				return nil
			}
			names.Accommodation = offer.Name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, itinerary.Names{}, err
	}
	names.Event = ev.Name
	return ev, names, nil
}

func resetHref(from string) string {
	return "/reset?" + url.Values{"from": {from}}.Encode()
}
