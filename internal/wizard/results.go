package wizard

import (
	"net/http"

	"github.com/Togather-Foundation/eventrip/internal/domain/events"
	"github.com/Togather-Foundation/eventrip/internal/itinerary"
)

type resultsView struct {
	Lines     []itinerary.Line
	PDFHref   string
	ICSHref   string
	ResetHref string
}

// trip is a finished selection together with what was fetched to describe it.
type trip struct {
	Selection itinerary.Selection
	Event     *events.Event
	Names     itinerary.Names
	Span      itinerary.EventSpan
	Summary   itinerary.Summary
}

// loadTrip decodes a summary address and resolves what it names.
func (s *Server) loadTrip(r *http.Request) (*trip, error) {
	sel, err := itinerary.DecodeFor(itinerary.StepSummary, r.URL.Query())
	if err != nil {
		return nil, err
	}

	ev, names, err := s.resolve(r.Context(), sel)
	if err != nil {
		return nil, err
	}

	span, err := ev.Span()
	if err != nil {
		return nil, err
	}
	if !sel.Stay.Contains(span) {
		return nil, &itinerary.ContextError{
			Step:      itinerary.StepSummary,
			Malformed: []string{itinerary.KeyCheckIn, itinerary.KeyCheckOut},
		}
	}
	return &trip{
		Selection: sel,
		Event:     ev,
		Names:     names,
		Span:      span,
		Summary:   itinerary.Summarize(sel, names),
	}, nil
}

func (s *Server) resultsPage(w http.ResponseWriter, r *http.Request) {
	t, err := s.loadTrip(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	here, err := itinerary.Encode(itinerary.StepSummary, t.Selection)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	query := here.Query.Encode()
	view := resultsView{
		Lines:     t.Summary.Lines(),
		PDFHref:   "/results.pdf?" + query,
		ICSHref:   "/results.ics?" + query,
		ResetHref: resetHref(here.String()),
	}
	s.render(w, r, http.StatusOK, "results", page{
		Title:    "Summary",
		Progress: progressLinks(itinerary.StepSummary, t.Selection, t.Names),
		Data:     view,
	})
}
