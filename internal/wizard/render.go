package wizard

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/eventrip/internal/itinerary"
)

var pageNames = []string{"events", "accommodation", "transportation", "results", "reset", "error"}

type templates struct {
	pages map[string]*template.Template
}

// loadTemplates parses each page together with the shared layout so that every
// page can define its own "content" block.
func loadTemplates(fsys fs.FS) (*templates, error) {
	t := &templates{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(fsys, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	return t, nil
}

type page struct {
	Title     string
	Progress  []progressLink
	Banner    *banner
	CSRFField template.HTML
	Data      any
}

type banner struct {
	Kind      string
	Message   string
	RetryHref string
	Note      string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	tmpl, ok := s.templates.pages[name]
	if !ok {
		s.serverError(w, r, fmt.Errorf("unknown template %q", name))
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorView struct {
	Heading string
	Message string
	Missing []string
}

var fieldLabels = map[string]string{
	itinerary.KeyEventID:  "event",
	itinerary.KeyLocation: "event location",
	itinerary.KeyCheckIn:  "check-in date",
	itinerary.KeyCheckOut: "check-out date",
}

func fieldLabel(key string) string {
	if label, ok := fieldLabels[key]; ok {
		return label
	}
	return key
}

// fail maps a page error onto the wizard's error states.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())
	var ctxErr *itinerary.ContextError
	switch {
	case errors.As(err, &ctxErr):
		view := errorView{
			Heading: "Missing required information",
			Message: "This page needs details from an earlier step. Start again to pick them.",
		}
		for _, key := range ctxErr.Missing {
			view.Missing = append(view.Missing, "Missing "+fieldLabel(key))
		}
		for _, key := range ctxErr.Malformed {
			view.Missing = append(view.Missing, "Invalid "+fieldLabel(key))
		}
		logger.Debug().Err(err).Msg("incomplete wizard address")
		s.render(w, r, http.StatusBadRequest, "error", page{Title: "Missing information", Data: view})
	case errors.Is(err, itinerary.ErrNotFound):
		logger.Warn().Err(err).Msg("wizard lookup not found")
		s.render(w, r, http.StatusNotFound, "error", page{Title: "Not found", Data: errorView{
			Heading: "Not found",
			Message: "We could not find what this link points to. It may have been removed.",
		}})
	case errors.Is(err, itinerary.ErrTransient):
		logger.Warn().Err(err).Msg("wizard backend unavailable")
		s.render(w, r, http.StatusServiceUnavailable, "error", page{
			Title:  "Temporarily unavailable",
			Banner: transientBanner(r),
			Data: errorView{
				Heading: "Temporarily unavailable",
				Message: "We could not load this page right now.",
			},
		})
	default:
		s.serverError(w, r, err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("wizard page failed")
	view := errorView{Heading: "Something went wrong", Message: "An unexpected error occurred."}
	if s.env == "development" || s.env == "test" {
		view.Message = err.Error()
	}
	tmpl := s.templates.pages["error"]
	var buf bytes.Buffer
	if tmpl == nil || tmpl.ExecuteTemplate(&buf, "layout", page{Title: "Error", Data: view}) != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = buf.WriteTo(w)
}

// transientBanner offers a retry of the same address.
func transientBanner(r *http.Request) *banner {
	return &banner{
		Kind:      "warn",
		Message:   "The trip service did not respond.",
		RetryHref: r.URL.RequestURI(),
		Note:      "The service may still be starting. Try again in a few seconds.",
	}
}
