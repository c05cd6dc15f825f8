package problem

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

// Problem types served by the API.
const (
	TypeValidation  = "https://eventrip.dev/problems/validation-error"
	TypeNotFound    = "https://eventrip.dev/problems/not-found"
	TypeServerError = "https://eventrip.dev/problems/server-error"
	TypeUnavailable = "https://eventrip.dev/problems/unavailable"
)

type ProblemDetails struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Status   int            `json:"status"`
	Detail   string         `json:"detail,omitempty"`
	Instance string         `json:"instance,omitempty"`
	Errors   map[string]any `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithErrors(errs map[string]any) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

// Write renders an RFC 7807 response. The error text is only exposed in
// development and test; elsewhere the status text stands in for it.
func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	p := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}
	for _, opt := range opts {
		opt(&p)
	}

	if p.Detail == "" && err != nil {
		if env == "development" || env == "test" {
			p.Detail = err.Error()
		} else {
			p.Detail = http.StatusText(status)
		}
	}
	if p.Instance == "" && r != nil {
		p.Instance = r.URL.Path
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		var event *zerolog.Event
		if status >= 500 {
			event = logger.Error()
		} else {
			event = logger.Warn()
		}
		event.Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	}

	WriteProblem(w, p)
}

// BadRequest reports a client input error. Input errors are safe to echo in
// every environment.
func BadRequest(w http.ResponseWriter, r *http.Request, err error, env string) {
	var opts []Option
	if err != nil {
		opts = append(opts, WithDetail(err.Error()))
	}
	Write(w, r, http.StatusBadRequest, TypeValidation, "Invalid request", err, env, opts...)
}

func NotFound(w http.ResponseWriter, r *http.Request, title string, err error, env string) {
	Write(w, r, http.StatusNotFound, TypeNotFound, title, err, env)
}

func ServerError(w http.ResponseWriter, r *http.Request, err error, env string) {
	Write(w, r, http.StatusInternalServerError, TypeServerError, "Server error", err, env)
}

func Unavailable(w http.ResponseWriter, r *http.Request, err error, env string) {
	Write(w, r, http.StatusServiceUnavailable, TypeUnavailable, "Service unavailable", err, env)
}

func WriteProblem(w http.ResponseWriter, p ProblemDetails) {
	payload, err := json.Marshal(p)
	if err != nil {
		fallback := fmt.Sprintf(`{"type":"about:blank","title":%q,"status":500}`, http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(p.Status)
	_, _ = w.Write(payload)
}
