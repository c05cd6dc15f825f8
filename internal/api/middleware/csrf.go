package middleware

import (
	"html/template"
	"net/http"

	"github.com/Togather-Foundation/eventrip/internal/api/problem"
	"github.com/gorilla/csrf"
)

// CSRFProtection guards the wizard's state-changing forms with gorilla/csrf's
// double-submit cookie. When secure is false, requests are marked plaintext so
// the origin check accepts http:// during local development.
func CSRFProtection(authKey []byte, secure bool) func(http.Handler) http.Handler {
	protect := csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	problem.WriteProblem(w, problem.ProblemDetails{
		Type:     problem.TypeValidation,
		Title:    "Form expired",
		Status:   http.StatusForbidden,
		Detail:   "Reload the page and submit the form again",
		Instance: r.URL.Path,
	})
}

// CSRFField renders the hidden input carrying the token for r.
func CSRFField(r *http.Request) template.HTML {
	return csrf.TemplateField(r)
}

func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}
