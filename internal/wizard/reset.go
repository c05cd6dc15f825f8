package wizard

import (
	"net/http"
	"strings"

	"github.com/Togather-Foundation/eventrip/internal/api/middleware"
	"github.com/Togather-Foundation/eventrip/internal/itinerary"
)

// resetForm confirms before the selection is discarded. from is where
// "Keep planning" leads back to.
func (s *Server) resetForm(w http.ResponseWriter, r *http.Request) {
	var back string
	if from := r.URL.Query().Get("from"); isLocalPath(from) {
		back = from
	}
	s.render(w, r, http.StatusOK, "reset", page{
		Title:     "Start over",
		CSRFField: middleware.CSRFField(r),
		Data:      back,
	})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	addr, err := itinerary.Encode(itinerary.StepEvent, itinerary.Selection{})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, addr.String(), http.StatusSeeOther)
}

// isLocalPath accepts same-site paths only, so the cancel link cannot point
// at another host.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
