package middleware

import (
	"net/http"
)

// DefaultMaxBodySize bounds wizard form posts.
const DefaultMaxBodySize int64 = 64 << 10

// RequestSize caps request bodies with http.MaxBytesReader; reads past the
// limit fail and the server answers 413.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
