package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Togather-Foundation/eventrip/internal/itinerary"
	"github.com/Togather-Foundation/eventrip/internal/retry"
)

// Error is a failed API call. It matches itinerary.ErrNotFound for a 404 and
// itinerary.ErrTransient when retries ran out on a retryable failure.
type Error struct {
	Op     string
	Status int
	Err    error
	kind   error
}

func newError(op string, status int, err error) *Error {
	return &Error{Op: op, Status: status, Err: err, kind: classify(status, err)}
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.kind == nil {
		return []error{e.Err}
	}
	return []error{e.kind, e.Err}
}

func classify(status int, err error) error {
	var statusErr *retry.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return itinerary.ErrNotFound
	}
	if status == http.StatusNotFound {
		return itinerary.ErrNotFound
	}
	if errors.Is(err, retry.ErrExhausted) || retry.IsRetryable(err) {
		return itinerary.ErrTransient
	}
	return nil
}
