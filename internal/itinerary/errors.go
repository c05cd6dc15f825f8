package itinerary

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputIncomplete marks an address that lacks context a step needs.
	ErrInputIncomplete = errors.New("missing required information")
	// ErrValidationRejected marks a tentative range that failed containment.
	ErrValidationRejected = errors.New("selected range rejected")
	// ErrNotFound marks a referenced event or offer that does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks a fetch that failed for a reason worth retrying.
	ErrTransient = errors.New("temporarily unavailable")
	// ErrSuperseded is returned for a result that arrived after a newer request began.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrReservedID is returned when a chosen id equals the skip marker.
	ErrReservedID = errors.New("identifier collides with the skip marker")
	// ErrInvalidSpan is returned for an event span that ends before it starts.
	ErrInvalidSpan = errors.New("invalid event span")
)

// ContextError lists the address fields a step needed but did not get.
type ContextError struct {
	Step      Step
	Missing   []string
	Malformed []string
}

func (e *ContextError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Malformed) > 0 {
		parts = append(parts, "malformed "+strings.Join(e.Malformed, ", "))
	}
	if e.Step.Valid() {
		return fmt.Sprintf("%s for %s step: %s", ErrInputIncomplete, strings.ToLower(e.Step.Title()), strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%s: %s", ErrInputIncomplete, strings.Join(parts, "; "))
}

func (e *ContextError) Unwrap() error {
	return ErrInputIncomplete
}

// RejectionError carries the hint shown next to a rejected range.
type RejectionError struct {
	Hint string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidationRejected, e.Hint)
}

func (e *RejectionError) Unwrap() error {
	return ErrValidationRejected
}
