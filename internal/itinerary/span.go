package itinerary

import "fmt"

// EventSpan is the fixed first and last day of the selected event.
type EventSpan struct {
	Start Date
	End   Date
}

// NewEventSpan rejects absent dates and spans that end before they start.
// A single-day event has Start equal to End.
func NewEventSpan(start, end Date) (EventSpan, error) {
	if start.IsZero() || end.IsZero() {
		return EventSpan{}, fmt.Errorf("%w: start and end are required", ErrInvalidSpan)
	}
	if end.Before(start) {
		return EventSpan{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidSpan, end, start)
	}
	return EventSpan{Start: start, End: end}, nil
}

// Days is the inclusive length of the event.
func (s EventSpan) Days() int {
	return InclusiveDays(s.Start, s.End)
}

// Range is a validated stay: check-in on or before the event start and
// check-out on or after the event end.
type Range struct {
	CheckIn  Date
	CheckOut Date
}

func (r Range) IsZero() bool {
	return r.CheckIn.IsZero() && r.CheckOut.IsZero()
}

// Complete reports whether both ends are present.
func (r Range) Complete() bool {
	return !r.CheckIn.IsZero() && !r.CheckOut.IsZero()
}

// Contains applies the containment policy with non-strict bounds.
func (r Range) Contains(span EventSpan) bool {
	return r.Complete() && !r.CheckIn.After(span.Start) && !r.CheckOut.Before(span.End)
}

func (r Range) Nights() int {
	return Nights(r.CheckIn, r.CheckOut)
}

func (r Range) Days() int {
	return InclusiveDays(r.CheckIn, r.CheckOut)
}

func (r Range) String() string {
	return r.CheckIn.String() + " to " + r.CheckOut.String()
}

// TentativeRange is whatever the date picker currently holds. Either end may be absent.
type TentativeRange struct {
	CheckIn  Date
	CheckOut Date
}

func (t TentativeRange) Complete() bool {
	return !t.CheckIn.IsZero() && !t.CheckOut.IsZero()
}

func (t TentativeRange) Range() Range {
	return Range{CheckIn: t.CheckIn, CheckOut: t.CheckOut}
}

func (r Range) Equal(other Range) bool {
	return r.CheckIn.Equal(other.CheckIn) && r.CheckOut.Equal(other.CheckOut)
}
