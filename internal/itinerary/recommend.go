package itinerary

const (
	// DaysBeforeEvent is how early the suggested stay checks in.
	DaysBeforeEvent = 3
	// DaysAfterEvent is how late the suggested stay checks out.
	DaysAfterEvent = 2
)

// DefaultRange suggests a stay bracketing the event with travel buffer on both sides.
func DefaultRange(span EventSpan) Range {
	return Range{
		CheckIn:  span.Start.AddDays(-DaysBeforeEvent),
		CheckOut: span.End.AddDays(DaysAfterEvent),
	}
}
