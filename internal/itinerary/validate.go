package itinerary

// Decision is the outcome of validating a tentative range.
type Decision int

const (
	// NoDecision means the tentative range is not fully specified yet.
	NoDecision Decision = iota
	Accepted
	Rejected
)

func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "no_decision"
	}
}

const (
	HintContainment  = "Selected range must include the event dates"
	HintInvalidOrder = "Check-out date must not be before check-in date"
)

// Result is produced fresh on every edit and never stored.
type Result struct {
	Decision Decision
	// Range is set only when Decision is Accepted.
	Range Range
	// Hint is set only when Decision is Rejected.
	Hint string
}

// Err returns a *RejectionError for rejected results and nil otherwise.
func (r Result) Err() error {
	if r.Decision != Rejected {
		return nil
	}
	return &RejectionError{Hint: r.Hint}
}

// Validate decides whether tentative brackets the whole event span.
func Validate(tentative TentativeRange, span EventSpan) Result {
	if !tentative.Complete() {
		return Result{Decision: NoDecision}
	}
	if tentative.CheckOut.Before(tentative.CheckIn) {
		return Result{Decision: Rejected, Hint: HintInvalidOrder}
	}
	candidate := tentative.Range()
	if !candidate.Contains(span) {
		return Result{Decision: Rejected, Hint: HintContainment}
	}
	return Result{Decision: Accepted, Range: candidate}
}
