package itinerary

// Stay holds the accommodation step's date state for one event.
// The active range only ever moves to a range that passed Validate.
type Stay struct {
	span      EventSpan
	active    Range
	tentative TentativeRange
	hint      string
}

// NewStay starts from active when it brackets the span, otherwise from DefaultRange.
func NewStay(span EventSpan, active Range) *Stay {
	if !active.Contains(span) {
		active = DefaultRange(span)
	}
	return &Stay{
		span:      span,
		active:    active,
		tentative: TentativeRange{CheckIn: active.CheckIn, CheckOut: active.CheckOut},
	}
}

// Edit replaces the tentative range and applies the validation outcome.
// changed reports that the active range moved and dependent searches must be reissued.
func (s *Stay) Edit(tentative TentativeRange) (Result, bool) {
	s.tentative = tentative
	result := Validate(tentative, s.span)
	switch result.Decision {
	case Accepted:
		changed := !result.Range.Equal(s.active)
		s.active = result.Range
		s.hint = ""
		return result, changed
	case Rejected:
		s.hint = result.Hint
	default:
		s.hint = ""
	}
	return result, false
}

func (s *Stay) Span() EventSpan {
	return s.span
}

func (s *Stay) Active() Range {
	return s.active
}

func (s *Stay) Tentative() TentativeRange {
	return s.tentative
}

// Hint is the message for the last rejected edit, empty otherwise.
func (s *Stay) Hint() string {
	return s.hint
}
