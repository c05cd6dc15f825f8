package itinerary

import "strings"

// Selection is everything the wizard has gathered. It is never stored; each
// page rebuilds it from the address.
type Selection struct {
	EventID       string
	Location      string
	Stay          Range
	Accommodation Choice
	Transport     Transport
}

// For keeps only the fields the given step carries: the event step carries
// nothing, accommodation the event, transportation adds the stay and the
// accommodation choice, and the summary carries everything.
func (s Selection) For(step Step) Selection {
	var out Selection
	if step >= StepAccommodation {
		out.EventID = strings.TrimSpace(s.EventID)
		out.Location = strings.TrimSpace(s.Location)
	}
	if step >= StepTransportation {
		out.Stay = s.Stay
		out.Accommodation = s.Accommodation
	}
	if step >= StepSummary {
		out.Transport = Transport{
			Choice:   s.Transport.Choice,
			Origin:   strings.TrimSpace(s.Transport.Origin),
			Provider: strings.TrimSpace(s.Transport.Provider),
		}
	}
	return out
}

// Require reports the fields step cannot render without.
func (s Selection) Require(step Step) error {
	var missing []string
	if step >= StepAccommodation {
		if strings.TrimSpace(s.EventID) == "" {
			missing = append(missing, KeyEventID)
		}
		if strings.TrimSpace(s.Location) == "" {
			missing = append(missing, KeyLocation)
		}
	}
	if step >= StepTransportation {
		if s.Stay.CheckIn.IsZero() {
			missing = append(missing, KeyCheckIn)
		}
		if s.Stay.CheckOut.IsZero() {
			missing = append(missing, KeyCheckOut)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ContextError{Step: step, Missing: missing}
}

// WithEvent starts a fresh selection for a newly picked event.
func WithEvent(eventID, location string) Selection {
	return Selection{EventID: strings.TrimSpace(eventID), Location: strings.TrimSpace(location)}
}
