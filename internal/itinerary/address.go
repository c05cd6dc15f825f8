package itinerary

import (
	"errors"
	"net/url"
	"slices"
	"strings"
)

// Address keys. Every wizard page reads its state from these and nothing else.
const (
	KeyEventID   = "eventId"
	KeyLocation  = "location"
	KeyCheckIn   = "checkInDate"
	KeyCheckOut  = "checkOutDate"
	KeyLodging   = "accommodationId"
	KeyTransport = "transportationId"
	KeyOrigin    = "origin"
	KeyProvider  = "transportationProvider"
)

// AddressKeys lists every key Encode may write.
var AddressKeys = []string{KeyEventID, KeyLocation, KeyCheckIn, KeyCheckOut, KeyLodging, KeyTransport, KeyOrigin, KeyProvider}

// Address is a wizard location: the step's path plus its query.
type Address struct {
	Step  Step
	Query url.Values
}

func (a Address) Path() string {
	return a.Step.Path()
}

// String renders path?query, omitting the query when empty.
func (a Address) String() string {
	encoded := a.Query.Encode()
	if encoded == "" {
		return a.Path()
	}
	return a.Path() + "?" + encoded
}

// Encode writes the fields carried by target. Targeting the event step clears everything.
func Encode(target Step, sel Selection) (Address, error) {
	addr := Address{Step: target, Query: url.Values{}}
	if !target.Valid() {
		return addr, errors.New("encode address: unknown step")
	}
	sel = sel.For(target)
	q := addr.Query

	setIf(q, KeyEventID, sel.EventID)
	setIf(q, KeyLocation, sel.Location)
	setIf(q, KeyCheckIn, sel.Stay.CheckIn.String())
	setIf(q, KeyCheckOut, sel.Stay.CheckOut.String())

	lodging, err := sel.Accommodation.addressValue()
	if err != nil {
		return Address{}, err
	}
	setIf(q, KeyLodging, lodging)

	transport, err := sel.Transport.Choice.addressValue()
	if err != nil {
		return Address{}, err
	}
	setIf(q, KeyTransport, transport)
	if !sel.Transport.Choice.IsSkipped() {
		setIf(q, KeyOrigin, sel.Transport.Origin)
		setIf(q, KeyProvider, sel.Transport.Provider)
	}
	return addr, nil
}

// Decode rebuilds whatever the address holds. Missing fields are left zero;
// a malformed date is dropped and reported as a *ContextError.
func Decode(values url.Values) (Selection, error) {
	sel := Selection{
		EventID:       strings.TrimSpace(values.Get(KeyEventID)),
		Location:      strings.TrimSpace(values.Get(KeyLocation)),
		Accommodation: parseChoice(values.Get(KeyLodging)),
	}

	var malformed []string
	if raw := strings.TrimSpace(values.Get(KeyCheckIn)); raw != "" {
		if d, err := ParseDate(raw); err == nil {
			sel.Stay.CheckIn = d
		} else {
			malformed = append(malformed, KeyCheckIn)
		}
	}
	if raw := strings.TrimSpace(values.Get(KeyCheckOut)); raw != "" {
		if d, err := ParseDate(raw); err == nil {
			sel.Stay.CheckOut = d
		} else {
			malformed = append(malformed, KeyCheckOut)
		}
	}

	provider := strings.TrimSpace(values.Get(KeyProvider))
	choice := parseChoice(values.Get(KeyTransport))
	if provider == SkippedValue && choice.IsAbsent() {
		choice = Skipped()
	}
	sel.Transport = Transport{Choice: choice}
	if !choice.IsSkipped() {
		sel.Transport.Origin = strings.TrimSpace(values.Get(KeyOrigin))
		sel.Transport.Provider = provider
	}

	if len(malformed) > 0 {
		return sel, &ContextError{Malformed: malformed}
	}
	return sel, nil
}

// DecodeFor decodes and then checks that step has what it needs. Malformed
// values only matter when step requires them.
func DecodeFor(step Step, values url.Values) (Selection, error) {
	sel, decodeErr := Decode(values)
	reqErr := sel.Require(step)
	if reqErr == nil {
		return sel, nil
	}
	var ctxErr *ContextError
	if !errors.As(reqErr, &ctxErr) {
		return sel, reqErr
	}
	var bad *ContextError
	if errors.As(decodeErr, &bad) {
		var missing []string
		for _, key := range ctxErr.Missing {
			if slices.Contains(bad.Malformed, key) {
				ctxErr.Malformed = append(ctxErr.Malformed, key)
				continue
			}
			missing = append(missing, key)
		}
		ctxErr.Missing = missing
	}
	return sel, ctxErr
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
