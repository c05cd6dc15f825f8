package itinerary

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(value string) Date {
	parsed, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func mustSpan(t *testing.T, start, end string) EventSpan {
	t.Helper()
	span, err := NewEventSpan(d(start), d(end))
	require.NoError(t, err)
	return span
}

func TestNewEventSpan(t *testing.T) {
	_, err := NewEventSpan(d("2025-10-12"), d("2025-10-10"))
	require.ErrorIs(t, err, ErrInvalidSpan)

	_, err = NewEventSpan(Date{}, d("2025-10-10"))
	require.ErrorIs(t, err, ErrInvalidSpan)

	span, err := NewEventSpan(d("2025-10-10"), d("2025-10-10"))
	require.NoError(t, err)
	assert.Equal(t, 1, span.Days())
}

func TestDefaultRange(t *testing.T) {
	span := mustSpan(t, "2025-10-10", "2025-10-12")

	got := DefaultRange(span)

	assert.Equal(t, "2025-10-07", got.CheckIn.String())
	assert.Equal(t, "2025-10-14", got.CheckOut.String())

	result := Validate(TentativeRange{CheckIn: got.CheckIn, CheckOut: got.CheckOut}, span)
	assert.Equal(t, Accepted, result.Decision)
	assert.True(t, result.Range.Equal(got))
}

func TestValidate(t *testing.T) {
	span := mustSpan(t, "2025-10-10", "2025-10-12")

	tests := []struct {
		name     string
		checkIn  string
		checkOut string
		want     Decision
		hint     string
	}{
		{name: "exact boundaries", checkIn: "2025-10-10", checkOut: "2025-10-12", want: Accepted},
		{name: "wider range", checkIn: "2025-10-01", checkOut: "2025-10-20", want: Accepted},
		{name: "starts after event start", checkIn: "2025-10-11", checkOut: "2025-10-13", want: Rejected, hint: HintContainment},
		{name: "ends before event end", checkIn: "2025-10-09", checkOut: "2025-10-11", want: Rejected, hint: HintContainment},
		{name: "entirely before event", checkIn: "2025-09-01", checkOut: "2025-09-05", want: Rejected, hint: HintContainment},
		{name: "inverted", checkIn: "2025-10-14", checkOut: "2025-10-07", want: Rejected, hint: HintInvalidOrder},
		{name: "missing check-out", checkIn: "2025-10-07", want: NoDecision},
		{name: "missing check-in", checkOut: "2025-10-14", want: NoDecision},
		{name: "nothing selected", want: NoDecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tentative TentativeRange
			if tt.checkIn != "" {
				tentative.CheckIn = d(tt.checkIn)
			}
			if tt.checkOut != "" {
				tentative.CheckOut = d(tt.checkOut)
			}

			result := Validate(tentative, span)

			assert.Equal(t, tt.want, result.Decision)
			assert.Equal(t, tt.hint, result.Hint)
			if tt.want == Accepted {
				assert.Equal(t, tentative.Range(), result.Range)
			} else {
				assert.True(t, result.Range.IsZero())
			}
		})
	}
}

func TestValidateResultErr(t *testing.T) {
	span := mustSpan(t, "2025-10-10", "2025-10-12")

	rejected := Validate(TentativeRange{CheckIn: d("2025-10-11"), CheckOut: d("2025-10-13")}, span)
	err := rejected.Err()
	require.ErrorIs(t, err, ErrValidationRejected)

	var rej *RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, HintContainment, rej.Hint)

	assert.NoError(t, Validate(TentativeRange{}, span).Err())
}

// spans walks a deterministic set of event spans including single-day events
// and spans crossing month and year boundaries.
func spans() []EventSpan {
	var out []EventSpan
	base := NewDate(2025, time.December, 20)
	for offset := 0; offset < 20; offset += 3 {
		for length := 0; length < 6; length++ {
			start := base.AddDays(offset)
			out = append(out, EventSpan{Start: start, End: start.AddDays(length)})
		}
	}
	return out
}

func TestValidateContainmentProperty(t *testing.T) {
	for _, span := range spans() {
		for in := -4; in <= 4; in++ {
			for out := -4; out <= 4; out++ {
				tentative := TentativeRange{
					CheckIn:  span.Start.AddDays(in),
					CheckOut: span.End.AddDays(out),
				}
				if tentative.CheckOut.Before(tentative.CheckIn) {
					continue
				}
				want := !tentative.CheckIn.After(span.Start) && !tentative.CheckOut.Before(span.End)

				first := Validate(tentative, span)
				second := Validate(tentative, span)

				assert.Equal(t, want, first.Decision == Accepted, "span %v..%v tentative %v..%v", span.Start, span.End, tentative.CheckIn, tentative.CheckOut)
				assert.Equal(t, first, second)
			}
		}
	}
}

func TestDefaultRangeAlwaysAccepted(t *testing.T) {
	for _, span := range spans() {
		def := DefaultRange(span)
		result := Validate(TentativeRange{CheckIn: def.CheckIn, CheckOut: def.CheckOut}, span)
		assert.Equal(t, Accepted, result.Decision, "span %v..%v", span.Start, span.End)
	}
}
