package itinerary

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the wire format for every date carried in an address.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time of day and no zone.
// The zero value means the date is absent.
type Date struct {
	t time.Time
}

// NewDate returns the calendar date year-month-day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a yyyy-MM-dd string.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return Date{t: parsed}, nil
}

// ParseEventDate accepts either a plain date or an RFC 3339 date-time and keeps
// the calendar date part. Event lookups return date-times.
func ParseEventDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if d, err := ParseDate(value); err == nil {
		return d, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return Date{}, fmt.Errorf("parse event date %q: %w", value, err)
	}
	return DateOf(parsed), nil
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return d.t
}

// AddDays shifts the date by n calendar days. Absent dates stay absent.
func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	return d.t.Compare(other.t)
}

// DaysUntil counts calendar days from d to other; negative when other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(math.Round(other.t.Sub(d.t).Hours() / 24))
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseEventDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// InclusiveDays is the trip length counting both ends, so a same-day trip is 1.
func InclusiveDays(from, to Date) int {
	return from.DaysUntil(to) + 1
}

// Nights is the number of billable nights between check-in and check-out,
// never less than one.
func Nights(checkIn, checkOut Date) int {
	n := checkIn.DaysUntil(checkOut)
	if n < 1 {
		return 1
	}
	return n
}
