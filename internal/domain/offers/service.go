package offers

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/Togather-Foundation/eventrip/internal/itinerary"
	"github.com/go-playground/validator/v10"
)

var ErrNotFound = errors.New("offer not found")

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
	// Flight offsets in the catalog count from this hour of the outbound date.
	departureBaseHour = 6
)

type Accommodation struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       Price    `json:"price"`
	Currency    string   `json:"currency"`
	Rating      *float64 `json:"rating"`
	ImageURL    *string  `json:"imageUrl"`
	BookingLink string   `json:"bookingLink"`
	TotalPrice  Price    `json:"totalPrice"`
	Nights      int      `json:"nights"`
}

type Flight struct {
	ID            string `json:"id"`
	Airline       string `json:"airline"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
	Duration      string `json:"duration"`
	Stops         int    `json:"stops"`
	Price         Price  `json:"price"`
	Currency      string `json:"currency"`
	BookingLink   string `json:"bookingLink"`
}

type AccommodationQuery struct {
	Location  string `query:"location" validate:"required,max=200"`
	StartDate string `query:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `query:"endDate" validate:"required,datetime=2006-01-02"`
}

type FlightQuery struct {
	Origin      string `query:"origin" validate:"required,max=64"`
	Destination string `query:"destination" validate:"required,max=200"`
	StartDate   string `query:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string `query:"endDate" validate:"required,datetime=2006-01-02"`
}

// QueryError reports the first invalid search parameter.
type QueryError struct {
	Field   string
	Message string
}

func (e QueryError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type Options struct {
	AffiliateID string
	Currency    string
}

// Service generates offers from a catalog. It holds no mutable state.
type Service struct {
	catalog   Catalog
	opts      Options
	validator *validator.Validate
}

func NewService(catalog Catalog, opts Options) *Service {
	if opts.Currency == "" {
		opts.Currency = "EUR"
	}
	if opts.AffiliateID == "" {
		opts.AffiliateID = "YOUR_AFFILIATE_ID"
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})
	return &Service{catalog: catalog, opts: opts, validator: v}
}

func (s *Service) ParseAccommodationQuery(values url.Values) (AccommodationQuery, error) {
	q := AccommodationQuery{
		Location:  strings.TrimSpace(values.Get("location")),
		StartDate: strings.TrimSpace(values.Get("startDate")),
		EndDate:   strings.TrimSpace(values.Get("endDate")),
	}
	return q, s.check(q)
}

func (s *Service) ParseFlightQuery(values url.Values) (FlightQuery, error) {
	q := FlightQuery{
		Origin:      strings.ToUpper(strings.TrimSpace(values.Get("origin"))),
		Destination: strings.TrimSpace(values.Get("destination")),
		StartDate:   strings.TrimSpace(values.Get("startDate")),
		EndDate:     strings.TrimSpace(values.Get("endDate")),
	}
	return q, s.check(q)
}

func (s *Service) check(q any) error {
	err := s.validator.Struct(q)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return QueryError{Field: fe.Field(), Message: "is required"}
	case "datetime":
		return QueryError{Field: fe.Field(), Message: "must be YYYY-MM-DD"}
	case "max":
		return QueryError{Field: fe.Field(), Message: fmt.Sprintf("must be at most %s characters", fe.Param())}
	default:
		return QueryError{Field: fe.Field(), Message: "is invalid"}
	}
}

// Accommodations lists every catalog hotel priced for the stay. Nights are
// never fewer than one; labelled prices stay labels in the total.
func (s *Service) Accommodations(q AccommodationQuery) []Accommodation {
	nights := stayNights(q.StartDate, q.EndDate)
	out := make([]Accommodation, 0, len(s.catalog.Hotels))
	for _, h := range s.catalog.Hotels {
		out = append(out, s.accommodation(h, q, nights))
	}
	return out
}

func (s *Service) Accommodation(id string, q AccommodationQuery) (Accommodation, error) {
	for _, h := range s.catalog.Hotels {
		if h.ID == id {
			return s.accommodation(h, q, stayNights(q.StartDate, q.EndDate)), nil
		}
	}
	return Accommodation{}, fmt.Errorf("%w: accommodation %q", ErrNotFound, id)
}

func (s *Service) accommodation(h HotelTemplate, q AccommodationQuery, nights int) Accommodation {
	a := Accommodation{
		ID:          h.ID,
		Name:        h.Name + " " + q.Location,
		Price:       h.Price,
		Currency:    s.opts.Currency,
		Rating:      h.Rating,
		TotalPrice:  h.Price.Times(nights),
		Nights:      nights,
		BookingLink: s.bookingLink(h.ID, q),
	}
	if h.Image != "" {
		image := h.Image
		a.ImageURL = &image
	}
	return a
}

func (s *Service) bookingLink(hotelID string, q AccommodationQuery) string {
	v := url.Values{}
	v.Set("location", q.Location)
	v.Set("checkin", q.StartDate)
	v.Set("checkout", q.EndDate)
	v.Set("hotel_id", hotelID)
	v.Set("aid", s.opts.AffiliateID)
	return "https://example.booking.com/search?" + v.Encode()
}

// Flights lists every catalog flight on the outbound date.
func (s *Service) Flights(q FlightQuery) []Flight {
	out := make([]Flight, 0, len(s.catalog.Flights))
	for _, f := range s.catalog.Flights {
		out = append(out, s.flight(f, q))
	}
	return out
}

func (s *Service) Flight(id string, q FlightQuery) (Flight, error) {
	for _, f := range s.catalog.Flights {
		if f.ID == id {
			return s.flight(f, q), nil
		}
	}
	return Flight{}, fmt.Errorf("%w: flight %q", ErrNotFound, id)
}

func (s *Service) flight(f FlightTemplate, q FlightQuery) Flight {
	base := time.Now().UTC().Truncate(24 * time.Hour)
	if d, err := time.Parse(dateLayout, q.StartDate); err == nil {
		base = d
	}
	base = base.Add(departureBaseHour * time.Hour)
	return Flight{
		ID:            f.ID,
		Airline:       f.Airline,
		DepartureTime: base.Add(f.Depart).Format(dateTimeLayout),
		ArrivalTime:   base.Add(f.Arrive).Format(dateTimeLayout),
		Duration:      formatDuration(f.Arrive - f.Depart),
		Stops:         f.Stops,
		Price:         f.Price,
		Currency:      s.opts.Currency,
		BookingLink: fmt.Sprintf("https://www.kiwi.com/en/search/%s/%s/%s/%s/?affilid=%s",
			url.PathEscape(q.Origin), url.PathEscape(q.Destination),
			q.StartDate, q.EndDate, url.QueryEscape(s.opts.AffiliateID)),
	}
}

func stayNights(start, end string) int {
	checkIn, err := itinerary.ParseDate(start)
	if err != nil {
		return 1
	}
	checkOut, err := itinerary.ParseDate(end)
	if err != nil {
		return 1
	}
	return itinerary.Nights(checkIn, checkOut)
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
