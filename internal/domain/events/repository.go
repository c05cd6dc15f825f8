package events

import (
	"context"
	"errors"
	"time"

	"github.com/Togather-Foundation/eventrip/internal/itinerary"
)

var ErrNotFound = errors.New("event not found")

var ErrConflict = errors.New("event conflict")

type Event struct {
	ID           string     `json:"id"`
	ExternalID   string     `json:"externalId"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Industry     string     `json:"industry"`
	Country      string     `json:"country"`
	Region       string     `json:"region,omitempty"`
	City         string     `json:"city"`
	ZipCode      string     `json:"zipCode"`
	Street       string     `json:"street"`
	StreetNumber string     `json:"streetNumber"`
	Location     string     `json:"location"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      time.Time  `json:"endDate"`
	WebsiteURL   string     `json:"websiteUrl,omitempty"`
	TicketPrice  *float64   `json:"ticketPrice,omitempty"`
	ImagePath    string     `json:"imagePath,omitempty"`
	Categories   []Category `json:"categories"`
	Tags         []Tag      `json:"tags"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Span returns the calendar dates the event occupies, in UTC.
func (e Event) Span() (itinerary.EventSpan, error) {
	return itinerary.NewEventSpan(itinerary.DateOf(e.StartDate.UTC()), itinerary.DateOf(e.EndDate.UTC()))
}

type Category struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	EventCount int    `json:"eventCount,omitempty"`
}

type Tag struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	EventCount int    `json:"eventCount,omitempty"`
}

type Filters struct {
	Industry  string
	Region    string
	City      string
	StartDate *time.Time
	EndDate   *time.Time
	Category  string
	Tag       string
}

type Pagination struct {
	Limit int
	After string
}

type ListResult struct {
	Events     []Event
	NextCursor string
}

// SearchResult is a keyword match over events plus the categories and tags whose names match.
type SearchResult struct {
	Events     []Event    `json:"events"`
	Categories []Category `json:"categories"`
	Tags       []Tag      `json:"tags"`
}

type EventCreateParams struct {
	ULID         string
	ExternalID   string
	Name         string
	Description  string
	Industry     string
	Country      string
	Region       string
	City         string
	ZipCode      string
	Street       string
	StreetNumber string
	Location     string
	Latitude     *float64
	Longitude    *float64
	StartDate    time.Time
	EndDate      time.Time
	WebsiteURL   string
	TicketPrice  *float64
	ImagePath    string
	Categories   []string
	Tags         []string
}

type Repository interface {
	List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error)
	GetByULID(ctx context.Context, ulid string) (*Event, error)
	Cities(ctx context.Context) ([]string, error)
	Industries(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]Category, error)
	Tags(ctx context.Context) ([]Tag, error)
	Search(ctx context.Context, query string, limit int) (SearchResult, error)
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	Create(ctx context.Context, params EventCreateParams) (*Event, error)
}
