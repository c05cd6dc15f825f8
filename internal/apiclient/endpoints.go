package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Togather-Foundation/eventrip/internal/domain/events"
	"github.com/Togather-Foundation/eventrip/internal/domain/offers"
	"github.com/Togather-Foundation/eventrip/internal/domain/trips"
	"github.com/Togather-Foundation/eventrip/internal/itinerary"
)

// EventQuery mirrors the filters of GET /api/v1/events.
type EventQuery struct {
	Industry  string
	Region    string
	City      string
	StartDate itinerary.Date
	EndDate   itinerary.Date
	Category  string
	Tag       string
	Limit     int
	After     string
}

func (q EventQuery) values() url.Values {
	v := url.Values{}
	setIf(v, "industry", q.Industry)
	setIf(v, "region", q.Region)
	setIf(v, "destinationCity", q.City)
	setIf(v, "startDate", q.StartDate.String())
	setIf(v, "endDate", q.EndDate.String())
	setIf(v, "category", q.Category)
	setIf(v, "tag", q.Tag)
	setIf(v, "after", q.After)
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

type EventPage struct {
	Items      []events.Event `json:"items"`
	NextCursor string         `json:"next_cursor"`
}

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

func (c *Client) ListEvents(ctx context.Context, q EventQuery) (EventPage, error) {
	var page EventPage
	if err := c.getJSON(ctx, "list_events", "/api/v1/events", q.values(), &page); err != nil {
		return EventPage{}, err
	}
	return page, nil
}

// Event looks up one event. Concurrent lookups of the same id share one
// request; a caller whose ctx ends stops waiting while the shared request
// carries on for the others.
func (c *Client) Event(ctx context.Context, id string) (*events.Event, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan("event:"+id, func() (any, error) {
		var event events.Event
		if err := c.getJSON(shared, "get_event", "/api/v1/events/"+url.PathEscape(id), nil, &event); err != nil {
			return nil, err
		}
		return &event, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		event := *res.Val.(*events.Event)
		return &event, nil
	}
}

func (c *Client) Industries(ctx context.Context) ([]string, error) {
	var resp itemsResponse[string]
	if err := c.getJSON(ctx, "list_industries", "/api/v1/events/industries", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Cities(ctx context.Context) ([]string, error) {
	var resp itemsResponse[string]
	if err := c.getJSON(ctx, "list_cities", "/api/v1/events/cities", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Categories(ctx context.Context) ([]events.Category, error) {
	var resp itemsResponse[events.Category]
	if err := c.getJSON(ctx, "list_categories", "/api/v1/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func stayValues(location string, stay itinerary.Range) url.Values {
	v := url.Values{}
	v.Set("location", location)
	v.Set("startDate", stay.CheckIn.String())
	v.Set("endDate", stay.CheckOut.String())
	return v
}

// Accommodations searches offers at location for the stay.
func (c *Client) Accommodations(ctx context.Context, location string, stay itinerary.Range) ([]offers.Accommodation, error) {
	var resp itemsResponse[offers.Accommodation]
	if err := c.getJSON(ctx, "search_accommodations", "/api/v1/accommodations", stayValues(location, stay), &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Accommodation(ctx context.Context, id, location string, stay itinerary.Range) (*offers.Accommodation, error) {
	var a offers.Accommodation
	if err := c.getJSON(ctx, "get_accommodation", "/api/v1/accommodations/"+url.PathEscape(id), stayValues(location, stay), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func flightValues(origin, destination string, stay itinerary.Range) url.Values {
	v := url.Values{}
	v.Set("origin", origin)
	v.Set("destination", destination)
	v.Set("startDate", stay.CheckIn.String())
	v.Set("endDate", stay.CheckOut.String())
	return v
}

// Flights searches flights from origin to destination over the stay dates.
func (c *Client) Flights(ctx context.Context, origin, destination string, stay itinerary.Range) ([]offers.Flight, error) {
	var resp itemsResponse[offers.Flight]
	if err := c.getJSON(ctx, "search_flights", "/api/v1/flights", flightValues(origin, destination, stay), &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Flight(ctx context.Context, id, origin, destination string, stay itinerary.Range) (*offers.Flight, error) {
	var f offers.Flight
	if err := c.getJSON(ctx, "get_flight", "/api/v1/flights/"+url.PathEscape(id), flightValues(origin, destination, stay), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) RecommendedTrips(ctx context.Context) ([]trips.Trip, error) {
	var resp itemsResponse[trips.Trip]
	if err := c.getJSON(ctx, "list_recommended_trips", "/api/v1/recommended-trips", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Health is the body of GET /api/v1/health.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.getJSON(ctx, "health", "/api/v1/health", nil, &h); err != nil {
		return Health{}, err
	}
	return h, nil
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
