package events

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/Togather-Foundation/eventrip/internal/api/pagination"
	"github.com/stretchr/testify/require"
)

func TestParseFiltersRequiresIndustry(t *testing.T) {
	_, _, err := ParseFilters(url.Values{})

	assertFilterError(t, err, "industry", "is required")
}

func TestParseFiltersDefaults(t *testing.T) {
	filters, page, err := ParseFilters(url.Values{"industry": {"Technology"}})

	require.NoError(t, err)
	require.Equal(t, 50, page.Limit)
	require.Empty(t, page.After)
	require.Equal(t, "Technology", filters.Industry)
	require.Nil(t, filters.StartDate)
	require.Nil(t, filters.EndDate)
	require.Empty(t, filters.City)
	require.Empty(t, filters.Region)
	require.Empty(t, filters.Category)
}

func TestParseFiltersTrimsFields(t *testing.T) {
	values := url.Values{}
	values.Set("industry", "  Finance ")
	values.Set("destinationCity", "  Zurich  ")
	values.Set("region", "  Europe ")
	values.Set("category", " FinTech ")

	filters, _, err := ParseFilters(values)

	require.NoError(t, err)
	require.Equal(t, "Finance", filters.Industry)
	require.Equal(t, "Zurich", filters.City)
	require.Equal(t, "Europe", filters.Region)
	require.Equal(t, "fintech", filters.Category)
}

func TestParseFiltersCityWinsOverDestinationCity(t *testing.T) {
	values := url.Values{}
	values.Set("industry", "Finance")
	values.Set("city", "Geneva")
	values.Set("destinationCity", "Zurich")

	filters, _, err := ParseFilters(values)

	require.NoError(t, err)
	require.Equal(t, "Geneva", filters.City)
}

func TestParseFiltersDateValidation(t *testing.T) {
	values := url.Values{}
	values.Set("industry", "Technology")
	values.Set("startDate", "2025-10-12")
	values.Set("endDate", "2025-10-10")

	_, _, err := ParseFilters(values)

	assertFilterError(t, err, "endDate", "must be on or after startDate")
}

func TestParseFiltersDateFormat(t *testing.T) {
	values := url.Values{}
	values.Set("industry", "Technology")
	values.Set("startDate", "10-10-2025")

	_, _, err := ParseFilters(values)

	assertFilterError(t, err, "startDate", "must be ISO8601 date")
}

func TestParseFiltersDateSuccess(t *testing.T) {
	values := url.Values{}
	values.Set("industry", "Technology")
	values.Set("startDate", "2025-10-01")
	values.Set("endDate", "2025-10-31")

	filters, _, err := ParseFilters(values)

	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), *filters.StartDate)
	require.Equal(t, time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC), *filters.EndDate)
}

func TestParsePagination(t *testing.T) {
	_, err := ParsePagination(url.Values{"limit": {"0"}})
	assertFilterError(t, err, "limit", "must be between 1 and 200")

	_, err = ParsePagination(url.Values{"limit": {"ten"}})
	assertFilterError(t, err, "limit", "must be a number")

	_, err = ParsePagination(url.Values{"after": {"garbage"}})
	assertFilterError(t, err, "after", "must be a cursor returned by a previous page")

	cursor := pagination.EncodeEventCursor(time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC), "01HYX3KQW7ERTV9XNBM2P8QJZF")
	page, err := ParsePagination(url.Values{"after": {cursor}, "limit": {"10"}})
	require.NoError(t, err)
	require.Equal(t, 10, page.Limit)
	require.Equal(t, cursor, page.After)
}

func TestServiceSearchValidatesQuery(t *testing.T) {
	called := false
	svc := NewService(&stubRepo{
		search: func(_ context.Context, q string, limit int) (SearchResult, error) {
			called = true
			require.Equal(t, "lisbon", q)
			require.Equal(t, 50, limit)
			return SearchResult{}, nil
		},
	})

	_, err := svc.Search(context.Background(), "   ", 0)
	assertFilterError(t, err, "q", "is required")
	require.False(t, called)

	_, err = svc.Search(context.Background(), " lisbon ", 0)
	require.NoError(t, err)
	require.True(t, called)
}

func TestServiceByCategory(t *testing.T) {
	svc := NewService(&stubRepo{
		list: func(_ context.Context, filters Filters, page Pagination) (ListResult, error) {
			require.Equal(t, Filters{Category: "ai"}, filters)
			return ListResult{Events: []Event{{ID: "01HYX3KQW7ERTV9XNBM2P8QJZF"}}}, nil
		},
	})

	result, err := svc.ByCategory(context.Background(), " AI ", Pagination{Limit: 5})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)

	_, err = svc.ByCategory(context.Background(), "", Pagination{})
	assertFilterError(t, err, "category", "is required")
}

func TestEventSpan(t *testing.T) {
	event := Event{
		StartDate: time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
	}

	span, err := event.Span()
	require.NoError(t, err)
	require.Equal(t, "2025-10-10", span.Start.String())
	require.Equal(t, "2025-10-15", span.End.String())
	require.Equal(t, 6, span.Days())
}

func assertFilterError(t *testing.T, err error, field string, message string) {
	t.Helper()

	require.Error(t, err)
	var filterErr FilterError
	require.True(t, errors.As(err, &filterErr))
	require.Equal(t, field, filterErr.Field)
	require.Equal(t, message, filterErr.Message)
}

type stubRepo struct {
	list       func(ctx context.Context, filters Filters, page Pagination) (ListResult, error)
	get        func(ctx context.Context, ulid string) (*Event, error)
	search     func(ctx context.Context, q string, limit int) (SearchResult, error)
	exists     func(ctx context.Context, externalID string) (bool, error)
	create     func(ctx context.Context, params EventCreateParams) (*Event, error)
	cities     []string
	industries []string
}

func (s *stubRepo) List(ctx context.Context, filters Filters, page Pagination) (ListResult, error) {
	if s.list == nil {
		return ListResult{}, nil
	}
	return s.list(ctx, filters, page)
}

func (s *stubRepo) GetByULID(ctx context.Context, ulid string) (*Event, error) {
	if s.get == nil {
		return nil, ErrNotFound
	}
	return s.get(ctx, ulid)
}

func (s *stubRepo) Cities(context.Context) ([]string, error)     { return s.cities, nil }
func (s *stubRepo) Industries(context.Context) ([]string, error) { return s.industries, nil }
func (s *stubRepo) Categories(context.Context) ([]Category, error) {
	return nil, nil
}
func (s *stubRepo) Tags(context.Context) ([]Tag, error) { return nil, nil }

func (s *stubRepo) Search(ctx context.Context, q string, limit int) (SearchResult, error) {
	if s.search == nil {
		return SearchResult{}, nil
	}
	return s.search(ctx, q, limit)
}

func (s *stubRepo) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	if s.exists == nil {
		return false, nil
	}
	return s.exists(ctx, externalID)
}

func (s *stubRepo) Create(ctx context.Context, params EventCreateParams) (*Event, error) {
	if s.create == nil {
		return &Event{ID: params.ULID}, nil
	}
	return s.create(ctx, params)
}
