package events

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Togather-Foundation/eventrip/internal/api/pagination"
)

const (
	defaultLimit   = 50
	maxLimit       = 200
	maxQueryLength = 200
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error) {
	return s.repo.List(ctx, filters, pagination)
}

func (s *Service) GetByULID(ctx context.Context, ulid string) (*Event, error) {
	return s.repo.GetByULID(ctx, ulid)
}

func (s *Service) Cities(ctx context.Context) ([]string, error) {
	return s.repo.Cities(ctx)
}

func (s *Service) Industries(ctx context.Context) ([]string, error) {
	return s.repo.Industries(ctx)
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Tags(ctx context.Context) ([]Tag, error) {
	return s.repo.Tags(ctx)
}

// ByCategory lists every event in a category regardless of industry.
func (s *Service) ByCategory(ctx context.Context, slug string, page Pagination) (ListResult, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return ListResult{}, FilterError{Field: "category", Message: "is required"}
	}
	return s.repo.List(ctx, Filters{Category: slug}, page)
}

// Search matches q case-insensitively against names, descriptions and addresses.
func (s *Service) Search(ctx context.Context, q string, limit int) (SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return SearchResult{}, FilterError{Field: "q", Message: "is required"}
	}
	if len(q) > maxQueryLength {
		return SearchResult{}, FilterError{Field: "q", Message: fmt.Sprintf("must be at most %d characters", maxQueryLength)}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return s.repo.Search(ctx, q, limit)
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseFilters reads list filters from a query string. industry is required;
// destinationCity is accepted as an alias of city.
func ParseFilters(values url.Values) (Filters, Pagination, error) {
	filters := Filters{}
	page := Pagination{Limit: defaultLimit}

	filters.Industry = strings.TrimSpace(values.Get("industry"))
	if filters.Industry == "" {
		return filters, page, FilterError{Field: "industry", Message: "is required"}
	}

	startDate, err := parseDate("startDate", values.Get("startDate"))
	if err != nil {
		return filters, page, err
	}
	endDate, err := parseDate("endDate", values.Get("endDate"))
	if err != nil {
		return filters, page, err
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return filters, page, FilterError{Field: "endDate", Message: "must be on or after startDate"}
	}
	filters.StartDate = startDate
	filters.EndDate = endDate

	filters.Region = strings.TrimSpace(values.Get("region"))
	filters.City = strings.TrimSpace(values.Get("city"))
	if filters.City == "" {
		filters.City = strings.TrimSpace(values.Get("destinationCity"))
	}
	filters.Category = strings.ToLower(strings.TrimSpace(values.Get("category")))
	filters.Tag = strings.ToLower(strings.TrimSpace(values.Get("tag")))

	page, err = ParsePagination(values)
	if err != nil {
		return filters, page, err
	}
	return filters, page, nil
}

// ParsePagination reads limit and after.
func ParsePagination(values url.Values) (Pagination, error) {
	page := Pagination{Limit: defaultLimit}
	limit, err := parseLimit(values)
	if err != nil {
		return page, err
	}
	page.Limit = limit

	after := strings.TrimSpace(values.Get("after"))
	if after != "" {
		if _, err := pagination.DecodeEventCursor(after); err != nil {
			return page, FilterError{Field: "after", Message: "must be a cursor returned by a previous page"}
		}
	}
	page.After = after
	return page, nil
}

func parseDate(field string, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, FilterError{Field: field, Message: "must be ISO8601 date"}
	}
	return &parsed, nil
}

func parseLimit(values url.Values) (int, error) {
	rawLimit := strings.TrimSpace(values.Get("limit"))
	if rawLimit == "" {
		return defaultLimit, nil
	}
	parsed, err := strconv.Atoi(rawLimit)
	if err != nil {
		return 0, FilterError{Field: "limit", Message: "must be a number"}
	}
	if parsed < 1 || parsed > maxLimit {
		return 0, FilterError{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", maxLimit)}
	}
	return parsed, nil
}
