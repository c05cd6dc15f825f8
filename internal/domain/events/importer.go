package events

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Togather-Foundation/eventrip/internal/domain/ids"
	"github.com/Togather-Foundation/eventrip/internal/sanitize"
	"github.com/Togather-Foundation/eventrip/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/markusmobius/go-dateparser"
	"github.com/rs/zerolog"
)

// RequiredColumns must all be present in the CSV header.
var RequiredColumns = []string{
	"externalId", "name", "industry", "country", "city", "zipCode",
	"street", "streetNumber", "location", "startDate", "endDate",
}

// OptionalColumns are read when present.
var OptionalColumns = []string{
	"description", "region", "latitude", "longitude", "websiteUrl",
	"ticketPrice", "imageFileName", "categories", "tags",
}

// ImportRow is one CSV record before conversion.
type ImportRow struct {
	ExternalID    string `csv:"externalId" validate:"required,max=100"`
	Name          string `csv:"name" validate:"required,max=500"`
	Industry      string `csv:"industry" validate:"required,max=100"`
	Country       string `csv:"country" validate:"required,max=100"`
	City          string `csv:"city" validate:"required,max=100"`
	ZipCode       string `csv:"zipCode" validate:"required,max=20"`
	Street        string `csv:"street" validate:"required,max=200"`
	StreetNumber  string `csv:"streetNumber" validate:"required,max=20"`
	Location      string `csv:"location" validate:"required,max=200"`
	StartDate     string `csv:"startDate" validate:"required"`
	EndDate       string `csv:"endDate" validate:"required"`
	Description   string `csv:"description" validate:"max=10000"`
	Region        string `csv:"region" validate:"max=100"`
	Latitude      string `csv:"latitude" validate:"omitempty,latitude"`
	Longitude     string `csv:"longitude" validate:"omitempty,longitude"`
	WebsiteURL    string `csv:"websiteUrl"`
	TicketPrice   string `csv:"ticketPrice" validate:"omitempty,numeric"`
	ImageFileName string `csv:"imageFileName"`
	Categories    string `csv:"categories"`
	Tags          string `csv:"tags"`
}

// RowError describes why one record was not imported. Line is the CSV line number.
type RowError struct {
	Line       int    `json:"line"`
	ExternalID string `json:"externalId,omitempty"`
	Message    string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ImportReport summarises an import run.
type ImportReport struct {
	Total   int        `json:"total"`
	Success int        `json:"success"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors"`
}

type ImportOptions struct {
	// DryRun validates every row and checks for duplicates without writing.
	DryRun bool
}

// Importer loads events from CSV exports.
type Importer struct {
	repo      Repository
	validator *validator.Validate
	logger    zerolog.Logger
}

func NewImporter(repo Repository, logger zerolog.Logger) *Importer {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("csv")
	})
	return &Importer{
		repo:      repo,
		validator: v,
		logger:    logger.With().Str("component", "events_import").Logger(),
	}
}

// Import reads a header row followed by one event per row. Rows whose
// externalId already exists are skipped; invalid rows are reported and the run
// continues. Only an unreadable file or a missing column aborts the run.
func (im *Importer) Import(ctx context.Context, r io.Reader, opts ImportOptions) (ImportReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ImportReport{}, fmt.Errorf("read header: file is empty")
		}
		return ImportReport{}, fmt.Errorf("read header: %w", err)
	}
	columns, err := indexColumns(header)
	if err != nil {
		return ImportReport{}, err
	}

	report := ImportReport{Errors: []RowError{}}
	seen := map[string]bool{}
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				report.Total++
				report.Errors = append(report.Errors, RowError{Line: parseErr.Line, Message: parseErr.Err.Error()})
				continue
			}
			return report, fmt.Errorf("read record: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		report.Total++

		row := columns.row(record)
		params, rowErr := im.convert(row)
		if rowErr != nil {
			rowErr.Line = line
			report.Errors = append(report.Errors, *rowErr)
			continue
		}

		if seen[params.ExternalID] {
			report.Skipped++
			continue
		}
		seen[params.ExternalID] = true

		exists, err := im.repo.ExistsByExternalID(ctx, params.ExternalID)
		if err != nil {
			return report, fmt.Errorf("check external id %q: %w", params.ExternalID, err)
		}
		if exists {
			report.Skipped++
			continue
		}

		if opts.DryRun {
			report.Success++
			continue
		}

		ulid, err := ids.NewULID()
		if err != nil {
			return report, fmt.Errorf("generate id: %w", err)
		}
		params.ULID = ulid
		if _, err := im.repo.Create(ctx, params); err != nil {
			if errors.Is(err, ErrConflict) {
				report.Skipped++
				continue
			}
			report.Errors = append(report.Errors, RowError{Line: line, ExternalID: params.ExternalID, Message: err.Error()})
			im.logger.Warn().Err(err).Int("line", line).Str("external_id", params.ExternalID).Msg("event insert failed")
			continue
		}
		report.Success++
	}

	im.logger.Info().
		Int("total", report.Total).
		Int("success", report.Success).
		Int("skipped", report.Skipped).
		Int("errors", len(report.Errors)).
		Bool("dry_run", opts.DryRun).
		Msg("event import finished")
	return report, nil
}

func (im *Importer) convert(row ImportRow) (EventCreateParams, *RowError) {
	fail := func(msg string) (EventCreateParams, *RowError) {
		return EventCreateParams{}, &RowError{ExternalID: row.ExternalID, Message: msg}
	}

	if err := im.validator.Struct(row); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describeFieldError(fe))
			}
			return fail(strings.Join(msgs, "; "))
		}
		return fail(err.Error())
	}
	if err := validation.ValidateURL(row.WebsiteURL, "websiteUrl", false); err != nil {
		return fail(err.Error())
	}
	if err := validation.ValidateFileName(row.ImageFileName, "imageFileName"); err != nil {
		return fail(err.Error())
	}

	start, err := parseImportDate(row.StartDate)
	if err != nil {
		return fail("startDate: " + err.Error())
	}
	end, err := parseImportDate(row.EndDate)
	if err != nil {
		return fail("endDate: " + err.Error())
	}
	if end.Before(start) {
		return fail("endDate must be on or after startDate")
	}

	params := EventCreateParams{
		ExternalID:   row.ExternalID,
		Name:         sanitize.Plain(row.Name),
		Description:  sanitize.Plain(row.Description),
		Industry:     sanitize.Plain(row.Industry),
		Country:      sanitize.Plain(row.Country),
		Region:       sanitize.Plain(row.Region),
		City:         sanitize.Plain(row.City),
		ZipCode:      sanitize.Plain(row.ZipCode),
		Street:       sanitize.Plain(row.Street),
		StreetNumber: sanitize.Plain(row.StreetNumber),
		Location:     sanitize.Plain(row.Location),
		StartDate:    start,
		EndDate:      end,
		WebsiteURL:   row.WebsiteURL,
		Latitude:     parseOptionalFloat(row.Latitude),
		Longitude:    parseOptionalFloat(row.Longitude),
		TicketPrice:  parseOptionalFloat(row.TicketPrice),
		Categories:   sanitize.PlainSlice(splitList(row.Categories)),
		Tags:         sanitize.PlainSlice(splitList(row.Tags)),
	}
	if row.ImageFileName != "" {
		params.ImagePath = fmt.Sprintf("/images/%s/%s", row.ExternalID, row.ImageFileName)
	}
	if params.Name == "" {
		return fail("name is empty after removing markup")
	}
	return params, nil
}

// parseImportDate accepts yyyy-MM-dd and falls back to natural formats such as
// "10 October 2025". The result is midnight UTC of the calendar date.
func parseImportDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	parsed, err := dateparser.Parse(&dateparser.Configuration{
		DateOrder:       dateparser.DMY,
		DefaultTimezone: time.UTC,
	}, value)
	if err != nil || parsed.Time.IsZero() {
		return time.Time{}, fmt.Errorf("unrecognised date %q", value)
	}
	y, m, d := parsed.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func describeFieldError(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "latitude", "longitude":
		return fmt.Sprintf("%s must be a valid %s", name, fe.Tag())
	case "numeric":
		return name + " must be a number"
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	idx := columnIndex{}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		idx[strings.ToLower(name)] = i
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func (c columnIndex) get(record []string, column string) string {
	i, ok := c[strings.ToLower(column)]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (c columnIndex) row(record []string) ImportRow {
	return ImportRow{
		ExternalID:    c.get(record, "externalId"),
		Name:          c.get(record, "name"),
		Industry:      c.get(record, "industry"),
		Country:       c.get(record, "country"),
		City:          c.get(record, "city"),
		ZipCode:       c.get(record, "zipCode"),
		Street:        c.get(record, "street"),
		StreetNumber:  c.get(record, "streetNumber"),
		Location:      c.get(record, "location"),
		StartDate:     c.get(record, "startDate"),
		EndDate:       c.get(record, "endDate"),
		Description:   c.get(record, "description"),
		Region:        c.get(record, "region"),
		Latitude:      c.get(record, "latitude"),
		Longitude:     c.get(record, "longitude"),
		WebsiteURL:    c.get(record, "websiteUrl"),
		TicketPrice:   c.get(record, "ticketPrice"),
		ImageFileName: c.get(record, "imageFileName"),
		Categories:    c.get(record, "categories"),
		Tags:          c.get(record, "tags"),
	}
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.Split(value, ";")
}

func parseOptionalFloat(value string) *float64 {
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
