package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Togather-Foundation/eventrip/internal/api/pagination"
	"github.com/Togather-Foundation/eventrip/internal/domain/events"
	"github.com/Togather-Foundation/eventrip/internal/domain/ids"
	"github.com/Togather-Foundation/eventrip/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

const eventColumns = `e.id, e.ulid, e.external_id, e.name, e.description, e.industry, e.country,
       e.region, e.city, e.zip_code, e.street, e.street_number, e.location,
       e.latitude, e.longitude, e.start_date, e.end_date, e.website_url,
       e.ticket_price, e.image_path, e.created_at, e.updated_at`

type eventRow struct {
	ID           int64
	ULID         string
	ExternalID   string
	Name         string
	Description  *string
	Industry     string
	Country      string
	Region       *string
	City         string
	ZipCode      string
	Street       string
	StreetNumber string
	Location     string
	Latitude     *float64
	Longitude    *float64
	StartDate    pgtype.Timestamptz
	EndDate      pgtype.Timestamptz
	WebsiteURL   *string
	TicketPrice  *float64
	ImagePath    *string
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

func (row *eventRow) scanTargets() []any {
	return []any{
		&row.ID, &row.ULID, &row.ExternalID, &row.Name, &row.Description, &row.Industry,
		&row.Country, &row.Region, &row.City, &row.ZipCode, &row.Street, &row.StreetNumber,
		&row.Location, &row.Latitude, &row.Longitude, &row.StartDate, &row.EndDate,
		&row.WebsiteURL, &row.TicketPrice, &row.ImagePath, &row.CreatedAt, &row.UpdatedAt,
	}
}

func (row *eventRow) toEvent() events.Event {
	event := events.Event{
		ID:           row.ULID,
		ExternalID:   row.ExternalID,
		Name:         row.Name,
		Description:  derefString(row.Description),
		Industry:     row.Industry,
		Country:      row.Country,
		Region:       derefString(row.Region),
		City:         row.City,
		ZipCode:      row.ZipCode,
		Street:       row.Street,
		StreetNumber: row.StreetNumber,
		Location:     row.Location,
		Latitude:     row.Latitude,
		Longitude:    row.Longitude,
		WebsiteURL:   derefString(row.WebsiteURL),
		TicketPrice:  row.TicketPrice,
		ImagePath:    derefString(row.ImagePath),
		Categories:   []events.Category{},
		Tags:         []events.Tag{},
	}
	if row.StartDate.Valid {
		event.StartDate = row.StartDate.Time.UTC()
	}
	if row.EndDate.Valid {
		event.EndDate = row.EndDate.Time.UTC()
	}
	if row.CreatedAt.Valid {
		event.CreatedAt = row.CreatedAt.Time
	}
	if row.UpdatedAt.Valid {
		event.UpdatedAt = row.UpdatedAt.Time
	}
	return event
}

func (r *EventRepository) List(ctx context.Context, filters events.Filters, paginationArgs events.Pagination) (result events.ListResult, err error) {
	defer func(start time.Time) { metrics.RecordQuery("list_events", start, err) }(time.Now())
	queryer := r.queryer()

	var cursorTimestamp *time.Time
	var cursorULID *string
	if strings.TrimSpace(paginationArgs.After) != "" {
		cursor, err := pagination.DecodeEventCursor(paginationArgs.After)
		if err != nil {
			return events.ListResult{}, err
		}
		value := cursor.StartDate.UTC()
		cursorTimestamp = &value
		ulid := strings.ToUpper(cursor.ULID)
		cursorULID = &ulid
	}

	limit := paginationArgs.Limit
	if limit <= 0 {
		limit = 50
	}
	limitPlusOne := limit + 1

	rows, err := queryer.Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE ($1 = '' OR lower(e.industry) = lower($1))
   AND ($2 = '' OR lower(coalesce(e.region, '')) = lower($2))
   AND ($3 = '' OR lower(e.city) = lower($3))
   AND ($4::timestamptz IS NULL OR e.start_date >= $4::timestamptz)
   AND ($5::timestamptz IS NULL OR e.end_date <= $5::timestamptz)
   AND ($6 = '' OR EXISTS (
         SELECT 1 FROM event_categories ec JOIN categories c ON c.id = ec.category_id
          WHERE ec.event_id = e.id AND c.slug = $6))
   AND ($7 = '' OR EXISTS (
         SELECT 1 FROM event_tags et JOIN tags t ON t.id = et.tag_id
          WHERE et.event_id = e.id AND t.slug = $7))
   AND (
     $8::timestamptz IS NULL OR
     e.start_date > $8::timestamptz OR
     (e.start_date = $8::timestamptz AND e.ulid > $9)
   )
 ORDER BY e.start_date ASC, e.ulid ASC
 LIMIT $10
`,
		filters.Industry,
		filters.Region,
		filters.City,
		filters.StartDate,
		filters.EndDate,
		filters.Category,
		filters.Tag,
		cursorTimestamp,
		cursorULID,
		limitPlusOne,
	)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	items, internalIDs, err := collectEvents(rows)
	if err != nil {
		return events.ListResult{}, err
	}

	if len(items) > limit {
		items = items[:limit]
		internalIDs = internalIDs[:limit]
		last := items[len(items)-1]
		result.NextCursor = pagination.EncodeEventCursor(last.StartDate, last.ID)
	}
	if err := r.attachTaxonomy(ctx, items, internalIDs); err != nil {
		return events.ListResult{}, err
	}
	result.Events = items
	return result, nil
}

func (r *EventRepository) GetByULID(ctx context.Context, ulid string) (event *events.Event, err error) {
	defer func(start time.Time) { metrics.RecordQuery("get_event", start, err) }(time.Now())

	var row eventRow
	err = r.queryer().QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.ulid = $1`,
		strings.ToUpper(strings.TrimSpace(ulid))).Scan(row.scanTargets()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %w", events.ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	items := []events.Event{row.toEvent()}
	if err := r.attachTaxonomy(ctx, items, []int64{row.ID}); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *EventRepository) Cities(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "list_cities", `SELECT DISTINCT city FROM events ORDER BY city`)
}

func (r *EventRepository) Industries(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "list_industries", `SELECT DISTINCT industry FROM events ORDER BY industry`)
}

func (r *EventRepository) distinct(ctx context.Context, op string, sql string) (values []string, err error) {
	defer func(start time.Time) { metrics.RecordQuery(op, start, err) }(time.Now())

	rows, err := r.queryer().Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	values, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return values, nil
}

func (r *EventRepository) Categories(ctx context.Context) (out []events.Category, err error) {
	defer func(start time.Time) { metrics.RecordQuery("list_categories", start, err) }(time.Now())

	rows, err := r.queryer().Query(ctx, `
SELECT c.slug, c.name, count(ec.event_id)
  FROM categories c
  LEFT JOIN event_categories ec ON ec.category_id = c.id
 GROUP BY c.id
 ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (events.Category, error) {
		var c events.Category
		err := row.Scan(&c.Slug, &c.Name, &c.EventCount)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	return out, nil
}

func (r *EventRepository) Tags(ctx context.Context) (out []events.Tag, err error) {
	defer func(start time.Time) { metrics.RecordQuery("list_tags", start, err) }(time.Now())

	rows, err := r.queryer().Query(ctx, `
SELECT t.slug, t.name, count(et.event_id)
  FROM tags t
  LEFT JOIN event_tags et ON et.tag_id = t.id
 GROUP BY t.id
 ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (events.Tag, error) {
		var t events.Tag
		err := row.Scan(&t.Slug, &t.Name, &t.EventCount)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan tags: %w", err)
	}
	return out, nil
}

func (r *EventRepository) Search(ctx context.Context, query string, limit int) (result events.SearchResult, err error) {
	defer func(start time.Time) { metrics.RecordQuery("search_events", start, err) }(time.Now())
	queryer := r.queryer()
	pattern := "%" + escapeILIKEPattern(query) + "%"

	rows, err := queryer.Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE e.name ILIKE $1
    OR coalesce(e.description, '') ILIKE $1
    OR e.city ILIKE $1
    OR coalesce(e.region, '') ILIKE $1
    OR e.country ILIKE $1
    OR e.street ILIKE $1
 ORDER BY e.start_date ASC, e.ulid ASC
 LIMIT $2`, pattern, limit)
	if err != nil {
		return events.SearchResult{}, fmt.Errorf("search events: %w", err)
	}
	items, internalIDs, err := collectEvents(rows)
	if err != nil {
		return events.SearchResult{}, err
	}
	if err := r.attachTaxonomy(ctx, items, internalIDs); err != nil {
		return events.SearchResult{}, err
	}
	result.Events = items

	result.Categories, err = collectTerms(ctx, queryer,
		`SELECT slug, name FROM categories WHERE name ILIKE $1 ORDER BY name`, pattern)
	if err != nil {
		return events.SearchResult{}, fmt.Errorf("search categories: %w", err)
	}
	tags, err := collectTerms(ctx, queryer,
		`SELECT slug, name FROM tags WHERE name ILIKE $1 ORDER BY name`, pattern)
	if err != nil {
		return events.SearchResult{}, fmt.Errorf("search tags: %w", err)
	}
	result.Tags = make([]events.Tag, 0, len(tags))
	for _, t := range tags {
		result.Tags = append(result.Tags, events.Tag(t))
	}
	return result, nil
}

func (r *EventRepository) ExistsByExternalID(ctx context.Context, externalID string) (exists bool, err error) {
	defer func(start time.Time) { metrics.RecordQuery("event_exists", start, err) }(time.Now())

	err = r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE external_id = $1)`, externalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check external id: %w", err)
	}
	return exists, nil
}

// Create inserts the event and links its categories and tags, creating
// missing ones, in one transaction.
func (r *EventRepository) Create(ctx context.Context, params events.EventCreateParams) (created *events.Event, err error) {
	defer func(start time.Time) { metrics.RecordQuery("create_event", start, err) }(time.Now())

	err = pgx.BeginFunc(ctx, r.queryer(), func(tx pgx.Tx) error {
		var row eventRow
		err := tx.QueryRow(ctx, `
INSERT INTO events (ulid, external_id, name, description, industry, country, region, city,
                    zip_code, street, street_number, location, latitude, longitude,
                    start_date, end_date, website_url, ticket_price, image_path)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12, $13, $14,
        $15, $16, NULLIF($17, ''), $18, NULLIF($19, ''))
RETURNING `+strings.ReplaceAll(eventColumns, "e.", ""),
			strings.ToUpper(params.ULID), params.ExternalID, params.Name, params.Description,
			params.Industry, params.Country, params.Region, params.City, params.ZipCode,
			params.Street, params.StreetNumber, params.Location, params.Latitude, params.Longitude,
			params.StartDate, params.EndDate, params.WebsiteURL, params.TicketPrice, params.ImagePath,
		).Scan(row.scanTargets()...)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: %s", events.ErrConflict, pgErr.ConstraintName)
			}
			return fmt.Errorf("insert event: %w", err)
		}

		if err := linkTerms(ctx, tx, row.ID, "categories", "event_categories", "category_id", params.Categories); err != nil {
			return err
		}
		if err := linkTerms(ctx, tx, row.ID, "tags", "event_tags", "tag_id", params.Tags); err != nil {
			return err
		}

		event := row.toEvent()
		created = &event
		return nil
	})
	if err != nil {
		return nil, err
	}
	items := []events.Event{*created}
	if err := r.attachTaxonomy(ctx, items, nil); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// linkTerms upserts each named term by slug and links it to the event. The
// table names are constants supplied by Create.
func linkTerms(ctx context.Context, tx pgx.Tx, eventID int64, table, joinTable, joinColumn string, names []string) error {
	seen := map[string]bool{}
	for _, name := range names {
		slug, err := ids.Slug(name)
		if err != nil || seen[slug] {
			continue
		}
		seen[slug] = true

		var termID int64
		err = tx.QueryRow(ctx, `
INSERT INTO `+table+` (slug, name) VALUES ($1, $2)
ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
RETURNING id`, slug, name).Scan(&termID)
		if err != nil {
			return fmt.Errorf("upsert %s %q: %w", table, name, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO `+joinTable+` (event_id, `+joinColumn+`) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			eventID, termID); err != nil {
			return fmt.Errorf("link %s %q: %w", table, name, err)
		}
	}
	return nil
}

// attachTaxonomy loads categories and tags for items. When internalIDs is nil
// the events are looked up by ULID.
func (r *EventRepository) attachTaxonomy(ctx context.Context, items []events.Event, internalIDs []int64) error {
	if len(items) == 0 {
		return nil
	}
	queryer := r.queryer()
	byULID := make(map[string]*events.Event, len(items))
	ulids := make([]string, 0, len(items))
	for i := range items {
		byULID[items[i].ID] = &items[i]
		ulids = append(ulids, items[i].ID)
	}

	args := []any{ulids}
	filter := "e.ulid = ANY($1)"
	if internalIDs != nil {
		args = []any{internalIDs}
		filter = "e.id = ANY($1)"
	}

	rows, err := queryer.Query(ctx, `
SELECT e.ulid, 'category' AS kind, c.slug, c.name
  FROM events e
  JOIN event_categories ec ON ec.event_id = e.id
  JOIN categories c ON c.id = ec.category_id
 WHERE `+filter+`
UNION ALL
SELECT e.ulid, 'tag' AS kind, t.slug, t.name
  FROM events e
  JOIN event_tags et ON et.event_id = e.id
  JOIN tags t ON t.id = et.tag_id
 WHERE `+filter, args...)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ulid, kind, slug, name string
		if err := rows.Scan(&ulid, &kind, &slug, &name); err != nil {
			return fmt.Errorf("scan taxonomy: %w", err)
		}
		event := byULID[ulid]
		if event == nil {
			continue
		}
		if kind == "category" {
			event.Categories = append(event.Categories, events.Category{Slug: slug, Name: name})
		} else {
			event.Tags = append(event.Tags, events.Tag{Slug: slug, Name: name})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate taxonomy: %w", err)
	}
	for _, event := range byULID {
		sort.Slice(event.Categories, func(i, j int) bool { return event.Categories[i].Name < event.Categories[j].Name })
		sort.Slice(event.Tags, func(i, j int) bool { return event.Tags[i].Name < event.Tags[j].Name })
	}
	return nil
}

func collectEvents(rows pgx.Rows) ([]events.Event, []int64, error) {
	defer rows.Close()

	var items []events.Event
	var internalIDs []int64
	for rows.Next() {
		var row eventRow
		if err := rows.Scan(row.scanTargets()...); err != nil {
			return nil, nil, fmt.Errorf("scan events: %w", err)
		}
		items = append(items, row.toEvent())
		internalIDs = append(internalIDs, row.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate events: %w", err)
	}
	if items == nil {
		items = []events.Event{}
	}
	return items, internalIDs, nil
}

func collectTerms(ctx context.Context, q queryer, sql string, args ...any) ([]events.Category, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (events.Category, error) {
		var c events.Category
		err := row.Scan(&c.Slug, &c.Name)
		return c, err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []events.Category{}
	}
	return out, nil
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

// escapeILIKEPattern escapes the ILIKE wildcards so user input matches literally.
func escapeILIKEPattern(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
