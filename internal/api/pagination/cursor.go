// Package pagination holds the opaque keyset cursors used by list endpoints.
package pagination

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// EventCursor is the sort key of the last event on a page: its start time
// with the public id as tie breaker.
type EventCursor struct {
	StartDate time.Time
	ULID      string
}

// EncodeEventCursor renders base64url("<unix nanos>:<ULID>").
func EncodeEventCursor(start time.Time, id string) string {
	value := strconv.FormatInt(start.UTC().UnixNano(), 10) + ":" + strings.ToUpper(strings.TrimSpace(id))
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

func DecodeEventCursor(cursor string) (EventCursor, error) {
	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		return EventCursor{}, ErrInvalidCursor
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return EventCursor{}, ErrInvalidCursor
	}
	nanos, id, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return EventCursor{}, ErrInvalidCursor
	}
	unixNano, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return EventCursor{}, ErrInvalidCursor
	}
	parsed, err := ulid.ParseStrict(strings.ToUpper(strings.TrimSpace(id)))
	if err != nil {
		return EventCursor{}, ErrInvalidCursor
	}
	return EventCursor{StartDate: time.Unix(0, unixNano).UTC(), ULID: parsed.String()}, nil
}
