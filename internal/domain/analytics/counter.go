package analytics

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidEventType = errors.New("analytics: event type must be view or click")
	ErrInvalidTenantKey = errors.New("analytics: tenant key is required")
	ErrInvalidWindow    = errors.New("analytics: window must be between 1 and 90 days")
	ErrInvalidMediaID   = errors.New("analytics: media id must be at most 64 letters, digits, '_' or '-'")
)

// Window bounds for summaries
const (
	MinWindowDays     = 1
	MaxWindowDays     = 90
	DefaultWindowDays = 30
	ComparisonDays    = 7
	// MinLookbackDays is the history always read so week-over-week has two full weeks
	MinLookbackDays = 2 * ComparisonDays
)

// Bounds of visitor-supplied item fields; they match the post_counters columns
const (
	MaxMediaIDLength    = 64
	MaxDisplayURLLength = 2048
)

// ValidMediaID reports whether id fits the post counter key
func ValidMediaID(id string) bool {
	if id == "" || len(id) > MaxMediaIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

// displayField drops display values that are too long to cache
func displayField(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > MaxDisplayURLLength {
		return ""
	}
	return s
}

// NewPostDisplay builds the cached display fields, dropping oversized values
func NewPostDisplay(mediaURL, permalink string) PostDisplay {
	return PostDisplay{MediaURL: displayField(mediaURL), Permalink: displayField(permalink)}
}

// EventType is a tracked interaction
type EventType string

const (
	EventView  EventType = "view"
	EventClick EventType = "click"
)

// ParseEventType parses a case-insensitive event type
func ParseEventType(s string) (EventType, error) {
	switch EventType(strings.ToLower(strings.TrimSpace(s))) {
	case EventView:
		return EventView, nil
	case EventClick:
		return EventClick, nil
	default:
		return "", ErrInvalidEventType
	}
}

// Column returns the counter column incremented by this event type
func (e EventType) Column() string {
	if e == EventClick {
		return "clicks"
	}
	return "views"
}

// DayOf truncates t to its UTC calendar day
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Event is one tracked interaction. MediaID is optional.
type Event struct {
	TenantKey  string
	Type       EventType
	MediaID    string
	MediaURL   string
	Permalink  string
	OccurredAt time.Time
}

// DailyCounter is the per-day tally of a tenant
type DailyCounter struct {
	TenantKey string
	Day       time.Time
	Views     int64
	Clicks    int64
}

// PostCounter is the per-media tally of a tenant
type PostCounter struct {
	TenantKey string
	MediaID   string
	Views     int64
	Clicks    int64
	MediaURL  string
	Permalink string
	UpdatedAt time.Time
}

// PostDisplay holds cached display fields stored with a PostCounter
type PostDisplay struct {
	MediaURL  string
	Permalink string
}

// CounterRepository stores counters.
// Increment methods must be a single atomic store operation.
type CounterRepository interface {
	// IncrementDaily adds one to the event column of (tenant, day), creating the row at 1
	IncrementDaily(ctx context.Context, tenantKey string, day time.Time, event EventType) error

	// IncrementPost adds one to the event column of (tenant, media), creating the row at 1
	// and overwriting non-empty display fields
	IncrementPost(ctx context.Context, tenantKey, mediaID string, event EventType, display PostDisplay) error

	// FindDailySince returns daily rows with day >= since, ordered by day
	FindDailySince(ctx context.Context, tenantKey string, since time.Time) ([]DailyCounter, error)

	// TopPosts returns post counters ordered by clicks then views
	TopPosts(ctx context.Context, tenantKey string, limit int) ([]PostCounter, error)

	// DeleteByTenant removes every counter row of the tenant
	DeleteByTenant(ctx context.Context, tenantKey string) error
}
