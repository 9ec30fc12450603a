package analytics

import (
	"context"
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/analytics"
)

// Top posts limits
const (
	DefaultTopPostsLimit = 10
	MaxTopPostsLimit     = 50
)

// Aggregator computes read-only rollups of a tenant's counters
type Aggregator struct {
	counters analytics.CounterRepository
	now      func() time.Time
}

// NewAggregator creates a new Aggregator
func NewAggregator(counters analytics.CounterRepository) *Aggregator {
	return &Aggregator{
		counters: counters,
		now:      time.Now,
	}
}

// Summary returns the windowDays rollup ending today (UTC).
// At least two weeks of history are read so week-over-week is always complete.
func (a *Aggregator) Summary(ctx context.Context, tenantKey string, windowDays int) (*analytics.Summary, error) {
	if tenantKey == "" {
		return nil, analytics.ErrInvalidTenantKey
	}
	if err := analytics.ValidateWindow(windowDays); err != nil {
		return nil, err
	}

	now := a.now()
	since := analytics.DayOf(now).AddDate(0, 0, -(analytics.LookbackDays(windowDays) - 1))
	rows, err := a.counters.FindDailySince(ctx, tenantKey, since)
	if err != nil {
		return nil, err
	}

	summary := analytics.Summarize(rows, windowDays, now)
	return &summary, nil
}

// TopPosts returns the tenant's best performing media by clicks then views.
// limit is clamped to 1..MaxTopPostsLimit, with 0 meaning the default.
func (a *Aggregator) TopPosts(ctx context.Context, tenantKey string, limit int) ([]analytics.PostCounter, error) {
	if tenantKey == "" {
		return nil, analytics.ErrInvalidTenantKey
	}
	switch {
	case limit <= 0:
		limit = DefaultTopPostsLimit
	case limit > MaxTopPostsLimit:
		limit = MaxTopPostsLimit
	}
	return a.counters.TopPosts(ctx, tenantKey, limit)
}
