package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/analytics"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// TrackRequest is an inbound tracking call before validation
type TrackRequest struct {
	Shop      string
	Type      string
	MediaID   string
	MediaURL  string
	Permalink string
}

// Recorder turns tracking calls into atomic counter increments
type Recorder struct {
	counters analytics.CounterRepository
	metrics  *telemetry.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewRecorder creates a new Recorder
func NewRecorder(counters analytics.CounterRepository, logger *zap.Logger) *Recorder {
	return &Recorder{
		counters: counters,
		logger:   logger,
		now:      time.Now,
	}
}

// SetMetrics sets the metrics collector (optional)
func (r *Recorder) SetMetrics(m *telemetry.Metrics) {
	r.metrics = m
}

// Parse validates a tracking request.
// The shop must have a storefront domain shape and the type must be view or click.
// A media id, when present, must fit the post counter key; oversized display
// fields are dropped. Everything is checked before any counter is touched.
func (r *Recorder) Parse(req TrackRequest) (analytics.Event, error) {
	shop := integration.NormalizeTenantKey(req.Shop)
	if shop == "" || !integration.IsValidTenantKey(shop) {
		return analytics.Event{}, analytics.ErrInvalidTenantKey
	}
	if strings.TrimSpace(req.Type) == "" {
		return analytics.Event{}, analytics.ErrInvalidEventType
	}
	eventType, err := analytics.ParseEventType(req.Type)
	if err != nil {
		return analytics.Event{}, err
	}

	mediaID := strings.TrimSpace(req.MediaID)
	if mediaID != "" && !analytics.ValidMediaID(mediaID) {
		return analytics.Event{}, analytics.ErrInvalidMediaID
	}
	display := analytics.NewPostDisplay(req.MediaURL, req.Permalink)

	return analytics.Event{
		TenantKey:  shop,
		Type:       eventType,
		MediaID:    mediaID,
		MediaURL:   display.MediaURL,
		Permalink:  display.Permalink,
		OccurredAt: r.now().UTC(),
	}, nil
}

// Track parses and records a tracking request
func (r *Recorder) Track(ctx context.Context, req TrackRequest) error {
	event, err := r.Parse(req)
	if err != nil {
		return err
	}
	return r.Record(ctx, event)
}

// Record increments today's counter of the tenant and, when the event names a
// media item, the item's counter. Each increment is one atomic store operation.
func (r *Recorder) Record(ctx context.Context, event analytics.Event) error {
	if event.MediaID != "" && !analytics.ValidMediaID(event.MediaID) {
		return analytics.ErrInvalidMediaID
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = r.now()
	}

	if err := r.counters.IncrementDaily(ctx, event.TenantKey, analytics.DayOf(occurred), event.Type); err != nil {
		return fmt.Errorf("increment daily counter: %w", err)
	}

	if event.MediaID != "" {
		display := analytics.PostDisplay{MediaURL: event.MediaURL, Permalink: event.Permalink}
		if err := r.counters.IncrementPost(ctx, event.TenantKey, event.MediaID, event.Type, display); err != nil {
			return fmt.Errorf("increment post counter: %w", err)
		}
	}

	r.metrics.TrackingEvent(string(event.Type))
	return nil
}
