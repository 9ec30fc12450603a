package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Published record keys
const (
	RecordMedia             = "media"
	RecordProfilePictureURL = "profile_picture_url"
	RecordTrackingURL       = "tracking_url"
	RecordSettings          = "settings"
	RecordWidgetConfig      = "widget_config"
)

// MaxRecordValueSize bounds a single published value
const MaxRecordValueSize = 512 * 1024

// RecordType describes how a published value is interpreted by readers
type RecordType string

const (
	RecordTypeJSON RecordType = "json"
	RecordTypeURL  RecordType = "url"
)

// PublishRecord is one named value written to the external store
type PublishRecord struct {
	Key   string     `json:"key"`
	Type  RecordType `json:"type"`
	Value string     `json:"value"`
}

// Validate returns a descriptive error when the record would be rejected by a reader
func (r PublishRecord) Validate() error {
	if r.Key == "" {
		return fmt.Errorf("record key is empty")
	}
	if len(r.Value) > MaxRecordValueSize {
		return fmt.Errorf("%s: value exceeds %d bytes", r.Key, MaxRecordValueSize)
	}
	switch r.Type {
	case RecordTypeJSON:
		if !json.Valid([]byte(r.Value)) {
			return fmt.Errorf("%s: value is not valid JSON", r.Key)
		}
	case RecordTypeURL:
		u, err := url.Parse(r.Value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s: value is not an absolute URL", r.Key)
		}
	default:
		return fmt.Errorf("%s: unknown record type %q", r.Key, r.Type)
	}
	return nil
}

// ValidateRecords returns ErrPublishFailed wrapping the first validation message
func ValidateRecords(records []PublishRecord) error {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrPublishFailed, err)
		}
	}
	return nil
}

// FeedSnapshot is everything published for a tenant in one call
type FeedSnapshot struct {
	Items             []MergedFeedItem
	ProfilePictureURL string
	TrackingURL       string
	Settings          FeedSettings
}

// Records encodes the snapshot into its named records.
// Optional URL records are omitted when empty.
func (s FeedSnapshot) Records() ([]PublishRecord, error) {
	items := s.Items
	if items == nil {
		items = []MergedFeedItem{}
	}

	media, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode media: %w", err)
	}
	settings, err := json.Marshal(s.Settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	widget, err := json.Marshal(s.Settings.Widget())
	if err != nil {
		return nil, fmt.Errorf("encode widget config: %w", err)
	}

	records := []PublishRecord{
		{Key: RecordMedia, Type: RecordTypeJSON, Value: string(media)},
	}
	if s.ProfilePictureURL != "" {
		records = append(records, PublishRecord{Key: RecordProfilePictureURL, Type: RecordTypeURL, Value: s.ProfilePictureURL})
	}
	if s.TrackingURL != "" {
		records = append(records, PublishRecord{Key: RecordTrackingURL, Type: RecordTypeURL, Value: s.TrackingURL})
	}
	records = append(records,
		PublishRecord{Key: RecordSettings, Type: RecordTypeJSON, Value: string(settings)},
		PublishRecord{Key: RecordWidgetConfig, Type: RecordTypeJSON, Value: string(widget)},
	)
	return records, nil
}

// MetafieldStore is the external key-addressed store the feed is published to.
// Put replaces every record of the tenant namespace in one step: records absent
// from the call no longer exist afterwards.
type MetafieldStore interface {
	Put(ctx context.Context, tenantKey, namespace string, records []PublishRecord) error
	Get(ctx context.Context, tenantKey, namespace string) ([]PublishRecord, error)
	Delete(ctx context.Context, tenantKey, namespace string) error
}
