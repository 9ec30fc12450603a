package integration

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// CurrentSettingsVersion is the version written by Normalize
const CurrentSettingsVersion = 1

// Setting bounds
const (
	MinColumns   = 1
	MaxColumns   = 6
	MinRows      = 1
	MaxRows      = 10
	MaxGap       = 64
	MinPostLimit = 1
	MaxPostLimit = 100
	MaxTitleLen  = 120
)

// Layout is the widget layout style
type Layout string

const (
	LayoutGrid     Layout = "grid"
	LayoutCarousel Layout = "carousel"
	LayoutMasonry  Layout = "masonry"
)

// IsValid returns true if the layout is known
func (l Layout) IsValid() bool {
	switch l {
	case LayoutGrid, LayoutCarousel, LayoutMasonry:
		return true
	default:
		return false
	}
}

// HoverEffect is the widget hover animation
type HoverEffect string

const (
	HoverNone    HoverEffect = "none"
	HoverZoom    HoverEffect = "zoom"
	HoverOverlay HoverEffect = "overlay"
)

// IsValid returns true if the effect is known
func (h HoverEffect) IsValid() bool {
	switch h {
	case HoverNone, HoverZoom, HoverOverlay:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// FeedSettings
// ---------------------------------------------------------------------------

// FeedSettings is the versioned display configuration of a tenant's feed
type FeedSettings struct {
	Version      int         `json:"version"`
	Layout       Layout      `json:"layout"`
	Columns      int         `json:"columns"`
	Rows         int         `json:"rows"`
	Gap          int         `json:"gap"`
	PostLimit    int         `json:"post_limit"`
	PinnedOnly   bool        `json:"pinned_only"`
	ShowCaptions bool        `json:"show_captions"`
	ShowAuthor   bool        `json:"show_author"`
	Title        string      `json:"title"`
	OpenInNewTab bool        `json:"open_in_new_tab"`
	HoverEffect  HoverEffect `json:"hover_effect"`
}

// DefaultFeedSettings returns the settings used when a tenant has none stored
func DefaultFeedSettings() FeedSettings {
	return FeedSettings{
		Version:      CurrentSettingsVersion,
		Layout:       LayoutGrid,
		Columns:      4,
		Rows:         2,
		Gap:          8,
		PostLimit:    12,
		PinnedOnly:   false,
		ShowCaptions: true,
		ShowAuthor:   true,
		Title:        "Follow us on Instagram",
		OpenInNewTab: true,
		HoverEffect:  HoverZoom,
	}
}

// Clamp forces every field into its documented range
func (s FeedSettings) Clamp() FeedSettings {
	d := DefaultFeedSettings()
	s.Version = CurrentSettingsVersion
	if !s.Layout.IsValid() {
		s.Layout = d.Layout
	}
	if !s.HoverEffect.IsValid() {
		s.HoverEffect = d.HoverEffect
	}
	s.Columns = clampInt(s.Columns, MinColumns, MaxColumns)
	s.Rows = clampInt(s.Rows, MinRows, MaxRows)
	s.Gap = clampInt(s.Gap, 0, MaxGap)
	s.PostLimit = clampInt(s.PostLimit, MinPostLimit, MaxPostLimit)
	s.Title = strings.TrimSpace(s.Title)
	if utf8.RuneCountInString(s.Title) > MaxTitleLen {
		s.Title = string([]rune(s.Title)[:MaxTitleLen])
	}
	return s
}

// Widget returns the single active widget derived from the settings
func (s FeedSettings) Widget() WidgetConfig {
	return WidgetConfig{
		ID:        DefaultWidgetID,
		Layout:    s.Layout,
		Columns:   s.Columns,
		Rows:      s.Rows,
		PostLimit: s.PostLimit,
		Title:     s.Title,
	}
}

// DefaultWidgetID identifies the only widget a tenant has
const DefaultWidgetID = "instagram-feed"

// WidgetConfig is the published configuration of the active widget
type WidgetConfig struct {
	ID        string `json:"id"`
	Layout    Layout `json:"layout"`
	Columns   int    `json:"columns"`
	Rows      int    `json:"rows"`
	PostLimit int    `json:"post_limit"`
	Title     string `json:"title"`
}

// ---------------------------------------------------------------------------
// Normalization
// ---------------------------------------------------------------------------

// legacyAliases maps version 0 keys to their current names
var legacyAliases = map[string]string{
	"postsLimit":   "post_limit",
	"postLimit":    "post_limit",
	"pinnedOnly":   "pinned_only",
	"showCaptions": "show_captions",
	"showAuthor":   "show_author",
	"openInNewTab": "open_in_new_tab",
	"hoverEffect":  "hover_effect",
}

// Normalize decodes a settings document of any known version, fills defaults for
// absent fields and clamps ranges. Empty input yields DefaultFeedSettings.
func Normalize(raw []byte) (FeedSettings, error) {
	settings := DefaultFeedSettings()
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return settings, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return FeedSettings{}, fmt.Errorf("%w: %v", ErrSettingsInvalid, err)
	}

	version, _ := intValue(doc["version"])
	if version == 0 {
		for legacy, current := range legacyAliases {
			v, ok := doc[legacy]
			if !ok {
				continue
			}
			if _, exists := doc[current]; !exists {
				doc[current] = v
			}
		}
	}

	if v, ok := doc["layout"].(string); ok {
		settings.Layout = Layout(strings.ToLower(v))
	}
	if v, ok := intValue(doc["columns"]); ok {
		settings.Columns = v
	}
	if v, ok := intValue(doc["rows"]); ok {
		settings.Rows = v
	}
	if v, ok := intValue(doc["gap"]); ok {
		settings.Gap = v
	}
	if v, ok := intValue(doc["post_limit"]); ok {
		settings.PostLimit = v
	}
	if v, ok := boolValue(doc["pinned_only"]); ok {
		settings.PinnedOnly = v
	}
	if v, ok := boolValue(doc["show_captions"]); ok {
		settings.ShowCaptions = v
	}
	if v, ok := boolValue(doc["show_author"]); ok {
		settings.ShowAuthor = v
	}
	if v, ok := doc["title"].(string); ok {
		settings.Title = v
	}
	if v, ok := boolValue(doc["open_in_new_tab"]); ok {
		settings.OpenInNewTab = v
	}
	if v, ok := doc["hover_effect"].(string); ok {
		settings.HoverEffect = HoverEffect(strings.ToLower(v))
	}

	return settings.Clamp(), nil
}

func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil {
			return int(f), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	case float64:
		return int(t), true
	case int:
		return t, true
	}
	return 0, false
}

func boolValue(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b, true
		}
	}
	return false, false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ---------------------------------------------------------------------------
// Schema validation
// ---------------------------------------------------------------------------

//go:embed feed_settings.schema.json
var feedSettingsSchema []byte

var (
	settingsSchemaOnce sync.Once
	settingsSchema     *jsonschema.Schema
	settingsSchemaErr  error
)

func compiledSettingsSchema() (*jsonschema.Schema, error) {
	settingsSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(feedSettingsSchema))
		if err != nil {
			settingsSchemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("feed_settings.schema.json", doc); err != nil {
			settingsSchemaErr = err
			return
		}
		settingsSchema, settingsSchemaErr = c.Compile("feed_settings.schema.json")
	})
	return settingsSchema, settingsSchemaErr
}

// ValidateSettingsDocument checks an incoming settings document against the settings schema
func ValidateSettingsDocument(raw []byte) error {
	schema, err := compiledSettingsSchema()
	if err != nil {
		return fmt.Errorf("compile settings schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSettingsInvalid, err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrSettingsInvalid, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// StoredFeedSettings is a tenant's persisted settings
type StoredFeedSettings struct {
	TenantKey string
	Settings  FeedSettings
	UpdatedAt time.Time
}

// FeedSettingsRepository persists settings per tenant
type FeedSettingsRepository interface {
	// FindByTenant returns ErrSettingsNotFound when nothing is stored
	FindByTenant(ctx context.Context, tenantKey string) (*StoredFeedSettings, error)

	// Save upserts the tenant's settings
	Save(ctx context.Context, settings *StoredFeedSettings) error

	// DeleteByTenant removes the tenant's settings
	DeleteByTenant(ctx context.Context, tenantKey string) error
}
