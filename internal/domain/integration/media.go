package integration

import "time"

// MediaType is the provider's media classification
type MediaType string

const (
	MediaTypeImage   MediaType = "IMAGE"
	MediaTypeVideo   MediaType = "VIDEO"
	MediaTypeAlbum   MediaType = "CAROUSEL_ALBUM"
	MediaTypeReel    MediaType = "REELS"
	MediaTypeUnknown MediaType = ""
)

// IsAlbum returns true when the media item has child media to expand
func (t MediaType) IsAlbum() bool {
	return t == MediaTypeAlbum
}

// ChildMedia is one element of an album item
type ChildMedia struct {
	ID           string    `json:"id"`
	MediaType    MediaType `json:"media_type"`
	MediaURL     string    `json:"media_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
}

// RawMediaItem is a media item as returned by the provider, before enrichment
type RawMediaItem struct {
	ID           string
	Caption      string
	MediaType    MediaType
	MediaURL     string
	ThumbnailURL string
	Permalink    string
	Username     string
	Timestamp    time.Time
	Children     []ChildMedia
}

// DisplayURL returns the URL a widget should render for this item.
// Videos render their thumbnail when one is present.
func (m RawMediaItem) DisplayURL() string {
	if m.MediaType == MediaTypeVideo && m.ThumbnailURL != "" {
		return m.ThumbnailURL
	}
	return m.MediaURL
}

// Profile is the connected account's remote identity
type Profile struct {
	ID                string
	Username          string
	Name              string
	ProfilePictureURL string
}

// DisplayName returns the handle shown for the account, falling back to the full name
func (p Profile) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}
	return p.Name
}

// MergedFeedItem is the published shape of a media item after enrichment
type MergedFeedItem struct {
	ID           string       `json:"id"`
	MediaURL     string       `json:"media_url"`
	ThumbnailURL string       `json:"thumbnail_url,omitempty"`
	Permalink    string       `json:"permalink"`
	Caption      string       `json:"caption"`
	MediaType    MediaType    `json:"media_type"`
	Username     string       `json:"username"`
	Timestamp    time.Time    `json:"timestamp"`
	Children     []ChildMedia `json:"children"`
	Pinned       bool         `json:"pinned"`
	Hidden       bool         `json:"hidden"`
	Products     []ProductRef `json:"products"`
}
