package social

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// instagramTimeLayout is the timestamp format of the Graph API
const instagramTimeLayout = "2006-01-02T15:04:05-0700"

// flexibleID decodes ids sent either as JSON numbers or strings
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("instagram: invalid id %s", string(b))
	}
	*f = flexibleID(n.String())
	return nil
}

// shortLivedTokenResponse is returned by the code exchange endpoint.
// Older apps receive the fields at top level, newer ones inside data[0].
type shortLivedTokenResponse struct {
	AccessToken string       `json:"access_token"`
	UserID      flexibleID   `json:"user_id"`
	Data        []tokenEntry `json:"data"`

	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
}

type tokenEntry struct {
	AccessToken string     `json:"access_token"`
	UserID      flexibleID `json:"user_id"`
}

// token returns the access token regardless of response shape
func (r *shortLivedTokenResponse) token() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	if len(r.Data) > 0 {
		return r.Data[0].AccessToken
	}
	return ""
}

// longLivedTokenResponse is returned by the exchange and refresh endpoints
type longLivedTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// graphError is the error envelope of the Graph API
type graphError struct {
	Error *struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// instagramProfile is the /me response
type instagramProfile struct {
	ID                flexibleID `json:"id"`
	UserID            flexibleID `json:"user_id"`
	Username          string     `json:"username"`
	Name              string     `json:"name"`
	ProfilePictureURL string     `json:"profile_picture_url"`
}

// instagramMedia is one element of the /{user}/media response
type instagramMedia struct {
	ID           string `json:"id"`
	Caption      string `json:"caption"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Permalink    string `json:"permalink"`
	Timestamp    string `json:"timestamp"`
	Username     string `json:"username"`
}

// instagramChild is one element of the /{media}/children response
type instagramChild struct {
	ID           string `json:"id"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// pagedResponse is the generic paginated list envelope
type pagedResponse[T any] struct {
	Data   []T `json:"data"`
	Paging struct {
		Cursors struct {
			Before string `json:"before"`
			After  string `json:"after"`
		} `json:"cursors"`
		Next string `json:"next"`
	} `json:"paging"`
}

// parseInstagramTime parses a Graph API timestamp, returning the zero time on failure
func parseInstagramTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(instagramTimeLayout, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC()
	}
	return time.Time{}
}
