package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from the Instagram API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxErrorBodySize bounds how much of a failed response is echoed into errors
const maxErrorBodySize = 512

const (
	mediaFields = "id,caption,media_type,media_url,thumbnail_url,permalink,timestamp,username"
	childFields = "id,media_type,media_url,thumbnail_url"
	meFields    = "id,user_id,username,name,profile_picture_url"
)

// InstagramAdapter implements SocialPlatform against the Instagram API
type InstagramAdapter struct {
	config     *InstagramConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	now        func() time.Time
}

// NewInstagramAdapter creates a new Instagram adapter with the given configuration
func NewInstagramAdapter(config *InstagramConfig, logger *zap.Logger) (*InstagramAdapter, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: instagram config is nil", integration.ErrConfigMissing)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrConfigMissing, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RequestsPerSecond > 0 {
		burst := int(config.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	return &InstagramAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		limiter: limiter,
		logger:  logger.Named("instagram"),
		now:     time.Now,
	}, nil
}

// AuthorizeURL builds the handshake redirect carrying the given state token
func (a *InstagramAdapter) AuthorizeURL(state string) string {
	values := url.Values{}
	values.Set("client_id", a.config.ClientID)
	values.Set("redirect_uri", a.config.RedirectURI)
	values.Set("response_type", "code")
	values.Set("scope", strings.Join(a.config.Scopes, ","))
	values.Set("state", state)
	return a.config.AuthorizeURL + "?" + values.Encode()
}

// ---------------------------------------------------------------------------
// Token Operations
// ---------------------------------------------------------------------------

// ExchangeCode trades an authorization code for a short-lived credential
func (a *InstagramAdapter) ExchangeCode(ctx context.Context, code string) (integration.Credential, error) {
	if code == "" {
		return integration.Credential{}, fmt.Errorf("%w: authorization code is empty", integration.ErrExchangeFailed)
	}

	form := url.Values{}
	form.Set("client_id", a.config.ClientID)
	form.Set("client_secret", a.config.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", a.config.RedirectURI)
	form.Set("code", code)

	status, body, err := a.doRequest(ctx, http.MethodPost, a.config.TokenURL, form)
	if err != nil {
		return integration.Credential{}, fmt.Errorf("%w: %v", integration.ErrExchangeFailed, err)
	}
	if status >= 400 {
		return integration.Credential{}, fmt.Errorf("%w: HTTP %d: %s", integration.ErrExchangeFailed, status, errorMessage(body))
	}

	var resp shortLivedTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return integration.Credential{}, fmt.Errorf("%w: failed to parse response: %v", integration.ErrExchangeFailed, err)
	}
	token := resp.token()
	if token == "" {
		return integration.Credential{}, fmt.Errorf("%w: response carried no access token", integration.ErrExchangeFailed)
	}

	return integration.Credential{Token: token}, nil
}

// Upgrade trades a short-lived credential for a long-lived one
func (a *InstagramAdapter) Upgrade(ctx context.Context, shortLived integration.Credential) (integration.Credential, error) {
	params := url.Values{}
	params.Set("grant_type", "ig_exchange_token")
	params.Set("client_secret", a.config.ClientSecret)
	params.Set("access_token", shortLived.Token)

	cred, err := a.longLivedToken(ctx, "/access_token", params)
	if err != nil {
		return integration.Credential{}, fmt.Errorf("%w: %v", integration.ErrUpgradeFailed, err)
	}
	return cred, nil
}

// Refresh extends a long-lived credential
func (a *InstagramAdapter) Refresh(ctx context.Context, longLived integration.Credential) (integration.Credential, error) {
	params := url.Values{}
	params.Set("grant_type", "ig_refresh_token")
	params.Set("access_token", longLived.Token)

	cred, err := a.longLivedToken(ctx, "/refresh_access_token", params)
	if err != nil {
		return integration.Credential{}, fmt.Errorf("%w: %v", integration.ErrRefreshFailed, err)
	}
	return cred, nil
}

func (a *InstagramAdapter) longLivedToken(ctx context.Context, path string, params url.Values) (integration.Credential, error) {
	status, body, err := a.doRequest(ctx, http.MethodGet, a.config.GraphURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return integration.Credential{}, err
	}
	if status >= 400 {
		return integration.Credential{}, fmt.Errorf("HTTP %d: %s", status, errorMessage(body))
	}

	var resp longLivedTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return integration.Credential{}, fmt.Errorf("failed to parse response: %v", err)
	}
	if resp.AccessToken == "" {
		return integration.Credential{}, errors.New("response carried no access token")
	}

	cred := integration.Credential{Token: resp.AccessToken}
	if resp.ExpiresIn > 0 {
		expiresAt := a.now().UTC().Add(time.Duration(resp.ExpiresIn) * time.Second)
		cred.ExpiresAt = &expiresAt
	}
	return cred, nil
}

// ---------------------------------------------------------------------------
// Profile and Media
// ---------------------------------------------------------------------------

// FetchProfile fetches the identity behind a credential
func (a *InstagramAdapter) FetchProfile(ctx context.Context, token string) (*integration.Profile, error) {
	params := url.Values{}
	params.Set("fields", meFields)
	params.Set("access_token", token)

	var resp instagramProfile
	if err := a.getJSON(ctx, a.config.GraphURL+"/me?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	id := string(resp.UserID)
	if id == "" {
		id = string(resp.ID)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: profile response carried no id", integration.ErrFetchFailed)
	}

	return &integration.Profile{
		ID:                id,
		Username:          resp.Username,
		Name:              resp.Name,
		ProfilePictureURL: resp.ProfilePictureURL,
	}, nil
}

// FetchMedia retrieves up to limit media items for a remote user.
// Pages are requested sequentially, following the after cursor, and
// retrieval stops as soon as enough items have been collected. Album
// children are fetched concurrently; a failed child request leaves that
// album with an empty child list instead of failing the fetch.
func (a *InstagramAdapter) FetchMedia(ctx context.Context, remoteUserID, token string, limit int) ([]integration.RawMediaItem, error) {
	if remoteUserID == "" {
		return nil, fmt.Errorf("%w: remote user id is empty", integration.ErrFetchFailed)
	}

	pageSize := MaxPageSize
	if limit > 0 && limit < pageSize {
		pageSize = limit
	}

	items := make([]integration.RawMediaItem, 0, pageSize)
	after := ""
	for page := 0; page < MaxPages; page++ {
		params := url.Values{}
		params.Set("fields", mediaFields)
		params.Set("limit", strconv.Itoa(pageSize))
		params.Set("access_token", token)
		if after != "" {
			params.Set("after", after)
		}

		var resp pagedResponse[instagramMedia]
		endpoint := a.config.GraphURL + "/" + url.PathEscape(remoteUserID) + "/media?" + params.Encode()
		if err := a.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, err
		}

		for _, m := range resp.Data {
			items = append(items, convertMedia(m))
		}

		if limit > 0 && len(items) >= limit {
			break
		}
		if resp.Paging.Next == "" || resp.Paging.Cursors.After == "" || len(resp.Data) == 0 {
			break
		}
		after = resp.Paging.Cursors.After
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	if err := a.expandAlbums(ctx, items, token); err != nil {
		return nil, err
	}
	return items, nil
}

// expandAlbums fills Children for album items using a bounded worker set
func (a *InstagramAdapter) expandAlbums(ctx context.Context, items []integration.RawMediaItem, token string) error {
	var g errgroup.Group
	g.SetLimit(a.config.ChildConcurrency)

	for i := range items {
		if !items[i].MediaType.IsAlbum() {
			continue
		}
		g.Go(func() error {
			children, err := a.fetchChildren(ctx, items[i].ID, token)
			if err != nil {
				a.logger.Warn("Failed to fetch album children",
					zap.String("media_id", items[i].ID),
					zap.Error(err),
				)
				children = []integration.ChildMedia{}
			}
			items[i].Children = children
			return nil
		})
	}
	_ = g.Wait()

	return ctx.Err()
}

func (a *InstagramAdapter) fetchChildren(ctx context.Context, mediaID, token string) ([]integration.ChildMedia, error) {
	params := url.Values{}
	params.Set("fields", childFields)
	params.Set("access_token", token)

	var resp pagedResponse[instagramChild]
	endpoint := a.config.GraphURL + "/" + url.PathEscape(mediaID) + "/children?" + params.Encode()
	if err := a.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	children := make([]integration.ChildMedia, 0, len(resp.Data))
	for _, c := range resp.Data {
		children = append(children, integration.ChildMedia{
			ID:           c.ID,
			MediaType:    integration.MediaType(c.MediaType),
			MediaURL:     c.MediaURL,
			ThumbnailURL: c.ThumbnailURL,
		})
	}
	return children, nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// getJSON performs a Graph API GET and decodes the body into out.
// Every failure wraps ErrFetchFailed and carries the provider's message.
func (a *InstagramAdapter) getJSON(ctx context.Context, endpoint string, out any) error {
	status, body, err := a.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrFetchFailed, err)
	}
	if status >= 400 {
		return fmt.Errorf("%w: HTTP %d: %s", integration.ErrFetchFailed, status, errorMessage(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", integration.ErrFetchFailed, err)
	}
	return nil
}

// doRequest performs an HTTP request to the Instagram API.
// Transport errors are stripped of the request URL so tokens never reach logs.
func (a *InstagramAdapter) doRequest(ctx context.Context, method, endpoint string, form url.Values) (int, []byte, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return 0, nil, errors.New("instagram: failed to create request")
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return 0, nil, fmt.Errorf("instagram: request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("instagram: failed to read response: %v", err)
	}

	return resp.StatusCode, body, nil
}

// errorMessage extracts a provider error message, falling back to the raw body
func errorMessage(body []byte) string {
	var ge graphError
	if err := json.Unmarshal(body, &ge); err == nil && ge.Error != nil && ge.Error.Message != "" {
		return ge.Error.Message
	}
	var se shortLivedTokenResponse
	if err := json.Unmarshal(body, &se); err == nil && se.ErrorMessage != "" {
		return se.ErrorMessage
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBodySize {
		msg = msg[:maxErrorBodySize]
	}
	return msg
}

// convertMedia converts a provider media element to a RawMediaItem
func convertMedia(m instagramMedia) integration.RawMediaItem {
	return integration.RawMediaItem{
		ID:           m.ID,
		Caption:      m.Caption,
		MediaType:    integration.MediaType(m.MediaType),
		MediaURL:     m.MediaURL,
		ThumbnailURL: m.ThumbnailURL,
		Permalink:    m.Permalink,
		Username:     m.Username,
		Timestamp:    parseInstagramTime(m.Timestamp),
	}
}

// Ensure InstagramAdapter implements SocialPlatform
var _ integration.SocialPlatform = (*InstagramAdapter)(nil)
