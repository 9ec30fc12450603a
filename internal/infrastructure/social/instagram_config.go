package social

import (
	"errors"
	"strings"
)

const (
	// InstagramAuthorizeURL is the production authorization endpoint
	InstagramAuthorizeURL = "https://api.instagram.com/oauth/authorize"
	// InstagramTokenURL is the production code exchange endpoint
	InstagramTokenURL = "https://api.instagram.com/oauth/access_token"
	// InstagramGraphURL is the production Graph API base URL
	InstagramGraphURL = "https://graph.instagram.com"
)

// Provider limits applied to media retrieval
const (
	// MaxPageSize is the largest page the provider returns
	MaxPageSize = 100
	// MaxPages bounds the number of sequential page requests per fetch
	MaxPages = 50
	// DefaultChildConcurrency bounds concurrent album child requests
	DefaultChildConcurrency = 4
)

// Errors for Instagram configuration
var (
	ErrInstagramConfigMissingClientID     = errors.New("instagram: client id is required")
	ErrInstagramConfigMissingClientSecret = errors.New("instagram: client secret is required")
	ErrInstagramConfigMissingRedirectURI  = errors.New("instagram: redirect uri is required")
)

// InstagramConfig holds configuration for the Instagram API integration
type InstagramConfig struct {
	// ClientID is the app id from the developer console
	ClientID string
	// ClientSecret is the app secret from the developer console
	ClientSecret string
	// RedirectURI must match the callback registered for the app
	RedirectURI string
	// Scopes requested during the handshake
	Scopes []string
	// AuthorizeURL, TokenURL and GraphURL allow pointing at a test server
	AuthorizeURL string
	TokenURL     string
	GraphURL     string
	// TimeoutSeconds is the per-request HTTP timeout
	TimeoutSeconds int
	// RequestsPerSecond throttles outbound calls; 0 disables throttling
	RequestsPerSecond float64
	// ChildConcurrency bounds concurrent album child requests
	ChildConcurrency int
}

// Validate validates the configuration and fills defaults
func (c *InstagramConfig) Validate() error {
	if c.ClientID == "" {
		return ErrInstagramConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrInstagramConfigMissingClientSecret
	}
	if c.RedirectURI == "" {
		return ErrInstagramConfigMissingRedirectURI
	}
	if c.AuthorizeURL == "" {
		c.AuthorizeURL = InstagramAuthorizeURL
	}
	if c.TokenURL == "" {
		c.TokenURL = InstagramTokenURL
	}
	if c.GraphURL == "" {
		c.GraphURL = InstagramGraphURL
	}
	c.GraphURL = strings.TrimRight(c.GraphURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
	}
	if c.ChildConcurrency <= 0 {
		c.ChildConcurrency = DefaultChildConcurrency
	}
	if len(c.Scopes) == 0 {
		c.Scopes = []string{"instagram_business_basic"}
	}
	return nil
}
