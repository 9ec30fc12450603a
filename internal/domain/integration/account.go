package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Credential
// ---------------------------------------------------------------------------

// Credential is an access token for the provider.
// Degraded is set when the long-lived upgrade failed and Token is the short-lived one.
type Credential struct {
	Token     string
	ExpiresAt *time.Time
	Degraded  bool
}

// IsZero returns true when no token is present
func (c Credential) IsZero() bool {
	return c.Token == ""
}

// ExpiresWithin returns true if the credential expires before now+d.
// Credentials without a known expiry never report expiring.
func (c Credential) ExpiresWithin(d time.Duration, now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Before(now.Add(d))
}

// ---------------------------------------------------------------------------
// Account Entity
// ---------------------------------------------------------------------------

// Account is the connected social-media identity of a tenant.
// There is exactly one Account per tenant key.
type Account struct {
	ID           uuid.UUID
	TenantKey    string
	Credential   Credential
	RemoteUserID string
	DisplayName  string
	AvatarURL    string
	ConnectedAt  time.Time
	UpdatedAt    time.Time
}

// NewAccount creates an Account from a freshly obtained credential and profile
func NewAccount(tenantKey string, cred Credential, profile Profile) (*Account, error) {
	if err := ValidateTenantKey(tenantKey); err != nil {
		return nil, err
	}
	if cred.IsZero() {
		return nil, ErrAccountNoCredential
	}
	if profile.ID == "" {
		return nil, ErrAccountInvalidProfile
	}

	now := time.Now().UTC()
	return &Account{
		ID:           uuid.New(),
		TenantKey:    tenantKey,
		Credential:   cred,
		RemoteUserID: profile.ID,
		DisplayName:  profile.DisplayName(),
		AvatarURL:    profile.ProfilePictureURL,
		ConnectedAt:  now,
		UpdatedAt:    now,
	}, nil
}

// IsSwap returns true if connecting remoteUserID would replace a different remote identity
func (a *Account) IsSwap(remoteUserID string) bool {
	return a != nil && a.RemoteUserID != "" && a.RemoteUserID != remoteUserID
}

// Reconnect updates an existing Account in place with a new credential and profile,
// keeping its identity and original connection time.
func (a *Account) Reconnect(cred Credential, profile Profile) error {
	if cred.IsZero() {
		return ErrAccountNoCredential
	}
	if profile.ID == "" {
		return ErrAccountInvalidProfile
	}
	a.Credential = cred
	a.RemoteUserID = profile.ID
	a.DisplayName = profile.DisplayName()
	a.AvatarURL = profile.ProfilePictureURL
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// RefreshCredential replaces the stored credential after a refresh
func (a *Account) RefreshCredential(cred Credential) error {
	if cred.IsZero() {
		return ErrAccountNoCredential
	}
	a.Credential = cred
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// AccountRepository persists Accounts keyed by tenant
type AccountRepository interface {
	// FindByTenant returns ErrAccountNotFound when the tenant has no account
	FindByTenant(ctx context.Context, tenantKey string) (*Account, error)

	// FindAll returns every connected account
	FindAll(ctx context.Context) ([]Account, error)

	// FindExpiringBefore returns accounts whose credential expires before t
	FindExpiringBefore(ctx context.Context, t time.Time) ([]Account, error)

	// Save creates or replaces the tenant's account
	Save(ctx context.Context, account *Account) error

	// DeleteByTenant removes the tenant's account, if any
	DeleteByTenant(ctx context.Context, tenantKey string) error
}

// TokenExchanger converts authorization codes into access credentials
type TokenExchanger interface {
	// ExchangeCode trades an authorization code for a short-lived credential
	ExchangeCode(ctx context.Context, code string) (Credential, error)

	// Upgrade trades a short-lived credential for a long-lived one
	Upgrade(ctx context.Context, shortLived Credential) (Credential, error)

	// Refresh extends a long-lived credential
	Refresh(ctx context.Context, longLived Credential) (Credential, error)
}

// ProfileResolver fetches the identity behind a credential
type ProfileResolver interface {
	FetchProfile(ctx context.Context, token string) (*Profile, error)
}

// MediaFetcher retrieves a bounded list of media for a remote user.
// A limit <= 0 means no caller limit; the provider caps still apply.
type MediaFetcher interface {
	FetchMedia(ctx context.Context, remoteUserID, token string, limit int) ([]RawMediaItem, error)
}

// SocialPlatform is the full provider port used by the integration services
type SocialPlatform interface {
	TokenExchanger
	ProfileResolver
	MediaFetcher

	// AuthorizeURL builds the handshake redirect carrying the given state token
	AuthorizeURL(state string) string
}
