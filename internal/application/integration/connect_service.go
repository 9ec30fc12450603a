package integration

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/analytics"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/auth"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Callback redirect query parameters
const (
	ConnectParam      = "ig_connect"
	ConnectErrorParam = "ig_error"
	ConnectSuccess    = "success"
	ConnectError      = "error"
)

// DefaultRefreshWindow is how close to expiry a credential gets refreshed
const DefaultRefreshWindow = 7 * 24 * time.Hour

// StateCodec signs and verifies handshake state tokens
type StateCodec interface {
	Encode(tenantKey string) (string, error)
	Decode(token string) (*auth.HandshakeState, error)
}

// ConnectService runs the handshake that links a social account to a tenant
// and keeps its credential fresh.
type ConnectService struct {
	platform      integration.SocialPlatform
	codec         StateCodec
	accounts      integration.AccountRepository
	counters      analytics.CounterRepository
	sync          *SyncService
	adminURL      string
	refreshWindow time.Duration
	metrics       *telemetry.Metrics
	logger        *zap.Logger
	now           func() time.Time
}

// NewConnectService creates a new ConnectService.
// adminURL is where the callback redirects the operator.
func NewConnectService(
	platform integration.SocialPlatform,
	codec StateCodec,
	accounts integration.AccountRepository,
	counters analytics.CounterRepository,
	sync *SyncService,
	adminURL string,
	logger *zap.Logger,
) *ConnectService {
	return &ConnectService{
		platform:      platform,
		codec:         codec,
		accounts:      accounts,
		counters:      counters,
		sync:          sync,
		adminURL:      adminURL,
		refreshWindow: DefaultRefreshWindow,
		logger:        logger,
		now:           time.Now,
	}
}

// SetMetrics sets the metrics collector (optional)
func (s *ConnectService) SetMetrics(m *telemetry.Metrics) {
	s.metrics = m
}

// SetRefreshWindow sets how close to expiry RefreshTokens acts
func (s *ConnectService) SetRefreshWindow(d time.Duration) {
	if d > 0 {
		s.refreshWindow = d
	}
}

// ---------------------------------------------------------------------------
// Handshake
// ---------------------------------------------------------------------------

// AuthorizeURL returns the provider redirect for tenantKey carrying a fresh state token
func (s *ConnectService) AuthorizeURL(tenantKey string) (string, error) {
	tenantKey = integration.NormalizeTenantKey(tenantKey)
	if err := integration.ValidateTenantKey(tenantKey); err != nil {
		return "", err
	}

	state, err := s.codec.Encode(tenantKey)
	if err != nil {
		return "", fmt.Errorf("encode handshake state: %w", err)
	}
	return s.platform.AuthorizeURL(state), nil
}

// HandleCallback completes the handshake and returns the URL to redirect the operator to.
// It never fails: every error becomes an ig_connect=error redirect.
func (s *ConnectService) HandleCallback(ctx context.Context, code, state, providerError string) string {
	ctx, span := telemetry.StartServiceSpan(ctx, "ConnectService", "HandleCallback")
	defer span.End()

	tenantKey, degraded, err := s.connect(ctx, code, state, providerError)
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.Connect(telemetry.OutcomeFailure)
		s.logger.Warn("Handshake failed",
			zap.String("tenant", tenantKey),
			zap.String("stage", "callback"),
			zap.Error(err),
		)
		return s.redirectURL(tenantKey, ConnectError, callbackReason(err))
	}

	outcome := telemetry.OutcomeSuccess
	if degraded {
		outcome = telemetry.OutcomeDegraded
	}
	s.metrics.Connect(outcome)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenant, tenantKey,
		telemetry.SpanAttrDegraded, degraded,
	)

	// the initial sync runs in the background so the redirect never waits on the provider
	s.sync.requestSync(tenantKey, integration.SyncReasonConnect)

	return s.redirectURL(tenantKey, ConnectSuccess, "")
}

// connect returns the tenant key as soon as the state is verified so failures
// after that point still redirect to the right store.
func (s *ConnectService) connect(ctx context.Context, code, state, providerError string) (string, bool, error) {
	handshake, err := s.codec.Decode(state)
	if err != nil {
		return "", false, err
	}
	tenantKey := handshake.TenantKey

	if providerError != "" {
		return tenantKey, false, fmt.Errorf("%w: %s", integration.ErrAccessDenied, providerError)
	}
	if code == "" {
		return tenantKey, false, fmt.Errorf("%w: authorization code is missing", integration.ErrExchangeFailed)
	}

	exchanged, err := integration.ExchangeAndUpgrade(ctx, s.platform, code)
	s.metrics.ProviderRequest("exchange_code", err)
	if err != nil {
		return tenantKey, false, err
	}
	if exchanged.UpgradeErr != nil {
		s.metrics.ProviderRequest("upgrade_token", exchanged.UpgradeErr)
		s.logger.Warn("Long-lived token upgrade failed, keeping short-lived credential",
			zap.String("tenant", tenantKey),
			zap.String("stage", "upgrade"),
			zap.Error(exchanged.UpgradeErr),
		)
	}
	cred := exchanged.Credential

	profile, err := s.platform.FetchProfile(ctx, cred.Token)
	s.metrics.ProviderRequest("fetch_profile", err)
	if err != nil {
		return tenantKey, false, err
	}

	existing, err := s.accounts.FindByTenant(ctx, tenantKey)
	if err != nil && !errors.Is(err, integration.ErrAccountNotFound) {
		return tenantKey, false, err
	}

	if existing.IsSwap(profile.ID) {
		// counts gathered for another identity are meaningless for this one
		if err := s.counters.DeleteByTenant(ctx, tenantKey); err != nil {
			return tenantKey, false, fmt.Errorf("reset analytics on account swap: %w", err)
		}
		s.logger.Info("Connected account changed, analytics reset",
			zap.String("tenant", tenantKey),
			zap.String("previous_user_id", existing.RemoteUserID),
			zap.String("user_id", profile.ID),
		)
	}

	var account *integration.Account
	if existing != nil {
		if err := existing.Reconnect(cred, *profile); err != nil {
			return tenantKey, false, err
		}
		account = existing
	} else {
		account, err = integration.NewAccount(tenantKey, cred, *profile)
		if err != nil {
			return tenantKey, false, err
		}
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		return tenantKey, false, fmt.Errorf("save account: %w", err)
	}

	s.logger.Info("Account connected",
		zap.String("tenant", tenantKey),
		zap.String("user_id", account.RemoteUserID),
		zap.Bool("degraded", cred.Degraded),
	)
	return tenantKey, cred.Degraded, nil
}

// redirectURL appends the outcome to the admin URL
func (s *ConnectService) redirectURL(tenantKey, outcome, reason string) string {
	u, err := url.Parse(s.adminURL)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set(ConnectParam, outcome)
	if reason != "" {
		q.Set(ConnectErrorParam, reason)
	}
	if tenantKey != "" {
		q.Set("shop", tenantKey)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// callbackReason returns the operator-facing message for a failed handshake
func callbackReason(err error) string {
	switch {
	case errors.Is(err, integration.ErrInvalidState):
		return "Connection request is invalid or expired, please try again"
	case errors.Is(err, integration.ErrAccessDenied),
		errors.Is(err, integration.ErrExchangeFailed),
		errors.Is(err, integration.ErrFetchFailed):
		return err.Error()
	default:
		return "Connection failed, please try again"
	}
}

// ---------------------------------------------------------------------------
// Account management
// ---------------------------------------------------------------------------

// GetAccount returns the tenant's connected account
func (s *ConnectService) GetAccount(ctx context.Context, tenantKey string) (*integration.Account, error) {
	return s.accounts.FindByTenant(ctx, tenantKey)
}

// Disconnect removes the tenant's account and its published feed
func (s *ConnectService) Disconnect(ctx context.Context, tenantKey string) error {
	if _, err := s.accounts.FindByTenant(ctx, tenantKey); err != nil {
		return err
	}
	if err := s.sync.Unpublish(ctx, tenantKey, func(ctx context.Context) error {
		return s.accounts.DeleteByTenant(ctx, tenantKey)
	}); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}

	s.logger.Info("Account disconnected", zap.String("tenant", tenantKey))
	return nil
}

// RefreshTokens extends every long-lived credential expiring within the refresh window.
// Per-account failures are logged and the account keeps its current credential.
// Returns the number of refreshed accounts.
func (s *ConnectService) RefreshTokens(ctx context.Context) (int, error) {
	accounts, err := s.accounts.FindExpiringBefore(ctx, s.now().Add(s.refreshWindow))
	if err != nil {
		return 0, fmt.Errorf("find expiring accounts: %w", err)
	}

	refreshed := 0
	for i := range accounts {
		account := &accounts[i]
		if account.Credential.Degraded {
			// short-lived credentials cannot be refreshed, only replaced by reconnecting
			s.logger.Warn("Skipping refresh of short-lived credential",
				zap.String("tenant", account.TenantKey),
			)
			continue
		}

		if err := s.refreshOne(ctx, account); err != nil {
			s.metrics.TokenRefresh(err)
			s.logger.Error("Credential refresh failed",
				zap.String("tenant", account.TenantKey),
				zap.String("stage", "refresh"),
				zap.Error(err),
			)
			continue
		}
		s.metrics.TokenRefresh(nil)
		refreshed++
	}
	return refreshed, nil
}

func (s *ConnectService) refreshOne(ctx context.Context, account *integration.Account) error {
	cred, err := s.platform.Refresh(ctx, account.Credential)
	s.metrics.ProviderRequest("refresh_token", err)
	if err != nil {
		return err
	}
	if err := account.RefreshCredential(cred); err != nil {
		return err
	}
	return s.accounts.Save(ctx, account)
}
