package integration

import "errors"

// ---------------------------------------------------------------------------
// Integration Errors
// ---------------------------------------------------------------------------

var (
	// Handshake and credential errors
	ErrConfigMissing  = errors.New("integration: required configuration missing")
	ErrInvalidState   = errors.New("integration: invalid handshake state")
	ErrAccessDenied   = errors.New("integration: authorization denied")
	ErrExchangeFailed = errors.New("integration: token exchange failed")
	ErrUpgradeFailed  = errors.New("integration: long-lived token upgrade failed")
	ErrRefreshFailed  = errors.New("integration: token refresh failed")

	// Sync errors
	ErrFetchFailed   = errors.New("integration: media fetch failed")
	ErrPublishFailed = errors.New("integration: publish failed")
	ErrSyncBusy      = errors.New("integration: sync already running for tenant")

	// Tracking and tenant errors
	ErrUnauthorized     = errors.New("integration: tenant could not be resolved")
	ErrInvalidTenantKey = errors.New("integration: invalid tenant key")

	// Entity errors
	ErrAccountNotFound       = errors.New("integration: account not found")
	ErrAccountInvalidProfile = errors.New("integration: profile has no remote user id")
	ErrAccountNoCredential   = errors.New("integration: credential is empty")
	ErrPostMetaNotFound      = errors.New("integration: post meta not found")
	ErrPostMetaInvalidMedia  = errors.New("integration: invalid media id")
	ErrInvalidProductRef     = errors.New("integration: invalid product reference")
	ErrSettingsNotFound      = errors.New("integration: feed settings not found")
	ErrSettingsInvalid       = errors.New("integration: invalid feed settings")
)
