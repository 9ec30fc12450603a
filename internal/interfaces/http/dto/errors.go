package dto

import (
	"context"
	"errors"
	"net/http"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/analytics"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
	ErrCodeTimeout  = "ERR_TIMEOUT"
)

// Validation error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeInvalidShop  = "ERR_INVALID_SHOP"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
	ErrCodeSignature    = "ERR_INVALID_SIGNATURE"
)

// Resource error codes
const (
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeNotConnected = "ERR_NOT_CONNECTED"
	ErrCodeConflict     = "ERR_CONFLICT"
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// Upstream error codes
const (
	ErrCodeUpstream      = "ERR_UPSTREAM"
	ErrCodePublishFailed = "ERR_PUBLISH_FAILED"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeTimeout:  http.StatusGatewayTimeout,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeInvalidShop:  http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,
	ErrCodeSignature:    http.StatusUnauthorized,

	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeNotConnected: http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeInvalidState: http.StatusBadRequest,

	ErrCodeUpstream:      http.StatusBadGateway,
	ErrCodePublishFailed: http.StatusBadGateway,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps shared.DomainError codes to standardized codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONFLICT":             ErrCodeConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"UPSTREAM_UNAVAILABLE": ErrCodeUpstream,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a legacy error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

// Client-facing messages for errors whose text must not leak provider detail
const (
	MessageInternal     = "An unexpected error occurred"
	MessageNotConnected = "No Instagram account is connected for this shop"
	MessageFetchFailed  = "Instagram media could not be fetched"
	MessageUpstream     = "Instagram request failed"
	MessageTimeout      = "The operation timed out"
	MessageSyncBusy     = "A sync is already running for this shop"
)

// ResolveError maps a service error to an error code and a client-safe message.
// Validation failures keep their own message; upstream and internal failures do not.
func ResolveError(err error) (code, message string) {
	var domainErr *shared.DomainError
	switch {
	case err == nil:
		return "", ""
	case errors.As(err, &domainErr):
		return NormalizeErrorCode(domainErr.Code), domainErr.Message

	case errors.Is(err, integration.ErrAccountNotFound):
		return ErrCodeNotConnected, MessageNotConnected
	case errors.Is(err, integration.ErrPostMetaNotFound):
		return ErrCodeNotFound, "Post metadata not found"
	case errors.Is(err, integration.ErrInvalidTenantKey),
		errors.Is(err, analytics.ErrInvalidTenantKey):
		return ErrCodeInvalidShop, "Invalid shop domain"
	case errors.Is(err, integration.ErrSettingsInvalid),
		errors.Is(err, integration.ErrInvalidProductRef),
		errors.Is(err, integration.ErrPostMetaInvalidMedia),
		errors.Is(err, analytics.ErrInvalidWindow),
		errors.Is(err, analytics.ErrInvalidEventType):
		return ErrCodeValidation, err.Error()
	case errors.Is(err, integration.ErrInvalidState):
		return ErrCodeInvalidState, "Connection request is invalid or expired"
	case errors.Is(err, integration.ErrUnauthorized):
		return ErrCodeUnauthorized, "Shop could not be resolved"
	case errors.Is(err, integration.ErrSyncBusy):
		return ErrCodeConflict, MessageSyncBusy
	case errors.Is(err, integration.ErrPublishFailed):
		return ErrCodePublishFailed, err.Error()
	case errors.Is(err, integration.ErrFetchFailed):
		return ErrCodeUpstream, MessageFetchFailed
	case errors.Is(err, integration.ErrExchangeFailed),
		errors.Is(err, integration.ErrRefreshFailed):
		return ErrCodeUpstream, MessageUpstream
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout, MessageTimeout
	default:
		return ErrCodeInternal, MessageInternal
	}
}
