package integration

import (
	"regexp"
	"strings"
)

// tenantKeyPattern matches a lowercase storefront domain such as "acme.myshopify.com".
var tenantKeyPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)+$`)

// NormalizeTenantKey lowercases and trims a tenant key.
func NormalizeTenantKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// IsValidTenantKey reports whether key has a storefront domain shape.
func IsValidTenantKey(key string) bool {
	if len(key) > 255 {
		return false
	}
	return tenantKeyPattern.MatchString(key)
}

// ValidateTenantKey returns ErrInvalidTenantKey when key is not a storefront domain.
func ValidateTenantKey(key string) error {
	if !IsValidTenantKey(key) {
		return ErrInvalidTenantKey
	}
	return nil
}
