package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL covers the provider's webhook retry window
const DefaultIdempotencyTTL = 48 * time.Hour

// IdempotencyStore remembers processed delivery ids so at-least-once
// deliveries are handled once per key
type IdempotencyStore interface {
	// MarkProcessed records key for ttl.
	// Returns true if the key was newly recorded, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Forget removes key so a delivery whose handling failed can be retried
	Forget(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
