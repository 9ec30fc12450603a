package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker invalidates every admin token of a shop issued before a point in time.
// Uninstalling a shop revokes its outstanding tokens.
type TokenRevoker interface {
	// RevokeShop rejects tokens of shop issued at or before now, for ttl
	RevokeShop(ctx context.Context, shop string, ttl time.Duration) error

	// IsRevoked reports whether a token of shop issued at issuedAt was revoked
	IsRevoked(ctx context.Context, shop string, issuedAt time.Time) (bool, error)
}

// RedisTokenRevoker implements TokenRevoker using Redis
type RedisTokenRevoker struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisTokenRevoker creates a revoker on an existing Redis client
func NewRedisTokenRevoker(client redis.UniversalClient) *RedisTokenRevoker {
	return &RedisTokenRevoker{
		client:    client,
		keyPrefix: "igfeed:token:revoked:",
	}
}

// RevokeShop stores the revocation timestamp for shop
func (r *RedisTokenRevoker) RevokeShop(ctx context.Context, shop string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.keyPrefix+shop, time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke shop tokens: %w", err)
	}
	return nil
}

// IsRevoked checks the token's issue time against the stored revocation timestamp
func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, shop string, issuedAt time.Time) (bool, error) {
	raw, err := r.client.Get(ctx, r.keyPrefix+shop).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAt.Unix() <= revokedAt, nil
}

var _ TokenRevoker = (*RedisTokenRevoker)(nil)

// InMemoryTokenRevoker is a single-process TokenRevoker
type InMemoryTokenRevoker struct {
	mu      sync.RWMutex
	revoked map[string]revocation
}

type revocation struct {
	at        time.Time
	expiresAt time.Time
}

// NewInMemoryTokenRevoker creates an empty in-memory revoker
func NewInMemoryTokenRevoker() *InMemoryTokenRevoker {
	return &InMemoryTokenRevoker{revoked: make(map[string]revocation)}
}

// RevokeShop records the revocation time for shop
func (r *InMemoryTokenRevoker) RevokeShop(_ context.Context, shop string, ttl time.Duration) error {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[shop] = revocation{at: now, expiresAt: now.Add(ttl)}
	return nil
}

// IsRevoked reports whether issuedAt is at or before an unexpired revocation
func (r *InMemoryTokenRevoker) IsRevoked(_ context.Context, shop string, issuedAt time.Time) (bool, error) {
	r.mu.RLock()
	rev, ok := r.revoked[shop]
	r.mu.RUnlock()
	if !ok || time.Now().After(rev.expiresAt) {
		return false, nil
	}
	return issuedAt.Unix() <= rev.at.Unix(), nil
}

var _ TokenRevoker = (*InMemoryTokenRevoker)(nil)
