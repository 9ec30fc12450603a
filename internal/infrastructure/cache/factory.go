package cache

import (
	"fmt"
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LockerFactory creates tenant lockers based on Redis availability
type LockerFactory struct {
	client                redis.UniversalClient
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-process locker when Redis is unavailable.
// Default is true (allow fallback).
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithLockTTL sets the lock expiry used by the Redis locker
func WithLockTTL(ttl time.Duration) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.ttl = ttl
	}
}

// NewLockerFactory creates a new factory. client may be nil when Redis is disabled.
func NewLockerFactory(client redis.UniversalClient, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		client:                client,
		ttl:                   DefaultLockTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateLocker returns a Redis locker when a client is configured, otherwise an
// in-process locker if fallback is allowed. In-process locks do not serialize
// syncs across replicas.
func (f *LockerFactory) CreateLocker() (integration.TenantLocker, error) {
	if f.client != nil {
		f.logger.Info("using Redis tenant locker", zap.Duration("ttl", f.ttl))
		return NewRedisTenantLocker(f.client, f.ttl, f.logger), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("%w: redis is required for tenant locking", integration.ErrConfigMissing)
	}

	f.logger.Warn("Redis disabled, falling back to in-memory tenant locker. " +
		"Syncs are only serialized within this process.")
	return NewInMemoryTenantLocker(), nil
}
