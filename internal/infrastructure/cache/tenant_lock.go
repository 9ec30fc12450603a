package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultLockTTL bounds how long a crashed holder can block a tenant
	DefaultLockTTL = 5 * time.Minute

	lockKeyPrefix    = "igfeed:lock:sync:"
	lockPollInterval = 50 * time.Millisecond
	lockPollMax      = time.Second
)

// releaseScript deletes the lock only if it is still held by the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ---------------------------------------------------------------------------
// Redis
// ---------------------------------------------------------------------------

// RedisTenantLocker implements TenantLocker with SET NX PX and a compare-and-delete release
type RedisTenantLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisTenantLocker creates a Redis-backed locker
func NewRedisTenantLocker(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisTenantLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisTenantLocker{client: client, ttl: ttl, logger: logger}
}

// Lock polls until the tenant's key is acquired or ctx is done
func (l *RedisTenantLocker) Lock(ctx context.Context, tenantKey string) (func(), error) {
	key := lockKeyPrefix + tenantKey
	token := uuid.NewString()
	wait := lockPollInterval

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to acquire tenant lock: %w", err)
		}
		if ok {
			return l.releaser(key, token), nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		if wait *= 2; wait > lockPollMax {
			wait = lockPollMax
		}
	}
}

func (l *RedisTenantLocker) releaser(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				l.logger.Warn("Failed to release tenant lock", zap.String("key", key), zap.Error(err))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// In-memory
// ---------------------------------------------------------------------------

// InMemoryTenantLocker implements TenantLocker within one process.
// Each tenant has a one-slot channel; holding the slot is holding the lock.
type InMemoryTenantLocker struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

// NewInMemoryTenantLocker creates an in-process locker
func NewInMemoryTenantLocker() *InMemoryTenantLocker {
	return &InMemoryTenantLocker{slots: make(map[string]*lockSlot)}
}

// Lock blocks until the tenant's slot is free or ctx is done
func (l *InMemoryTenantLocker) Lock(ctx context.Context, tenantKey string) (func(), error) {
	slot := l.acquireSlot(tenantKey)

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseSlot(tenantKey)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.releaseSlot(tenantKey)
		})
	}, nil
}

func (l *InMemoryTenantLocker) acquireSlot(tenantKey string) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[tenantKey]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[tenantKey] = slot
	}
	slot.refs++
	return slot
}

func (l *InMemoryTenantLocker) releaseSlot(tenantKey string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot := l.slots[tenantKey]
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, tenantKey)
	}
}

// Size returns the number of tenants with a holder or waiter (for testing/monitoring)
func (l *InMemoryTenantLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

// Ensure lockers implement TenantLocker
var (
	_ integration.TenantLocker = (*RedisTenantLocker)(nil)
	_ integration.TenantLocker = (*InMemoryTenantLocker)(nil)
)
