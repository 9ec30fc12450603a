package integration

import "context"

// TenantLocker serializes work for one tenant across goroutines and, when
// backed by a shared store, across processes.
type TenantLocker interface {
	// Lock blocks until the tenant's lock is held or ctx is done.
	// The returned function releases the lock and is safe to call once.
	Lock(ctx context.Context, tenantKey string) (unlock func(), err error)
}
