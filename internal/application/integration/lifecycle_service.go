package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/analytics"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"go.uber.org/zap"
)

// Lifecycle webhook topics
const (
	TopicAppUninstalled = "app/uninstalled"
	TopicScopesUpdate   = "app/scopes_update"
)

// ErrUnknownTopic is returned for webhook topics without a handler
var ErrUnknownTopic = errors.New("integration: unknown webhook topic")

// LifecycleService reacts to storefront platform lifecycle notifications
type LifecycleService struct {
	accounts integration.AccountRepository
	metas    integration.PostMetaRepository
	settings integration.FeedSettingsRepository
	counters analytics.CounterRepository
	sync     *SyncService
	logger   *zap.Logger
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	accounts integration.AccountRepository,
	metas integration.PostMetaRepository,
	settings integration.FeedSettingsRepository,
	counters analytics.CounterRepository,
	sync *SyncService,
	logger *zap.Logger,
) *LifecycleService {
	return &LifecycleService{
		accounts: accounts,
		metas:    metas,
		settings: settings,
		counters: counters,
		sync:     sync,
		logger:   logger,
	}
}

// Handle dispatches a webhook topic for a tenant
func (s *LifecycleService) Handle(ctx context.Context, topic, tenantKey string) error {
	tenantKey = integration.NormalizeTenantKey(tenantKey)
	if err := integration.ValidateTenantKey(tenantKey); err != nil {
		return err
	}

	switch topic {
	case TopicAppUninstalled:
		return s.Uninstall(ctx, tenantKey)
	case TopicScopesUpdate:
		return s.ScopesUpdated(ctx, tenantKey)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
}

// Uninstall erases every row and published record of the tenant.
// All deletions are attempted under the tenant's sync lock; their errors are joined.
func (s *LifecycleService) Uninstall(ctx context.Context, tenantKey string) error {
	err := s.sync.Unpublish(ctx, tenantKey, func(ctx context.Context) error {
		errs := []error{}
		if err := s.accounts.DeleteByTenant(ctx, tenantKey); err != nil {
			errs = append(errs, fmt.Errorf("account: %w", err))
		}
		if err := s.metas.DeleteByTenant(ctx, tenantKey); err != nil {
			errs = append(errs, fmt.Errorf("post meta: %w", err))
		}
		if err := s.settings.DeleteByTenant(ctx, tenantKey); err != nil {
			errs = append(errs, fmt.Errorf("settings: %w", err))
		}
		if err := s.counters.DeleteByTenant(ctx, tenantKey); err != nil {
			errs = append(errs, fmt.Errorf("counters: %w", err))
		}
		return errors.Join(errs...)
	})

	if err != nil {
		s.logger.Error("Tenant erase incomplete", zap.String("tenant", tenantKey), zap.Error(err))
		return err
	}

	s.logger.Info("Tenant data erased", zap.String("tenant", tenantKey))
	return nil
}

// ScopesUpdated acknowledges a scope change; no stored state depends on scopes
func (s *LifecycleService) ScopesUpdated(_ context.Context, tenantKey string) error {
	s.logger.Info("Scopes updated", zap.String("tenant", tenantKey))
	return nil
}
