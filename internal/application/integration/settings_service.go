package integration

import (
	"context"
	"errors"
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"go.uber.org/zap"
)

// SettingsService reads and writes a tenant's feed display settings
type SettingsService struct {
	settings integration.FeedSettingsRepository
	sync     *SyncService
	logger   *zap.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settings integration.FeedSettingsRepository, sync *SyncService, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		settings: settings,
		sync:     sync,
		logger:   logger,
	}
}

// GetSettings returns the stored settings, or the defaults when none are stored
func (s *SettingsService) GetSettings(ctx context.Context, tenantKey string) (integration.FeedSettings, error) {
	if err := integration.ValidateTenantKey(tenantKey); err != nil {
		return integration.FeedSettings{}, err
	}
	return s.sync.loadSettings(ctx, tenantKey)
}

// UpdateSettings validates a settings document, normalizes it, stores it and queues a sync
func (s *SettingsService) UpdateSettings(ctx context.Context, tenantKey string, raw []byte) (integration.FeedSettings, error) {
	if err := integration.ValidateTenantKey(tenantKey); err != nil {
		return integration.FeedSettings{}, err
	}
	if err := integration.ValidateSettingsDocument(raw); err != nil {
		return integration.FeedSettings{}, err
	}

	settings, err := integration.Normalize(raw)
	if err != nil {
		return integration.FeedSettings{}, err
	}

	if err := s.settings.Save(ctx, &integration.StoredFeedSettings{
		TenantKey: tenantKey,
		Settings:  settings,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		return integration.FeedSettings{}, err
	}

	s.logger.Info("Feed settings updated",
		zap.String("tenant", tenantKey),
		zap.String("layout", string(settings.Layout)),
		zap.Int("post_limit", settings.PostLimit),
	)

	s.sync.requestSync(tenantKey, integration.SyncReasonSettings)
	return settings, nil
}

// ResetSettings deletes stored settings so the defaults apply again
func (s *SettingsService) ResetSettings(ctx context.Context, tenantKey string) error {
	if err := s.settings.DeleteByTenant(ctx, tenantKey); err != nil && !errors.Is(err, integration.ErrSettingsNotFound) {
		return err
	}
	s.sync.requestSync(tenantKey, integration.SyncReasonSettings)
	return nil
}
