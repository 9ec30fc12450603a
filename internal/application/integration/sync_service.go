package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// detachedSyncTimeout bounds a sync started without a queue
const detachedSyncTimeout = 2 * time.Minute

// SyncQueue accepts asynchronous sync requests
type SyncQueue interface {
	ScheduleSync(tenantKey, reason string) error
}

// SyncService runs the fetch, merge and publish pipeline for one tenant.
// Runs for the same tenant are serialized by the TenantLocker: a caller blocks
// until the lock is free or its context is done, so the newest request always
// publishes last.
type SyncService struct {
	accounts         integration.AccountRepository
	metas            integration.PostMetaRepository
	settings         integration.FeedSettingsRepository
	fetcher          integration.MediaFetcher
	publisher        *Publisher
	locker           integration.TenantLocker
	queue            SyncQueue
	metrics          *telemetry.Metrics
	logger           *zap.Logger
	defaultPostLimit int
}

// NewSyncService creates a new SyncService
func NewSyncService(
	accounts integration.AccountRepository,
	metas integration.PostMetaRepository,
	settings integration.FeedSettingsRepository,
	fetcher integration.MediaFetcher,
	publisher *Publisher,
	locker integration.TenantLocker,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		accounts:         accounts,
		metas:            metas,
		settings:         settings,
		fetcher:          fetcher,
		publisher:        publisher,
		locker:           locker,
		logger:           logger,
		defaultPostLimit: integration.DefaultFeedSettings().PostLimit,
	}
}

// SetQueue sets the worker pool used by SyncAsync.
// The queue is created after the service because its workers call Sync.
func (s *SyncService) SetQueue(queue SyncQueue) {
	s.queue = queue
}

// SetMetrics sets the metrics collector (optional)
func (s *SyncService) SetMetrics(m *telemetry.Metrics) {
	s.metrics = m
}

// SetDefaultPostLimit sets the fetch limit for tenants without stored settings
func (s *SyncService) SetDefaultPostLimit(limit int) {
	if limit >= integration.MinPostLimit && limit <= integration.MaxPostLimit {
		s.defaultPostLimit = limit
	}
}

// Sync fetches the tenant's media, merges local metadata and publishes the result.
// A failed run leaves the previously published payload live.
func (s *SyncService) Sync(ctx context.Context, tenantKey string) (*integration.SyncResult, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "SyncService", "Sync",
		telemetry.WithAttribute(telemetry.SpanAttrTenant, tenantKey),
	)
	defer span.End()

	result, stage, err := s.run(ctx, tenantKey)
	elapsed := time.Since(start)

	if err != nil {
		telemetry.RecordError(span, err)
		telemetry.SetAttributes(span, telemetry.SpanAttrStage, stage)
		s.metrics.ObserveSync(telemetry.OutcomeFailure, elapsed, 0)
		s.logger.Warn("Sync failed",
			zap.String("tenant", tenantKey),
			zap.String("stage", stage),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	result.Duration = elapsed
	outcome := telemetry.OutcomeSuccess
	if result.Degraded {
		outcome = telemetry.OutcomeDegraded
	}
	s.metrics.ObserveSync(outcome, elapsed, result.MediaCount)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrMediaCount, result.MediaCount,
		telemetry.SpanAttrDegraded, result.Degraded,
	)

	s.logger.Info("Sync completed",
		zap.String("tenant", tenantKey),
		zap.Int("media_count", result.MediaCount),
		zap.Bool("degraded", result.Degraded),
		zap.Duration("duration", elapsed),
	)
	return result, nil
}

// run returns the failing stage name alongside any error
func (s *SyncService) run(ctx context.Context, tenantKey string) (*integration.SyncResult, string, error) {
	if err := integration.ValidateTenantKey(tenantKey); err != nil {
		return nil, "validate", err
	}

	unlock, err := s.locker.Lock(ctx, tenantKey)
	if err != nil {
		return nil, "lock", fmt.Errorf("acquire sync lock: %w", err)
	}
	defer unlock()

	account, err := s.accounts.FindByTenant(ctx, tenantKey)
	if err != nil {
		return nil, "load_account", err
	}

	settings, err := s.loadSettings(ctx, tenantKey)
	if err != nil {
		return nil, "load_settings", err
	}

	metas, err := s.metas.FindByTenant(ctx, tenantKey)
	if err != nil {
		return nil, "load_post_meta", err
	}

	items, err := s.fetcher.FetchMedia(ctx, account.RemoteUserID, account.Credential.Token, settings.PostLimit)
	s.metrics.ProviderRequest("fetch_media", err)
	if err != nil {
		return nil, "fetch", err
	}

	merged := integration.Merge(items, metas, integration.MergeOptions{
		DisplayName: account.DisplayName,
		PinnedOnly:  settings.PinnedOnly,
	})

	if err := s.publisher.Publish(ctx, account, merged, settings); err != nil {
		return nil, "publish", err
	}

	return &integration.SyncResult{
		TenantKey:  tenantKey,
		Published:  true,
		MediaCount: len(merged),
		Degraded:   account.Credential.Degraded,
	}, "", nil
}

func (s *SyncService) loadSettings(ctx context.Context, tenantKey string) (integration.FeedSettings, error) {
	stored, err := s.settings.FindByTenant(ctx, tenantKey)
	if errors.Is(err, integration.ErrSettingsNotFound) {
		defaults := integration.DefaultFeedSettings()
		defaults.PostLimit = s.defaultPostLimit
		return defaults, nil
	}
	if err != nil {
		return integration.FeedSettings{}, err
	}
	return stored.Settings.Clamp(), nil
}

// SyncAsync requests a sync without waiting for it.
// Without a queue the run happens on a detached goroutine.
func (s *SyncService) SyncAsync(tenantKey, reason string) error {
	if s.queue != nil {
		return s.queue.ScheduleSync(tenantKey, reason)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), detachedSyncTimeout)
		defer cancel()
		_, _ = s.Sync(ctx, tenantKey)
	}()
	return nil
}

// requestSync queues a sync after a local mutation; failure to queue is logged only
func (s *SyncService) requestSync(tenantKey, reason string) {
	if err := s.SyncAsync(tenantKey, reason); err != nil {
		s.logger.Warn("Failed to queue sync",
			zap.String("tenant", tenantKey),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
}

// Unpublish runs erase and then clears the tenant's published records,
// both under the sync lock, so no sync can load the account in between.
// erase may be nil. Both steps run; their errors are joined.
func (s *SyncService) Unpublish(ctx context.Context, tenantKey string, erase func(context.Context) error) error {
	unlock, err := s.locker.Lock(ctx, tenantKey)
	if err != nil {
		return fmt.Errorf("acquire sync lock: %w", err)
	}
	defer unlock()

	var eraseErr error
	if erase != nil {
		eraseErr = erase(ctx)
	}
	if err := s.publisher.Clear(ctx, tenantKey); err != nil {
		return errors.Join(eraseErr, fmt.Errorf("published records: %w", err))
	}
	return eraseErr
}
