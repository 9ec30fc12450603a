package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
)

// TenantProvider lists tenants with a connected account
type TenantProvider interface {
	FindAll(ctx context.Context) ([]integration.Account, error)
}

// TokenRefresher extends credentials that are close to expiry
type TokenRefresher interface {
	RefreshTokens(ctx context.Context) (int, error)
}

// SyncQueue accepts sync requests
type SyncQueue interface {
	ScheduleSync(tenantKey, reason string) error
}

// CronTriggerConfig holds cron expressions for periodic work
type CronTriggerConfig struct {
	// SyncSchedule enqueues a sync for every connected account (default "@every 6h")
	SyncSchedule string
	// RefreshSchedule runs the credential refresh (default "@daily")
	RefreshSchedule string
	// RunTimeout bounds one trigger run
	RunTimeout time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		SyncSchedule:    "@every 6h",
		RefreshSchedule: "@daily",
		RunTimeout:      10 * time.Minute,
	}
}

// CronTrigger feeds periodic syncs into the worker pool and refreshes credentials
type CronTrigger struct {
	config    CronTriggerConfig
	cron      *cron.Cron
	queue     SyncQueue
	tenants   TenantProvider
	refresher TokenRefresher
	logger    *zap.Logger

	mu        sync.Mutex
	isRunning bool
	entries   map[string]cron.EntryID
}

// NewCronTrigger parses the schedules and registers both entries.
// refresher may be nil to skip credential refresh.
func NewCronTrigger(
	config CronTriggerConfig,
	queue SyncQueue,
	tenants TenantProvider,
	refresher TokenRefresher,
	logger *zap.Logger,
) (*CronTrigger, error) {
	if config.RunTimeout <= 0 {
		config.RunTimeout = 10 * time.Minute
	}

	c := &CronTrigger{
		config:    config,
		cron:      cron.New(cron.WithLogger(zapCronLogger{logger: logger}), cron.WithLocation(time.UTC)),
		queue:     queue,
		tenants:   tenants,
		refresher: refresher,
		logger:    logger,
		entries:   make(map[string]cron.EntryID),
	}

	if err := c.add("sync", config.SyncSchedule, c.TriggerSyncAll); err != nil {
		return nil, err
	}
	if refresher != nil {
		if err := c.add("token_refresh", config.RefreshSchedule, c.TriggerRefresh); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *CronTrigger) add(name, schedule string, run func(ctx context.Context) error) error {
	id, err := c.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.config.RunTimeout)
		defer cancel()

		start := time.Now()
		if err := run(ctx); err != nil {
			c.logger.Error("Cron job failed", zap.String("job", name), zap.Error(err))
			return
		}
		c.logger.Info("Cron job completed", zap.String("job", name), zap.Duration("duration", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrInvalidSchedule, name, schedule, err)
	}
	c.entries[name] = id
	return nil
}

// Start starts the cron loop
func (c *CronTrigger) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return
	}
	c.isRunning = true
	c.cron.Start()

	c.logger.Info("Cron trigger started",
		zap.String("sync_schedule", c.config.SyncSchedule),
		zap.String("refresh_schedule", c.config.RefreshSchedule),
	)
}

// Stop stops the cron loop and waits for running jobs until ctx is done
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	select {
	case <-c.cron.Stop().Done():
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TriggerSyncAll enqueues a sync for every connected account.
// Accounts that cannot be queued are logged and skipped.
func (c *CronTrigger) TriggerSyncAll(ctx context.Context) error {
	accounts, err := c.tenants.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list connected accounts: %w", err)
	}

	queued := 0
	for _, account := range accounts {
		if err := c.queue.ScheduleSync(account.TenantKey, integration.SyncReasonSchedule); err != nil {
			c.logger.Warn("Failed to queue scheduled sync",
				zap.String("tenant", account.TenantKey),
				zap.Error(err),
			)
			continue
		}
		queued++
	}

	c.logger.Info("Scheduled syncs queued",
		zap.Int("accounts", len(accounts)),
		zap.Int("queued", queued),
	)
	return nil
}

// TriggerRefresh runs the credential refresh once
func (c *CronTrigger) TriggerRefresh(ctx context.Context) error {
	if c.refresher == nil {
		return nil
	}
	refreshed, err := c.refresher.RefreshTokens(ctx)
	if err != nil {
		return err
	}
	c.logger.Info("Credential refresh finished", zap.Int("refreshed", refreshed))
	return nil
}

// NextRun returns the next activation time of a named entry
func (c *CronTrigger) NextRun(name string) (time.Time, bool) {
	id, ok := c.entries[name]
	if !ok {
		return time.Time{}, false
	}
	return c.cron.Entry(id).Next, true
}

// zapCronLogger adapts zap to cron.Logger
type zapCronLogger struct {
	logger *zap.Logger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
