package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/telemetry"
)

// ---------------------------------------------------------------------------
// SyncSchedulerConfig
// ---------------------------------------------------------------------------

// SyncSchedulerConfig holds configuration for the sync worker pool
type SyncSchedulerConfig struct {
	// Workers is the number of concurrent sync jobs
	Workers int
	// QueueSize bounds the number of waiting jobs
	QueueSize int
	// JobTimeout is the maximum time a job can run
	JobTimeout time.Duration
	// RetryAttempts is the number of retry attempts for failed jobs
	RetryAttempts int
	// RetryDelay is the base delay between retries (with exponential backoff)
	RetryDelay time.Duration
	// MaxHistory is the number of finished jobs kept for monitoring
	MaxHistory int
}

// DefaultSyncSchedulerConfig returns default configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Workers:       3,
		QueueSize:     100,
		JobTimeout:    2 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    30 * time.Second,
		MaxHistory:    100,
	}
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if c.Workers <= 0 || c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 || c.RetryDelay < 0 {
		return ErrInvalidConfig
	}
	if c.MaxHistory <= 0 {
		c.MaxHistory = 100
	}
	return nil
}

// ---------------------------------------------------------------------------
// SyncScheduler
// ---------------------------------------------------------------------------

// SyncScheduler runs sync jobs on a bounded worker pool.
// A tenant with a job already waiting in the queue is not queued twice;
// the waiting job reads the newest state when it runs.
type SyncScheduler struct {
	config   SyncSchedulerConfig
	executor SyncExecutor
	logger   *zap.Logger
	metrics  *telemetry.Metrics

	jobs      chan *SyncJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	queued    map[string]struct{}

	// Job history for monitoring (in-memory, limited size)
	historyMu sync.RWMutex
	history   []*SyncJob
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config SyncSchedulerConfig, executor SyncExecutor, logger *zap.Logger, metrics *telemetry.Metrics) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &SyncScheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		metrics:  metrics,
		jobs:     make(chan *SyncJob, config.QueueSize),
		queued:   make(map[string]struct{}),
		history:  make([]*SyncJob, 0, config.MaxHistory),
	}, nil
}

// Start starts the worker pool
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Sync scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for workers to exit
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	if s.cancel != nil {
		s.cancel()
	}
	close(s.jobs)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// ScheduleSync queues a sync for tenantKey
func (s *SyncScheduler) ScheduleSync(tenantKey, reason string) error {
	return s.SubmitJob(NewSyncJob(tenantKey, reason, s.config.RetryAttempts))
}

// SubmitJob queues job unless the tenant already has a waiting job
func (s *SyncScheduler) SubmitJob(job *SyncJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	if _, waiting := s.queued[job.TenantKey]; waiting {
		s.logger.Debug("Sync already queued, coalescing",
			zap.String("tenant", job.TenantKey),
			zap.String("reason", job.Reason),
		)
		return nil
	}

	select {
	case s.jobs <- job:
		s.queued[job.TenantKey] = struct{}{}
		s.metrics.SetQueueDepth(len(s.jobs))
		s.logger.Debug("Sync job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("tenant", job.TenantKey),
			zap.String("reason", job.Reason),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// worker processes jobs from the queue
func (s *SyncScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.dequeue(job)
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *SyncScheduler) dequeue(job *SyncJob) {
	s.mu.Lock()
	delete(s.queued, job.TenantKey)
	s.metrics.SetQueueDepth(len(s.jobs))
	s.mu.Unlock()
}

// processJob executes a single job
func (s *SyncScheduler) processJob(ctx context.Context, job *SyncJob, workerID int) {
	job.Start()
	s.logger.Info("Processing sync job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("tenant", job.TenantKey),
		zap.String("reason", job.Reason),
		zap.Int("attempt", job.RetryCount+1),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	if err := s.executor.Execute(jobCtx, job); err != nil {
		job.Fail(err)
		s.logger.Error("Sync job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("tenant", job.TenantKey),
			zap.String("stage", "sync"),
			zap.Bool("permanent", job.Permanent),
			zap.Error(err),
		)
		s.addToHistory(job)

		if job.ShouldRetry() && ctx.Err() == nil {
			delay := job.ScheduleRetry(s.config.RetryDelay)
			s.logger.Info("Sync job scheduled for retry",
				zap.String("job_id", job.ID.String()),
				zap.Int("retry_count", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
				zap.Duration("delay", delay),
			)
			time.AfterFunc(delay, func() { s.resubmit(job) })
		}
		return
	}

	if job.Status != SyncJobStatusSuccess {
		job.Complete(nil)
	}
	s.logger.Info("Sync job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("tenant", job.TenantKey),
		zap.Int("media_count", job.MediaCount),
		zap.Bool("degraded", job.Degraded),
	)
	s.addToHistory(job)
}

func (s *SyncScheduler) resubmit(job *SyncJob) {
	if err := s.SubmitJob(job); err != nil {
		s.logger.Warn("Failed to re-queue sync job for retry",
			zap.String("job_id", job.ID.String()),
			zap.String("tenant", job.TenantKey),
			zap.Error(err),
		)
	}
}

// addToHistory records a finished attempt, newest first
func (s *SyncScheduler) addToHistory(job *SyncJob) {
	snapshot := *job

	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*SyncJob{&snapshot}, s.history...)
	if len(s.history) > s.config.MaxHistory {
		s.history = s.history[:s.config.MaxHistory]
	}
}

// GetJobHistory returns recent job history
func (s *SyncScheduler) GetJobHistory(limit int) []*SyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}

	result := make([]*SyncJob, limit)
	copy(result, s.history[:limit])
	return result
}

// GetJobHistoryByTenant returns job history for a specific tenant
func (s *SyncScheduler) GetJobHistoryByTenant(tenantKey string, limit int) []*SyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	result := make([]*SyncJob, 0, limit)
	for _, job := range s.history {
		if job.TenantKey == tenantKey {
			result = append(result, job)
			if len(result) >= limit {
				break
			}
		}
	}
	return result
}
