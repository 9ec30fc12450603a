package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
)

// MaxRetryDelay caps the exponential retry backoff
const MaxRetryDelay = 30 * time.Minute

// ---------------------------------------------------------------------------
// Sync Job
// ---------------------------------------------------------------------------

// SyncJobStatus represents the status of a sync job
type SyncJobStatus string

const (
	SyncJobStatusPending SyncJobStatus = "PENDING"
	SyncJobStatusRunning SyncJobStatus = "RUNNING"
	SyncJobStatusSuccess SyncJobStatus = "SUCCESS"
	SyncJobStatusFailed  SyncJobStatus = "FAILED"
)

// SyncJob is one queued feed sync for a tenant
type SyncJob struct {
	ID          uuid.UUID
	TenantKey   string
	Reason      string
	Status      SyncJobStatus
	Error       string
	Permanent   bool
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time

	MediaCount int
	Degraded   bool
}

// NewSyncJob creates a pending job
func NewSyncJob(tenantKey, reason string, maxRetries int) *SyncJob {
	return &SyncJob{
		ID:         uuid.New(),
		TenantKey:  tenantKey,
		Reason:     reason,
		Status:     SyncJobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *SyncJob) Start() {
	now := time.Now()
	j.Status = SyncJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *SyncJob) Complete(result *integration.SyncResult) {
	now := time.Now()
	j.Status = SyncJobStatusSuccess
	j.CompletedAt = &now
	if result != nil {
		j.MediaCount = result.MediaCount
		j.Degraded = result.Degraded
	}
}

// Fail marks the job as failed. Permanent failures are never retried.
func (j *SyncJob) Fail(err error) {
	now := time.Now()
	j.Status = SyncJobStatusFailed
	j.CompletedAt = &now
	j.Error = err.Error()
	j.Permanent = isPermanent(err)
}

// ShouldRetry returns true if the job should be retried
func (j *SyncJob) ShouldRetry() bool {
	return j.Status == SyncJobStatusFailed && !j.Permanent && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff and
// returns the delay
func (j *SyncJob) ScheduleRetry(baseDelay time.Duration) time.Duration {
	j.RetryCount++
	j.Status = SyncJobStatusPending
	delay := RetryDelay(baseDelay, j.RetryCount)
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
	return delay
}

// RetryDelay returns baseDelay * 2^(attempt-1), capped at MaxRetryDelay
func RetryDelay(baseDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= MaxRetryDelay {
			return MaxRetryDelay
		}
	}
	if delay > MaxRetryDelay {
		return MaxRetryDelay
	}
	return delay
}

// isPermanent reports errors a retry cannot fix
func isPermanent(err error) bool {
	return errors.Is(err, integration.ErrAccountNotFound) ||
		errors.Is(err, integration.ErrInvalidTenantKey) ||
		errors.Is(err, integration.ErrConfigMissing)
}

// ---------------------------------------------------------------------------
// Executor
// ---------------------------------------------------------------------------

// SyncRunner runs one sync for a tenant
type SyncRunner interface {
	Sync(ctx context.Context, tenantKey string) (*integration.SyncResult, error)
}

// SyncExecutor executes sync jobs
type SyncExecutor interface {
	Execute(ctx context.Context, job *SyncJob) error
}

// runnerExecutor adapts a SyncRunner to SyncExecutor
type runnerExecutor struct {
	runner SyncRunner
}

// NewSyncExecutor creates an executor that runs jobs through runner
func NewSyncExecutor(runner SyncRunner) SyncExecutor {
	return &runnerExecutor{runner: runner}
}

func (e *runnerExecutor) Execute(ctx context.Context, job *SyncJob) error {
	result, err := e.runner.Sync(ctx, job.TenantKey)
	if err != nil {
		return err
	}
	job.Complete(result)
	return nil
}
