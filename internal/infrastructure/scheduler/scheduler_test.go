package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

// mockJobExecutor implements JobExecutor for testing
type mockJobExecutor struct {
	executeFunc func(ctx context.Context, job *Job) error
	execCount   int32
}

func (m *mockJobExecutor) Execute(ctx context.Context, job *Job) error {
	atomic.AddInt32(&m.execCount, 1)
	if m.executeFunc != nil {
		return m.executeFunc(ctx, job)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Job Tests
// ---------------------------------------------------------------------------

func TestNewJob(t *testing.T) {
	asOf := time.Now()

	job := NewJob(TaskGenerateObligations, 2026, time.March, asOf, 3)

	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, TaskGenerateObligations, job.TaskType)
	assert.Equal(t, 2026, job.PeriodYear)
	assert.Equal(t, time.March, job.PeriodMonth)
	assert.Equal(t, asOf, job.AsOf)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 3, job.MaxRetries)
	assert.Nil(t, job.StartedAt)
	assert.Nil(t, job.CompletedAt)
}

func TestJob_Start(t *testing.T) {
	job := NewJob(TaskPromoteOverdue, 2026, time.March, time.Now(), 3)
	job.Error = "previous error"

	job.Start()

	assert.Equal(t, JobStatusRunning, job.Status)
	assert.NotNil(t, job.StartedAt)
	assert.Empty(t, job.Error)
}

func TestJob_Complete(t *testing.T) {
	job := NewJob(TaskPromoteOverdue, 2026, time.March, time.Now(), 3)
	job.Start()

	job.Complete()

	assert.Equal(t, JobStatusSuccess, job.Status)
	assert.NotNil(t, job.CompletedAt)
}

func TestJob_Fail(t *testing.T) {
	job := NewJob(TaskMergeUtilities, 2026, time.March, time.Now(), 3)
	job.Start()

	job.Fail("database unavailable")

	assert.Equal(t, JobStatusFailed, job.Status)
	assert.NotNil(t, job.CompletedAt)
	assert.Equal(t, "database unavailable", job.Error)
}

func TestJob_ShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		status     JobStatus
		retryCount int
		maxRetries int
		expected   bool
	}{
		{"Failed with retries available", JobStatusFailed, 0, 3, true},
		{"Failed max retries reached", JobStatusFailed, 3, 3, false},
		{"Success should not retry", JobStatusSuccess, 0, 3, false},
		{"Running should not retry", JobStatusRunning, 0, 3, false},
		{"Pending should not retry", JobStatusPending, 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &Job{
				Status:     tt.status,
				RetryCount: tt.retryCount,
				MaxRetries: tt.maxRetries,
			}
			assert.Equal(t, tt.expected, job.ShouldRetry())
		})
	}
}

func TestJob_ScheduleRetry(t *testing.T) {
	job := NewJob(TaskGenerateObligations, 2026, time.March, time.Now(), 3)
	job.Status = JobStatusFailed
	job.Error = "transient failure"

	job.ScheduleRetry(time.Minute)

	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Empty(t, job.Error)
	require.NotNil(t, job.NextRetryAt)
	delay := time.Until(*job.NextRetryAt)
	assert.True(t, delay > 50*time.Second && delay <= time.Minute+time.Second)
}

func TestAllBillingTaskTypes(t *testing.T) {
	types := AllBillingTaskTypes()

	require.Len(t, types, 3)
	assert.Contains(t, types, TaskGenerateObligations)
	assert.Contains(t, types, TaskPromoteOverdue)
	assert.Contains(t, types, TaskMergeUtilities)
}

// ---------------------------------------------------------------------------
// Scheduler Tests
// ---------------------------------------------------------------------------

func TestDefaultSchedulerConfig(t *testing.T) {
	cfg := DefaultSchedulerConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1, cfg.MaxConcurrentJobs)
	assert.Equal(t, 30*time.Minute, cfg.JobTimeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 5*time.Minute, cfg.RetryDelay)
}

func TestScheduler_StartStop(t *testing.T) {
	executor := &mockJobExecutor{}
	scheduler := NewScheduler(DefaultSchedulerConfig(), executor, newTestLogger())

	ctx := context.Background()

	err := scheduler.Start(ctx)
	require.NoError(t, err)

	// Start again should be idempotent
	err = scheduler.Start(ctx)
	require.NoError(t, err)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = scheduler.Stop(stopCtx)
	require.NoError(t, err)

	// Stop again should be idempotent
	err = scheduler.Stop(stopCtx)
	require.NoError(t, err)
}

func TestScheduler_SubmitJob_NotRunning(t *testing.T) {
	executor := &mockJobExecutor{}
	scheduler := NewScheduler(DefaultSchedulerConfig(), executor, newTestLogger())

	job := NewJob(TaskPromoteOverdue, 2026, time.March, time.Now(), 3)
	err := scheduler.SubmitJob(job)

	assert.Equal(t, ErrSchedulerNotRunning, err)
}

func TestScheduler_SubmitJob_Success(t *testing.T) {
	executor := &mockJobExecutor{}
	scheduler := NewScheduler(DefaultSchedulerConfig(), executor, newTestLogger())

	ctx := context.Background()
	err := scheduler.Start(ctx)
	require.NoError(t, err)

	job := NewJob(TaskPromoteOverdue, 2026, time.March, time.Now(), 3)
	err = scheduler.SubmitJob(job)
	require.NoError(t, err)

	// Wait for job to be processed
	time.Sleep(100 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = scheduler.Stop(stopCtx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&executor.execCount))
	assert.Equal(t, JobStatusSuccess, job.Status)
}

func TestScheduler_JobRetry(t *testing.T) {
	config := DefaultSchedulerConfig()
	config.RetryDelay = 10 * time.Millisecond // Short delay for test
	config.JobTimeout = time.Minute

	callCount := int32(0)
	executor := &mockJobExecutor{
		executeFunc: func(ctx context.Context, job *Job) error {
			count := atomic.AddInt32(&callCount, 1)
			if count < 3 {
				return errors.New("temporary failure")
			}
			return nil
		},
	}

	scheduler := NewScheduler(config, executor, newTestLogger())

	ctx := context.Background()
	err := scheduler.Start(ctx)
	require.NoError(t, err)

	job := NewJob(TaskMergeUtilities, 2026, time.March, time.Now(), 5)
	err = scheduler.SubmitJob(job)
	require.NoError(t, err)

	// Wait for retries
	time.Sleep(500 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = scheduler.Stop(stopCtx)
	require.NoError(t, err)

	// Should have been called 3 times (2 failures + 1 success)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&callCount), int32(3))
}

func TestScheduler_ScheduleTask(t *testing.T) {
	executor := &mockJobExecutor{}
	scheduler := NewScheduler(DefaultSchedulerConfig(), executor, newTestLogger())

	ctx := context.Background()
	err := scheduler.Start(ctx)
	require.NoError(t, err)

	err = scheduler.ScheduleTask(TaskGenerateObligations, 2026, time.April, time.Now())
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = scheduler.Stop(stopCtx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&executor.execCount))
}

// ---------------------------------------------------------------------------
// Error Tests
// ---------------------------------------------------------------------------

func TestErrors(t *testing.T) {
	// Ensure all error variables are defined
	assert.NotNil(t, ErrSchedulerNotRunning)
	assert.NotNil(t, ErrJobQueueFull)
	assert.NotNil(t, ErrInvalidTaskType)
	assert.NotNil(t, ErrInvalidConfig)
}
