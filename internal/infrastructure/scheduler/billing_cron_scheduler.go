package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cronTickerInterval is the interval at which the cron scheduler checks for execution
const cronTickerInterval = 1 * time.Minute

// BillingCronSchedulerConfig holds configuration for the cron-based billing scheduler
type BillingCronSchedulerConfig struct {
	// Enabled indicates if the cron scheduler is enabled
	Enabled bool
	// CronHour is the hour (0-23) to run the daily billing batch
	CronHour int
	// CronMinute is the minute (0-59) to run the daily billing batch
	CronMinute int
	// DailyCronSchedule is the cron expression (parsed to extract hour/minute)
	DailyCronSchedule string
	// GenerationDay is the day of month (1-28) on which rent obligations
	// for the current period are generated
	GenerationDay int
	// JobTimeout is the maximum time a single billing job can run
	JobTimeout time.Duration
	// MaxConcurrentJobs is the maximum number of concurrent billing jobs
	MaxConcurrentJobs int
	// RetryAttempts is the number of retry attempts for failed jobs
	RetryAttempts int
	// RetryDelay is the delay between retries
	RetryDelay time.Duration
}

// DefaultBillingCronSchedulerConfig returns default cron scheduler configuration.
// Defaults to running at 2:00 AM daily with obligation generation on the 1st.
func DefaultBillingCronSchedulerConfig() BillingCronSchedulerConfig {
	return BillingCronSchedulerConfig{
		Enabled:           true,
		CronHour:          2, // 2 AM
		CronMinute:        0, // 0 minutes
		DailyCronSchedule: "0 2 * * *",
		GenerationDay:     1,
		JobTimeout:        30 * time.Minute,
		MaxConcurrentJobs: 1,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

// ParseCronSchedule parses a cron expression "minute hour * * *" to extract hour and minute
// Returns defaults (2:00) if parsing fails or expression is empty
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	// Default values
	hour = 2
	minute = 0

	if cronExpr == "" {
		return hour, minute, nil
	}

	// Use strings.Fields for simple whitespace splitting
	parts := strings.Fields(cronExpr)

	if len(parts) < 2 {
		return hour, minute, nil
	}

	// Parse minute
	if parts[0] != "*" {
		if val, parseErr := parseIntOrDefault(parts[0], 0); parseErr == nil {
			minute = val
		}
	}

	// Parse hour
	if parts[1] != "*" {
		if val, parseErr := parseIntOrDefault(parts[1], 2); parseErr == nil {
			hour = val
		}
	}

	// Validate ranges
	if minute < 0 || minute > 59 {
		return 2, 0, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 2, 0, fmt.Errorf("hour must be 0-23, got %d", hour)
	}

	return hour, minute, nil
}

// parseIntOrDefault parses an int string or returns default
func parseIntOrDefault(s string, defaultVal int) (int, error) {
	if s == "" || s == "*" {
		return defaultVal, nil
	}
	var val int
	for _, c := range s {
		if c < '0' || c > '9' {
			return defaultVal, ErrInvalidConfig
		}
		val = val*10 + int(c-'0')
	}
	return val, nil
}

// SchedulerJobRecord represents a record of a scheduled job execution
type SchedulerJobRecord struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	TaskType    string     `gorm:"column:task_type;size:50;not null"`
	PeriodYear  int        `gorm:"column:period_year"`
	PeriodMonth int        `gorm:"column:period_month"`
	Status      string     `gorm:"column:last_run_status;size:20"`
	Error       string     `gorm:"column:last_error;type:text"`
	StartedAt   *time.Time `gorm:"column:last_run_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	NextRunAt   *time.Time `gorm:"column:next_run_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (SchedulerJobRecord) TableName() string {
	return "billing_scheduler_jobs"
}

// SchedulerJobRepository handles persistence of scheduler job records
type SchedulerJobRepository struct {
	db *gorm.DB
}

// NewSchedulerJobRepository creates a new SchedulerJobRepository
func NewSchedulerJobRepository(db *gorm.DB) *SchedulerJobRepository {
	return &SchedulerJobRepository{db: db}
}

// RecordJobStart records the start of a job execution
func (r *SchedulerJobRepository) RecordJobStart(ctx context.Context, job *Job) (uuid.UUID, error) {
	now := time.Now()
	record := &SchedulerJobRecord{
		ID:          uuid.New(),
		TaskType:    string(job.TaskType),
		PeriodYear:  job.PeriodYear,
		PeriodMonth: int(job.PeriodMonth),
		Status:      string(JobStatusRunning),
		StartedAt:   &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return uuid.Nil, err
	}
	return record.ID, nil
}

// RecordJobComplete records the completion of a job
func (r *SchedulerJobRepository) RecordJobComplete(ctx context.Context, recordID uuid.UUID, success bool, errMsg string) error {
	now := time.Now()
	status := string(JobStatusSuccess)
	if !success {
		status = string(JobStatusFailed)
	}
	return r.db.WithContext(ctx).
		Model(&SchedulerJobRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]any{
			"last_run_status": status,
			"last_error":      errMsg,
			"completed_at":    now,
			"updated_at":      now,
		}).Error
}

// GetLastJobStatus gets the last job record for a task type
func (r *SchedulerJobRepository) GetLastJobStatus(ctx context.Context, taskType string) (*SchedulerJobRecord, error) {
	var record SchedulerJobRecord
	if err := r.db.WithContext(ctx).
		Where("task_type = ?", taskType).
		Order("last_run_at DESC").
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// recordingExecutor wraps a JobExecutor so every attempt leaves a job record.
// Record failures are logged and never fail the billing run itself.
type recordingExecutor struct {
	inner   JobExecutor
	jobRepo *SchedulerJobRepository
	logger  *zap.Logger
}

// Execute implements JobExecutor
func (e *recordingExecutor) Execute(ctx context.Context, job *Job) error {
	var recordID uuid.UUID
	if e.jobRepo != nil {
		var err error
		recordID, err = e.jobRepo.RecordJobStart(ctx, job)
		if err != nil {
			e.logger.Warn("Failed to record job start",
				zap.String("job_id", job.ID.String()),
				zap.String("task_type", string(job.TaskType)),
				zap.Error(err),
			)
		}
	}

	execErr := e.inner.Execute(ctx, job)

	if e.jobRepo != nil && recordID != uuid.Nil {
		errMsg := ""
		if execErr != nil {
			errMsg = execErr.Error()
		}
		if err := e.jobRepo.RecordJobComplete(ctx, recordID, execErr == nil, errMsg); err != nil {
			e.logger.Warn("Failed to record job completion",
				zap.String("job_id", job.ID.String()),
				zap.String("task_type", string(job.TaskType)),
				zap.Error(err),
			)
		}
	}

	return execErr
}

// BillingCronScheduler implements cron-based scheduling for the billing batches:
// monthly rent obligation generation, daily overdue promotion and daily
// utility billing merge
type BillingCronScheduler struct {
	config    BillingCronSchedulerConfig
	executor  JobExecutor
	jobRepo   *SchedulerJobRepository
	logger    *zap.Logger
	scheduler *Scheduler

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Last execution tracking
	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewBillingCronScheduler creates a new cron-based billing scheduler
func NewBillingCronScheduler(
	config BillingCronSchedulerConfig,
	executor JobExecutor,
	jobRepo *SchedulerJobRepository,
	logger *zap.Logger,
) *BillingCronScheduler {
	recording := &recordingExecutor{
		inner:   executor,
		jobRepo: jobRepo,
		logger:  logger,
	}
	schedulerConfig := SchedulerConfig{
		Enabled:           config.Enabled,
		MaxConcurrentJobs: config.MaxConcurrentJobs,
		JobTimeout:        config.JobTimeout,
		RetryAttempts:     config.RetryAttempts,
		RetryDelay:        config.RetryDelay,
	}
	scheduler := NewScheduler(schedulerConfig, recording, logger)

	return &BillingCronScheduler{
		config:    config,
		executor:  executor,
		jobRepo:   jobRepo,
		logger:    logger,
		scheduler: scheduler,
	}
}

// Start starts the cron scheduler
func (s *BillingCronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	// Start the underlying job scheduler
	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	// Calculate next run time
	s.calculateNextRunTime()

	// Start the cron ticker
	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Billing cron scheduler started",
		zap.Int("cron_hour", s.config.CronHour),
		zap.Int("cron_minute", s.config.CronMinute),
		zap.Int("generation_day", s.config.GenerationDay),
		zap.Timep("next_run_at", s.nextRunAt),
	)

	return nil
}

// Stop stops the cron scheduler
func (s *BillingCronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	// Cancel the cron loop
	if s.cancel != nil {
		s.cancel()
	}

	// Wait for cron loop to finish
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		// Now stop the underlying scheduler
		if err := s.scheduler.Stop(ctx); err != nil {
			s.logger.Warn("Error stopping underlying scheduler", zap.Error(err))
		}
		s.logger.Info("Billing cron scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Billing cron scheduler stop timed out")
		return ctx.Err()
	}
}

// cronLoop runs the main cron loop
func (s *BillingCronScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	// Use a ticker that checks every minute for cron execution
	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.runDailyBatch(ctx, now)
				s.calculateNextRunTime()
			}
		}
	}
}

// shouldRun checks if the cron should run at the given time
func (s *BillingCronScheduler) shouldRun(now time.Time) bool {
	return now.Hour() == s.config.CronHour && now.Minute() == s.config.CronMinute
}

// isGenerationDay reports whether obligations should be generated at the
// given time. The configured day is clamped to the last day of short months.
func (s *BillingCronScheduler) isGenerationDay(now time.Time) bool {
	day := s.config.GenerationDay
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return now.Day() == day
}

// calculateNextRunTime calculates the next run time
func (s *BillingCronScheduler) calculateNextRunTime() {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.CronHour, s.config.CronMinute, 0, 0, now.Location())

	// If we've already passed today's run time, schedule for tomorrow
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// runDailyBatch submits the billing jobs for the current day. Obligation
// generation is submitted first on the configured day of month so that the
// utility merge finds the fresh obligations; jobs run in submission order.
func (s *BillingCronScheduler) runDailyBatch(ctx context.Context, now time.Time) {
	s.logger.Info("Starting daily billing batch")

	runAt := time.Now()
	s.mu.Lock()
	s.lastRunAt = &runAt
	s.mu.Unlock()

	year, month := now.Year(), now.Month()

	taskTypes := make([]BillingTaskType, 0, 3)
	if s.isGenerationDay(now) {
		taskTypes = append(taskTypes, TaskGenerateObligations)
	}
	taskTypes = append(taskTypes, TaskPromoteOverdue, TaskMergeUtilities)

	for _, taskType := range taskTypes {
		job := NewJob(taskType, year, month, now, s.config.RetryAttempts)
		if err := s.scheduler.SubmitJob(job); err != nil {
			s.logger.Error("Failed to submit billing job",
				zap.String("task_type", string(taskType)),
				zap.Error(err),
			)
			continue
		}

		s.logger.Debug("Scheduled billing job",
			zap.String("task_type", string(taskType)),
			zap.Int("period_year", year),
			zap.Int("period_month", int(month)),
		)
	}

	s.logger.Info("Daily billing batch jobs scheduled",
		zap.Int("jobs", len(taskTypes)),
		zap.Bool("generation_day", s.isGenerationDay(now)),
	)
}

// TriggerManualRun triggers a manual run of the daily billing batch
// Note: Uses background context to avoid premature cancellation when HTTP request completes
func (s *BillingCronScheduler) TriggerManualRun(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	// Use background context to prevent premature cancellation when HTTP request completes
	go s.runDailyBatch(context.Background(), time.Now())
	return nil
}

// TriggerTask triggers a single billing task for a specific period
func (s *BillingCronScheduler) TriggerTask(ctx context.Context, taskType BillingTaskType, year int, month time.Month) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	valid := false
	for _, t := range AllBillingTaskTypes() {
		if t == taskType {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidTaskType
	}

	return s.scheduler.ScheduleTask(taskType, year, month, time.Now())
}

// GetStatus returns the current status of the cron scheduler
func (s *BillingCronScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":        s.config.Enabled,
		"is_running":     s.isRunning,
		"cron_hour":      s.config.CronHour,
		"cron_minute":    s.config.CronMinute,
		"generation_day": s.config.GenerationDay,
		"cron_schedule":  "Daily",
		"last_run_at":    s.lastRunAt,
		"next_run_at":    s.nextRunAt,
		"task_types":     AllBillingTaskTypes(),
	}
}

// GetNextRunAt returns when the next scheduled run will occur
func (s *BillingCronScheduler) GetNextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}

// GetLastRunAt returns when the last run occurred
func (s *BillingCronScheduler) GetLastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}
