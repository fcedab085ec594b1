package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Neutralizer/BookManipulator/internal/tasks"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks that schedule is a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// NextRunTime returns the first activation of schedule after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// TaskQueue accepts background tasks. *tasks.Client satisfies it through
// the adapter returned by QueueFor.
type TaskQueue interface {
	Enqueue(task tasks.CleanupAuditEventsTask) error
}

type clientQueue struct {
	client *tasks.Client
}

func (q clientQueue) Enqueue(task tasks.CleanupAuditEventsTask) error {
	_, err := q.client.Add(task).Save()
	return err
}

// QueueFor adapts a task client. A nil client yields a nil queue, which makes
// the scheduler run cleanups inline.
func QueueFor(client *tasks.Client) TaskQueue {
	if client == nil {
		return nil
	}
	return clientQueue{client: client}
}

// AuditCleanupScheduler periodically purges audit events past retention.
// With a queue the cleanup is enqueued as a background task, otherwise it
// runs on the cron goroutine.
type AuditCleanupScheduler struct {
	schedule      string
	retentionDays int
	queue         TaskQueue
	cleaner       tasks.AuditEventCleaner
	logger        *zap.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewAuditCleanupScheduler(schedule string, retentionDays int, queue TaskQueue, cleaner tasks.AuditEventCleaner, logger *zap.Logger) *AuditCleanupScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditCleanupScheduler{
		schedule:      schedule,
		retentionDays: retentionDays,
		queue:         queue,
		cleaner:       cleaner,
		logger:        logger.Named("scheduler"),
		cron:          cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the cleanup job and starts the cron loop. The scheduler
// stops on its own once ctx is cancelled.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunNow(context.Background()); err != nil {
			s.logger.Error("audit cleanup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(s.schedule, time.Now())
	s.logger.Info("audit cleanup scheduler started",
		zap.String("schedule", s.schedule),
		zap.Int("retention_days", s.retentionDays),
		zap.Time("next_run", next),
	)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and halts the scheduler.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	s.logger.Info("audit cleanup scheduler stopped")
}

// RunNow performs one cleanup cycle immediately.
func (s *AuditCleanupScheduler) RunNow(ctx context.Context) error {
	task := tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays}

	if s.queue != nil {
		if err := s.queue.Enqueue(task); err != nil {
			return fmt.Errorf("enqueue audit cleanup: %w", err)
		}
		s.logger.Debug("audit cleanup enqueued")
		return nil
	}

	return tasks.CleanupAuditEventsProcessor(s.cleaner, s.logger)(ctx, task)
}

func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next cleanup will occur, or nil when stopped.
func (s *AuditCleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}
