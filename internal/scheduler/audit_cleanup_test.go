package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neutralizer/BookManipulator/internal/tasks"
)

type recordingCleaner struct {
	mu         sync.Mutex
	retentions []time.Duration
}

func (c *recordingCleaner) DeleteOldEvents(retention time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retentions = append(c.retentions, retention)
	return 1, nil
}

type recordingQueue struct {
	tasks []tasks.CleanupAuditEventsTask
	err   error
}

func (q *recordingQueue) Enqueue(task tasks.CleanupAuditEventsTask) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("not a schedule"))
	assert.Error(t, ValidateSchedule("0 0 3 * * *"), "six fields are not accepted")
}

func TestNextRunTime(t *testing.T) {
	from := time.Date(2024, 5, 1, 1, 30, 0, 0, time.UTC)

	next, err := NextRunTime("0 3 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC), next)

	_, err = NextRunTime("bogus", from)
	assert.Error(t, err)
}

func TestRunNow_Inline(t *testing.T) {
	cleaner := &recordingCleaner{}
	s := NewAuditCleanupScheduler("0 3 * * *", 10, nil, cleaner, nil)

	require.NoError(t, s.RunNow(context.Background()))
	require.Len(t, cleaner.retentions, 1)
	assert.Equal(t, 10*24*time.Hour, cleaner.retentions[0])
}

func TestRunNow_Enqueues(t *testing.T) {
	cleaner := &recordingCleaner{}
	queue := &recordingQueue{}
	s := NewAuditCleanupScheduler("0 3 * * *", 7, queue, cleaner, nil)

	require.NoError(t, s.RunNow(context.Background()))
	require.Len(t, queue.tasks, 1)
	assert.Equal(t, 7, queue.tasks[0].RetentionDays)
	assert.Empty(t, cleaner.retentions, "cleanup runs through the queue, not inline")
}

func TestRunNow_EnqueueError(t *testing.T) {
	queue := &recordingQueue{err: errors.New("queue closed")}
	s := NewAuditCleanupScheduler("0 3 * * *", 7, queue, nil, nil)

	err := s.RunNow(context.Background())
	assert.ErrorContains(t, err, "queue closed")
}

func TestQueueFor_NilClient(t *testing.T) {
	assert.Nil(t, QueueFor(nil))
}

func TestStartStop(t *testing.T) {
	s := NewAuditCleanupScheduler("0 3 * * *", 30, nil, &recordingCleaner{}, nil)

	assert.Nil(t, s.GetNextRunTime())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NoError(t, s.Start(context.Background()), "second start is a no-op")

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := NewAuditCleanupScheduler("every day", 30, nil, &recordingCleaner{}, nil)

	err := s.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	s := NewAuditCleanupScheduler("0 3 * * *", 30, nil, &recordingCleaner{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}
