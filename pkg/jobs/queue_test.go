package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsJobs(t *testing.T) {
	done := make(chan string, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		done <- job.Payload.(string)
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	id, err := q.Enqueue(Job{Type: "snapshot", Payload: "daily"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case got := <-done:
		assert.Equal(t, "daily", got)
	case <-time.After(2 * time.Second):
		t.Fatal("job not processed")
	}
}

func TestQueueRetriesThenGivesUp(t *testing.T) {
	var attempts int32
	exhausted := make(chan Job, 1)
	q := NewQueue("retry", func(context.Context, Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("db down")
	}, QueueConfig{
		MaxRetries:  2,
		RetryDelay:  5 * time.Millisecond,
		OnExhausted: func(j Job, _ error) { exhausted <- j },
	})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(Job{Type: "snapshot"})
	require.NoError(t, err)

	select {
	case job := <-exhausted:
		assert.Equal(t, 3, job.Attempt)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	case <-time.After(2 * time.Second):
		t.Fatal("job never exhausted")
	}
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	_, err := q.Enqueue(Job{Type: "snapshot"})
	assert.Error(t, err)
}
