package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	handled := make(chan Job, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		handled <- job
		return nil
	}, QueueConfig{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "test"}))
	select {
	case job := <-handled:
		assert.Equal(t, "j1", job.ID)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("job was never handled")
	}
}

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	require.Error(t, q.Enqueue(Job{ID: "j1"}))
}

func TestQueueRetriesTransientFailure(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	succeeded := make(chan struct{})

	q := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		close(succeeded)
		return nil
	}, QueueConfig{Workers: 1})
	q.retryDelay = time.Millisecond

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "test"}))
	select {
	case <-succeeded:
	case <-time.After(2 * time.Second):
		t.Fatal("job was never retried")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}
