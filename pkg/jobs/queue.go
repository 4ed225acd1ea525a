package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Failed jobs get a short, fixed retry budget. Roster generation marks
// its run row FAILED on engine errors and returns nil, so only transient
// failures (a dropped DB connection, mostly) ever reach this path.
const (
	maxAttempts       = 3
	defaultRetryDelay = 5 * time.Second
)

// Job is one queued unit of background work.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes one job. A non-nil error re-queues the job until its
// attempt budget runs out.
type Handler func(context.Context, Job) error

// QueueConfig sizes the worker pool.
type QueueConfig struct {
	Workers int
	Logger  *zap.Logger
}

// Queue dispatches jobs to an in-process worker pool. Jobs do not survive
// a restart; a roster run interrupted mid-flight stays PENDING and can be
// issued again.
type Queue struct {
	name    string
	handler Handler
	workers int
	logger  *zap.Logger

	// retryDelay is a field so tests can shrink the backoff.
	retryDelay time.Duration

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a queue feeding the handler. The buffer holds a few
// jobs per worker so Enqueue rarely blocks the request path.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		logger:     cfg.Logger,
		retryDelay: defaultRetryDelay,
		jobs:       make(chan Job, cfg.Workers*4),
	}
}

// Start launches the workers. Calling Start twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Sugar().Infow("job queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels the workers and waits for them to drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("job queue stopped", "queue", q.name)
}

// Enqueue hands a job to the pool, blocking while the buffer is full.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.jobs <- job:
		return nil
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.handler(q.ctx, job); err != nil {
				q.retry(job, err)
			}
		}
	}
}

func (q *Queue) retry(job Job, cause error) {
	job.Attempt++
	log := q.logger.Sugar()
	if job.Attempt >= maxAttempts {
		log.Errorw("job abandoned",
			"queue", q.name, "job_id", job.ID, "type", job.Type, "attempts", job.Attempt, "error", cause)
		return
	}
	log.Warnw("job failed, will retry",
		"queue", q.name, "job_id", job.ID, "type", job.Type, "attempt", job.Attempt, "error", cause)

	go func() {
		select {
		case <-q.ctx.Done():
		case <-time.After(q.retryDelay):
			if err := q.Enqueue(job); err != nil {
				log.Errorw("requeue failed", "queue", q.name, "job_id", job.ID, "error", err)
			}
		}
	}()
}
