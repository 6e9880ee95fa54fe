// Package worker provides the background job infrastructure: a bounded
// in-process job queue with a worker pool, a keyed mutex for serializing
// writes per user, and a cron scheduler wrapper.
//
// Jobs are fire-and-forget from the caller's point of view: failures are
// logged with the job's correlation id and never propagated back to the
// HTTP request that enqueued them.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// jobTimeout bounds a single job execution.
const jobTimeout = 2 * time.Minute

// Job is one unit of background work.
type Job interface {
	// ID is the correlation id used in log lines.
	ID() string
	// Name describes the job kind for logging.
	Name() string
	// Run executes the job. Errors are logged by the queue, not returned
	// to the enqueuer.
	Run(ctx context.Context) error
}

// FuncJob adapts a function to the Job interface, with a generated
// correlation id.
type FuncJob struct {
	id   string
	name string
	fn   func(ctx context.Context) error
}

// NewFuncJob wraps fn as a named Job with a fresh uuid correlation id.
func NewFuncJob(name string, fn func(ctx context.Context) error) FuncJob {
	return FuncJob{id: uuid.New().String(), name: name, fn: fn}
}

// ID returns the job's correlation id.
func (j FuncJob) ID() string { return j.id }

// Name returns the job kind.
func (j FuncJob) Name() string { return j.name }

// Run executes the wrapped function.
func (j FuncJob) Run(ctx context.Context) error { return j.fn(ctx) }

// Queue is a bounded in-process job queue drained by a pool of worker
// goroutines. Enqueue never blocks: when the buffer is full the job is
// dropped with a log line, trading completeness for request latency.
type Queue struct {
	jobs chan Job
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewQueue creates a queue with the given buffer size.
func NewQueue(size int) *Queue {
	return &Queue{jobs: make(chan Job, size)}
}

// Start launches the worker pool. Must be called exactly once.
func (q *Queue) Start(workers int) {
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.run()
	}
}

// Enqueue submits a job for background execution. Returns false when the
// queue is full or shut down; the caller is expected to treat that as a
// logged non-fatal condition.
func (q *Queue) Enqueue(job Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		log.Printf("job %s [%s] rejected: queue is shut down", job.Name(), job.ID())
		return false
	}

	select {
	case q.jobs <- job:
		return true
	default:
		log.Printf("job %s [%s] dropped: queue is full", job.Name(), job.ID())
		return false
	}
}

// Len reports the number of jobs waiting in the buffer.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Shutdown stops accepting jobs and waits for in-flight and queued jobs to
// drain, up to the context deadline.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Printf("worker queue shutdown timed out: %v", ctx.Err())
	}
}

func (q *Queue) run() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.execute(job)
	}
}

// execute runs one job, isolating panics and logging the outcome with the
// job's correlation id.
func (q *Queue) execute(job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("job %s [%s] panicked: %v", job.Name(), job.ID(), r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Printf("job %s [%s] failed after %s: %v", job.Name(), job.ID(), time.Since(start), err)
		return
	}
	log.Printf("job %s [%s] completed in %s", job.Name(), job.ID(), time.Since(start))
}
