package jobs

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// Job is a unit of work run on a pool worker. ctx is cancelled on Shutdown.
type Job func(ctx context.Context)

// Pool runs jobs on a fixed set of workers fed by a bounded queue.
type Pool struct {
	jobQueue chan Job
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	group    *errgroup.Group
	log      logrus.FieldLogger

	busy      atomic.Int32
	completed atomic.Uint64
	declined  atomic.Uint64
}

// NewPool starts workers goroutines sharing a queue of queueSize jobs.
func NewPool(workers, queueSize int, log logrus.FieldLogger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)

	p := &Pool{
		jobQueue: make(chan Job, queueSize),
		workers:  workers,
		ctx:      gctx,
		cancel:   cancel,
		group:    group,
		log:      log.WithField("component", "jobs"),
	}
	for i := 0; i < workers; i++ {
		id := i
		group.Go(func() error {
			p.worker(id)
			return nil
		})
	}
	return p
}

// Submit queues job without blocking.
// Returns false if the queue is full or the pool is shut down.
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		p.declined.Inc()
		return false
	}
}

// SubmitBlocking waits for queue space until ctx or the pool is done.
func (p *Pool) SubmitBlocking(ctx context.Context, job Job) error {
	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return fmt.Errorf("submit job: %w", context.Canceled)
	}
}

func (p *Pool) worker(id int) {
	for {
		select {
		case job := <-p.jobQueue:
			p.run(id, job)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) run(id int, job Job) {
	p.busy.Inc()
	defer func() {
		p.busy.Dec()
		p.completed.Inc()
		if r := recover(); r != nil {
			p.log.WithField("worker", id).Errorf("job panicked: %v", r)
		}
	}()
	job(p.ctx)
}

// Shutdown stops the workers and waits for running jobs to return.
// Queued jobs that have not started are dropped.
func (p *Pool) Shutdown() {
	p.cancel()
	_ = p.group.Wait()
}

// QueueLength returns the current number of jobs waiting in the queue.
func (p *Pool) QueueLength() int {
	return len(p.jobQueue)
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Busy returns how many workers are running a job right now.
func (p *Pool) Busy() int {
	return int(p.busy.Load())
}

// Completed returns the number of jobs that have finished, panics included.
func (p *Pool) Completed() uint64 {
	return p.completed.Load()
}

// Declined returns how many non-blocking submissions found the queue full.
func (p *Pool) Declined() uint64 {
	return p.declined.Load()
}
