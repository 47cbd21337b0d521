package analysis

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

type Job interface {
	Execute(ctx context.Context) error
}

// WorkerPool bounds how many analysis chains run at once. Group runs
// coming off the stream all go through here.
type WorkerPool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewWorkerPool sizes the pool from configuration rather than CPU
// count: analysis jobs spend their time waiting on the engine, not
// computing.
func NewWorkerPool(ctx context.Context, size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	log.Info().
		Int("workers", size).
		Msg("Analysis worker pool initialized")
	poolCtx, cancel := context.WithCancel(ctx)

	pool := &WorkerPool{
		workers:  size,
		jobQueue: make(chan Job, size*2), // Buffer 2x the worker count
		ctx:      poolCtx,
		cancel:   cancel,
	}

	pool.start()

	return pool
}

// starts all worker goroutines
func (p *WorkerPool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker goroutine that processes jobs
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return // Channel closed
			}
			if err := job.Execute(p.ctx); err != nil {
				log.Error().Err(err).Msg("Worker failed to execute analysis job")
			}
		}
	}
}

// Submit enqueues a job, blocking when the queue is full
func (p *WorkerPool) Submit(job Job) error {
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.jobQueue <- job:
		return nil
	}
}

// Close shuts the pool down and waits for in-flight jobs
func (p *WorkerPool) Close() {
	close(p.jobQueue)
	p.cancel()
	p.wg.Wait()
}

// Size returns the number of workers
func (p *WorkerPool) Size() int {
	return p.workers
}
