// Package worker provides the concurrency plumbing shared by batch
// parsing and the outbound HTTP callers: a fixed-size job pool and a
// per-host rate limiter.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of work.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is a job's outcome.
type Result interface {
	Err() error
}

// Pool runs jobs on a fixed set of workers. Jobs observe the pool's
// context, which is cancelled by Shutdown or by the parent context.
type Pool struct {
	workers   int
	jobs      chan Job
	results   chan Result
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool of the given size. Sizes below 1 run a single
// worker.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers*2),
		results: make(chan Result, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. After shutdown it returns without queueing.
// Submit must not be called after Close.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Close marks the queue complete. Workers exit once they drain it.
func (p *Pool) Close() {
	close(p.jobs)
}

// Wait drains every outcome and returns them. It returns once the
// queue has been closed and the workers have finished, or once the
// pool's context ends. Wait may run concurrently with Submit, which
// is how a caller keeps a queue bigger than the channel buffers
// moving.
func (p *Pool) Wait() []Result {
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var results []Result
	for result := range p.results {
		results = append(results, result)
	}
	return results
}

// Shutdown cancels the pool immediately and waits for the workers to
// exit. Queued jobs are abandoned.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
