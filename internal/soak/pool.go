package soak

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"modelbins/internal/config"
)

// Job is one soak run request.
type Job struct {
	Settings config.SoakSettings
	// Result channel - will be sent the outcome when done
	ResultChan chan<- JobResult
}

// JobResult is the outcome of a Job.
type JobResult struct {
	Result
	Err error
}

// WorkerPool runs independent soak runs on a fixed set of goroutines. Each
// run owns its registry and manager, so runs share nothing but the global
// settings and profiling counters.
type WorkerPool struct {
	jobQueue chan Job
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWorkerPool starts workers goroutines. Cancelling ctx stops runs early.
func NewWorkerPool(ctx context.Context, workers, queueSize int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	pool := &WorkerPool{
		jobQueue: make(chan Job, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}
	return pool
}

// SubmitJob queues a job without blocking. It returns false when the
// queue is full.
func (p *WorkerPool) SubmitJob(job Job) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// SubmitJobBlocking queues a job, giving up once the pool is cancelled.
func (p *WorkerPool) SubmitJobBlocking(job Job) bool {
	select {
	case p.jobQueue <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

func (p *WorkerPool) worker(_ int) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			res, err := Run(p.ctx, job.Settings)
			job.ResultChan <- JobResult{Result: res, Err: err}

		case <-p.ctx.Done():
			return
		}
	}
}

// Close waits for queued jobs to finish and stops the workers.
func (p *WorkerPool) Close() {
	close(p.jobQueue)
	p.wg.Wait()
	p.cancel()
}

// GetQueueLength returns the current number of jobs in the queue
func (p *WorkerPool) GetQueueLength() int {
	return len(p.jobQueue)
}

// RunSeeds runs one soak per seed, starting at s.Seed, on workers
// goroutines. Results come back in seed order. When ctx is cancelled the
// runs that finished or stopped early are still returned.
func RunSeeds(ctx context.Context, s config.SoakSettings, seeds, workers int) ([]Result, error) {
	pool := NewWorkerPool(ctx, workers, seeds)
	results := make(chan JobResult, seeds)
	for i := 0; i < seeds; i++ {
		js := s
		js.Seed = s.Seed + int64(i)
		if !pool.SubmitJobBlocking(Job{Settings: js, ResultChan: results}) {
			break
		}
	}
	pool.Close()
	close(results)

	out := make([]Result, 0, seeds)
	for jr := range results {
		if jr.Err != nil {
			return nil, jr.Err
		}
		out = append(out, jr.Result)
	}
	slices.SortFunc(out, func(a, b Result) int { return cmp.Compare(a.Seed, b.Seed) })
	return out, nil
}
