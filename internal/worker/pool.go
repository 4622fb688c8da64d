package worker

import (
	"sync"

	"github.com/atmchallenge/atm-backend/internal/metrics"
)

type task func()

// Pool runs advisory work (audit writes) off the request path. Jobs are not
// part of any transaction; a dropped job loses an audit line, never money.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan task

	mu     sync.Mutex
	closed bool
}

func NewPool(n int) *Pool {
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
				metrics.WorkerQueueDepth.Dec()
			}
		}()
	}
	return p
}

// Submit never blocks the caller. When the queue is full or the pool has been
// stopped the job is dropped and counted.
func (p *Pool) Submit(f task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		metrics.WorkerDroppedTotal.Inc()
		return
	}
	select {
	case p.jobs <- f:
		metrics.WorkerQueueDepth.Inc()
	default:
		metrics.WorkerDroppedTotal.Inc()
	}
}

// Stop drains queued jobs and waits for the workers. Safe to call more than
// once and safe against submits racing shutdown.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
