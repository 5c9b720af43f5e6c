// Package worker scores queued race results.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/prixsix/internal/adapters/mq/queue"
	"github.com/okian/prixsix/pkg/logger"
	"github.com/okian/prixsix/pkg/metrics"
)

// Job abstracts what workers read off the queue.
type Job = queue.Job

// Processor handles one job. Errors are logged and counted, never retried.
type Processor interface {
	Process(ctx context.Context, job Job) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, job Job) error

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, job Job) error {
	return f(ctx, job)
}

// Source defines how workers receive jobs.
type Source interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until its source closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the source drains.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining its source.
	Shutdown(ctx context.Context) error
}

// Stats counts processed jobs.
type Stats struct {
	Processed int64
	Failed    int64
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	source    Source
	processor Processor
	name      string
	logger    logger.Logger

	processed atomic.Int64
	failed    atomic.Int64
	onBusy    func(delta int)

	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(source Source, processor Processor, opts ...Option) *InMemoryWorker {
	s := apply("worker", opts)
	return &InMemoryWorker{
		source:    source,
		processor: processor,
		name:      s.name,
		logger:    s.logger.Named(s.name),
		onBusy:    func(int) {},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "job failed",
					logger.String("job_id", job.ID),
					logger.String("race_id", job.Result.RaceID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Stats returns the worker's counters.
func (w *InMemoryWorker) Stats() Stats {
	return Stats{Processed: w.processed.Load(), Failed: w.failed.Load()}
}

func (w *InMemoryWorker) process(ctx context.Context, job Job) error {
	w.onBusy(1)
	defer w.onBusy(-1)

	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.processor.Process(ctx, job); err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "process_error")
		return fmt.Errorf("process job %s: %w", job.ID, err)
	}
	w.processed.Add(1)
	w.logger.Debug(ctx, "job processed",
		logger.String("job_id", job.ID),
		logger.Duration("queued_for", start.Sub(job.EnqueuedAt)),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   queue.Queue
	busy    atomic.Int64
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one means
// one worker per CPU.
func NewPool(workerCount int, q queue.Queue, processor Processor, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	s := apply("worker", opts)

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  s.logger.Named("worker-pool"),
	}
	for i := range p.workers {
		w := NewInMemoryWorker(q, processor,
			WithName(s.name+"-"+strconv.Itoa(i)),
			WithLogger(s.logger),
		)
		w.onBusy = p.track
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)

	return p
}

func (p *Pool) track(delta int) {
	active := int(p.busy.Add(int64(delta)))
	metrics.UpdateWorkerActiveCount(active)
	metrics.UpdateWorkerIdleCount(len(p.workers) - active)
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stats sums the counters of every worker.
func (p *Pool) Stats() Stats {
	var total Stats
	for _, w := range p.workers {
		s := w.Stats()
		total.Processed += s.Processed
		total.Failed += s.Failed
	}
	return total
}

// Shutdown closes the queue and waits for the workers to drain it. When ctx
// expires first the workers are stopped and pending jobs are abandoned.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker drain timed out",
				logger.Int("worker_id", i),
				logger.Int("pending", p.queue.Len(ctx)),
			)
			for _, w := range p.workers {
				w.stopOnce.Do(func() { close(w.shutdown) })
			}
			return fmt.Errorf("drain workers: %w", ctx.Err())
		}
	}
	return nil
}
