package analyses

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"resume-analyzer/internal/shared/telemetry"
)

var (
	ErrQueueFull     = errors.New("analysis queue is full")
	ErrPoolClosed    = errors.New("analysis worker pool is closed")
	ErrDuplicateTask = errors.New("analysis already queued")
	ErrPipelinePanic = errors.New("analysis pipeline panicked")
)

// Task is one deferred pipeline run.
type Task struct {
	ID          string
	Filename    string
	Data        []byte
	SubmittedAt time.Time
}

// Analyzer runs the pipeline for one document.
type Analyzer interface {
	Analyze(ctx context.Context, data []byte, filename string) (Result, error)
}

// CompletionFunc receives the outcome of a task and records it.
type CompletionFunc func(ctx context.Context, task Task, result Result, err error)

// PoolOptions sizes a WorkerPool.
type PoolOptions struct {
	Concurrency int
	QueueSize   int
}

type queuedTask struct {
	ctx  context.Context
	task Task
}

// WorkerPool runs tasks on a fixed number of goroutines fed by a bounded queue.
// At most one task per ID is queued or running at a time.
type WorkerPool struct {
	analyzer Analyzer
	complete CompletionFunc
	queue    chan queuedTask

	mu       sync.Mutex
	inflight map[string]struct{}
	closed   bool

	wg sync.WaitGroup
}

// NewWorkerPool starts the workers.
func NewWorkerPool(analyzer Analyzer, complete CompletionFunc, opts PoolOptions) *WorkerPool {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}
	p := &WorkerPool{
		analyzer: analyzer,
		complete: complete,
		queue:    make(chan queuedTask, opts.QueueSize),
		inflight: make(map[string]struct{}),
	}
	p.wg.Add(opts.Concurrency)
	for i := 0; i < opts.Concurrency; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues a task without blocking. The task runs on a context detached
// from ctx that keeps its request id.
func (p *WorkerPool) Submit(ctx context.Context, task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	if _, busy := p.inflight[task.ID]; busy {
		return ErrDuplicateTask
	}
	if task.SubmittedAt.IsZero() {
		task.SubmittedAt = time.Now().UTC()
	}
	select {
	case p.queue <- queuedTask{ctx: telemetry.Detach(ctx), task: task}:
		p.inflight[task.ID] = struct{}{}
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops intake and waits for queued tasks to finish or ctx to expire.
func (p *WorkerPool) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for q := range p.queue {
		p.run(q)
	}
}

func (p *WorkerPool) run(q queuedTask) {
	defer func() {
		p.mu.Lock()
		delete(p.inflight, q.task.ID)
		p.mu.Unlock()
	}()

	result, err := p.analyze(q)
	p.finish(q, result, err)
}

func (p *WorkerPool) analyze(q queuedTask) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{}
			err = fmt.Errorf("%w: %v", ErrPipelinePanic, r)
		}
	}()
	return p.analyzer.Analyze(q.ctx, q.task.Data, q.task.Filename)
}

func (p *WorkerPool) finish(q queuedTask, result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("panic", map[string]any{
				"request_id":  telemetry.RequestIDFromContext(q.ctx),
				"analysis_id": q.task.ID,
				"where":       "analysis completion",
				"error":       fmt.Sprint(r),
			})
		}
	}()
	if p.complete != nil {
		p.complete(q.ctx, q.task, result, err)
	}
}
