// Package worker defines worker contracts for asynchronous catalog fetching.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/fitfindr/internal/adapters/mq/queue"
	"github.com/okian/fitfindr/internal/domain/model"
	"github.com/okian/fitfindr/pkg/logger"
	"github.com/okian/fitfindr/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Source fetches catalog items for a keyword.
type Source interface {
	Search(ctx context.Context, keyword string, max int) ([]model.Item, error)
}

// Updater stores fetched items.
type Updater interface {
	Upsert(ctx context.Context, keyword string, item model.Item) bool
}

// Queue defines how workers receive fetch jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.FetchJob
}

// Worker processes fetch jobs and writes items using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker, processing any in-flight job.
	Shutdown(ctx context.Context) error
}

// Option applies a configuration option to the FetchWorker.
type Option func(*FetchWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *FetchWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *FetchWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithFailureHook registers a callback invoked with the job keyword when a
// fetch fails. The owner uses it to release its reservation for the keyword
// so a later request can retry the fetch.
func WithFailureHook(hook func(ctx context.Context, keyword string)) Option {
	return func(w *FetchWorker) {
		if hook != nil {
			w.onFailure = hook
		}
	}
}

// FetchWorker implements Worker for catalog fetch jobs.
type FetchWorker struct {
	queue     Queue
	source    Source
	updater   Updater
	name      string
	onFailure func(ctx context.Context, keyword string)

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewFetchWorker creates a new worker with configuration options.
func NewFetchWorker(q Queue, source Source, updater Updater, opts ...Option) *FetchWorker {
	w := &FetchWorker{
		queue:    q,
		source:   source,
		updater:  updater,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *FetchWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
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
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "catalog fetch failed", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *FetchWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob fetches items for one keyword and upserts them.
func (w *FetchWorker) processJob(ctx context.Context, job queue.FetchJob) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	items, err := w.source.Search(ctx, job.Keyword, job.MaxItems)
	if err != nil {
		metrics.RecordCatalogFetchError()
		metrics.RecordWorkerError()
		if w.onFailure != nil {
			w.onFailure(ctx, job.Keyword)
		}
		return fmt.Errorf("search %q: %w", job.Keyword, err)
	}

	inserted := 0
	for _, item := range items {
		if w.updater.Upsert(ctx, job.Keyword, item) {
			inserted++
		}
	}
	metrics.RecordCatalogFetch()

	w.logger.Debug(ctx, "fetched catalog items",
		logger.String("keyword", job.Keyword),
		logger.Int("fetched", len(items)),
		logger.Int("inserted", inserted),
	)
	return nil
}

// Pool manages a set of fetch workers draining a shared queue.
type Pool struct {
	workers []*FetchWorker
	count   int

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool

	logger logger.Logger
}

// NewPool creates a pool of count workers over the given queue, source and
// updater. A non-positive count defaults to a small multiple of the CPU
// count. Options are applied to every worker in the pool.
func NewPool(count int, q Queue, source Source, updater Updater, opts ...Option) *Pool {
	if count <= 0 {
		count = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		count:  count,
		logger: logger.Named("pool"),
	}
	p.workers = make([]*FetchWorker, 0, count)
	for i := 0; i < count; i++ {
		workerOpts := append([]Option{WithName("fetch-" + strconv.Itoa(i))}, opts...)
		p.workers = append(p.workers, NewFetchWorker(q, source, updater, workerOpts...))
	}
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	for _, w := range p.workers {
		go w.Run(runCtx)
	}
	p.started = true
	metrics.UpdateWorkerCount(p.count)
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", p.count))
}

// Stop shuts down all workers, waiting up to the pool timeout.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		workerCtx, workerCancel := context.WithTimeout(ctx, workerShutdownTimeout)
		if err := w.Shutdown(workerCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown failed", logger.Error(err))
		}
		workerCancel()
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.started = false
	metrics.UpdateWorkerCount(0)
	p.logger.Info(ctx, "worker pool stopped")
}
