package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/internal/metrics"
	"github.com/habiliai/tutorwise/internal/mylog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers          = 4
	DefaultTrackerRetention = time.Hour
)

type (
	// Pool runs ingestion tasks from a queue on a fixed number of workers.
	Pool struct {
		queue    Queue
		ingester Ingester
		tracker  *Tracker
		workers  int
		logger   *slog.Logger
		metrics  *metrics.Metrics
	}

	PoolOption func(*Pool)
)

func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		p.workers = n
	}
}

func WithTracker(t *Tracker) PoolOption {
	return func(p *Pool) {
		p.tracker = t
	}
}

func WithPoolLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

func WithPoolMetrics(m *metrics.Metrics) PoolOption {
	return func(p *Pool) {
		p.metrics = m
	}
}

func NewPool(queue Queue, ingester Ingester, opts ...PoolOption) *Pool {
	p := &Pool{
		queue:    queue,
		ingester: ingester,
		workers:  DefaultWorkers,
		logger:   mylog.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracker == nil {
		p.tracker = NewTracker(DefaultTrackerRetention)
	}
	if p.workers <= 0 {
		p.workers = DefaultWorkers
	}
	return p
}

func (p *Pool) Tracker() *Tracker {
	return p.tracker
}

// Submit queues an ingestion task. It does not wait for the task to run.
func (p *Pool) Submit(ctx context.Context, contentID string) error {
	p.tracker.Queued(contentID)
	if err := p.queue.Enqueue(ctx, contentID); err != nil {
		p.tracker.Finished(contentID, err)
		return err
	}
	p.reportDepth(ctx)
	p.logger.Debug("ingestion queued", "content_id", contentID)
	return nil
}

// Active reports whether the content is queued or running in this process.
func (p *Pool) Active(contentID string) bool {
	return p.tracker.Active(contentID)
}

func (p *Pool) Task(contentID string) (Task, bool) {
	return p.tracker.Get(contentID)
}

// Run starts the workers and blocks until ctx is done. Tasks already running
// when ctx is cancelled are allowed to finish.
func (p *Pool) Run(ctx context.Context) error {
	p.logger.Info("ingestion workers started", "workers", p.workers)
	defer p.logger.Info("ingestion workers stopped")

	eg, ctx := errgroup.WithContext(ctx)
	for range p.workers {
		eg.Go(func() error {
			return p.work(ctx)
		})
	}
	return eg.Wait()
}

func (p *Pool) work(ctx context.Context) error {
	for {
		contentID, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("failed to dequeue ingestion task", "err", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		p.reportDepth(ctx)
		p.process(context.WithoutCancel(ctx), contentID)
	}
}

func (p *Pool) process(ctx context.Context, contentID string) {
	p.tracker.Running(contentID)

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrInternal, "panic: %v", r)
			p.logger.Error("ingestion panicked", "content_id", contentID, "err", err)
		}
		p.tracker.Finished(contentID, err)
	}()

	if err = p.ingester.Ingest(ctx, contentID); err != nil {
		p.logger.Warn("ingestion task failed", "content_id", contentID, "err", err)
	}
}

func (p *Pool) reportDepth(ctx context.Context) {
	if p.metrics == nil {
		return
	}
	n, err := p.queue.Len(ctx)
	if err != nil {
		p.logger.Debug("failed to read queue depth", "err", err)
		return
	}
	p.metrics.SetQueueDepth(n)
}
