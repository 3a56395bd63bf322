package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/habiliai/tutorwise/entity"
	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/internal/mylog"
)

const sweepBatch = 100

type (
	StaleLister interface {
		ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]entity.Content, error)
	}

	Submitter interface {
		Submit(ctx context.Context, contentID string) error
		Active(contentID string) bool
	}

	// Sweeper periodically re-submits contents left pending, e.g. by a crash
	// between the upload response and the end of ingestion.
	Sweeper struct {
		contents  StaleLister
		submitter Submitter
		interval  time.Duration
		age       time.Duration
		logger    *slog.Logger
		now       func() time.Time

		scheduler gocron.Scheduler
		cancel    context.CancelFunc
	}
)

func NewSweeper(contents StaleLister, submitter Submitter, interval, age time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = mylog.Discard()
	}
	return &Sweeper{
		contents:  contents,
		submitter: submitter,
		interval:  interval,
		age:       age,
		logger:    logger,
		now:       time.Now,
	}
}

// Sweep submits pending contents older than the configured age and returns
// how many were submitted.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	stale, err := s.contents.ListStalePending(ctx, s.now().Add(-s.age), sweepBatch)
	if err != nil {
		return 0, err
	}

	submitted := 0
	for _, content := range stale {
		if s.submitter.Active(content.ID) {
			continue
		}
		if err := s.submitter.Submit(ctx, content.ID); err != nil {
			if errors.Is(err, errors.ErrQueueFull) {
				break
			}
			return submitted, err
		}
		submitted++
	}

	if submitted > 0 {
		s.logger.Info("re-submitted pending contents", "count", submitted)
	}
	return submitted, nil
}

func (s *Sweeper) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return errors.Wrapf(err, "failed to create scheduler")
	}

	ctx, cancel := context.WithCancel(ctx)
	if _, err := scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("pending sweep failed", "err", err)
			}
		}),
		gocron.WithName("pending-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		cancel()
		return errors.Wrapf(err, "failed to schedule pending sweep")
	}

	s.scheduler = scheduler
	s.cancel = cancel
	scheduler.Start()
	s.logger.Info("pending sweeper started", "interval", s.interval, "age", s.age)

	return nil
}

func (s *Sweeper) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	s.cancel()
	return errors.Wrapf(s.scheduler.Shutdown(), "failed to stop scheduler")
}
