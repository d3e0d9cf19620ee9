package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// SyncFacade exposes the subset of application functionality required by the worker.
type SyncFacade interface {
	SweepIdleSessions(ctx context.Context, before time.Time) (int, error)
	StaleOrderViews(ctx context.Context, limit int, staleBefore time.Time) ([]model.OrderView, error)
	ResyncOrderView(ctx context.Context, view model.OrderView) error
	DropSessionViews(ctx context.Context, sessionID string) error
}

// Options tunes the sync loop.
type Options struct {
	Interval  time.Duration
	BatchSize int
	Workers   int
	// IdleTTL is how long a session may go without browser activity, or exist at all,
	// before it is swept.
	IdleTTL time.Duration
}

// OrderSync keeps cached order views close to the shop API concurrently.
type OrderSync struct {
	facade    SyncFacade
	interval  time.Duration
	batchSize int
	workers   int
	idleTTL   time.Duration
	logger    *slog.Logger
	now       func() time.Time

	jobs   chan model.OrderView
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewOrderSync constructs the order view sync worker pool.
func NewOrderSync(facade SyncFacade, opts Options, logger *slog.Logger) *OrderSync {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	return &OrderSync{
		facade:    facade,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
		workers:   opts.Workers,
		idleTTL:   opts.IdleTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Start launches background syncing. The loop outlives ctx's deadline and runs until Stop.
func (s *OrderSync) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.jobs = make(chan model.OrderView, s.batchSize*s.workers)

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx, s.jobs)
	}

	s.wg.Add(1)
	go s.dispatch(runCtx, s.jobs)
}

// Stop waits for all workers to finish.
func (s *OrderSync) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *OrderSync) dispatch(ctx context.Context, jobs chan<- model.OrderView) {
	defer s.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, jobs)
		}
	}
}

// tick sweeps idle sessions, then hands the stale views to the pool.
func (s *OrderSync) tick(ctx context.Context, jobs chan<- model.OrderView) {
	now := s.now()
	if s.idleTTL > 0 {
		swept, err := s.facade.SweepIdleSessions(ctx, now.Add(-s.idleTTL))
		if err != nil {
			s.logger.Error("sweep idle sessions failed", slog.String("error", err.Error()))
		} else if swept > 0 {
			s.logger.Info("idle sessions swept", slog.Int("count", swept))
		}
	}

	views, err := s.facade.StaleOrderViews(ctx, s.batchSize, now.Add(-s.interval))
	if err != nil {
		s.logger.Error("select stale order views failed", slog.String("error", err.Error()))
		return
	}
	for _, view := range views {
		select {
		case <-ctx.Done():
			return
		case jobs <- view:
		}
	}
}

func (s *OrderSync) worker(ctx context.Context, jobs <-chan model.OrderView) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case view, ok := <-jobs:
			if !ok {
				return
			}
			s.handleView(ctx, view)
		}
	}
}

func (s *OrderSync) handleView(ctx context.Context, view model.OrderView) {
	err := s.facade.ResyncOrderView(ctx, view)
	switch {
	case err == nil:
		return
	case errors.Is(err, domainErrors.ErrSessionExpired):
		s.logger.Info("dropping views of expired session", slog.String("session", view.SessionID))
		if err := s.facade.DropSessionViews(ctx, view.SessionID); err != nil {
			s.logger.Error("drop session views failed", slog.String("session", view.SessionID), slog.String("error", err.Error()))
		}
	case errors.Is(err, context.Canceled):
		// shutting down
	default:
		s.logger.Error("order view sync failed",
			slog.String("session", view.SessionID),
			slog.String("order", view.OrderID),
			slog.String("error", err.Error()))
	}
}
