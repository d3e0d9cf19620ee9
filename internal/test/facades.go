package test

import (
	"context"
	"sync"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// SyncFacadeStub mimics worker interactions with the storefront facade.
type SyncFacadeStub struct {
	Batches  [][]model.OrderView
	SweepErr error
	BatchErr error
	ResyncFn func(context.Context, model.OrderView) error

	mu        sync.Mutex
	calls     int
	Sweeps    []time.Time
	StaleSeen []time.Time
	Resynced  []model.OrderView
	Dropped   []string
}

// Lock exposes internal mutex for external synchronization.
func (s *SyncFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *SyncFacadeStub) Unlock() { s.mu.Unlock() }

// SweepIdleSessions records the cut-off.
func (s *SyncFacadeStub) SweepIdleSessions(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sweeps = append(s.Sweeps, before)
	return 0, s.SweepErr
}

// StaleOrderViews returns batches from configured queue.
func (s *SyncFacadeStub) StaleOrderViews(ctx context.Context, limit int, staleBefore time.Time) ([]model.OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StaleSeen = append(s.StaleSeen, staleBefore)
	if s.BatchErr != nil {
		return nil, s.BatchErr
	}
	if s.calls >= len(s.Batches) {
		return nil, nil
	}
	batch := s.Batches[s.calls]
	s.calls++
	return batch, nil
}

// ResyncOrderView records the view and delegates to ResyncFn when set.
func (s *SyncFacadeStub) ResyncOrderView(ctx context.Context, view model.OrderView) error {
	var err error
	if s.ResyncFn != nil {
		err = s.ResyncFn(ctx, view)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Resynced = append(s.Resynced, view)
	return err
}

// DropSessionViews records dropped sessions.
func (s *SyncFacadeStub) DropSessionViews(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Dropped = append(s.Dropped, sessionID)
	return nil
}
