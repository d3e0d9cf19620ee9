package test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// SessionRepositoryStub stores sessions in-memory for tests.
type SessionRepositoryStub struct {
	mu       sync.Mutex
	Sessions map[uuid.UUID]model.Session
	Saves     int
	Updates   int
	Touches   int
	SaveErr   error
	UpdateErr error
	GetErr    error
	DelErr    error
	Deleted   []uuid.UUID
}

// NewSessionRepositoryStub constructs stub repository with initialized map.
func NewSessionRepositoryStub() *SessionRepositoryStub {
	return &SessionRepositoryStub{Sessions: make(map[uuid.UUID]model.Session)}
}

// Save stores the session unless stub has explicit error.
func (s *SessionRepositoryStub) Save(ctx context.Context, sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if s.Sessions == nil {
		s.Sessions = make(map[uuid.UUID]model.Session)
	}
	s.Sessions[sess.ID] = sess
	s.Saves++
	return nil
}

// UpdateTokens rewrites the token pair of a stored session; missing sessions stay missing.
func (s *SessionRepositoryStub) UpdateTokens(ctx context.Context, sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	stored, ok := s.Sessions[sess.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	stored.AccessToken = sess.AccessToken
	stored.RefreshToken = sess.RefreshToken
	stored.UpdatedAt = sess.UpdatedAt
	s.Sessions[sess.ID] = stored
	s.Updates++
	return nil
}

// Touch moves the last seen instant of a stored session forward.
func (s *SessionRepositoryStub) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.Sessions[id]
	if !ok {
		return nil
	}
	if stored.LastSeenAt.Before(at) {
		stored.LastSeenAt = at
		s.Sessions[id] = stored
	}
	s.Touches++
	return nil
}

// Get fetches session by identifier or returns not found.
func (s *SessionRepositoryStub) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	if sess, ok := s.Sessions[id]; ok {
		return &sess, nil
	}
	return nil, domainErrors.ErrNotFound
}

// Delete forgets the session.
func (s *SessionRepositoryStub) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DelErr != nil {
		return s.DelErr
	}
	delete(s.Sessions, id)
	s.Deleted = append(s.Deleted, id)
	return nil
}

// DeleteIdle removes sessions last seen before the given instant.
func (s *SessionRepositoryStub) DeleteIdle(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DelErr != nil {
		return nil, s.DelErr
	}
	var ids []uuid.UUID
	for id, sess := range s.Sessions {
		seen := sess.LastSeenAt
		if seen.IsZero() {
			seen = sess.CreatedAt
		}
		if seen.Before(before) {
			ids = append(ids, id)
			delete(s.Sessions, id)
		}
	}
	return ids, nil
}

// Stored returns the persisted copy of the session.
func (s *SessionRepositoryStub) Stored(id uuid.UUID) (model.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.Sessions[id]
	return sess, ok
}

// OrderViewRepositoryStub keeps order views keyed by session and order.
type OrderViewRepositoryStub struct {
	mu        sync.Mutex
	Views     map[string]map[string]model.OrderView
	Batch     []model.OrderView
	UpsertErr error
	BatchErr  error
	Upserts   int
}

// NewOrderViewRepositoryStub constructs stub repository with initialized map.
func NewOrderViewRepositoryStub() *OrderViewRepositoryStub {
	return &OrderViewRepositoryStub{Views: make(map[string]map[string]model.OrderView)}
}

// Upsert overwrites the stored views.
func (s *OrderViewRepositoryStub) Upsert(ctx context.Context, views ...model.OrderView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	if s.Views == nil {
		s.Views = make(map[string]map[string]model.OrderView)
	}
	for _, v := range views {
		if s.Views[v.SessionID] == nil {
			s.Views[v.SessionID] = make(map[string]model.OrderView)
		}
		s.Views[v.SessionID][v.OrderID] = v
		s.Upserts++
	}
	return nil
}

// Get returns the cached view or not found.
func (s *OrderViewRepositoryStub) Get(ctx context.Context, sessionID, orderID string) (*model.OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.Views[sessionID][orderID]; ok {
		return &v, nil
	}
	return nil, domainErrors.ErrNotFound
}

// BySession returns the cached views of a session ordered by order id.
func (s *OrderViewRepositoryStub) BySession(sessionID string) []model.OrderView {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.OrderView
	for _, v := range s.Views[sessionID] {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}

// Delete removes a single view.
func (s *OrderViewRepositoryStub) Delete(ctx context.Context, sessionID, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Views[sessionID], orderID)
	return nil
}

// DeleteBySession removes every view of the session.
func (s *OrderViewRepositoryStub) DeleteBySession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Views, sessionID)
	return nil
}

// SelectBatchForSync returns the configured batch.
func (s *OrderViewRepositoryStub) SelectBatchForSync(ctx context.Context, limit int, staleBefore time.Time) ([]model.OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.BatchErr != nil {
		return nil, s.BatchErr
	}
	batch := s.Batch
	if len(batch) > limit {
		batch = batch[:limit]
	}
	return batch, nil
}

// Has reports whether a view is cached.
func (s *OrderViewRepositoryStub) Has(sessionID, orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Views[sessionID][orderID]
	return ok
}

var (
	_ repository.SessionRepository   = (*SessionRepositoryStub)(nil)
	_ repository.OrderViewRepository = (*OrderViewRepositoryStub)(nil)
)
