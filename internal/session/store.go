package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const defaultTouchInterval = time.Minute

// Store is the single writer of durable session credentials. It also keeps one live
// Handle per session so concurrent requests of the same browser share a credential.
type Store struct {
	sessions   repository.SessionRepository
	views      repository.OrderViewRepository
	logger     *slog.Logger
	now        func() time.Time
	ttl        time.Duration
	idle       time.Duration
	touchEvery time.Duration

	mu      sync.Mutex
	handles map[uuid.UUID]*Handle
}

// Option customises a Store.
type Option func(*Store)

// WithLifetime bounds sessions to ttl after login and idle after the last browser
// request. A zero ttl disables both bounds.
func WithLifetime(ttl, idle time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
		s.idle = idle
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore builds a store over the given repositories.
func NewStore(sessions repository.SessionRepository, views repository.OrderViewRepository, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		sessions:   sessions,
		views:      views,
		logger:     logger,
		now:        time.Now,
		touchEvery: defaultTouchInterval,
		handles:    make(map[uuid.UUID]*Handle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) track(h *Handle, id uuid.UUID) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if live, ok := s.handles[id]; ok {
		return live
	}
	s.handles[id] = h
	return h
}

func (s *Store) forget(ids ...uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if h, ok := s.handles[id]; ok {
			h.clear()
			delete(s.handles, id)
		}
	}
}

func (s *Store) expired(sess model.Session) bool {
	return s.ttl > 0 && !s.now().Before(sess.ExpiresAt(s.ttl, s.idle))
}

// Open persists a credential for a fresh login.
func (s *Store) Open(ctx context.Context, user model.User, access, refresh string) (*Handle, error) {
	now := s.now()
	sess := model.Session{
		ID:           uuid.New(),
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastSeenAt:   now,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return s.track(NewHandle(sess), sess.ID), nil
}

// Load returns the live handle of a session, restoring it from storage when needed.
// A session past its lifetime is cleared and reported as ErrSessionExpired.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*Handle, error) {
	s.mu.Lock()
	h, ok := s.handles[id]
	s.mu.Unlock()

	if !ok {
		sess, err := s.sessions.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		h = s.track(NewHandle(*sess), id)
	}

	if sess, _ := h.Snapshot(); s.expired(sess) {
		if err := s.Clear(ctx, h); err != nil {
			s.logger.Warn("clear expired session failed", "session", id, "error", err)
		}
		return nil, fmt.Errorf("%w: session %s outlived its lifetime", domainErrors.ErrSessionExpired, id)
	}
	return h, nil
}

// Touch records browser activity on the session, at most once per minute.
func (s *Store) Touch(ctx context.Context, h *Handle) error {
	now := s.now()
	id, ok := h.markSeen(now, s.touchEvery)
	if !ok {
		return nil
	}
	if err := s.sessions.Touch(ctx, id, now); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Persist stores a refreshed credential and adopts it into h. It never revives a
// session that was cleared or deleted meanwhile; that case is ErrSessionExpired.
func (s *Store) Persist(ctx context.Context, h *Handle, updated model.Session) error {
	if _, active := h.Snapshot(); !active {
		return fmt.Errorf("%w: session %s was cleared", domainErrors.ErrSessionExpired, updated.ID)
	}
	updated.UpdatedAt = s.now()
	if err := s.sessions.UpdateTokens(ctx, updated); err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return fmt.Errorf("%w: session %s is gone", domainErrors.ErrSessionExpired, updated.ID)
		}
		return fmt.Errorf("persist session: %w", err)
	}
	if !h.Adopt(updated) {
		return fmt.Errorf("%w: session %s was cleared", domainErrors.ErrSessionExpired, updated.ID)
	}
	return nil
}

// Clear forgets the credential in memory and in storage.
func (s *Store) Clear(ctx context.Context, h *Handle) error {
	sess, _ := h.Snapshot()
	h.clear()
	s.forget(sess.ID)
	if err := s.views.DeleteBySession(ctx, sess.ID.String()); err != nil {
		s.logger.Warn("drop cached orders failed", "session", sess.ID, "error", err)
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SweepIdle removes sessions last seen before the cut-off. Live handles
// of swept sessions are cleared so in-flight requests cannot persist into them.
func (s *Store) SweepIdle(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	ids, err := s.sessions.DeleteIdle(ctx, before)
	if err != nil {
		return nil, fmt.Errorf("sweep sessions: %w", err)
	}
	s.forget(ids...)
	if len(ids) > 0 {
		s.logger.Info("idle sessions swept", "count", len(ids))
	}
	return ids, nil
}
