// Package session owns the signed-in user's credential: the in-memory handle shared
// by services serving one browser session and the durable store behind it.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Handle is the shared context for one session. Readers take snapshots; writers
// replace the whole credential so no reader ever observes a torn value.
type Handle struct {
	mu      sync.RWMutex
	current model.Session
	cleared bool
}

// NewHandle wraps an existing credential.
func NewHandle(s model.Session) *Handle {
	return &Handle{current: s}
}

// Snapshot returns a copy of the credential and whether it is still active.
func (h *Handle) Snapshot() (model.Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current, !h.cleared
}

// ID returns the session identifier as a string key.
func (h *Handle) ID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.ID.String()
}

// Adopt replaces the credential with a newer one. A cleared handle stays cleared and
// Adopt reports false.
func (h *Handle) Adopt(s model.Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cleared {
		return false
	}
	if s.LastSeenAt.Before(h.current.LastSeenAt) {
		s.LastSeenAt = h.current.LastSeenAt
	}
	h.current = s
	return true
}

// markSeen records activity at now unless the last record is younger than every.
func (h *Handle) markSeen(now time.Time, every time.Duration) (uuid.UUID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cleared || now.Sub(h.current.LastSeenAt) < every {
		return uuid.Nil, false
	}
	h.current.LastSeenAt = now
	return h.current.ID, true
}

func (h *Handle) clear() {
	h.mu.Lock()
	h.current.AccessToken = ""
	h.current.RefreshToken = ""
	h.cleared = true
	h.mu.Unlock()
}
