package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// SessionRepository describes persistence operations for session credentials.
type SessionRepository interface {
	// Save inserts a new session.
	Save(ctx context.Context, s model.Session) error
	// UpdateTokens replaces the token pair of an existing session. It returns
	// ErrNotFound when the session was deleted meanwhile and never recreates it.
	UpdateTokens(ctx context.Context, s model.Session) error
	// Touch records browser activity.
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Get(ctx context.Context, id uuid.UUID) (*model.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteIdle removes sessions last seen before the cut-off and
	// returns their ids.
	DeleteIdle(ctx context.Context, before time.Time) ([]uuid.UUID, error)
}
