package test

import (
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/session"
)

// NewHandle returns a handle for a fresh session of a user with role.
func NewHandle(role model.Role) *session.Handle {
	now := time.Now()
	return session.NewHandle(model.Session{
		ID:           uuid.New(),
		User:         model.User{ID: RandomASCIIString(6, 10), Name: "Test", Email: "test@example.com", Role: role},
		AccessToken:  "access",
		RefreshToken: "refresh",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
