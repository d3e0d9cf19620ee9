package model

import (
	"time"

	"github.com/google/uuid"
)

// Role determines which transitions a user may trigger.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// IsBackOffice reports whether role may operate the administrative back-office.
func (r Role) IsBackOffice() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User is the profile returned by the shop API on login.
type User struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// Session is the credential of a signed-in user: bearer token plus the refresh cookie value.
type Session struct {
	ID           uuid.UUID
	User         User
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	// LastSeenAt is the last browser request made with the session cookie.
	LastSeenAt time.Time
}

// ExpiresAt is the instant the session dies: ttl after login or idle after the last
// browser request, whichever comes first. A non-positive idle leaves only the ttl bound.
func (s Session) ExpiresAt(ttl, idle time.Duration) time.Time {
	hard := s.CreatedAt.Add(ttl)
	if idle <= 0 {
		return hard
	}
	seen := s.LastSeenAt
	if seen.Before(s.CreatedAt) {
		seen = s.CreatedAt
	}
	if soft := seen.Add(idle); soft.Before(hard) {
		return soft
	}
	return hard
}

// WithAccessToken returns a copy carrying a refreshed token pair. Empty refresh keeps the current one.
func (s Session) WithAccessToken(access, refresh string) Session {
	s.AccessToken = access
	if refresh != "" {
		s.RefreshToken = refresh
	}
	return s
}
