package auth

import (
	"time"

	"github.com/google/uuid"
)

// Strategy signs and verifies the browser session cookie.
type Strategy interface {
	IssueToken(sessionID uuid.UUID) (string, error)
	ParseToken(token string) (uuid.UUID, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
