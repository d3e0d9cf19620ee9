package test

import (
	"context"

	"github.com/google/uuid"

	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/session"
)

// StrategyStub issues and parses cookie values via function overrides.
type StrategyStub struct {
	IssueFn func(uuid.UUID) (string, error)
	ParseFn func(string) (uuid.UUID, error)
	NameVal string
}

// IssueToken returns the session id itself unless overridden.
func (s StrategyStub) IssueToken(sessionID uuid.UUID) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(sessionID)
	}
	return sessionID.String(), nil
}

// ParseToken parses values produced by IssueToken.
func (s StrategyStub) ParseToken(token string) (uuid.UUID, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	id, err := uuid.Parse(token)
	if err != nil {
		return uuid.Nil, pkgAuth.ErrInvalidToken
	}
	return id, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// SessionResolverStub implements the middleware session lookup.
type SessionResolverStub struct {
	Handle    *session.Handle
	Err       error
	ResolveFn func(context.Context, string) (*session.Handle, error)
}

// Resolve either delegates to override or returns predefined result.
func (s SessionResolverStub) Resolve(ctx context.Context, cookie string) (*session.Handle, error) {
	if s.ResolveFn != nil {
		return s.ResolveFn(ctx, cookie)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Handle, nil
}

var _ pkgAuth.Strategy = StrategyStub{}
