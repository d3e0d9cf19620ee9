// Package gateway attaches the session credential to outbound shop API calls and
// renews an expired access token before the call leaves the process.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/session"
)

// HeaderToken is the header the shop API reads the bearer token from.
const HeaderToken = "token"

// Refresher exchanges the refresh credential of a session for a new access token.
type Refresher interface {
	RefreshSession(ctx context.Context, current model.Session) (model.Session, error)
}

// CredentialStore persists renewed credentials and forgets dead ones. Persist
// returns ErrSessionExpired when the session was cleared while refreshing.
type CredentialStore interface {
	Persist(ctx context.Context, h *session.Handle, updated model.Session) error
	Clear(ctx context.Context, h *session.Handle) error
}

// ExpiredNotifier is told about every session that could not be renewed.
type ExpiredNotifier func(ctx context.Context, s model.Session)

// Gateway wraps every authenticated call to the shop API.
type Gateway struct {
	client    *http.Client
	refresher Refresher
	store     CredentialStore
	logger    *slog.Logger
	now       func() time.Time
	notify    ExpiredNotifier
	refresh   singleflight.Group
	timeout   time.Duration
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithClock replaces the wall clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithExpiredNotifier registers a hook called after a failed refresh.
func WithExpiredNotifier(n ExpiredNotifier) Option {
	return func(g *Gateway) { g.notify = n }
}

// WithRefreshTimeout bounds a single refresh exchange.
func WithRefreshTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// New builds a gateway dispatching through client.
func New(client *http.Client, refresher Refresher, store CredentialStore, logger *slog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		client:    client,
		refresher: refresher,
		store:     store,
		logger:    logger,
		now:       time.Now,
		timeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do authorizes req with the session credential and sends it. Errors of the call
// itself are returned untouched.
func (g *Gateway) Do(ctx context.Context, h *session.Handle, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if err := g.Authorize(ctx, h, req); err != nil {
		return nil, err
	}
	return g.client.Do(req)
}

// Authorize sets the token header on req, refreshing the credential first when the
// access token has expired. On a failed refresh the session is cleared and
// ErrSessionExpired is returned; req must then not be sent.
func (g *Gateway) Authorize(ctx context.Context, h *session.Handle, req *http.Request) error {
	current, active := h.Snapshot()
	if !active {
		return domainErrors.ErrSessionExpired
	}

	if needsRefresh(current.AccessToken, g.now()) {
		renewed, err := g.renew(ctx, h, current)
		if err != nil {
			return err
		}
		current = renewed
	}

	req.Header.Set(HeaderToken, "Bearer "+current.AccessToken)
	return nil
}

// renew runs at most one refresh per session at a time; concurrent callers wait
// for the shared outcome.
func (g *Gateway) renew(ctx context.Context, h *session.Handle, stale model.Session) (model.Session, error) {
	key := stale.ID.String()
	v, err, shared := g.refresh.Do(key, func() (any, error) {
		latest, active := h.Snapshot()
		if !active {
			return nil, domainErrors.ErrSessionExpired
		}
		if latest.AccessToken != stale.AccessToken && !needsRefresh(latest.AccessToken, g.now()) {
			return latest, nil
		}

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()

		fresh, err := g.refresher.RefreshSession(rctx, latest)
		if err != nil {
			g.expire(rctx, h, latest, err)
			return nil, fmt.Errorf("%w: %w", domainErrors.ErrSessionExpired, err)
		}
		if err := g.store.Persist(rctx, h, fresh); err != nil {
			if errors.Is(err, domainErrors.ErrSessionExpired) {
				g.logger.Info("session ended during refresh", slog.String("session", key))
				return nil, err
			}
			return nil, fmt.Errorf("persist refreshed session: %w", err)
		}
		g.logger.Debug("access token refreshed", slog.String("session", key))
		return fresh, nil
	})
	if err != nil {
		return model.Session{}, err
	}
	if shared {
		g.logger.Debug("joined in-flight refresh", slog.String("session", key))
	}
	return v.(model.Session), nil
}

func (g *Gateway) expire(ctx context.Context, h *session.Handle, s model.Session, cause error) {
	if err := g.store.Clear(ctx, h); err != nil {
		g.logger.Error("clear expired session failed", slog.String("session", s.ID.String()), slog.Any("error", err))
	}
	g.logger.Warn("session expired",
		slog.String("session", s.ID.String()),
		slog.String("user", s.User.ID),
		slog.Any("cause", cause))
	if g.notify != nil {
		g.notify(ctx, s)
	}
}
