package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/polkiloo/storefront/internal/adapter/shopapi"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/session"
)

// AuthAPI is the subset of the shop API handling sign-in.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (shopapi.LoginResult, error)
	Register(ctx context.Context, in shopapi.RegisterInput) error
	Logout(ctx context.Context, sess model.Session) error
}

// AuthUseCase opens, resolves and closes browser sessions.
type AuthUseCase struct {
	api      AuthAPI
	sessions *session.Store
	tokens   pkgAuth.Strategy
	logger   *slog.Logger
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(api AuthAPI, sessions *session.Store, strategy pkgAuth.Strategy, logger *slog.Logger) *AuthUseCase {
	return &AuthUseCase{api: api, sessions: sessions, tokens: strategy, logger: logger}
}

// Register forwards a sign-up to the shop API.
func (u *AuthUseCase) Register(ctx context.Context, in shopapi.RegisterInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return domainErrors.ErrInvalidCredentials
	}
	return u.api.Register(ctx, in)
}

// Login signs in upstream, opens a local session and returns the signed cookie value.
func (u *AuthUseCase) Login(ctx context.Context, email, password string) (*session.Handle, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	res, err := u.api.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	h, err := u.sessions.Open(ctx, res.User, res.AccessToken, res.RefreshToken)
	if err != nil {
		return nil, "", err
	}

	sess, _ := h.Snapshot()
	cookie, err := u.tokens.IssueToken(sess.ID)
	if err != nil {
		return nil, "", err
	}

	u.logger.Info("session opened", slog.String("session", sess.ID.String()), slog.String("role", string(res.User.Role)))
	return h, cookie, nil
}

// Resolve maps a cookie value back to the live session and records the activity.
func (u *AuthUseCase) Resolve(ctx context.Context, cookie string) (*session.Handle, error) {
	if cookie == "" {
		return nil, domainErrors.ErrUnauthorized
	}
	id, err := u.tokens.ParseToken(cookie)
	if err != nil {
		return nil, domainErrors.ErrUnauthorized
	}
	h, err := u.sessions.Load(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) || errors.Is(err, domainErrors.ErrSessionExpired) {
			return nil, domainErrors.ErrUnauthorized
		}
		return nil, err
	}
	if _, active := h.Snapshot(); !active {
		return nil, domainErrors.ErrUnauthorized
	}
	if err := u.sessions.Touch(ctx, h); err != nil {
		u.logger.Warn("record session activity failed", slog.String("session", h.ID()), slog.Any("error", err))
	}
	return h, nil
}

// Logout revokes upstream on a best-effort basis and always clears the local session.
func (u *AuthUseCase) Logout(ctx context.Context, h *session.Handle) error {
	sess, _ := h.Snapshot()
	if err := u.api.Logout(ctx, sess); err != nil {
		u.logger.Warn("upstream logout failed", slog.String("session", sess.ID.String()), slog.Any("error", err))
	}
	return u.sessions.Clear(ctx, h)
}
