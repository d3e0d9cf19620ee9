package shopapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// LoginResult is the credential handed out by a successful login.
type LoginResult struct {
	User         model.User
	AccessToken  string
	RefreshToken string
}

// RefreshResult is the outcome of a refresh exchange. RefreshToken is empty unless
// the shop API rotated the cookie.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u userDTO) toModel() model.User {
	role := model.Role(u.Role)
	switch role {
	case model.RoleAdmin, model.RoleStaff, model.RoleCustomer:
	default:
		role = model.RoleCustomer
	}
	return model.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: role}
}

type tokenDTO struct {
	User        *userDTO `json:"user,omitempty"`
	AccessToken string   `json:"accessToken"`
}

// AuthClient calls the unauthenticated session endpoints.
type AuthClient struct {
	base
	httpClient *http.Client
}

// NewAuthClient creates the session endpoint client.
func NewAuthClient(baseURL string, httpClient *http.Client, logger *slog.Logger) (*AuthClient, error) {
	b, err := newBase(baseURL, logger)
	if err != nil {
		return nil, err
	}
	return &AuthClient{base: b, httpClient: httpClient}, nil
}

// Login exchanges credentials for an access token and the refresh cookie.
func (c *AuthClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost, nil, map[string]string{"email": email, "password": password}, "auth", "login")
	if err != nil {
		return LoginResult{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return LoginResult{}, transportError(err)
	}
	refresh := refreshCookie(resp)

	var data tokenDTO
	if err := c.decode(resp, &data); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusBadRequest) {
			return LoginResult{}, fmt.Errorf("%w: %s", domainErrors.ErrInvalidCredentials, apiErr.Message)
		}
		return LoginResult{}, err
	}
	if data.AccessToken == "" || data.User == nil {
		return LoginResult{}, fmt.Errorf("%w: login response without credential", domainErrors.ErrUpstream)
	}
	return LoginResult{User: data.User.toModel(), AccessToken: data.AccessToken, RefreshToken: refresh}, nil
}

// Register creates a customer account.
func (c *AuthClient) Register(ctx context.Context, in RegisterInput) error {
	req, err := c.newRequest(ctx, http.MethodPost, nil, in, "auth", "register")
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	return c.decode(resp, nil)
}

// Logout revokes the refresh credential upstream.
func (c *AuthClient) Logout(ctx context.Context, sess model.Session) error {
	req, err := c.newRequest(ctx, http.MethodPost, nil, nil, "auth", "logout")
	if err != nil {
		return err
	}
	req.Header.Set("token", "Bearer "+sess.AccessToken)
	if sess.RefreshToken != "" {
		req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: sess.RefreshToken})
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	return c.decode(resp, nil)
}

// Refresh performs the refresh exchange: no body, refresh cookie only.
func (c *AuthClient) Refresh(ctx context.Context, sess model.Session) (RefreshResult, error) {
	if sess.RefreshToken == "" {
		return RefreshResult{}, domainErrors.ErrUnauthorized
	}
	req, err := c.newRequest(ctx, http.MethodPost, nil, nil, "auth", "refresh")
	if err != nil {
		return RefreshResult{}, err
	}
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: sess.RefreshToken})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RefreshResult{}, transportError(err)
	}
	rotated := refreshCookie(resp)

	var data tokenDTO
	if err := c.decode(resp, &data); err != nil {
		return RefreshResult{}, err
	}
	if data.AccessToken == "" {
		return RefreshResult{}, fmt.Errorf("%w: refresh response without access token", domainErrors.ErrUpstream)
	}
	return RefreshResult{AccessToken: data.AccessToken, RefreshToken: rotated}, nil
}

// RefreshSession returns current carrying the renewed token pair.
func (c *AuthClient) RefreshSession(ctx context.Context, current model.Session) (model.Session, error) {
	res, err := c.Refresh(ctx, current)
	if err != nil {
		return model.Session{}, err
	}
	return current.WithAccessToken(res.AccessToken, res.RefreshToken), nil
}

func refreshCookie(resp *http.Response) string {
	for _, ck := range resp.Cookies() {
		if ck.Name == RefreshCookie {
			return ck.Value
		}
	}
	return ""
}
