// Package shopapi talks to the external shop REST API that owns users and orders.
package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

const (
	statusOK = "OK"

	// RefreshCookie is the httpOnly cookie carrying the refresh credential.
	RefreshCookie = "refresh_token"
)

// envelope mirrors every response body of the shop API.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError is a failure reported by the shop API itself.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("shop api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("shop api: %d %s", e.StatusCode, e.Message)
}

// Unwrap exposes the domain error matching the status code, if any.
func (e *APIError) Unwrap() error { return e.kind }

func kindOf(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return domainErrors.ErrUnauthorized
	case code == http.StatusForbidden:
		return domainErrors.ErrForbidden
	case code == http.StatusNotFound:
		return domainErrors.ErrNotFound
	case code == http.StatusConflict:
		return domainErrors.ErrAlreadyExists
	case code >= http.StatusInternalServerError:
		return domainErrors.ErrUpstream
	default:
		return nil
	}
}

// NewHTTPClient builds the instrumented transport shared by every shop API call.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "shopapi " + r.Method + " " + r.URL.Path
			}),
		),
	}
}

type base struct {
	baseURL *url.URL
	logger  *slog.Logger
}

func newBase(baseURL string, logger *slog.Logger) (base, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return base{}, fmt.Errorf("parse shop api url: %w", err)
	}
	if !parsed.IsAbs() {
		return base{}, fmt.Errorf("shop api url must be absolute")
	}
	return base{baseURL: parsed, logger: logger}, nil
}

func (b base) newRequest(ctx context.Context, method string, query url.Values, body any, segments ...string) (*http.Request, error) {
	endpoint := *b.baseURL
	endpoint.Path = path.Join(append([]string{"/", endpoint.Path}, segments...)...)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// decode unwraps the envelope into out. out may be nil when no data is expected.
func (b base) decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", domainErrors.ErrUpstream, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: env.Message, kind: kindOf(resp.StatusCode)}
		b.logger.Warn("shop api request failed",
			slog.String("method", resp.Request.Method),
			slog.String("path", resp.Request.URL.Path),
			slog.Int("status", resp.StatusCode),
			slog.String("message", env.Message))
		return apiErr
	}
	if len(raw) == 0 {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("%w: decode envelope: %w", domainErrors.ErrUpstream, decodeErr)
	}
	if env.Status != "" && env.Status != statusOK {
		return &APIError{StatusCode: http.StatusBadRequest, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %w", domainErrors.ErrUpstream, err)
	}
	return nil
}

// transportError marks a failure to reach the shop API, leaving session errors intact.
func transportError(err error) error {
	if errors.Is(err, domainErrors.ErrSessionExpired) {
		return err
	}
	return fmt.Errorf("%w: %w", domainErrors.ErrUpstream, err)
}
