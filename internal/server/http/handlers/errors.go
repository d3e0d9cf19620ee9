package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// statusOf maps a domain error to the HTTP status and the message shown to the user.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domainErrors.ErrSessionExpired):
		return http.StatusUnauthorized, "session expired, please sign in again"
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, domainErrors.ErrUnauthorized):
		return http.StatusUnauthorized, "the shop no longer accepts your sign-in, please sign in again"
	case errors.Is(err, domainErrors.ErrForbidden):
		return http.StatusForbidden, "not allowed for your role"
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domainErrors.ErrInvalidStatus):
		return http.StatusBadRequest, "unknown order status"
	case errors.Is(err, domainErrors.ErrTransitionNotAllowed):
		return http.StatusConflict, "this status change is not allowed"
	case errors.Is(err, domainErrors.ErrTransitionRejected):
		return http.StatusConflict, "the shop rejected this status change"
	case errors.Is(err, domainErrors.ErrSuperseded):
		return http.StatusConflict, "selection changed, request discarded"
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		return http.StatusConflict, "already exists"
	case errors.Is(err, domainErrors.ErrUpstream):
		return http.StatusBadGateway, "shop is unavailable, try again later"
	default:
		return http.StatusBadGateway, "request failed, try again later"
	}
}

// respondError answers with a user-visible message. An expired session, or a
// credential the shop API refused, also clears the cookie and tells the client where
// to sign in again.
func respondError(c *gin.Context, err error) {
	status, message := statusOf(err)
	body := dto.MessageResponse{Message: message}
	if errors.Is(err, domainErrors.ErrSessionExpired) || errors.Is(err, domainErrors.ErrUnauthorized) {
		middleware.ClearSessionCookie(c)
		body.Redirect = middleware.LoginPath
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func respondInvalid(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.MessageResponse{Message: "invalid request: " + err.Error()})
}
