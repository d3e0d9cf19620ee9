package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/session"
)

const (
	// SessionContextKey is a gin context key for the resolved session handle.
	SessionContextKey = "session"
	// SessionCookieName is the signed cookie pointing at the server-side session.
	SessionCookieName = "storefront_session"
	// LoginPath is where the client sends a user whose session is gone.
	LoginPath = "/login"
)

// SessionResolver maps a cookie value to the live session.
type SessionResolver interface {
	Resolve(ctx context.Context, cookie string) (*session.Handle, error)
}

// SessionRequired ensures the request carries a live session before accessing handler.
func SessionRequired(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(SessionCookieName)
		h, err := resolver.Resolve(c.Request.Context(), cookie)
		if err != nil {
			if errors.Is(err, domainErrors.ErrUnauthorized) {
				ClearSessionCookie(c)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required", "redirect": LoginPath})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "session lookup failed"})
			return
		}

		c.Set(SessionContextKey, h)
		c.Next()
	}
}

// BackOfficeRequired rejects sessions whose role may not use the back-office.
func BackOfficeRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := CurrentSession(c)
		if h == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required", "redirect": LoginPath})
			return
		}
		sess, _ := h.Snapshot()
		if !sess.User.Role.IsBackOffice() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "back-office access only"})
			return
		}
		c.Next()
	}
}

// CurrentSession returns the handle stored by SessionRequired.
func CurrentSession(c *gin.Context) *session.Handle {
	val, ok := c.Get(SessionContextKey)
	if !ok {
		return nil
	}
	h, _ := val.(*session.Handle)
	return h
}

// SetSessionCookie writes the signed session cookie to response.
func SetSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, value, maxAge, "/", "", false, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}
