package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// AuthHandler processes registration, login and logout.
type AuthHandler struct {
	facade AuthFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.facade.Register(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "account created, please sign in", Redirect: middleware.LoginPath})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	user, cookie, err := h.facade.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetSessionCookie(c, cookie, h.facade.CookieMaxAge())
	c.JSON(http.StatusOK, dto.LoginResponse{Message: "signed in", User: toUserResponse(user)})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.facade.Logout(c.Request.Context(), CurrentSession(c)); err != nil {
		respondError(c, err)
		return
	}

	middleware.ClearSessionCookie(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "signed out", Redirect: middleware.LoginPath})
}

// Me handles GET /api/session.
func (h *AuthHandler) Me(c *gin.Context) {
	sess, _ := CurrentSession(c).Snapshot()
	c.JSON(http.StatusOK, toUserResponse(sess.User))
}
