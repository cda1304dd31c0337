package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/taskhub/internal/domain/auth"
	apperrors "github.com/yanqian/taskhub/pkg/errors"
)

// AuthHandler exposes the account and token endpoints.
type AuthHandler struct {
	svc    auth.Service
	logger *slog.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger.With("component", "http.auth")}
}

// Register creates an account and returns its first token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidBody(err))
		return
	}
	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login exchanges credentials for a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidBody(err))
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout records the logout of the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		abortWithError(c, unauthorized(nil))
		return
	}
	if err := h.svc.Logout(c.Request.Context(), identity); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, apperrors.CodeUpstream, auth.MsgLogoutFailed, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": auth.MsgLoggedOut})
}

// Me returns the stored profile of the token subject.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		abortWithError(c, unauthorized(nil))
		return
	}
	view, err := h.svc.Profile(c.Request.Context(), identity.Subject)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

// Refresh swaps the presented token for a new one. It runs outside
// authMiddleware because recently expired tokens are accepted here.
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw := bearerToken(c)
	if raw == "" {
		abortWithError(c, unauthorized(nil))
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), raw)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeAuthentication) {
			abortWithError(c, unauthorized(err))
			return
		}
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}
