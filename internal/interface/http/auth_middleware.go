package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/taskhub/internal/domain/token"
)

// authMiddleware verifies the bearer token on every request. Every rejection
// produces the same 401 body; the outcome is only visible in the log.
func authMiddleware(verifier *token.Verifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, outcome, err := verifier.Verify(bearerToken(c))
		if err != nil {
			logger.Warn("token rejected", "auth_outcome", outcome, "path", c.Request.URL.Path)
			abortWithError(c, unauthorized(err))
			return
		}
		setIdentity(c, identity)
		c.Next()
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is case-insensitive; anything else yields "".
func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(raw)
}
