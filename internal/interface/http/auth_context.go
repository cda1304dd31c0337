package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/taskhub/internal/domain/token"
)

// setIdentity attaches the verified identity to the request context so
// services below the handler can read it with token.IdentityFrom.
func setIdentity(c *gin.Context, id token.Identity) {
	c.Request = c.Request.WithContext(token.WithIdentity(c.Request.Context(), id))
}

func getIdentity(c *gin.Context) (token.Identity, bool) {
	return token.IdentityFrom(c.Request.Context())
}
