package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wms/backend/internal/interfaces/http/dto"
)

// WebhookAuth validates the shared token carriers send with status webhooks.
// The token may arrive as a Bearer token or in X-Webhook-Token. An empty
// configured token disables the check (development only; production config
// validation requires it).
func WebhookAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		presented := c.GetHeader("X-Webhook-Token")
		if presented == "" {
			auth := c.GetHeader("Authorization")
			presented = strings.TrimPrefix(auth, "Bearer ")
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				dto.ErrCodeUnauthorized,
				"Invalid webhook token",
			))
			return
		}
		c.Next()
	}
}
