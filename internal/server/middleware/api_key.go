package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the shared secret.
const APIKeyHeader = "x-api-key"

// WithAPIKey enforces the x-api-key header when key is non-empty.
// Returns a Gin middleware function.
func WithAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// If no API key is configured, skip validation
		if key == "" {
			c.Next()
			return
		}

		got := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "unauthorized",
			})
			return
		}

		c.Next()
	}
}
