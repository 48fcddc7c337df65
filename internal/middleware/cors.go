package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS libera apenas allowedOrigin (a origem chrome-extension:// da extensão).
// Vazio libera qualquer origem, o que só deve ser usado em desenvolvimento.
func CORS(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if origin != "" {
			if allowedOrigin != "" && origin != allowedOrigin {
				if c.Request.Method == http.MethodOptions {
					c.AbortWithStatus(http.StatusForbidden)
					return
				}
				c.Next()
				return
			}

			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, "+HeaderUserID+", "+HeaderRequestID)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Expose-Headers", HeaderRequestID+", "+HeaderTraceID)
			c.Header("Access-Control-Max-Age", "600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
