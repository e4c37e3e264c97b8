package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadOnlyGuard rejects unsafe methods when the board is served read-only.
func ReadOnlyGuard(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			// ok
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "read-only mode"})
			return
		}
		c.Next()
	}
}

func CORS(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
