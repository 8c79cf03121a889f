package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ssonotify/internal/util"
)

// AdminAuthMiddleware requires a valid HS256 JWT with role "admin".
func AdminAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSecret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin auth not configured"})
			return
		}

		token := util.ExtractToken(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		adminID, err := util.ParseAdminToken(token, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("admin_id", adminID)
		c.Next()
	}
}
