package middleware

import (
	"net/http"
	"strings"

	"kymaclub/config"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware guards admin endpoints with the static API token from
// configuration.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		adminToken := config.AppConfig.AdminAPIToken
		if adminToken == "" || tokenString != adminToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized admin access"})
			return
		}

		c.Set("isAdmin", true)
		c.Next()
	}
}
