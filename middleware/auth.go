package middleware

import (
	"context"
	"net/http"
	"strings"

	userRepo "kymaclub/database/repository/user"
	"kymaclub/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// JWTAuthUserMiddleware authenticates customer requests. Validated tokens are
// cached by hash in the dedicated auth Redis so repeat requests skip the
// database lookup.
func JWTAuthUserMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		computedHash := utils.HashToken(tokenString)
		cacheKey := utils.AuthCachePrefix + userID

		authCache := utils.GetAuthCacheClient()
		cacheEnabled := authCache != nil

		if cacheEnabled {
			cachedHash, err := authCache.Get(ctx, cacheKey).Result()
			if err == nil {
				if cachedHash == computedHash {
					_ = authCache.Expire(ctx, cacheKey, utils.AuthCacheTTL).Err()
					c.Set("userID", userID)
					c.Next()
					return
				}
				// Stale hash, fall through to the DB lookup.
			} else if err != redis.Nil {
				zap.L().Warn("auth cache lookup failed, falling back to DB", zap.Error(err))
			}
		}

		usr, err := users.GetByID(ctx, userID)
		if err != nil || usr == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication error"})
			return
		}

		if cacheEnabled {
			_ = authCache.Set(ctx, cacheKey, computedHash, utils.AuthCacheTTL).Err()
		}

		c.Set("userID", userID)
		c.Next()
	}
}
