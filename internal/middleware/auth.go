package middleware

import (
	"strings"

	"eventbeta/internal/utils"
	"eventbeta/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// JWTAuth middleware for JWT token validation
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			utils.UnauthorizedResponse(c, "Missing authorization token")
			c.Abort()
			return
		}

		claims, err := utils.ValidateUserJWT(secret, tokenString)
		if err != nil {
			logger.WithError(err).Debug("JWT validation failed")
			utils.UnauthorizedResponse(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Set("authenticated", true)

		c.Next()
	}
}

// OptionalAuth accepts anonymous viewers. A valid token yields the real
// identity; without one the request gets a synthetic guest id so downstream
// code always has an owner key to work with.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := extractToken(c); tokenString != "" {
			if claims, err := utils.ValidateUserJWT(secret, tokenString); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("username", claims.Username)
				c.Set("role", claims.Role)
				c.Set("authenticated", true)
				c.Next()
				return
			}
		}

		c.Set("user_id", "guest-"+uuid.NewString())
		c.Set("username", "Guest")
		c.Set("role", "guest")
		c.Set("authenticated", false)

		c.Next()
	}
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the token query param for WebSocket upgrades where headers are not
// available to browser clients.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString != authHeader {
			return tokenString
		}
		return ""
	}
	return c.Query("token")
}
