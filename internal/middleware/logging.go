package middleware

import (
	"time"

	"eventbeta/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Logger records each request through the structured logger.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.LogRequest(
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			time.Since(start),
			c.Writer.Status(),
		)
	}
}
