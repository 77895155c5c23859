package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"coffee-change.backend/pkg/logger"
)

// quietPaths are probed constantly and kept out of the access log
var quietPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// LoggerMiddleware logs HTTP requests using the structured logger
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if _, ok := quietPaths[path]; ok && c.Writer.Status() < 400 {
			return
		}
		if raw != "" {
			path = path + "?" + raw
		}

		// request id is placed in the request context by RequestIDMiddleware
		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}
