package middleware

import (
	"time"

	"github.com/NomadCrew/feedback-tracker-backend/logger"
	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request with its outcome and latency.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		log := logger.GetLogger()
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(RequestIDKey),
		}

		switch {
		case status >= 500:
			log.Errorw("Request completed", fields...)
		case status >= 400:
			log.Warnw("Request completed", fields...)
		default:
			log.Infow("Request completed", fields...)
		}
	}
}
