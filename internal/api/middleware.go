package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lecture-insights-go/internal/logger"
	"lecture-insights-go/internal/observability"
)

const requestIDKey = "request_id"

// RequestID takes X-Request-ID from the caller or mints one, echoes it back
// and stores it in the request context for the pipeline's log lines.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := logger.RequestID(c.Request)
		c.Set(requestIDKey, id)
		c.Header(logger.RequestIDHeader, id)
		c.Request = c.Request.WithContext(observability.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// AccessLog logs one line per request once the handler chain has finished.
func AccessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithRequest(c.Request, c.GetString(requestIDKey)).WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"bytes":   c.Writer.Size(),
		})
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request handled")
		case c.Writer.Status() >= 400:
			entry.Warn("request handled")
		default:
			entry.Info("request handled")
		}
	}
}
