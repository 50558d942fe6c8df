package middleware

import (
	"PlateDetector/pkg/log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LoggerConfig logs one line per request. Request bodies are never logged:
// they carry whole camera frames.
func LoggerConfig() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID, ok := c.Locals(RequestIDKey).(string)
		if !ok || requestID == "" {
			requestID = "unknown"
		}

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		logFields := log.Fields{
			"request_id":    requestID,
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    latency.Milliseconds(),
			"ip":            c.IP(),
			"user_agent":    c.Get("User-Agent"),
			"request_size":  len(c.Request().Body()),
			"response_size": len(c.Response().Body()),
		}

		switch {
		case status >= 500:
			log.Error(logFields, "Server error")
		case status >= 400:
			log.Warn(logFields, "Client error")
		case isPolling(c.Path()):
			log.Debug(logFields, "Success")
		default:
			log.Info(logFields, "Success")
		}

		return err
	}
}

// isPolling reports paths viewers hit continuously.
func isPolling(path string) bool {
	return strings.HasSuffix(path, "/frame") || strings.HasSuffix(path, "/display") || strings.HasSuffix(path, "/snapshot")
}
