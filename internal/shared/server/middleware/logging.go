package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log.
const (
	LogApplicationIDKey    = "applicationId"
	LogJobIDKey            = "jobId"
	LogStatusTransitionKey = "statusTransition"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		applicationID, _ := c.Get(LogApplicationIDKey)
		jobID, _ := c.Get(LogJobIDKey)
		isGuest, _ := c.Get(isGuestKey)

		telemetry.Info("request.complete", map[string]any{
			"request_id":        RequestIDFromContext(c),
			"method":            c.Request.Method,
			"path":              c.Request.URL.Path,
			"route":             c.FullPath(),
			"status":            c.Writer.Status(),
			"status_transition": c.GetString(LogStatusTransitionKey),
			"duration_ms":       float64(latency.Microseconds()) / 1000.0,
			"user_id":           c.GetString(userIDKey),
			"job_seeker_id":     c.GetInt64(jobSeekerIDKey),
			"application_id":    applicationID,
			"job_id":            jobID,
			"is_guest":          isGuest,
			"client_ip":         c.ClientIP(),
			"user_agent":        c.Request.UserAgent(),
		})
	}
}
