package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard-backend/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	router := gin.New()
	router.Use(RequestID(), Auth("dev"), Logging())
	router.POST("/api/v1/applications/:id/withdraw", func(c *gin.Context) {
		c.Set(LogApplicationIDKey, int64(7))
		c.Set(LogJobIDKey, int64(9))
		c.Set(LogStatusTransitionKey, "received->withdrawn")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications/7/withdraw", nil)
	req.Header.Set("X-Guest-Id", "guest1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &payload))

	for _, key := range []string{"request_id", "user_id", "application_id", "job_id", "duration_ms", "status", "status_transition"} {
		assert.Contains(t, payload, key)
	}
	assert.Equal(t, "request.complete", payload["msg"])
	assert.Equal(t, "guest:guest1", payload["user_id"])
	assert.EqualValues(t, 7, payload["application_id"])
	assert.EqualValues(t, 9, payload["job_id"])
	assert.Equal(t, "received->withdrawn", payload["status_transition"])
	assert.Equal(t, "/api/v1/applications/:id/withdraw", payload["route"])
}
