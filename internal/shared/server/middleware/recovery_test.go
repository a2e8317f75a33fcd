package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"jobboard-backend/internal/shared/metrics"
	"jobboard-backend/internal/shared/telemetry"
)

func TestRecoveryKeepsAlreadyWrittenResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	defer telemetry.SetOutput(&buf)()

	router := gin.New()
	router.Use(Recovery())
	router.GET("/partial", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/partial", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "partial", resp.Body.String())
}

func TestRecoveryReturnsStandardError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	defer telemetry.SetOutput(&buf)()

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/jobs/:jobId/boom", func(c *gin.Context) {
		c.Set(LogJobIDKey, int64(7))
		panic("kaboom")
	})

	req := httptest.NewRequest(http.MethodGet, "/jobs/7/boom", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"error":{"code":"internal_error","message":"unexpected server error"}}`, resp.Body.String())
	assert.Contains(t, buf.String(), `"msg":"request.panic"`)
	assert.Contains(t, buf.String(), `"job_id":7`)
	assert.Contains(t, buf.String(), `"route":"/jobs/:jobId/boom"`)
	assert.Contains(t, metrics.Render(), "handler_panics_total")
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))
}
