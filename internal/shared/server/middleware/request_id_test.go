package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/shared/telemetry"
)

func TestRequestIDPropagatesToRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())

	var fromCtx string
	router.GET("/x", func(c *gin.Context) {
		fromCtx = telemetry.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if fromCtx != "abc" || resp.Header().Get("X-Request-Id") != "abc" {
		t.Fatalf("expected request id abc, ctx=%q header=%q", fromCtx, resp.Header().Get("X-Request-Id"))
	}
}
