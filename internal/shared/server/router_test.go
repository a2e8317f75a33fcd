package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"jobboard-backend/internal/shared/config"
	"jobboard-backend/internal/shared/server/middleware"
)

type echoHandler struct{}

func (echoHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.UserIDFromContext(c))
	})
	rg.POST("/echo", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func newTestRouter() *gin.Engine {
	return NewRouter(RouterDeps{
		Config:             config.Config{Env: "dev"},
		ApplicationHandler: echoHandler{},
	})
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	r := newTestRouter()

	for _, path := range []string{"/api/v1/health", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRoutesRequireIdentity(t *testing.T) {
	r := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/echo", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/echo", nil)
	req.Header.Set("X-Guest-Id", "abc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guest:abc", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRateLimitGroupByMethod(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		method      string
		contentType string
		want        string
	}{
		{http.MethodGet, "", middleware.GroupDefault},
		{http.MethodPost, "application/json", middleware.GroupWrite},
		{http.MethodPost, "multipart/form-data; boundary=x", middleware.GroupUpload},
		{http.MethodDelete, "", middleware.GroupWrite},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(tc.method, "/api/v1/applications", strings.NewReader(""))
		if tc.contentType != "" {
			c.Request.Header.Set("Content-Type", tc.contentType)
		}
		assert.Equal(t, tc.want, rateLimitGroup(c), tc.method+" "+tc.contentType)
	}
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":8080", Addr(""))
	assert.Equal(t, ":9000", Addr("9000"))
	assert.Equal(t, ":9000", Addr(":9000"))
}
