package respond

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"jobboard-backend/internal/shared/telemetry"
)

func TestErrorEnvelopeAndLogLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	defer telemetry.SetOutput(&buf)()

	router := gin.New()
	router.GET("/conflict", func(c *gin.Context) {
		c.Set("jobSeekerId", int64(42))
		Error(c, http.StatusConflict, "conflict", "already applied", gin.H{"jobId": 9})
	})
	router.GET("/guest", LoginRequired)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.JSONEq(t, `{"error":{"code":"conflict","message":"already applied","details":{"jobId":9}}}`, resp.Body.String())
	assert.Contains(t, buf.String(), `"level":"warning"`)
	assert.Contains(t, buf.String(), `"job_seeker_id":42`)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/guest", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), `"login_required"`)
}
