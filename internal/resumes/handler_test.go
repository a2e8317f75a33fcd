package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResumeRouter(svc *Service, jobSeekerID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("requestId", "req-test")
		c.Set("userId", "3")
		c.Set("role", "job_seeker")
		c.Set("jobSeekerId", jobSeekerID)
		c.Set("isGuest", false)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreateFromStoredHandler(t *testing.T) {
	svc, _ := newService(t)
	stored, err := svc.Store.Put(context.Background(), ownerKey(42), "cv.pdf", strings.NewReader(pdfBody))
	require.NoError(t, err)

	resp := postJSON(newResumeRouter(svc, 42), "/api/v1/resumes/from-s3", map[string]any{"key": stored.Key})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	body := map[string]any{
		"key":           stored.Key,
		"fileName":      "cv.pdf",
		"extractedData": map[string]any{"skills": []string{"go"}},
	}
	resp = postJSON(newResumeRouter(svc, 43), "/api/v1/resumes/from-s3", body)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = postJSON(newResumeRouter(svc, 42), "/api/v1/resumes/from-s3", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var created Resume
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "cv.pdf", created.FileName)

	list, err := svc.List(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
