package resumes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/shared/server/middleware"
	"jobboard-backend/internal/shared/server/respond"
	"jobboard-backend/internal/shared/telemetry"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes", h.list)
	rg.PUT("/resumes/:id/profile", h.setProfile)
	rg.GET("/resumes/:id/download", h.download)
	rg.POST("/resumes/presign", h.presign)
	rg.POST("/resumes/from-s3", h.createFromStored)
}

// ReadUpload pulls the "file" part and the "extractedData" JSON field from a multipart request.
// The returned closer releases the file part.
func ReadUpload(c *gin.Context) (UploadInput, io.Closer, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return UploadInput{}, nil, fmt.Errorf("%w: file is required", ErrValidation)
	}
	raw := strings.TrimSpace(c.PostForm("extractedData"))
	if raw == "" {
		return UploadInput{}, nil, fmt.Errorf("%w: extractedData is required", ErrValidation)
	}
	var extracted ExtractedData
	if err := json.Unmarshal([]byte(raw), &extracted); err != nil {
		return UploadInput{}, nil, fmt.Errorf("%w: extractedData is not valid JSON", ErrValidation)
	}
	f, err := fileHeader.Open()
	if err != nil {
		return UploadInput{}, nil, fmt.Errorf("open upload: %w", err)
	}
	return UploadInput{FileName: fileHeader.Filename, Body: f, Extracted: &extracted}, f, nil
}

func (h *Handler) upload(c *gin.Context) {
	jobSeekerID, ok := requireJobSeeker(c)
	if !ok {
		return
	}
	in, closer, err := ReadUpload(c)
	if err != nil {
		WriteError(c, err)
		return
	}
	defer closer.Close()

	created, err := h.Svc.CreateFromUpload(c.Request.Context(), jobSeekerID, in)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.Created(c, created)
}

func (h *Handler) list(c *gin.Context) {
	jobSeekerID, ok := requireJobSeeker(c)
	if !ok {
		return
	}
	out, err := h.Svc.List(c.Request.Context(), jobSeekerID)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, gin.H{"items": out})
}

func (h *Handler) setProfile(c *gin.Context) {
	jobSeekerID, ok := requireJobSeeker(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid resume id", nil)
		return
	}
	if err := h.Svc.SetProfile(c.Request.Context(), jobSeekerID, id); err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "profileResumeId": id})
}

func (h *Handler) download(c *gin.Context) {
	jobSeekerID, ok := requireJobSeeker(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid resume id", nil)
		return
	}
	url, err := h.Svc.DownloadURL(c.Request.Context(), jobSeekerID, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, gin.H{"url": url})
}

type presignRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	SizeBytes   int64  `json:"sizeBytes" binding:"required"`
}

func (h *Handler) presign(c *gin.Context) {
	jobSeekerID, ok := requireJobSeeker(c)
	if !ok {
		return
	}
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	out, err := h.Svc.PresignUpload(c.Request.Context(), jobSeekerID, strings.TrimSpace(req.FileName), strings.TrimSpace(req.ContentType), req.SizeBytes)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, out)
}

type createFromStoredRequest struct {
	Key           string         `json:"key" binding:"required"`
	FileName      string         `json:"fileName" binding:"required"`
	ExtractedData *ExtractedData `json:"extractedData" binding:"required"`
}

// createFromStored finishes a presigned upload by recording the stored object as a resume.
func (h *Handler) createFromStored(c *gin.Context) {
	jobSeekerID, ok := requireJobSeeker(c)
	if !ok {
		return
	}
	var req createFromStoredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	created, err := h.Svc.CreateFromStoredObject(c.Request.Context(), jobSeekerID, req.Key, req.FileName, req.ExtractedData)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.Created(c, created)
}

func requireJobSeeker(c *gin.Context) (int64, bool) {
	id := middleware.IdentityFromContext(c)
	if id.Guest {
		respond.LoginRequired(c)
		return 0, false
	}
	if id.JobSeekerID <= 0 {
		respond.Error(c, http.StatusForbidden, "forbidden", "job seeker account required", nil)
		return 0, false
	}
	return id.JobSeekerID, true
}

// WriteError maps resume errors onto the standard error envelope.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "resume exceeds the size limit", nil)
	case errors.Is(err, ErrUnsupportedType):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", "resume must be a PDF or DOCX file", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "resume belongs to another account", nil)
	case errors.Is(err, ErrPresignDisabled):
		respond.Error(c, http.StatusNotImplemented, "not_configured", "direct uploads are not available", nil)
	default:
		telemetry.Error("resume.request.failed", map[string]any{
			"error":      err.Error(),
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "resume request failed", nil)
	}
}
