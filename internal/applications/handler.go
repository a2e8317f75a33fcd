package applications

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"jobboard-backend/internal/resumes"
	"jobboard-backend/internal/shared/auth"
	"jobboard-backend/internal/shared/server/middleware"
	"jobboard-backend/internal/shared/server/respond"
	"jobboard-backend/internal/shared/telemetry"
	"jobboard-backend/internal/viewcache"
)

const (
	internalTokenHeader = "X-Internal-Token"
	defaultCacheTTL     = 2 * time.Minute
)

var validate = validator.New()

// Handler wires HTTP handlers to the application service.
type Handler struct {
	Svc           *Service
	Cache         viewcache.Cache
	CacheTTL      time.Duration
	InternalToken string
}

func NewHandler(svc *Service, cache viewcache.Cache, internalToken string) *Handler {
	return &Handler{Svc: svc, Cache: cache, CacheTTL: defaultCacheTTL, InternalToken: internalToken}
}

// RegisterRoutes attaches application routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs/:jobId/application/active", h.hasActive)
	rg.POST("/jobs/:jobId/applications", h.submit)
	rg.POST("/jobs/:jobId/bookmark", h.toggleBookmark)
	rg.GET("/jobs/:jobId/applications", h.listForJob)
	rg.GET("/applications", h.listMine)
	rg.POST("/applications/:id/withdraw", h.withdraw)
	rg.PATCH("/applications/:id/status", h.updateStatus)
	rg.PUT("/internal/applications/:id/match-score", h.recordMatchScore)
	rg.DELETE("/admin/applications/:id", h.adminDelete)
}

func (h *Handler) hasActive(c *gin.Context) {
	jobSeekerID, ok := requireJobSeeker(c)
	if !ok {
		return
	}
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}
	active, err := h.Svc.HasActiveApplication(c.Request.Context(), jobSeekerID, jobID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"hasActive": active})
}

func (h *Handler) submit(c *gin.Context) {
	jobSeekerID, ok := requireJobSeeker(c)
	if !ok {
		return
	}
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	in := SubmitInput{JobSeekerID: jobSeekerID, JobID: jobID}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if raw := strings.TrimSpace(c.PostForm("existingResumeId")); raw != "" {
			resumeID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || resumeID <= 0 {
				respond.Error(c, http.StatusBadRequest, "validation_error", "invalid existingResumeId", nil)
				return
			}
			in.ExistingResumeID = &resumeID
		}
		if _, err := c.FormFile("file"); err == nil {
			upload, closer, err := resumes.ReadUpload(c)
			if err != nil {
				writeError(c, err)
				return
			}
			defer closer.Close()
			in.Upload = &upload
		}
	} else {
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
		if err := validate.Struct(req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "existingResumeId or a resume upload is required", nil)
			return
		}
		in.ExistingResumeID = req.ExistingResumeID
	}

	app, err := h.Svc.Submit(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.LogApplicationIDKey, app.ID)
	c.Set(middleware.LogStatusTransitionKey, "->"+string(StatusReceived))
	h.invalidate(c,
		viewcache.MyApplicationsKey(jobSeekerID),
		viewcache.JobListKey(jobSeekerID),
		viewcache.JobDetailKey(jobSeekerID, jobID),
	)
	respond.Created(c, gin.H{"success": true, "applicationId": app.ID})
}

func (h *Handler) withdraw(c *gin.Context) {
	jobSeekerID, ok := requireJobSeeker(c)
	if !ok {
		return
	}
	applicationID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	app, err := h.Svc.Withdraw(c.Request.Context(), applicationID, jobSeekerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.LogJobIDKey, app.JobID)
	c.Set(middleware.LogStatusTransitionKey, "->"+string(StatusWithdrawn))
	h.invalidate(c,
		viewcache.MyApplicationsKey(jobSeekerID),
		viewcache.JobListKey(jobSeekerID),
		viewcache.JobDetailKey(jobSeekerID, app.JobID),
	)
	respond.OK(c, gin.H{"success": true, "application": toSummary(app)})
}

func (h *Handler) toggleBookmark(c *gin.Context) {
	jobSeekerID, ok := requireJobSeeker(c)
	if !ok {
		return
	}
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}
	value, err := h.Svc.ToggleBookmark(c.Request.Context(), jobSeekerID, jobID)
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidate(c,
		viewcache.MyApplicationsKey(jobSeekerID),
		viewcache.JobListKey(jobSeekerID),
		viewcache.JobDetailKey(jobSeekerID, jobID),
	)
	respond.OK(c, gin.H{"success": true, "isBookmark": value})
}

func (h *Handler) listMine(c *gin.Context) {
	jobSeekerID, ok := requireJobSeeker(c)
	if !ok {
		return
	}
	statuses, err := ParseStatuses(c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	key := viewcache.MyApplicationsKey(jobSeekerID)
	var all []ApplicationSummary
	cached := false
	if h.Cache != nil {
		hit, err := h.Cache.Get(ctx, key, &all)
		if err != nil {
			telemetry.Warn("viewcache.get.failed", map[string]any{"key": key, "error": err.Error()})
		}
		cached = hit && err == nil
	}
	if !cached {
		apps, err := h.Svc.ListMine(ctx, jobSeekerID, nil)
		if err != nil {
			writeError(c, err)
			return
		}
		all = toSummaries(apps)
		if h.Cache != nil {
			if err := h.Cache.Set(ctx, key, all, h.CacheTTL); err != nil {
				telemetry.Warn("viewcache.set.failed", map[string]any{"key": key, "error": err.Error()})
			}
		}
	}
	respond.OK(c, filterSummaries(all, statuses))
}

func (h *Handler) listForJob(c *gin.Context) {
	recruiterID, ok := requireRecruiter(c)
	if !ok {
		return
	}
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}
	apps, err := h.Svc.ListForJob(c.Request.Context(), jobID, recruiterID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toSummaries(apps))
}

func (h *Handler) updateStatus(c *gin.Context) {
	recruiterID, ok := requireRecruiter(c)
	if !ok {
		return
	}
	applicationID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "status must be shortlisted or rejected", nil)
		return
	}
	app, err := h.Svc.UpdateStatus(c.Request.Context(), applicationID, recruiterID, Status(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.LogJobIDKey, app.JobID)
	c.Set(middleware.LogStatusTransitionKey, "->"+req.Status)
	h.invalidate(c,
		viewcache.MyApplicationsKey(app.JobSeekerID),
		viewcache.JobListKey(app.JobSeekerID),
		viewcache.JobDetailKey(app.JobSeekerID, app.JobID),
	)
	respond.OK(c, gin.H{"success": true, "application": toSummary(app)})
}

func (h *Handler) recordMatchScore(c *gin.Context) {
	token := c.GetHeader(internalTokenHeader)
	if h.InternalToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.InternalToken)) != 1 {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid internal token", nil)
		return
	}
	applicationID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	var req matchScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "matchScore is required", nil)
		return
	}
	app, err := h.Svc.RecordMatchScore(c.Request.Context(), applicationID, *req.MatchScore)
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidate(c, viewcache.MyApplicationsKey(app.JobSeekerID))
	c.Status(http.StatusNoContent)
}

func (h *Handler) adminDelete(c *gin.Context) {
	id := middleware.IdentityFromContext(c)
	if id.Guest || id.Role != auth.RoleAdmin {
		respond.Error(c, http.StatusForbidden, "forbidden", "admin role required", nil)
		return
	}
	applicationID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), applicationID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) invalidate(c *gin.Context, keys ...string) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Delete(c.Request.Context(), keys...); err != nil {
		telemetry.Warn("viewcache.invalidate.failed", map[string]any{
			"request_id": c.GetString("requestId"),
			"keys":       keys,
			"error":      err.Error(),
		})
	}
}

func filterSummaries(all []ApplicationSummary, statuses []Status) []ApplicationSummary {
	if len(statuses) == 0 {
		if all == nil {
			return []ApplicationSummary{}
		}
		return all
	}
	want := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	out := []ApplicationSummary{}
	for _, a := range all {
		if want[a.Status] {
			out = append(out, a)
		}
	}
	return out
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

func requireRecruiter(c *gin.Context) (int64, bool) {
	id := middleware.IdentityFromContext(c)
	if id.Guest {
		respond.LoginRequired(c)
		return 0, false
	}
	if id.RecruiterID <= 0 {
		respond.Error(c, http.StatusForbidden, "forbidden", "recruiter account required", nil)
		return 0, false
	}
	return id.RecruiterID, true
}

func jobIDParam(c *gin.Context) (int64, bool) {
	jobID, err := strconv.ParseInt(c.Param("jobId"), 10, 64)
	if err != nil || jobID <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid job id", nil)
		return 0, false
	}
	c.Set(middleware.LogJobIDKey, jobID)
	return jobID, true
}

func applicationIDParam(c *gin.Context) (int64, bool) {
	applicationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || applicationID <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid application id", nil)
		return 0, false
	}
	c.Set(middleware.LogApplicationIDKey, applicationID)
	return applicationID, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", "an active application for this job already exists", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "not found", nil)
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrInvalidState):
		respond.Error(c, http.StatusConflict, "invalid_state", "operation not allowed in the current state", nil)
	case errors.Is(err, resumes.ErrValidation),
		errors.Is(err, resumes.ErrTooLarge),
		errors.Is(err, resumes.ErrUnsupportedType),
		errors.Is(err, resumes.ErrNotFound),
		errors.Is(err, resumes.ErrForbidden):
		resumes.WriteError(c, err)
	default:
		telemetry.Error("application.request.failed", map[string]any{
			"error":      err.Error(),
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "application request failed", nil)
	}
}
