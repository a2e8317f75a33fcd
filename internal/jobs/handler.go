package jobs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/shared/auth"
	"jobboard-backend/internal/shared/server/middleware"
	"jobboard-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/:jobId", h.get)
	rg.POST("/jobs", h.create)
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	out, err := h.Svc.List(c.Request.Context(), middleware.JobSeekerIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list jobs", nil)
		return
	}
	respond.OK(c, gin.H{"items": out})
}

func (h *Handler) get(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Param("jobId"), 10, 64)
	if err != nil || jobID <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid job id", nil)
		return
	}
	c.Set(middleware.LogJobIDKey, jobID)
	out, err := h.Svc.Get(c.Request.Context(), middleware.JobSeekerIDFromContext(c), jobID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load job", nil)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) create(c *gin.Context) {
	id := middleware.IdentityFromContext(c)
	if id.Guest {
		respond.LoginRequired(c)
		return
	}
	if id.Role != auth.RoleRecruiter || id.RecruiterID <= 0 {
		respond.Error(c, http.StatusForbidden, "forbidden", "recruiter account required", nil)
		return
	}
	var in CreateJobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	job, err := h.Svc.Create(c.Request.Context(), id.RecruiterID, in)
	switch {
	case err == nil:
		respond.Created(c, job)
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "recruiter account required", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create job", nil)
	}
}
