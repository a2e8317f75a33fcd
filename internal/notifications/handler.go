package notifications

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/shared/server/middleware"
	"jobboard-backend/internal/shared/server/respond"
)

type Handler struct {
	Store Store
	Now   func() time.Time
}

func NewHandler(store Store) *Handler {
	return &Handler{Store: store, Now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.list)
	rg.POST("/notifications/:id/read", h.markRead)
}

func (h *Handler) list(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	unreadOnly := strings.EqualFold(strings.TrimSpace(c.Query("unread")), "true")
	limit := 50
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be between 1 and 200", nil)
			return
		}
		limit = n
	}
	items, err := h.Store.ListByUser(c.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load notifications", nil)
		return
	}
	if items == nil {
		items = []Notification{}
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) markRead(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid notification id", nil)
		return
	}
	if err := h.Store.MarkRead(c.Request.Context(), userID, id, h.Now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "notification not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update notification", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func requireUser(c *gin.Context) (int64, bool) {
	id := middleware.IdentityFromContext(c)
	if id.Guest {
		respond.LoginRequired(c)
		return 0, false
	}
	userID, err := strconv.ParseInt(id.UserID, 10, 64)
	if err != nil || userID <= 0 {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return 0, false
	}
	return userID, true
}
