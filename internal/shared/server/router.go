package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/shared/config"
	"jobboard-backend/internal/shared/metrics"
	"jobboard-backend/internal/shared/server/middleware"
	"jobboard-backend/internal/shared/server/respond"
)

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers mounted under /api/v1. Nil handlers are skipped.
type RouterDeps struct {
	Config              config.Config
	Limiter             middleware.Limiter
	GoogleAuth          RouteRegistrar
	UserHandler         RouteRegistrar
	JobHandler          RouteRegistrar
	ResumeHandler       RouteRegistrar
	ApplicationHandler  RouteRegistrar
	NotificationHandler RouteRegistrar
}

// DefaultRateLimits are per principal. Reads get the higher default budget.
var DefaultRateLimits = map[string]middleware.RateLimitRule{
	middleware.GroupDefault: {Rate: 10, Burst: 60},
	middleware.GroupWrite:   {Rate: 2, Burst: 20},
	middleware.GroupUpload:  {Rate: 0.2, Burst: 5},
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    DefaultRateLimits,
			GroupFor: rateLimitGroup,
			Limiter:  deps.Limiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	for _, h := range []RouteRegistrar{
		deps.GoogleAuth,
		deps.UserHandler,
		deps.JobHandler,
		deps.ResumeHandler,
		deps.ApplicationHandler,
		deps.NotificationHandler,
	} {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	switch c.Request.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return middleware.GroupDefault
	}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return middleware.GroupUpload
	}
	return middleware.GroupWrite
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
