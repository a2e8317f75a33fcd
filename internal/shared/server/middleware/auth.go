package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/shared/auth"
	"jobboard-backend/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
	roleKey        = "role"
	jobSeekerIDKey = "jobSeekerId"
	recruiterIDKey = "recruiterId"
	isGuestKey     = "isGuest"
)

var publicPrefixes = []string{
	"/api/v1/auth/google/",
	"/api/v1/health",
	"/api/v1/internal/",
	"/metrics",
}

// Identity is the caller resolved by Auth.
type Identity struct {
	UserID      string
	Role        string
	JobSeekerID int64
	RecruiterID int64
	Guest       bool
}

// Auth validates JWTs or guest headers and stores identity in context.
func Auth(env string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader != "" {
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			claims, err := auth.VerifyJWT(token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			c.Set(userIDKey, claims.Subject)
			c.Set(roleKey, claims.Role)
			if claims.JobSeekerID > 0 {
				c.Set(jobSeekerIDKey, claims.JobSeekerID)
			}
			if claims.RecruiterID > 0 {
				c.Set(recruiterIDKey, claims.RecruiterID)
			}
			if claims.Email != "" {
				c.Set(userEmailKey, claims.Email)
			}
			if claims.Name != "" {
				c.Set(userNameKey, claims.Name)
			}
			if claims.Picture != "" {
				c.Set(userPictureKey, claims.Picture)
			}
			c.Set(isGuestKey, false)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
		if guestID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}

		c.Set(userIDKey, "guest:"+guestID)
		c.Set(isGuestKey, true)
		c.Next()
	}
}

// IdentityFromContext collects everything Auth stored for the request.
func IdentityFromContext(c *gin.Context) Identity {
	if c == nil {
		return Identity{}
	}
	return Identity{
		UserID:      c.GetString(userIDKey),
		Role:        c.GetString(roleKey),
		JobSeekerID: c.GetInt64(jobSeekerIDKey),
		RecruiterID: c.GetInt64(recruiterIDKey),
		Guest:       c.GetBool(isGuestKey),
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}

// JobSeekerIDFromContext returns the caller's job seeker id, zero when absent.
func JobSeekerIDFromContext(c *gin.Context) int64 {
	if c == nil {
		return 0
	}
	return c.GetInt64(jobSeekerIDKey)
}

// RecruiterIDFromContext returns the caller's recruiter id, zero when absent.
func RecruiterIDFromContext(c *gin.Context) int64 {
	if c == nil {
		return 0
	}
	return c.GetInt64(recruiterIDKey)
}

func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userEmailKey)
}

func UserNameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userNameKey)
}

func UserPictureFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userPictureKey)
}
