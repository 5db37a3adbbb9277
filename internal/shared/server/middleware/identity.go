package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"knowledgebase-backend/internal/shared/server/respond"
)

const (
	userIDKey   = "userId"
	userNameKey = "userName"
)

// Identity resolves the caller from trusted headers set by the auth
// gateway in front of this service and stores it in the request context.
// Requests without an identity are rejected.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if userID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}

		c.Set(userIDKey, userID)
		if name := strings.TrimSpace(c.GetHeader("X-User-Name")); name != "" {
			c.Set(userNameKey, name)
		}
		c.Next()
	}
}

// UserIDFromContext fetches the user ID stored by Identity middleware.
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// UserNameFromContext fetches the caller's display name, falling back to
// the user ID when no name header was sent.
func UserNameFromContext(c *gin.Context) string {
	if name := c.GetString(userNameKey); name != "" {
		return name
	}
	return c.GetString(userIDKey)
}
