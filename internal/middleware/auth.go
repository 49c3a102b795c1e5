package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"dormdigest/internal/pkg"
	"dormdigest/internal/service"
)

const ContextUserIDKey = "user_id"

// SessionAuth resolves "Authorization: Bearer <session id>" to a user and
// injects its id. Sessions older than maxAge are rejected.
func SessionAuth(sessions *service.SessionService, users *service.UserService, maxAge time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthenticated", "msg": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthenticated", "msg": "invalid authorization format"})
			return
		}

		ctx := c.Request.Context()
		email, err := sessions.ValidateSession(ctx, parts[1], maxAge)
		if err != nil {
			code := pkg.Code(err)
			if code == "not_found" || code == "expired" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": code, "msg": "invalid or expired session"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": "internal", "msg": "session lookup failed"})
			return
		}

		user, err := users.EnsureUser(ctx, email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": "internal", "msg": "user lookup failed"})
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

// RequireAdmin admits site administrators only. It must run after
// SessionAuth.
func RequireAdmin(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := users.IsAuthorized(c.Request.Context(), c.GetUint64(ContextUserIDKey), nil)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": "internal", "msg": "privilege lookup failed"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "authorization", "msg": "admin only"})
			return
		}
		c.Next()
	}
}
