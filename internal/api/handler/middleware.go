package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"modhub/backend/internal/apperr"
	"modhub/backend/internal/auth"
	"modhub/backend/internal/storage"
)

// RequestLogger logs every request once it has been served.
func (h *Handler) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if userID, ok := c.Get(ctxUserIDKey); ok {
			args = append(args, "user_id", userID)
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			h.log.Error("HTTP request completed with server error", args...)
		case status >= 400:
			h.log.Warn("HTTP request completed with client error", args...)
		default:
			h.log.Debug("HTTP request completed", args...)
		}
	}
}

// Recovery turns panics into a 500 {message} response.
func (h *Handler) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		h.log.Error("panic recovered", "method", c.Request.Method, "path", c.Request.URL.Path, "error", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	})
}

// bearerToken reads the token from the Authorization header, falling back to
// ?token= for WebSocket handshakes, which cannot carry custom headers in browsers.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return c.Query("token")
}

// Authenticate resolves the caller. Requests without a usable token continue as
// visitors, so a stale token never blocks login or public reads; Can and
// RequireLogin reject visitors where an account is needed.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		userID, err := h.Tokens.Parse(token)
		if err != nil {
			h.log.Debug("ignoring invalid token", "path", c.Request.URL.Path, "error", err)
			c.Next()
			return
		}

		user, err := h.Storage.GetUser(userID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				h.respondError(c, err)
				return
			}
			// Токен облікового запису, якого вже немає.
			h.log.Debug("token names a missing account", "user_id", userID)
			c.Next()
			return
		}

		c.Set(ctxUserKey, user)
		c.Set(ctxUserIDKey, user.ID)
		c.Next()
	}
}

// Can checks the caller's role against the policy. Banned accounts keep read access only.
func (h *Handler) Can(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		allowed, err := h.Enforcer.Allowed(auth.RoleOf(user), resource, action)
		if err != nil {
			h.respondError(c, err)
			return
		}
		if !allowed {
			if user == nil {
				h.respondError(c, apperr.NewUnauthorizedError("Authentication required"))
				return
			}
			h.log.Warn("permission denied", "user_id", user.ID, "resource", resource, "action", action)
			h.respondError(c, apperr.NewForbiddenError("Insufficient permissions"))
			return
		}

		if user != nil && user.IsBanned && action != auth.ActionRead {
			h.respondError(c, apperr.NewForbiddenError("Your account is banned"))
			return
		}

		c.Next()
	}
}

// RequireLogin rejects visitors.
func (h *Handler) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			h.respondError(c, apperr.NewUnauthorizedError("Authentication required"))
			return
		}
		c.Next()
	}
}
