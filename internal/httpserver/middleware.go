package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuskul/crm-console-api/internal/auth"
	"github.com/campuskul/crm-console-api/internal/observer"
	"github.com/campuskul/crm-console-api/internal/session"
	"github.com/campuskul/crm-console-api/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// requestScope stamps every request with an ID and records duration
// metrics keyed by route template.
func requestScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		ctx := session.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// requestLogger writes one access log line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.FromContext(c.Request.Context()).Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

// authenticate parses the bearer token and injects the session into the
// request context. Requests without a valid token are rejected.
func authenticate(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				envelope{Success: false, Message: "authentication required"})
			return
		}

		sess, err := manager.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				envelope{Success: false, Message: "invalid or expired token"})
			return
		}

		ctx := session.WithSession(c.Request.Context(), sess)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireRole gates a route subtree on the session role.
func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := session.FromContext(c.Request.Context())
		if err != nil || sess.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden,
				envelope{Success: false, Message: "insufficient permissions"})
			return
		}
		c.Next()
	}
}
