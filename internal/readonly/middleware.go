// Package readonly rejects write requests while the server runs in
// read-only mode.
package readonly

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const blockedMessage = "This action is disabled in read-only mode"

// ContextKeyReadOnly exposes the mode to handlers.
const ContextKeyReadOnly = "read_only"

// Middleware blocks write operations in read-only mode.
// Safe methods are always allowed, as are the authentication endpoints so
// that clients can still log in and obtain tokens.
type Middleware struct {
	enabled      bool
	allowedPaths []string
}

func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{
		enabled: enabled,
		allowedPaths: []string{
			"/library/login",
			"/library/logout",
			"/library/auth/",
		},
	}
}

func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyReadOnly, m.enabled)

		if !m.enabled || isSafeMethod(c.Request.Method) || m.isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     blockedMessage,
			"read_only": true,
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func (m *Middleware) isAllowedPath(path string) bool {
	for _, allowed := range m.allowedPaths {
		if strings.HasPrefix(path, allowed) {
			return true
		}
	}
	return false
}
