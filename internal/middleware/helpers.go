// internal/middleware/helpers.go
package middleware

import (
	"errors"

	"console-service/internal/pkg/response"
	"console-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

const (
	sessionIDKey   = "session_id"
	authContextKey = "auth_context"
	rotatorKey     = "session_rotator"
	requestIDKey   = response.RequestIDKey
)

// GetAuthContext returns the auth context bound by Session().
func GetAuthContext(c *gin.Context) (*auth.Context, bool) {
	v, exists := c.Get(authContextKey)
	if !exists {
		return nil, false
	}
	ac, ok := v.(*auth.Context)
	return ac, ok
}

// MustGetAuthContext gets the auth context or panics
func MustGetAuthContext(c *gin.Context) *auth.Context {
	ac, ok := GetAuthContext(c)
	if !ok {
		panic("auth context not found in gin context")
	}
	return ac
}

// GetSessionID returns the browser session id.
func GetSessionID(c *gin.Context) (string, bool) {
	v, exists := c.Get(sessionIDKey)
	if !exists {
		return "", false
	}
	sid, ok := v.(string)
	return sid, ok
}

// SyncUser republishes the auth context's user after a mutation so the
// page rendered in the same request sees it.
func SyncUser(c *gin.Context) {
	if ac, ok := GetAuthContext(c); ok {
		publishUser(c, ac)
	}
}

// RotateSession moves the request onto a new browser session id, carrying
// the stored tokens along, and re-issues the cookie. The previous id is left
// empty. MUST be called before the response is written.
func RotateSession(c *gin.Context) error {
	v, exists := c.Get(rotatorKey)
	if !exists {
		return errors.New("session middleware not installed")
	}
	m, ok := v.(*AuthMiddleware)
	if !ok {
		return errors.New("session middleware not installed")
	}
	return m.rotate(c)
}
