// internal/middleware/auth_middleware.go
package middleware

import (
	"errors"
	"net/http"

	"console-service/internal/pkg/guard"
	"console-service/internal/pkg/rbac"
	"console-service/internal/pkg/response"
	"console-service/internal/pkg/session"
	"console-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	authService *auth.AuthService
	sessions    *session.Manager
	logger      *zap.Logger
}

func NewAuthMiddleware(authService *auth.AuthService, sessions *session.Manager, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// Session resolves (or issues) the browser session cookie and binds a fresh
// auth context for it to the request.
func (m *AuthMiddleware) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := m.sessions.Ensure(c)
		if err != nil {
			m.logger.Error("failed to establish session", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		bindSession(c, sid)
		c.Set(authContextKey, m.authService.NewContext(sid))
		c.Set(rotatorKey, m)
		c.Next()
	}
}

// Hydrate settles the auth context from the stored token. MUST be used after
// Session().
func (m *AuthMiddleware) Hydrate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, ok := GetAuthContext(c)
		if !ok {
			c.Next()
			return
		}
		ac.Hydrate(c.Request.Context())
		if ac.IsAuthenticated() {
			// Signed-in activity keeps the cookie alive for another idle window.
			if err := m.sessions.Refresh(c, ac.SessionID()); err != nil {
				m.logger.Warn("failed to refresh session cookie", zap.Error(err))
			}
		}
		publishUser(c, ac)
		c.Next()
	}
}

// RequireAuth sends anonymous visitors to the login page.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.enforce(c, guard.Authenticated(snapshot(c)))
	}
}

// RequireRole requires at least one of roles; signed-in users without one are
// sent to the dashboard.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	allowed := append([]string(nil), roles...)
	return func(c *gin.Context) {
		m.enforce(c, guard.RoleGate(snapshot(c), allowed))
	}
}

// GuestOnly keeps signed-in users off the credential pages.
func (m *AuthMiddleware) GuestOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.enforce(c, guard.Guest(snapshot(c)))
	}
}

// Protected returns the chain for signed-in pages.
func (m *AuthMiddleware) Protected() []gin.HandlerFunc {
	return []gin.HandlerFunc{m.Session(), m.Hydrate(), m.RequireAuth()}
}

// AdminOnly returns the chain for admin console pages.
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{m.Session(), m.Hydrate(), m.RequireRole(rbac.AdminRoles...)}
}

// Guest returns the chain for login and register.
func (m *AuthMiddleware) Guest() []gin.HandlerFunc {
	return []gin.HandlerFunc{m.Session(), m.Hydrate(), m.GuestOnly()}
}

// Public returns the chain for pages open to everyone, such as the password
// reset and 2FA flows.
func (m *AuthMiddleware) Public() []gin.HandlerFunc {
	return []gin.HandlerFunc{m.Session(), m.Hydrate()}
}

// rotate moves the auth context onto a freshly issued session id.
func (m *AuthMiddleware) rotate(c *gin.Context) error {
	ac, ok := GetAuthContext(c)
	if !ok {
		return errors.New("auth context not bound")
	}
	sid, err := m.sessions.Rotate(c)
	if err != nil {
		return err
	}
	if err := ac.Rebind(c.Request.Context(), sid); err != nil {
		return err
	}
	bindSession(c, sid)
	return nil
}

func (m *AuthMiddleware) enforce(c *gin.Context, d guard.Decision) {
	switch d.Outcome {
	case guard.Allow:
		c.Next()
	case guard.Redirect:
		m.logger.Debug("guard redirect",
			zap.String("path", c.Request.URL.Path),
			zap.String("target", d.Target),
		)
		status := http.StatusFound
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			status = http.StatusSeeOther
		}
		c.Redirect(status, d.Target)
		c.Abort()
	default:
		c.AbortWithStatus(http.StatusNoContent)
	}
}

func bindSession(c *gin.Context, sid string) {
	c.Request = c.Request.WithContext(session.WithID(c.Request.Context(), sid))
	c.Set(sessionIDKey, sid)
}

func snapshot(c *gin.Context) auth.State {
	ac, ok := GetAuthContext(c)
	if !ok {
		return auth.State{Loading: true}
	}
	return ac.Snapshot()
}

// publishUser exposes the current user to templates.
func publishUser(c *gin.Context, ac *auth.Context) {
	c.Set(response.CurrentUserKey, ac.Snapshot().User)
}
