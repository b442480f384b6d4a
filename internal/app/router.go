// internal/app/router.go
package app

import (
	"context"
	"net/http"
	"time"

	accountHandler "console-service/internal/handlers/account"
	adminHandler "console-service/internal/handlers/admin"
	authHandler "console-service/internal/handlers/auth"
	"console-service/internal/middleware"
	"console-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	AccountHandler *accountHandler.AccountHandler
	AdminHandler   *adminHandler.AdminHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
	Render         *response.Renderer
	Registry       *prometheus.Registry
	Redis          *redis.Client
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	// ==================== Health & Metrics ====================
	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Registry, promhttp.HandlerOpts{})))

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})

	// ==================== Guest Pages ====================
	guest := r.Group("", h.AuthMiddleware.Guest()...)
	{
		guest.GET("/login", h.AuthHandler.ShowLogin)
		guest.GET("/register", h.AuthHandler.ShowRegister)
	}

	// The reset and 2FA flows stay reachable while signed in.
	public := r.Group("", h.AuthMiddleware.Public()...)
	{
		public.GET("/forgot-password", h.AuthHandler.ShowForgotPassword)
		public.GET("/reset-password", h.AuthHandler.ShowResetPassword)
		public.GET("/verify-2fa", h.AuthHandler.ShowVerify2FA)
		public.POST("/reset-password", h.AuthHandler.ResetPassword)
	}

	// Credential forms are throttled per client IP.
	limit := h.RateLimiter.Middleware(h.AuthHandler.TooManyAttempts)
	guest.POST("/login", limit, h.AuthHandler.Login)
	guest.POST("/register", limit, h.AuthHandler.Register)
	public.POST("/forgot-password", limit, h.AuthHandler.ForgotPassword)
	public.POST("/verify-2fa", limit, h.AuthHandler.Verify2FA)
	public.POST("/verify-2fa/resend", limit, h.AuthHandler.Resend2FA)

	r.POST("/logout", h.AuthMiddleware.Session(), h.AuthMiddleware.Hydrate(), h.AuthHandler.Logout)

	// ==================== Account Pages ====================
	dashboard := r.Group("/dashboard", h.AuthMiddleware.Protected()...)
	{
		dashboard.GET("", h.AccountHandler.Dashboard)

		dashboard.GET("/profile", h.AccountHandler.ShowProfile)
		dashboard.POST("/profile", h.AccountHandler.UpdateProfile)
		dashboard.POST("/profile/preferences", h.AccountHandler.UpdatePreferences)

		dashboard.GET("/security", h.AccountHandler.ShowSecurity)
		dashboard.POST("/security/password", h.AccountHandler.ChangePassword)
		dashboard.POST("/security/2fa", h.AccountHandler.Toggle2FA)

		dashboard.GET("/sessions", h.AccountHandler.ListSessions)
		dashboard.POST("/sessions/revoke-all", h.AccountHandler.RevokeAll)
		dashboard.POST("/sessions/:id/revoke", h.AccountHandler.RevokeSession)
	}

	// ==================== Admin Console ====================
	admin := r.Group("/admin", h.AuthMiddleware.AdminOnly()...)
	{
		admin.GET("", h.AdminHandler.Overview)
		admin.GET("/users", h.AdminHandler.ListUsers)
		admin.POST("/users/:id/block", h.AdminHandler.ToggleBlock)
		admin.POST("/users/:id/archive", h.AdminHandler.ToggleArchive)
		admin.GET("/roles", h.AdminHandler.ListRoles)
		admin.GET("/audit-logs", h.AdminHandler.ListAuditLogs)
	}

	r.NoRoute(func(c *gin.Context) {
		h.Render.Error(c, http.StatusNotFound, "The page you are looking for does not exist.")
	})
}
