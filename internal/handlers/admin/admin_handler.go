// internal/handlers/admin/admin_handler.go
package admin

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"console-service/internal/client"
	"console-service/internal/domain/admin"
	"console-service/internal/domain/auth"
	xerrors "console-service/internal/pkg/errors"
	"console-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgUserActionFailed = "Failed to update user"
	msgStatsFailed      = "Failed to load dashboard stats"
	msgUsersFailed      = "Failed to load users"
	msgRolesFailed      = "Failed to load roles"
	msgAuditFailed      = "Failed to load audit logs"
)

// ConsoleAPI is the part of the remote API behind the admin console.
type ConsoleAPI interface {
	DashboardStats(ctx context.Context) (*admin.DashboardStats, error)
	ListUsers(ctx context.Context, page, limit int) (*client.Page[auth.User], error)
	SetUserBlocked(ctx context.Context, userID string, blocked bool) error
	SetUserArchived(ctx context.Context, userID string, archived bool) error
	ListRoles(ctx context.Context) ([]auth.Role, error)
	ListAuditLogs(ctx context.Context, page, limit int) (*client.Page[admin.AuditLog], error)
}

type AdminHandler struct {
	api    ConsoleAPI
	render *response.Renderer
	logger *zap.Logger
}

func NewAdminHandler(api ConsoleAPI, render *response.Renderer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		api:    api,
		render: render,
		logger: logger,
	}
}

// Pager drives the previous/next controls of a list page.
type Pager struct {
	Page       int
	TotalPages int
	BaseURL    string
}

func (p Pager) HasPrev() bool { return p.Page > 1 }
func (p Pager) HasNext() bool { return p.Page < p.TotalPages }

func (p Pager) PrevURL() string { return fmt.Sprintf("%s?page=%d", p.BaseURL, p.Page-1) }
func (p Pager) NextURL() string { return fmt.Sprintf("%s?page=%d", p.BaseURL, p.Page+1) }

// ========== Overview ==========

func (h *AdminHandler) Overview(c *gin.Context) {
	stats, err := h.api.DashboardStats(c.Request.Context())
	loadErr := ""
	if err != nil {
		h.logger.Warn("failed to load dashboard stats", zap.Error(err))
		stats = &admin.DashboardStats{}
		loadErr = xerrors.UserMessage(err, msgStatsFailed)
	}

	h.render.HTML(c, http.StatusOK, "admin_overview.tmpl", gin.H{
		"Title":     "Admin Dashboard",
		"Stats":     stats,
		"LoadError": loadErr,
	})
}

// ========== Users ==========

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page := pageParam(c.Query("page"))

	result, err := h.api.ListUsers(c.Request.Context(), page, admin.UsersPageSize)
	loadErr := ""
	if err != nil {
		h.logger.Warn("failed to load users", zap.Int("page", page), zap.Error(err))
		result = &client.Page[auth.User]{Items: []auth.User{}, Page: page, Limit: admin.UsersPageSize, TotalPages: 1}
		loadErr = xerrors.UserMessage(err, msgUsersFailed)
	}

	h.render.HTML(c, http.StatusOK, "admin_users.tmpl", gin.H{
		"Title":     "User Management",
		"Users":     result.Items,
		"Pager":     Pager{Page: result.Page, TotalPages: result.TotalPages, BaseURL: "/admin/users"},
		"LoadError": loadErr,
	})
}

// ToggleBlock flips the blocked flag from the state the row was rendered with.
func (h *AdminHandler) ToggleBlock(c *gin.Context) {
	h.rowAction(c, "block", func(ctx context.Context, id string, current bool) error {
		return h.api.SetUserBlocked(ctx, id, !current)
	})
}

// ToggleArchive flips the archived flag from the state the row was rendered with.
func (h *AdminHandler) ToggleArchive(c *gin.Context) {
	h.rowAction(c, "archive", func(ctx context.Context, id string, current bool) error {
		return h.api.SetUserArchived(ctx, id, !current)
	})
}

// rowAction runs one user mutation and returns to the same page, which
// refetches it. Failures surface the server message as a flash.
func (h *AdminHandler) rowAction(c *gin.Context, action string, fn func(ctx context.Context, id string, current bool) error) {
	userID := c.Param("id")
	back := fmt.Sprintf("/admin/users?page=%d", pageParam(c.PostForm("page")))

	var form admin.RowActionForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Info("rejected user action form",
			zap.String("action", action),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		h.render.Fail(c, msgUserActionFailed)
		response.Redirect(c, back)
		return
	}

	if err := fn(c.Request.Context(), userID, *form.Current); err != nil {
		h.logger.Info("user action failed",
			zap.String("action", action),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		h.render.Fail(c, xerrors.UserMessage(err, msgUserActionFailed))
	}
	response.Redirect(c, back)
}

// ========== Roles ==========

func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.api.ListRoles(c.Request.Context())
	loadErr := ""
	if err != nil {
		h.logger.Warn("failed to load roles", zap.Error(err))
		roles = []auth.Role{}
		loadErr = xerrors.UserMessage(err, msgRolesFailed)
	}

	h.render.HTML(c, http.StatusOK, "admin_roles.tmpl", gin.H{
		"Title":     "Role Management",
		"Roles":     roles,
		"LoadError": loadErr,
	})
}

// ========== Audit Logs ==========

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	page := pageParam(c.Query("page"))

	result, err := h.api.ListAuditLogs(c.Request.Context(), page, admin.AuditLogsPageSize)
	loadErr := ""
	if err != nil {
		h.logger.Warn("failed to load audit logs", zap.Int("page", page), zap.Error(err))
		result = &client.Page[admin.AuditLog]{Items: []admin.AuditLog{}, Page: page, Limit: admin.AuditLogsPageSize, TotalPages: 1}
		loadErr = xerrors.UserMessage(err, msgAuditFailed)
	}

	h.render.HTML(c, http.StatusOK, "admin_audit_logs.tmpl", gin.H{
		"Title":     "Audit Logs",
		"Logs":      result.Items,
		"Pager":     Pager{Page: result.Page, TotalPages: result.TotalPages, BaseURL: "/admin/audit-logs"},
		"LoadError": loadErr,
	})
}

func pageParam(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
