// internal/handlers/account/account_handler.go
package account

import (
	"context"
	"net/http"

	"console-service/internal/domain/auth"
	"console-service/internal/middleware"
	xerrors "console-service/internal/pkg/errors"
	"console-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgProfileFailed   = "Failed to update profile"
	msgPasswordFailed  = "Failed to change password"
	msgToggleFailed    = "Failed to toggle 2FA"
	msgRevokeFailed    = "Failed to revoke session"
	msgRevokeAllFailed = "Failed to logout from all devices"
	msgThemeFailed     = "Failed to update theme"
	msgSessionsFailed  = "Failed to load sessions"

	msgProfileUpdated  = "Profile updated successfully!"
	msgPasswordChanged = "Password changed successfully!"
	msgThemeUpdated    = "Preferences saved"
	msgSessionRevoked  = "Session revoked"
)

// ProfileAPI is the part of the remote API behind the signed-in pages.
type ProfileAPI interface {
	UpdateProfile(ctx context.Context, req *auth.UpdateProfileRequest) (*auth.User, error)
	UpdatePreferences(ctx context.Context, req *auth.PreferencesRequest) error
	ChangePassword(ctx context.Context, current, newPassword string) error
	Toggle2FA(ctx context.Context, enable bool) error
	ListSessions(ctx context.Context) ([]auth.Session, error)
	RevokeSession(ctx context.Context, sessionID string) error
}

type AccountHandler struct {
	api    ProfileAPI
	render *response.Renderer
	logger *zap.Logger
}

func NewAccountHandler(api ProfileAPI, render *response.Renderer, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		api:    api,
		render: render,
		logger: logger,
	}
}

// ========== Dashboard ==========

func (h *AccountHandler) Dashboard(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "dashboard.tmpl", gin.H{"Title": "Dashboard"})
}

// ========== Profile ==========

func (h *AccountHandler) ShowProfile(c *gin.Context) {
	h.renderProfile(c, http.StatusOK, nil, nil, "")
}

// UpdateProfile saves the name fields and replaces the cached user.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req auth.UpdateProfileRequest
	bindErr := c.ShouldBind(&req)
	form := gin.H{"firstName": req.FirstName, "lastName": req.LastName}
	if bindErr != nil {
		h.renderProfile(c, http.StatusUnprocessableEntity, form, response.FieldErrors(bindErr), "")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.api.UpdateProfile(ctx, &req); err != nil {
		h.logger.Info("profile update failed", zap.Error(err))
		h.renderProfile(c, http.StatusUnprocessableEntity, form, nil, xerrors.UserMessage(err, msgProfileFailed))
		return
	}

	h.refreshUser(c)
	h.render.Success(c, msgProfileUpdated)
	response.Redirect(c, "/dashboard/profile")
}

// UpdatePreferences stores the display theme.
func (h *AccountHandler) UpdatePreferences(c *gin.Context) {
	var req auth.PreferencesRequest
	if err := c.ShouldBind(&req); err != nil {
		msg := response.FieldErrors(err)["theme"]
		if msg == "" {
			msg = msgThemeFailed
		}
		h.render.Fail(c, msg)
		response.Redirect(c, "/dashboard/profile")
		return
	}

	if err := h.api.UpdatePreferences(c.Request.Context(), &req); err != nil {
		h.logger.Info("preferences update failed", zap.Error(err))
		h.render.Fail(c, xerrors.UserMessage(err, msgThemeFailed))
		response.Redirect(c, "/dashboard/profile")
		return
	}

	h.refreshUser(c)
	h.render.Success(c, msgThemeUpdated)
	response.Redirect(c, "/dashboard/profile")
}

func (h *AccountHandler) renderProfile(c *gin.Context, status int, form gin.H, fieldErrs map[string]string, message string) {
	if form == nil {
		form = gin.H{}
		if u := response.CurrentUser(c); u != nil {
			form["firstName"] = u.FirstName
			form["lastName"] = u.LastName
		}
	}
	h.render.HTML(c, status, "profile.tmpl", gin.H{
		"Title":  "Profile Settings",
		"Form":   form,
		"Errors": fieldErrs,
		"Error":  message,
	})
}

// ========== Security ==========

func (h *AccountHandler) ShowSecurity(c *gin.Context) {
	h.renderSecurity(c, http.StatusOK, nil, "")
}

func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req auth.ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderSecurity(c, http.StatusUnprocessableEntity, response.FieldErrors(err), "")
		return
	}

	if err := h.api.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		h.logger.Info("password change failed", zap.Error(err))
		h.renderSecurity(c, http.StatusUnprocessableEntity, nil, xerrors.UserMessage(err, msgPasswordFailed))
		return
	}

	h.render.Success(c, msgPasswordChanged)
	response.Redirect(c, "/dashboard/security")
}

// Toggle2FA flips the second factor to the submitted state.
func (h *AccountHandler) Toggle2FA(c *gin.Context) {
	var req auth.Toggle2FARequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Debug("invalid 2FA toggle form", zap.Error(err))
		h.render.Fail(c, msgToggleFailed)
		response.Redirect(c, "/dashboard/security")
		return
	}
	enable := *req.Enable

	if err := h.api.Toggle2FA(c.Request.Context(), enable); err != nil {
		h.logger.Info("2FA toggle failed", zap.Bool("enable", enable), zap.Error(err))
		h.render.Fail(c, xerrors.UserMessage(err, msgToggleFailed))
		response.Redirect(c, "/dashboard/security")
		return
	}

	h.refreshUser(c)
	if enable {
		h.render.Success(c, "Two-factor authentication enabled")
	} else {
		h.render.Success(c, "Two-factor authentication disabled")
	}
	response.Redirect(c, "/dashboard/security")
}

func (h *AccountHandler) renderSecurity(c *gin.Context, status int, fieldErrs map[string]string, message string) {
	h.render.HTML(c, status, "security.tmpl", gin.H{
		"Title":  "Security Settings",
		"Errors": fieldErrs,
		"Error":  message,
	})
}

// ========== Sessions ==========

func (h *AccountHandler) ListSessions(c *gin.Context) {
	sessions, err := h.api.ListSessions(c.Request.Context())
	loadErr := ""
	if err != nil {
		h.logger.Warn("failed to load sessions", zap.Error(err))
		sessions = []auth.Session{}
		loadErr = xerrors.UserMessage(err, msgSessionsFailed)
	}

	h.render.HTML(c, http.StatusOK, "sessions.tmpl", gin.H{
		"Title":     "Active Sessions",
		"Sessions":  sessions,
		"LoadError": loadErr,
	})
}

func (h *AccountHandler) RevokeSession(c *gin.Context) {
	sessionID := c.Param("id")

	if err := h.api.RevokeSession(c.Request.Context(), sessionID); err != nil {
		h.logger.Info("session revoke failed", zap.String("session_id", sessionID), zap.Error(err))
		h.render.Fail(c, xerrors.UserMessage(err, msgRevokeFailed))
	} else {
		h.render.Success(c, msgSessionRevoked)
	}
	response.Redirect(c, "/dashboard/sessions")
}

// RevokeAll signs out every device. The local session survives a failure.
func (h *AccountHandler) RevokeAll(c *gin.Context) {
	ac := middleware.MustGetAuthContext(c)

	if err := ac.LogoutAll(c.Request.Context()); err != nil {
		h.logger.Info("logout-all failed", zap.Error(err))
		h.render.Fail(c, xerrors.UserMessage(err, msgRevokeAllFailed))
		response.Redirect(c, "/dashboard/sessions")
		return
	}

	if err := middleware.RotateSession(c); err != nil {
		h.logger.Warn("failed to rotate session after logout-all", zap.Error(err))
	}
	middleware.SyncUser(c)
	response.Redirect(c, "/login")
}

func (h *AccountHandler) refreshUser(c *gin.Context) {
	ac := middleware.MustGetAuthContext(c)
	if err := ac.RefreshUser(c.Request.Context()); err != nil {
		h.logger.Warn("failed to refresh user", zap.String("sid", ac.SessionID()), zap.Error(err))
		return
	}
	middleware.SyncUser(c)
}
