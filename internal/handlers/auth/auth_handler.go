// internal/handlers/auth/auth_handler.go
package auth

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"console-service/internal/domain/auth"
	"console-service/internal/middleware"
	xerrors "console-service/internal/pkg/errors"
	"console-service/internal/pkg/response"
	"console-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgLoginFailed    = "Invalid email or password"
	msgRegisterFailed = "Registration failed. Please try again."
	msgForgotFailed   = "Something went wrong. Please try again."
	msgResetFailed    = "Invalid or expired reset token"
	msgVerifyFailed   = "Invalid or expired OTP code"
	msgResendFailed   = "Failed to resend OTP"

	msgForgotSent  = "If an account exists with that email, you will receive password reset instructions."
	msgRegistered  = "Registration successful! Please sign in."
	msgResetDone   = "Password reset successful. Please sign in."
	msgOTPResent   = "A new OTP code has been sent to your email"
	msgSignedOut   = "You have been signed out."
	msgTooManyPost = "Too many attempts. Please wait a moment and try again."
)

// AccountAPI is the part of the remote API used by the sign-in pages that
// does not touch the browser session.
type AccountAPI interface {
	Register(ctx context.Context, req *auth.RegisterRequest) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	ResendOTP(ctx context.Context, tempSessionID string) error
}

type AuthHandler struct {
	api      AccountAPI
	cooldown *session.Cooldown
	render   *response.Renderer
	logger   *zap.Logger
}

func NewAuthHandler(api AccountAPI, cooldown *session.Cooldown, render *response.Renderer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		api:      api,
		cooldown: cooldown,
		render:   render,
		logger:   logger,
	}
}

// ========== Login ==========

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "login.tmpl", gin.H{
		"Title": "Sign in to your account",
		"Form":  gin.H{},
	})
}

// Login forwards credentials and routes to the dashboard or the 2FA challenge.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	bindErr := c.ShouldBind(&req)
	form := gin.H{"email": req.Email}
	if bindErr != nil {
		h.formError(c, "login.tmpl", "Sign in to your account", form, response.FieldErrors(bindErr), "")
		return
	}

	ac := middleware.MustGetAuthContext(c)
	res, err := ac.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Info("login failed",
			zap.String("email", req.Email),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		h.formError(c, "login.tmpl", "Sign in to your account", form, nil, xerrors.UserMessage(err, msgLoginFailed))
		return
	}

	if res.Requires2FA {
		response.Redirect(c, verifyURL(res.TempSessionID))
		return
	}

	if err := middleware.RotateSession(c); err != nil {
		h.logger.Error("failed to rotate session after login", zap.Error(err))
		h.formError(c, "login.tmpl", "Sign in to your account", form, nil, msgLoginFailed)
		return
	}

	h.logger.Info("user logged in", zap.String("user_id", res.User.ID))
	response.Redirect(c, "/dashboard")
}

// ========== Registration ==========

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "register.tmpl", gin.H{
		"Title": "Create your account",
		"Form":  gin.H{},
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	bindErr := c.ShouldBind(&req)
	form := gin.H{"email": req.Email, "firstName": req.FirstName, "lastName": req.LastName}
	if bindErr != nil {
		h.formError(c, "register.tmpl", "Create your account", form, response.FieldErrors(bindErr), "")
		return
	}

	if err := h.api.Register(c.Request.Context(), &req); err != nil {
		h.logger.Info("registration failed", zap.String("email", req.Email), zap.Error(err))
		h.formError(c, "register.tmpl", "Create your account", form, nil, xerrors.UserMessage(err, msgRegisterFailed))
		return
	}

	h.render.Success(c, msgRegistered)
	response.Redirect(c, "/login")
}

// ========== Password Reset ==========

func (h *AuthHandler) ShowForgotPassword(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "forgot_password.tmpl", gin.H{
		"Title": "Forgot your password?",
		"Form":  gin.H{},
	})
}

// ForgotPassword always ends on the same neutral confirmation once the
// request is accepted.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req auth.ForgotPasswordRequest
	bindErr := c.ShouldBind(&req)
	form := gin.H{"email": req.Email}
	if bindErr != nil {
		h.formError(c, "forgot_password.tmpl", "Forgot your password?", form, response.FieldErrors(bindErr), "")
		return
	}

	if err := h.api.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.logger.Warn("password reset request failed", zap.Error(err))
		h.formError(c, "forgot_password.tmpl", "Forgot your password?", form, nil, xerrors.UserMessage(err, msgForgotFailed))
		return
	}

	h.render.HTML(c, http.StatusOK, "forgot_password.tmpl", gin.H{
		"Title":   "Check your email",
		"Sent":    true,
		"Message": msgForgotSent,
	})
}

func (h *AuthHandler) ShowResetPassword(c *gin.Context) {
	resetToken := c.Query("token")
	if resetToken == "" {
		response.Redirect(c, "/login")
		return
	}
	h.render.HTML(c, http.StatusOK, "reset_password.tmpl", gin.H{
		"Title": "Reset your password",
		"Token": resetToken,
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	resetToken := c.Query("token")
	if resetToken == "" {
		resetToken = c.PostForm("token")
	}
	if resetToken == "" {
		response.Redirect(c, "/login")
		return
	}

	var req auth.ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderReset(c, response.FieldErrors(err), "", resetToken)
		return
	}

	if err := h.api.ResetPassword(c.Request.Context(), resetToken, req.Password); err != nil {
		h.logger.Info("password reset failed", zap.Error(err))
		h.renderReset(c, nil, xerrors.UserMessage(err, msgResetFailed), resetToken)
		return
	}

	h.render.Success(c, msgResetDone)
	response.Redirect(c, "/login")
}

func (h *AuthHandler) renderReset(c *gin.Context, fieldErrs map[string]string, message, resetToken string) {
	h.render.HTML(c, http.StatusUnprocessableEntity, "reset_password.tmpl", gin.H{
		"Title":  "Reset your password",
		"Token":  resetToken,
		"Errors": fieldErrs,
		"Error":  message,
	})
}

// ========== Two-Factor Verification ==========

// ShowVerify2FA starts the resend cooldown the first time the challenge is
// shown for a temp session.
func (h *AuthHandler) ShowVerify2FA(c *gin.Context) {
	tempSessionID := c.Query("session")
	if tempSessionID == "" {
		response.Redirect(c, "/login")
		return
	}

	if err := h.cooldown.Start(c.Request.Context(), tempSessionID); err != nil {
		h.logger.Warn("failed to start resend cooldown", zap.Error(err))
	}
	h.renderVerify(c, http.StatusOK, tempSessionID, nil, "")
}

func (h *AuthHandler) Verify2FA(c *gin.Context) {
	tempSessionID := sessionParam(c)
	if tempSessionID == "" {
		response.Redirect(c, "/login")
		return
	}

	var req auth.VerifyOTPRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderVerify(c, http.StatusUnprocessableEntity, tempSessionID, response.FieldErrors(err), "")
		return
	}

	ac := middleware.MustGetAuthContext(c)
	if err := ac.CompleteTwoFactor(c.Request.Context(), req.OTP, tempSessionID); err != nil {
		h.logger.Info("2FA verification failed", zap.Error(err))
		h.renderVerify(c, http.StatusUnprocessableEntity, tempSessionID, nil, xerrors.UserMessage(err, msgVerifyFailed))
		return
	}
	if err := middleware.RotateSession(c); err != nil {
		h.logger.Error("failed to rotate session after 2FA", zap.Error(err))
		h.renderVerify(c, http.StatusUnprocessableEntity, tempSessionID, nil, msgVerifyFailed)
		return
	}

	response.Redirect(c, "/dashboard")
}

// Resend2FA asks for a new code unless the cooldown is still running.
func (h *AuthHandler) Resend2FA(c *gin.Context) {
	tempSessionID := sessionParam(c)
	if tempSessionID == "" {
		response.Redirect(c, "/login")
		return
	}
	ctx := c.Request.Context()

	remaining, err := h.cooldown.Remaining(ctx, tempSessionID)
	if err != nil {
		h.logger.Warn("failed to read resend cooldown", zap.Error(err))
	}
	if remaining > 0 {
		h.render.Fail(c, fmt.Sprintf("Please wait %d seconds before requesting a new code", seconds(remaining.Seconds())))
		response.Redirect(c, verifyURL(tempSessionID))
		return
	}

	if err := h.api.ResendOTP(ctx, tempSessionID); err != nil {
		h.logger.Info("OTP resend failed", zap.Error(err))
		h.render.Fail(c, xerrors.UserMessage(err, msgResendFailed))
		response.Redirect(c, verifyURL(tempSessionID))
		return
	}

	if err := h.cooldown.Restart(ctx, tempSessionID); err != nil {
		h.logger.Warn("failed to restart resend cooldown", zap.Error(err))
	}
	h.render.Success(c, msgOTPResent)
	response.Redirect(c, verifyURL(tempSessionID))
}

func (h *AuthHandler) renderVerify(c *gin.Context, status int, tempSessionID string, fieldErrs map[string]string, message string) {
	remaining, err := h.cooldown.Remaining(c.Request.Context(), tempSessionID)
	if err != nil {
		h.logger.Warn("failed to read resend cooldown", zap.Error(err))
	}
	h.render.HTML(c, status, "verify_2fa.tmpl", gin.H{
		"Title":     "Two-Factor Authentication",
		"Session":   tempSessionID,
		"CanResend": remaining <= 0,
		"WaitFor":   seconds(remaining.Seconds()),
		"Errors":    fieldErrs,
		"Error":     message,
	})
}

// ========== Logout ==========

// Logout always tears the local session down and continues on a fresh
// anonymous session.
func (h *AuthHandler) Logout(c *gin.Context) {
	ac := middleware.MustGetAuthContext(c)
	if err := ac.Logout(c.Request.Context()); err != nil {
		h.logger.Error("failed to clear session on logout", zap.String("sid", ac.SessionID()), zap.Error(err))
	}
	if err := middleware.RotateSession(c); err != nil {
		h.logger.Warn("failed to rotate session on logout", zap.Error(err))
	}
	middleware.SyncUser(c)

	h.render.Success(c, msgSignedOut)
	response.Redirect(c, "/login")
}

// TooManyAttempts is the rate limiter's response for credential forms.
func (h *AuthHandler) TooManyAttempts(c *gin.Context) {
	h.render.Fail(c, msgTooManyPost)
	target := c.Request.URL.Path
	if q := c.Request.URL.RawQuery; q != "" {
		target += "?" + q
	}
	if target == "/verify-2fa/resend" {
		target = verifyURL(sessionParam(c))
	}
	response.Redirect(c, target)
}

// ========== Helpers ==========

func (h *AuthHandler) formError(c *gin.Context, name, title string, form gin.H, fieldErrs map[string]string, message string) {
	h.render.HTML(c, http.StatusUnprocessableEntity, name, gin.H{
		"Title":  title,
		"Form":   form,
		"Errors": fieldErrs,
		"Error":  message,
	})
}

func sessionParam(c *gin.Context) string {
	if v := c.Query("session"); v != "" {
		return v
	}
	return c.PostForm("session")
}

func verifyURL(tempSessionID string) string {
	return "/verify-2fa?session=" + url.QueryEscape(tempSessionID)
}

func seconds(s float64) int {
	if s <= 0 {
		return 0
	}
	return int(math.Ceil(s))
}
