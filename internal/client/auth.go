// internal/client/auth.go
package client

import (
	"context"
	"net/http"

	"console-service/internal/domain/auth"
	xerrors "console-service/internal/pkg/errors"
)

// ========== Login / 2FA ==========

// Login either returns a full session or a 2FA challenge carrying TempSessionID.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	var res auth.LoginResult
	_, err := c.do(ctx, call{
		Method:   http.MethodPost,
		Path:     "/auth/login",
		Endpoint: "/auth/login",
		Body:     map[string]string{"email": email, "password": password},
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.Requires2FA && (res.User == nil || res.AccessToken == "" || res.RefreshToken == "") {
		return nil, xerrors.NewMalformedError(http.StatusOK, errMissing("user or tokens"))
	}
	if res.Requires2FA && res.TempSessionID == "" {
		return nil, xerrors.NewMalformedError(http.StatusOK, errMissing("tempSessionId"))
	}
	return &res, nil
}

// VerifyOTP exchanges a one-time code for the token pair.
func (c *Client) VerifyOTP(ctx context.Context, code, tempSessionID string) (*auth.TokenPair, error) {
	var pair auth.TokenPair
	_, err := c.do(ctx, call{
		Method:   http.MethodPost,
		Path:     "/auth/2fa/verify",
		Endpoint: "/auth/2fa/verify",
		Body:     map[string]string{"otp": code, "sessionId": tempSessionID},
	}, &pair)
	if err != nil {
		return nil, err
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, xerrors.NewMalformedError(http.StatusOK, errMissing("tokens"))
	}
	return &pair, nil
}

// ResendOTP asks the API to send a new code for the pending login.
func (c *Client) ResendOTP(ctx context.Context, tempSessionID string) error {
	_, err := c.do(ctx, call{
		Method:   http.MethodPost,
		Path:     "/auth/2fa/resend",
		Endpoint: "/auth/2fa/resend",
		Body:     map[string]string{"sessionId": tempSessionID},
	}, nil)
	return err
}

// Toggle2FA enables or disables the second factor for the current user.
func (c *Client) Toggle2FA(ctx context.Context, enable bool) error {
	path := "/auth/2fa/disable"
	if enable {
		path = "/auth/2fa/enable"
	}
	_, err := c.do(ctx, call{Method: http.MethodPost, Path: path, Endpoint: path}, nil)
	return err
}

// ========== Identity ==========

// Me fetches the current user for the stored access token.
func (c *Client) Me(ctx context.Context) (*auth.User, error) {
	var out struct {
		User *auth.User `json:"user"`
	}
	if _, err := c.do(ctx, call{Method: http.MethodGet, Path: "/auth/me", Endpoint: "/auth/me"}, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, xerrors.NewMalformedError(http.StatusOK, errMissing("user"))
	}
	return out.User, nil
}

// Register creates an account. No session is established.
func (c *Client) Register(ctx context.Context, req *auth.RegisterRequest) error {
	_, err := c.do(ctx, call{
		Method:   http.MethodPost,
		Path:     "/auth/register",
		Endpoint: "/auth/register",
		Body: map[string]string{
			"email":     req.Email,
			"password":  req.Password,
			"firstName": req.FirstName,
			"lastName":  req.LastName,
		},
	}, nil)
	return err
}

// Logout revokes the current session on the server.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, call{Method: http.MethodPost, Path: "/auth/logout", Endpoint: "/auth/logout"}, nil)
	return err
}

// LogoutAll revokes every session of the current user, including this one.
func (c *Client) LogoutAll(ctx context.Context) error {
	_, err := c.do(ctx, call{Method: http.MethodPost, Path: "/auth/logout-all", Endpoint: "/auth/logout-all"}, nil)
	return err
}

// ========== Password Management ==========

func (c *Client) ChangePassword(ctx context.Context, current, newPassword string) error {
	_, err := c.do(ctx, call{
		Method:   http.MethodPost,
		Path:     "/auth/change-password",
		Endpoint: "/auth/change-password",
		Body:     map[string]string{"currentPassword": current, "newPassword": newPassword},
	}, nil)
	return err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.do(ctx, call{
		Method:   http.MethodPost,
		Path:     "/auth/forgot-password",
		Endpoint: "/auth/forgot-password",
		Body:     map[string]string{"email": email},
	}, nil)
	return err
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	_, err := c.do(ctx, call{
		Method:   http.MethodPost,
		Path:     "/auth/reset-password",
		Endpoint: "/auth/reset-password",
		Body:     map[string]string{"token": resetToken, "newPassword": newPassword},
	}, nil)
	return err
}
