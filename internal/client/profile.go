// internal/client/profile.go
package client

import (
	"context"
	"net/http"
	"net/url"

	"console-service/internal/domain/auth"
	xerrors "console-service/internal/pkg/errors"
)

// GetProfile returns the current user's profile.
func (c *Client) GetProfile(ctx context.Context) (*auth.User, error) {
	var out struct {
		User *auth.User `json:"user"`
	}
	if _, err := c.do(ctx, call{Method: http.MethodGet, Path: "/profile", Endpoint: "/profile"}, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, xerrors.NewMalformedError(http.StatusOK, errMissing("user"))
	}
	return out.User, nil
}

// UpdateProfile patches the editable name fields. The returned user may be
// nil when the API omits it; callers refresh through Me.
func (c *Client) UpdateProfile(ctx context.Context, req *auth.UpdateProfileRequest) (*auth.User, error) {
	var out struct {
		User *auth.User `json:"user"`
	}
	_, err := c.do(ctx, call{
		Method:   http.MethodPatch,
		Path:     "/profile",
		Endpoint: "/profile",
		Body:     map[string]string{"firstName": req.FirstName, "lastName": req.LastName},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

// ListSessions returns every device session of the current user.
func (c *Client) ListSessions(ctx context.Context) ([]auth.Session, error) {
	var out struct {
		Sessions []auth.Session `json:"sessions"`
	}
	if _, err := c.do(ctx, call{Method: http.MethodGet, Path: "/profile/sessions", Endpoint: "/profile/sessions"}, &out); err != nil {
		return nil, err
	}
	if out.Sessions == nil {
		out.Sessions = []auth.Session{}
	}
	return out.Sessions, nil
}

// RevokeSession terminates one device session.
func (c *Client) RevokeSession(ctx context.Context, sessionID string) error {
	_, err := c.do(ctx, call{
		Method:   http.MethodDelete,
		Path:     "/profile/sessions/" + url.PathEscape(sessionID),
		Endpoint: "/profile/sessions/:id",
	}, nil)
	return err
}

// UpdatePreferences stores display preferences for the current user.
func (c *Client) UpdatePreferences(ctx context.Context, req *auth.PreferencesRequest) error {
	_, err := c.do(ctx, call{
		Method:   http.MethodPatch,
		Path:     "/profile/preferences",
		Endpoint: "/profile/preferences",
		Body:     map[string]string{"theme": req.Theme},
	}, nil)
	return err
}
