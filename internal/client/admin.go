// internal/client/admin.go
package client

import (
	"context"
	"net/http"
	"net/url"

	"console-service/internal/domain/admin"
	"console-service/internal/domain/auth"
	xerrors "console-service/internal/pkg/errors"
)

// ListUsers returns one page of users.
func (c *Client) ListUsers(ctx context.Context, page, limit int) (*Page[auth.User], error) {
	var out struct {
		Users []auth.User `json:"users"`
	}
	meta, err := c.do(ctx, call{
		Method:   http.MethodGet,
		Path:     "/users",
		Endpoint: "/users",
		Query:    pageQuery(page, limit),
	}, &out)
	if err != nil {
		return nil, err
	}
	return newPage(out.Users, page, limit, meta), nil
}

// SetUserBlocked sets the blocked flag of one user.
func (c *Client) SetUserBlocked(ctx context.Context, userID string, blocked bool) error {
	_, err := c.do(ctx, call{
		Method:   http.MethodPatch,
		Path:     "/users/" + url.PathEscape(userID) + "/block",
		Endpoint: "/users/:id/block",
		Body:     admin.BlockUserRequest{IsBlocked: blocked},
	}, nil)
	return err
}

// SetUserArchived sets the archived flag of one user.
func (c *Client) SetUserArchived(ctx context.Context, userID string, archived bool) error {
	_, err := c.do(ctx, call{
		Method:   http.MethodPatch,
		Path:     "/users/" + url.PathEscape(userID) + "/archive",
		Endpoint: "/users/:id/archive",
		Body:     admin.ArchiveUserRequest{IsArchived: archived},
	}, nil)
	return err
}

// ListRoles returns every role with its aggregate counts.
func (c *Client) ListRoles(ctx context.Context) ([]auth.Role, error) {
	var out struct {
		Roles []auth.Role `json:"roles"`
	}
	if _, err := c.do(ctx, call{Method: http.MethodGet, Path: "/roles", Endpoint: "/roles"}, &out); err != nil {
		return nil, err
	}
	if out.Roles == nil {
		out.Roles = []auth.Role{}
	}
	return out.Roles, nil
}

// DashboardStats returns the admin overview counters.
func (c *Client) DashboardStats(ctx context.Context) (*admin.DashboardStats, error) {
	var out struct {
		Stats *admin.DashboardStats `json:"stats"`
	}
	if _, err := c.do(ctx, call{Method: http.MethodGet, Path: "/admin/dashboard/stats", Endpoint: "/admin/dashboard/stats"}, &out); err != nil {
		return nil, err
	}
	if out.Stats == nil {
		return nil, xerrors.NewMalformedError(http.StatusOK, errMissing("stats"))
	}
	return out.Stats, nil
}

// ListAuditLogs returns one page of audit entries.
func (c *Client) ListAuditLogs(ctx context.Context, page, limit int) (*Page[admin.AuditLog], error) {
	var out struct {
		Logs []admin.AuditLog `json:"logs"`
	}
	meta, err := c.do(ctx, call{
		Method:   http.MethodGet,
		Path:     "/admin/audit-logs",
		Endpoint: "/admin/audit-logs",
		Query:    pageQuery(page, limit),
	}, &out)
	if err != nil {
		return nil, err
	}
	return newPage(out.Logs, page, limit, meta), nil
}
