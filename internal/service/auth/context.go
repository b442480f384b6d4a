// internal/service/auth/context.go
package auth

import (
	"context"
	"fmt"

	"console-service/internal/domain/auth"
	"console-service/internal/pkg/session"
	"console-service/internal/pkg/token"

	"go.uber.org/zap"
)

// State is an immutable snapshot of a Context.
type State struct {
	User    *auth.User
	Loading bool
}

// Authenticated reports whether a user is present.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Context holds the current user of one browser session for the lifetime of
// a single request. It is not safe for concurrent use.
//
//	Initial (loading, no user)
//	  -> Hydrate -> Authenticated | Unauthenticated
//	Unauthenticated -> Login (no 2FA) | CompleteTwoFactor -> Authenticated
//	Authenticated -> Logout | LogoutAll -> Unauthenticated
type Context struct {
	svc     *AuthService
	sid     string
	user    *auth.User
	loading bool
}

// SessionID returns the browser session this context is bound to.
func (c *Context) SessionID() string {
	return c.sid
}

// Rebind moves the stored token pair to sid and binds the context to it.
// Nothing is left under the previous id, so a cookie carrying it no longer
// reaches the pair.
func (c *Context) Rebind(ctx context.Context, sid string) error {
	if sid == "" || sid == c.sid {
		return fmt.Errorf("rebind session: invalid session id %q", sid)
	}
	old := c.sid

	pair, ok, err := c.svc.tokens.Read(ctx, old)
	if err != nil {
		return fmt.Errorf("failed to read tokens for rebind: %w", err)
	}
	if ok {
		if err := c.svc.tokens.Save(ctx, sid, pair); err != nil {
			return fmt.Errorf("failed to move tokens: %w", err)
		}
	}
	if err := c.svc.tokens.Clear(ctx, old); err != nil {
		return fmt.Errorf("failed to clear previous session: %w", err)
	}

	c.sid = sid
	c.svc.logger.Debug("session rebound", zap.String("from", old), zap.String("to", sid))
	return nil
}

// Snapshot returns a deep copy of the current state.
func (c *Context) Snapshot() State {
	return State{User: c.user.Clone(), Loading: c.loading}
}

// IsAuthenticated reports whether a user is present.
func (c *Context) IsAuthenticated() bool {
	return c.user != nil
}

func (c *Context) bind(ctx context.Context) context.Context {
	return session.WithID(ctx, c.sid)
}

// Hydrate reconstructs the current user from the stored token. It settles
// loading to false on every path; failures degrade to no user and clear the
// token store. Hydrate is a no-op once the context has settled.
func (c *Context) Hydrate(ctx context.Context) {
	if !c.loading {
		return
	}
	defer func() { c.loading = false }()
	ctx = c.bind(ctx)

	_, ok, err := c.svc.tokens.Read(ctx, c.sid)
	if err != nil {
		c.svc.logger.Error("failed to read token store", zap.String("sid", c.sid), zap.Error(err))
		c.svc.metrics.CountHydration("failed")
		c.user = nil
		return
	}
	if !ok {
		c.svc.metrics.CountHydration("anonymous")
		c.user = nil
		return
	}

	user, err := c.svc.client.Me(ctx)
	if err != nil {
		c.svc.logger.Info("failed to fetch user, clearing tokens", zap.String("sid", c.sid), zap.Error(err))
		c.svc.metrics.CountHydration("failed")
		if clearErr := c.svc.tokens.Clear(ctx, c.sid); clearErr != nil {
			c.svc.logger.Error("failed to clear tokens", zap.String("sid", c.sid), zap.Error(clearErr))
		}
		c.user = nil
		return
	}

	c.svc.metrics.CountHydration("authenticated")
	c.user = user.Clone()
}

// Login forwards the credentials. Without a second factor it persists the
// token pair and sets the user; with one it leaves state untouched. The raw
// result is returned so the caller decides where to navigate.
func (c *Context) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	ctx = c.bind(ctx)

	res, err := c.svc.client.Login(ctx, email, password)
	if err != nil {
		c.svc.metrics.CountLogin("failure")
		return nil, err
	}
	if res.Requires2FA {
		c.svc.metrics.CountLogin("two_factor")
		return res, nil
	}

	pair := token.Pair{Access: res.AccessToken, Refresh: res.RefreshToken}
	if err := c.svc.tokens.Save(ctx, c.sid, pair); err != nil {
		c.svc.metrics.CountLogin("failure")
		return nil, fmt.Errorf("failed to persist tokens: %w", err)
	}

	c.svc.metrics.CountLogin("success")
	c.user = res.User.Clone()
	c.loading = false
	return res, nil
}

// CompleteTwoFactor verifies the one-time code for a pending login,
// persists the issued pair and loads the user.
func (c *Context) CompleteTwoFactor(ctx context.Context, code, tempSessionID string) error {
	ctx = c.bind(ctx)

	pair, err := c.svc.client.VerifyOTP(ctx, code, tempSessionID)
	if err != nil {
		return err
	}
	if err := c.svc.tokens.Save(ctx, c.sid, token.Pair{Access: pair.AccessToken, Refresh: pair.RefreshToken}); err != nil {
		return fmt.Errorf("failed to persist tokens: %w", err)
	}
	c.svc.metrics.CountLogin("success")
	c.loading = false

	// The next request hydrates again, so a failure here only delays the user.
	user, err := c.svc.client.Me(ctx)
	if err != nil {
		c.svc.logger.Warn("failed to load user after 2FA", zap.String("sid", c.sid), zap.Error(err))
		return nil
	}
	c.user = user.Clone()
	return nil
}

// RefreshUser replaces the cached user wholesale. On failure the previous
// user is kept and the error returned.
func (c *Context) RefreshUser(ctx context.Context) error {
	user, err := c.svc.client.Me(c.bind(ctx))
	if err != nil {
		c.svc.logger.Warn("failed to refresh user", zap.String("sid", c.sid), zap.Error(err))
		return err
	}
	c.user = user.Clone()
	return nil
}

// Logout tears the local session down regardless of the remote outcome.
// Only a token store failure is returned.
func (c *Context) Logout(ctx context.Context) error {
	ctx = c.bind(ctx)

	if err := c.svc.client.Logout(ctx); err != nil {
		c.svc.logger.Warn("remote logout failed", zap.String("sid", c.sid), zap.Error(err))
	}
	return c.clearLocal(ctx)
}

// LogoutAll revokes every session on the server. Local state is cleared only
// when the server confirms.
func (c *Context) LogoutAll(ctx context.Context) error {
	ctx = c.bind(ctx)

	if err := c.svc.client.LogoutAll(ctx); err != nil {
		return err
	}
	return c.clearLocal(ctx)
}

func (c *Context) clearLocal(ctx context.Context) error {
	c.user = nil
	c.loading = false
	if err := c.svc.tokens.Clear(ctx, c.sid); err != nil {
		c.svc.logger.Error("failed to clear tokens", zap.String("sid", c.sid), zap.Error(err))
		return err
	}
	return nil
}
