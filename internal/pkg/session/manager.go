// internal/pkg/session/manager.go
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const issuer = "accounts-console"

// Manager issues and verifies the browser session cookie.
type Manager struct {
	secret     []byte
	cookieName string
	secure     bool
	maxAge     time.Duration
}

func NewManager(secret, cookieName string, secure bool, maxAge time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		cookieName: cookieName,
		secure:     secure,
		maxAge:     maxAge,
	}
}

// NewID returns a fresh session id.
func (m *Manager) NewID() string {
	return ulid.Make().String()
}

// Sign encodes a session id into a cookie value.
func (m *Manager) Sign(sid string) (string, error) {
	if sid == "" {
		return "", errors.New("empty session id")
	}
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       sid,
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.secret)
}

// Parse verifies a cookie value and returns the session id it carries.
func (m *Manager) Parse(value string) (string, error) {
	token, err := jwt.ParseWithClaims(value, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return "", fmt.Errorf("failed to parse session cookie: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return "", errors.New("invalid session cookie claims")
	}
	if _, err := ulid.ParseStrict(claims.ID); err != nil {
		return "", fmt.Errorf("invalid session id: %w", err)
	}
	return claims.ID, nil
}

// Ensure returns the request's session id, issuing a new cookie when the
// request carries none or carries one that fails verification.
func (m *Manager) Ensure(c *gin.Context) (string, error) {
	if raw, err := c.Cookie(m.cookieName); err == nil && raw != "" {
		if sid, err := m.Parse(raw); err == nil {
			return sid, nil
		}
	}

	sid := m.NewID()
	if err := m.Refresh(c, sid); err != nil {
		return "", err
	}
	return sid, nil
}

// Rotate issues a cookie for a fresh session id and returns the id. The
// caller moves any state kept under the previous id.
func (m *Manager) Rotate(c *gin.Context) (string, error) {
	sid := m.NewID()
	if err := m.Refresh(c, sid); err != nil {
		return "", err
	}
	return sid, nil
}

// Refresh re-issues the cookie for sid so its max-age counts from now.
func (m *Manager) Refresh(c *gin.Context, sid string) error {
	value, err := m.Sign(sid)
	if err != nil {
		return fmt.Errorf("failed to sign session cookie: %w", err)
	}
	m.setCookie(c, value, int(m.maxAge.Seconds()))
	return nil
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, value, maxAge, "/", "", m.secure, true)
}
