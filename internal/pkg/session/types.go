// internal/pkg/session/types.go
package session

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of the signed session cookie. The session id is the JWT ID.
type Claims struct {
	jwt.RegisteredClaims
}

// Flash levels
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

// FlashMessage survives exactly one redirect.
type FlashMessage struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type ctxKey struct{}

// WithID stores the browser session id on the context.
func WithID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, sid)
}

// IDFromContext returns the browser session id, if any.
func IDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(ctxKey{}).(string)
	return sid, ok && sid != ""
}
