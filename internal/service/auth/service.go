// internal/service/auth/service.go
package auth

import (
	"context"

	"console-service/internal/domain/auth"
	"console-service/internal/metrics"
	"console-service/internal/pkg/token"

	"go.uber.org/zap"
)

// SessionClient is the subset of the remote API the auth lifecycle needs.
type SessionClient interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	VerifyOTP(ctx context.Context, code, tempSessionID string) (*auth.TokenPair, error)
	Me(ctx context.Context) (*auth.User, error)
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) error
}

type AuthService struct {
	client  SessionClient
	tokens  token.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewAuthService(client SessionClient, tokens token.Store, m *metrics.Metrics, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		client:  client,
		tokens:  tokens,
		metrics: m,
		logger:  logger,
	}
}

// NewContext returns a fresh auth context for one browser session in its
// initial state (loading, no user).
func (s *AuthService) NewContext(sid string) *Context {
	return &Context{svc: s, sid: sid, loading: true}
}
