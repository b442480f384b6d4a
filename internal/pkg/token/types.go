// internal/pkg/token/types.go
package token

import (
	"context"
	"errors"
)

// Field names inside the per-session hash.
const (
	FieldAccess  = "accessToken"
	FieldRefresh = "refreshToken"
)

var ErrIncompletePair = errors.New("token pair must contain both access and refresh tokens")

// Pair is the two opaque bearer credentials issued by the remote API.
type Pair struct {
	Access  string `json:"accessToken"`
	Refresh string `json:"refreshToken"`
}

// Complete reports whether both halves are present.
func (p Pair) Complete() bool {
	return p.Access != "" && p.Refresh != ""
}

// Store persists at most one Pair per browser session id.
type Store interface {
	Save(ctx context.Context, sid string, pair Pair) error
	Read(ctx context.Context, sid string) (Pair, bool, error)
	Clear(ctx context.Context, sid string) error
}
