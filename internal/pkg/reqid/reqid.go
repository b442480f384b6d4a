// Package reqid carries a per-request correlation id from the inbound page
// request to every outbound API call it makes.
package reqid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used in both directions.
const Header = "X-Request-ID"

type ctxKey struct{}

// New returns a fresh request id.
func New() string {
	return uuid.NewString()
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Valid reports whether an inbound id is acceptable to propagate.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
