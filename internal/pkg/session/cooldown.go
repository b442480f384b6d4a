// internal/pkg/session/cooldown.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cooldown throttles OTP resend requests per temp session id. It is a UI
// throttle only; the remote API may apply its own limits.
type Cooldown struct {
	client *redis.Client
	window time.Duration
}

func NewCooldown(client *redis.Client, window time.Duration) *Cooldown {
	return &Cooldown{client: client, window: window}
}

// Start begins the cooldown unless one is already running.
func (c *Cooldown) Start(ctx context.Context, tempSessionID string) error {
	if err := c.client.SetNX(ctx, c.key(tempSessionID), "1", c.window).Err(); err != nil {
		return fmt.Errorf("failed to start resend cooldown: %w", err)
	}
	return nil
}

// Restart begins a fresh cooldown, replacing any running one.
func (c *Cooldown) Restart(ctx context.Context, tempSessionID string) error {
	if err := c.client.Set(ctx, c.key(tempSessionID), "1", c.window).Err(); err != nil {
		return fmt.Errorf("failed to restart resend cooldown: %w", err)
	}
	return nil
}

// Remaining returns how long until a resend is allowed. Zero means allowed now.
func (c *Cooldown) Remaining(ctx context.Context, tempSessionID string) (time.Duration, error) {
	ttl, err := c.client.TTL(ctx, c.key(tempSessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read resend cooldown: %w", err)
	}
	if ttl < 0 {
		return 0, nil // Not running
	}
	return ttl, nil
}

func (c *Cooldown) key(tempSessionID string) string {
	return fmt.Sprintf("console:otp-resend:%s", tempSessionID)
}
