// internal/pkg/session/flash.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const flashTTL = 5 * time.Minute

// Flash queues one-shot messages per browser session.
type Flash struct {
	client *redis.Client
}

func NewFlash(client *redis.Client) *Flash {
	return &Flash{client: client}
}

// Push appends a message for the next rendered page.
func (f *Flash) Push(ctx context.Context, sid string, msg FlashMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal flash: %w", err)
	}
	key := f.key(sid)
	_, err = f.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.Expire(ctx, key, flashTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push flash: %w", err)
	}
	return nil
}

// Pop returns and removes every queued message.
func (f *Flash) Pop(ctx context.Context, sid string) ([]FlashMessage, error) {
	key := f.key(sid)

	var lrange *redis.StringSliceCmd
	_, err := f.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pop flash: %w", err)
	}

	raw := lrange.Val()
	msgs := make([]FlashMessage, 0, len(raw))
	for _, item := range raw {
		var msg FlashMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue // Skip invalid entries
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (f *Flash) key(sid string) string {
	return fmt.Sprintf("console:flash:%s", sid)
}
