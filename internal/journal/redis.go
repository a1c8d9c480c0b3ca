package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xtrntr/auction/internal/models"
)

// Redis publishes each settlement as JSON on a pub/sub channel
type Redis struct {
	client  *redis.Client
	channel string
}

// NewRedis connects to addr and checks the connection
func NewRedis(ctx context.Context, addr, channel string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &Redis{client: client, channel: channel}, nil
}

func (r *Redis) Record(ctx context.Context, s models.Settlement) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish settlement: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
