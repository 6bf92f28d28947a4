// Package redis provides the Redis-backed broadcast mirror. Every event the
// dispatcher delivers locally is also published to a Redis channel named
// after the room, so external consumers (and future peer instances) can
// observe the event stream.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Publisher struct {
	client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &Publisher{client: client}, nil
}

func (p *Publisher) Close() error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("redis.Publisher.Close: %w", err)
	}
	return nil
}

// Publish sends payload to the given channel. It satisfies realtime.Mirror;
// the dispatcher treats failures as non-fatal.
func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis.Publisher.Publish: %w", err)
	}
	return nil
}
