// Package events publishes committed post mutations to a Redis channel.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"Connector/internal/core/posts"
)

// DefaultChannel is used when no channel is configured
const DefaultChannel = "connector.posts"

// RedisPublisher implements posts.EventPublisher over Redis pub/sub
type RedisPublisher struct {
	log     *slog.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisPublisher connects to addr and verifies the connection with a ping
func NewRedisPublisher(ctx context.Context, addr, channel string, log *slog.Logger) (*RedisPublisher, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = slog.Default()
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisPublisher{
		log:     log.With("component", "redis_publisher"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

// Channel returns the pub/sub channel events are published on
func (p *RedisPublisher) Channel() string {
	return p.channel
}

// Publish sends event as JSON on the configured channel
func (p *RedisPublisher) Publish(ctx context.Context, event posts.Event) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis publisher not initialized")
	}
	raw, err := Encode(event)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", event.Type, err)
	}
	p.log.Debug("event published", "type", event.Type, "post_id", event.PostID)
	return nil
}

// Close releases the underlying connection pool
func (p *RedisPublisher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}

// Encode renders the wire form of an event
func Encode(event posts.Event) ([]byte, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return raw, nil
}

// Decode parses the wire form of an event
func Decode(raw []byte) (posts.Event, error) {
	var event posts.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return posts.Event{}, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}
