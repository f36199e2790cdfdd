package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"gemini-relay/internal/models"
)

// Channel carries every relay event as JSON.
const Channel = "relay_events"

// Publisher fans relay events out to observers. Failures never reach the caller's response.
type Publisher interface {
	Publish(ctx context.Context, event models.RelayEvent) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.RelayEvent) error { return nil }

type RedisPublisher struct {
	redis *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{redis: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, event models.RelayEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode relay event: %w", err)
	}
	if err := p.redis.Publish(ctx, Channel, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to publish relay event: %w", err)
	}
	return nil
}
