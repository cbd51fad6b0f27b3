package event

import (
	"context"
	"fmt"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/pkg/messaging"
)

const DefaultChannel = "auth:token:revoked"

// RedisPublisher forwards revocation events to other instances over Pub/Sub
type RedisPublisher struct {
	client     messaging.RedisClient
	channel    string
	instanceID string
}

func NewRedisPublisher(client messaging.RedisClient, channel, instanceID string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{
		client:     client,
		channel:    channel,
		instanceID: instanceID,
	}
}

func (p *RedisPublisher) Name() string {
	return "redis_pubsub"
}

func (p *RedisPublisher) Handle(ctx context.Context, event entity.RevocationEvent) error {
	if event.Origin == "" {
		event.Origin = p.instanceID
	}
	if err := p.client.Publish(ctx, p.channel, event); err != nil {
		return fmt.Errorf("publish revocation to %s: %w", p.channel, err)
	}
	return nil
}
