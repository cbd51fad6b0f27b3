// Package messaging carries JSON messages between service instances over Redis Pub/Sub.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSubscribeBuffer is how many received messages may wait for the consumer
const DefaultSubscribeBuffer = 64

// RedisClient publishes and subscribes to channels
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan Message, error)
}

// Message is one received payload
type Message struct {
	Channel    string
	Payload    []byte
	ReceivedAt time.Time
}

// Decode unmarshals the JSON payload into v
func (m Message) Decode(v interface{}) error {
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("decode message on %s: %w", m.Channel, err)
	}
	return nil
}

type redisClient struct {
	client *redis.Client
	buffer int
	now    func() time.Time
}

// NewRedisClientFrom shares an existing connection pool. The caller keeps
// ownership of client and closes it.
func NewRedisClientFrom(client *redis.Client) RedisClient {
	return &redisClient{client: client, buffer: DefaultSubscribeBuffer, now: time.Now}
}

func (r *redisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

// Subscribe confirms the subscription before returning. Messages are
// delivered until ctx is cancelled, then the channel is closed.
func (r *redisClient) Subscribe(ctx context.Context, channel string) (<-chan Message, error) {
	pubsub := r.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan Message, r.buffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		in := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- Message{Channel: msg.Channel, Payload: []byte(msg.Payload), ReceivedAt: r.now()}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
