package event

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/pkg/messaging"
)

// RemoteRevocationApplier mirrors a revocation made by another instance
type RemoteRevocationApplier interface {
	ApplyRemoteRevocation(ctx context.Context, event entity.RevocationEvent) error
}

// RedisListener applies revocations published by other instances to the
// local fast tier. Events carrying its own origin are ignored.
type RedisListener struct {
	client     messaging.RedisClient
	channel    string
	instanceID string
	applier    RemoteRevocationApplier
	logger     *zap.Logger
	done       chan struct{}
}

func NewRedisListener(
	client messaging.RedisClient,
	channel string,
	instanceID string,
	applier RemoteRevocationApplier,
	logger *zap.Logger,
) *RedisListener {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisListener{
		client:     client,
		channel:    channel,
		instanceID: instanceID,
		applier:    applier,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start subscribes and consumes in the background until ctx is cancelled
func (l *RedisListener) Start(ctx context.Context) error {
	messages, err := l.client.Subscribe(ctx, l.channel)
	if err != nil {
		close(l.done)
		return err
	}

	l.logger.Info("Listening for remote revocations",
		zap.String("channel", l.channel),
		zap.String("instance_id", l.instanceID),
	)

	go func() {
		defer close(l.done)
		for msg := range messages {
			l.handle(ctx, msg)
		}
	}()

	return nil
}

func (l *RedisListener) handle(ctx context.Context, msg messaging.Message) {
	var event entity.RevocationEvent
	if err := msg.Decode(&event); err != nil {
		l.logger.Warn("Discarding undecodable revocation message", zap.Error(err))
		return
	}
	if event.TokenID == "" {
		l.logger.Warn("Discarding revocation message without token id", zap.String("event_id", event.EventID))
		return
	}
	if event.Origin == l.instanceID {
		return
	}

	if err := l.applier.ApplyRemoteRevocation(ctx, event); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		l.logger.Error("Failed to apply remote revocation",
			zap.String("token_id", event.TokenID),
			zap.String("origin", event.Origin),
			zap.Error(err),
		)
		return
	}

	l.logger.Debug("Remote revocation applied",
		zap.String("token_id", event.TokenID),
		zap.String("origin", event.Origin),
	)
}

// Done is closed once the listener has stopped
func (l *RedisListener) Done() <-chan struct{} {
	return l.done
}
