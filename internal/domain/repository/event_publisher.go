package repository

import (
	"context"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
)

// RevocationPublisher hands revocation events to asynchronous subscribers.
// Publish must not block on subscriber work.
type RevocationPublisher interface {
	Publish(ctx context.Context, event entity.RevocationEvent)
}

// RevocationSubscriber consumes revocation events
type RevocationSubscriber interface {
	Name() string
	Handle(ctx context.Context, event entity.RevocationEvent) error
}
