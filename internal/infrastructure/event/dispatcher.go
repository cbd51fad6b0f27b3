package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
)

const (
	DefaultBufferSize     = 256
	DefaultHandlerTimeout = 5 * time.Second
)

var (
	ErrDispatcherClosed    = errors.New("event dispatcher is closed")
	ErrDuplicateSubscriber = errors.New("subscriber already registered")
)

type subscription struct {
	subscriber repository.RevocationSubscriber
	events     chan entity.RevocationEvent
}

// Dispatcher fans revocation events out to named subscribers. Every
// subscriber owns a buffered queue drained by its own goroutine, so a slow
// subscriber only delays itself.
type Dispatcher struct {
	logger         *zap.Logger
	bufferSize     int
	handlerTimeout time.Duration

	mu            sync.RWMutex
	subscriptions []*subscription
	closed        bool
	wg            sync.WaitGroup

	dropped atomic.Int64
}

type DispatcherOption func(*Dispatcher)

func WithBufferSize(size int) DispatcherOption {
	return func(d *Dispatcher) {
		if size > 0 {
			d.bufferSize = size
		}
	}
}

func WithHandlerTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.handlerTimeout = timeout
		}
	}
}

func NewDispatcher(logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		logger:         logger,
		bufferSize:     DefaultBufferSize,
		handlerTimeout: DefaultHandlerTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ repository.RevocationPublisher = (*Dispatcher)(nil)

// Subscribe registers a subscriber. It may be called at any time before Close.
func (d *Dispatcher) Subscribe(subscriber repository.RevocationSubscriber) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	for _, s := range d.subscriptions {
		if s.subscriber.Name() == subscriber.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateSubscriber, subscriber.Name())
		}
	}

	sub := &subscription{
		subscriber: subscriber,
		events:     make(chan entity.RevocationEvent, d.bufferSize),
	}
	d.subscriptions = append(d.subscriptions, sub)

	d.wg.Add(1)
	go d.run(sub)

	d.logger.Debug("Revocation subscriber registered", zap.String("subscriber", subscriber.Name()))
	return nil
}

// Publish enqueues event for every subscriber without blocking. A full
// queue drops the event for that subscriber only.
func (d *Dispatcher) Publish(_ context.Context, event entity.RevocationEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		d.logger.Warn("Revocation event dropped, dispatcher closed", zap.String("token_id", event.TokenID))
		return
	}

	for _, sub := range d.subscriptions {
		select {
		case sub.events <- event:
		default:
			d.dropped.Add(1)
			d.logger.Warn("Revocation event dropped, subscriber queue full",
				zap.String("subscriber", sub.subscriber.Name()),
				zap.String("token_id", event.TokenID),
				zap.Int("queue_size", d.bufferSize),
			)
		}
	}
}

func (d *Dispatcher) run(sub *subscription) {
	defer d.wg.Done()
	for event := range sub.events {
		d.deliver(sub.subscriber, event)
	}
}

func (d *Dispatcher) deliver(subscriber repository.RevocationSubscriber, event entity.RevocationEvent) {
	start := time.Now()
	log := d.logger.With(
		zap.String("subscriber", subscriber.Name()),
		zap.String("event_id", event.EventID),
		zap.String("token_id", event.TokenID),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Revocation subscriber panicked", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.handlerTimeout)
	defer cancel()

	if err := subscriber.Handle(ctx, event); err != nil {
		log.Error("Revocation subscriber failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}

	log.Debug("Revocation event delivered", zap.Duration("duration", time.Since(start)))
}

// Dropped is the number of deliveries skipped since start
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops accepting events and waits for queued ones to be delivered
// or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, sub := range d.subscriptions {
		close(sub.events)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.logger.Warn("Event dispatcher closed before draining", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}
