package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/pkg/messaging"
)

type recordingApplier struct {
	mu     sync.Mutex
	events []entity.RevocationEvent
}

func (a *recordingApplier) ApplyRemoteRevocation(_ context.Context, event entity.RevocationEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

func (a *recordingApplier) tokenIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]string, len(a.events))
	for i, e := range a.events {
		ids[i] = e.TokenID
	}
	return ids
}

func newMessagingClient(t *testing.T) messaging.RedisClient {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return messaging.NewRedisClientFrom(rdb)
}

func TestRedisPropagation_SkipsOwnOrigin(t *testing.T) {
	client := newMessagingClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	applier := &recordingApplier{}
	listener := NewRedisListener(client, "", "instance-b", applier, zap.NewNop())
	require.NoError(t, listener.Start(ctx))

	fromA := NewRedisPublisher(client, "", "instance-a")
	fromB := NewRedisPublisher(client, "", "instance-b")

	expiresAt := time.Now().Add(time.Hour).UTC()
	require.NoError(t, fromB.Handle(ctx, entity.RevocationEvent{TokenID: "own", ExpiresAt: expiresAt}))
	require.NoError(t, fromA.Handle(ctx, entity.RevocationEvent{TokenID: "remote", ExpiresAt: expiresAt}))

	assert.Eventually(t, func() bool {
		return len(applier.tokenIDs()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"remote"}, applier.tokenIDs())

	applier.mu.Lock()
	assert.Equal(t, "instance-a", applier.events[0].Origin)
	assert.True(t, expiresAt.Equal(applier.events[0].ExpiresAt))
	applier.mu.Unlock()

	cancel()
	select {
	case <-listener.Done():
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestRedisListener_IgnoresGarbage(t *testing.T) {
	client := newMessagingClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	applier := &recordingApplier{}
	listener := NewRedisListener(client, "revocations", "instance-b", applier, zap.NewNop())
	require.NoError(t, listener.Start(ctx))

	require.NoError(t, client.Publish(ctx, "revocations", map[string]string{"event_id": "no-token"}))
	require.NoError(t, NewRedisPublisher(client, "revocations", "instance-a").Handle(ctx, entity.RevocationEvent{TokenID: "t1"}))

	assert.Eventually(t, func() bool {
		return len(applier.tokenIDs()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"t1"}, applier.tokenIDs())
}
