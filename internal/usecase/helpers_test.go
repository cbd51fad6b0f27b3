package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/service"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/cache"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
)

const testSecret = "test-secret"

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// memTokenRepository is an in-memory TokenRepository
type memTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]entity.Token
	saves  int
}

func newMemTokenRepository() *memTokenRepository {
	return &memTokenRepository{tokens: make(map[string]entity.Token)}
}

func (r *memTokenRepository) FindByID(_ context.Context, tokenID string) (*entity.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tok, ok := r.tokens[tokenID]
	if !ok {
		return nil, nil
	}
	return &tok, nil
}

func (r *memTokenRepository) FindActiveByUser(_ context.Context, userID string) ([]*entity.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Token
	for _, tok := range r.tokens {
		if tok.UserID == userID && tok.Status == entity.TokenStatusActive {
			t := tok
			out = append(out, &t)
		}
	}
	return out, nil
}

func (r *memTokenRepository) Save(_ context.Context, token *entity.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.TokenID] = *token
	r.saves++
	return nil
}

func (r *memTokenRepository) Transition(_ context.Context, token *entity.Token, from entity.TokenStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tokens[token.TokenID]
	if !ok || stored.Status != from {
		return false, nil
	}
	stored.Status = token.Status
	stored.RevokedAt = token.RevokedAt
	stored.RevocationReason = token.RevocationReason
	r.tokens[token.TokenID] = stored
	return true, nil
}

func (r *memTokenRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, tok := range r.tokens {
		if !tok.ExpiresAt.After(before) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

func (r *memTokenRepository) get(tokenID string) entity.Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[tokenID]
}

// MockBlacklistTier is a mock BlacklistTier
type MockBlacklistTier struct {
	mock.Mock
}

func (m *MockBlacklistTier) Get(ctx context.Context, tokenID string) (*entity.BlacklistEntry, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.BlacklistEntry), args.Error(1)
}

func (m *MockBlacklistTier) Set(ctx context.Context, entry *entity.BlacklistEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockBlacklistTier) Remove(ctx context.Context, tokenID string) error {
	return m.Called(ctx, tokenID).Error(0)
}

func (m *MockBlacklistTier) RemoveExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockBlacklistTier) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// slowTier delays every Set so concurrent callers overlap
type slowTier struct {
	repository.BlacklistTier
	delay time.Duration
}

func (s *slowTier) Set(ctx context.Context, entry *entity.BlacklistEntry) error {
	time.Sleep(s.delay)
	return s.BlacklistTier.Set(ctx, entry)
}

// gatedTier parks the first Get after it has read, until release is closed
type gatedTier struct {
	repository.BlacklistTier
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func newGatedTier(inner repository.BlacklistTier) *gatedTier {
	return &gatedTier{BlacklistTier: inner, read: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedTier) Get(ctx context.Context, tokenID string) (*entity.BlacklistEntry, error) {
	entry, err := g.BlacklistTier.Get(ctx, tokenID)
	g.once.Do(func() {
		close(g.read)
		<-g.release
	})
	return entry, err
}

// recordingPublisher keeps published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.RevocationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event entity.RevocationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []entity.RevocationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entity.RevocationEvent(nil), p.events...)
}

// memAuditRepository is an in-memory AuditLogRepository
type memAuditRepository struct {
	mu   sync.Mutex
	logs []*entity.AuditLog
}

func (r *memAuditRepository) Create(_ context.Context, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = uint(len(r.logs) + 1)
	r.logs = append(r.logs, log)
	return nil
}

func (r *memAuditRepository) ListByUserID(_ context.Context, userID string, _, _ int) ([]*entity.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AuditLog
	for _, l := range r.logs {
		if l.UserID != nil && *l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memAuditRepository) ListByType(_ context.Context, logType entity.AuditLogType, _, _ int) ([]*entity.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AuditLog
	for _, l := range r.logs {
		if l.Type == logType {
			out = append(out, l)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memAuditRepository) types() []entity.AuditLogType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.AuditLogType, len(r.logs))
	for i, l := range r.logs {
		out[i] = l.Type
	}
	return out
}

// fixture wires the token, blacklist and revocation use cases over in-memory parts
type fixture struct {
	clock      *testClock
	logs       *observer.ObservedLogs
	tokens     *memTokenRepository
	fast       repository.BlacklistTier
	store      *service.BlacklistStore
	results    *cache.CheckCache[dto.TokenStatusResult]
	publisher  *recordingPublisher
	tokenUC    interfaces.TokenUseCase
	blacklist  *usecase.BlacklistUseCase
	revocation interfaces.RevocationUseCase
}

type fixtureOption func(*fixtureOptions)

type fixtureOptions struct {
	fast       repository.BlacklistTier
	durable    repository.BlacklistTier
	failClosed bool
}

func withFastTier(tier repository.BlacklistTier) fixtureOption {
	return func(o *fixtureOptions) { o.fast = tier }
}

func withDurableTier(tier repository.BlacklistTier) fixtureOption {
	return func(o *fixtureOptions) { o.durable = tier }
}

func withFailClosed() fixtureOption {
	return func(o *fixtureOptions) { o.failClosed = true }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	f := &fixture{
		clock:     newTestClock(),
		tokens:    newMemTokenRepository(),
		results:   cache.NewCheckCache[dto.TokenStatusResult](90 * time.Second),
		publisher: &recordingPublisher{},
	}

	o := fixtureOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fast == nil {
		o.fast = cache.NewMemoryBlacklist(8, f.clock.Now)
	}
	f.fast = o.fast

	core, logs := observer.New(zapcore.DebugLevel)
	f.logs = logs
	logger := zap.New(core)

	f.store = service.NewBlacklistStore(o.fast, o.durable, service.BlacklistStoreOptions{
		Now:            f.clock.Now,
		DurableTimeout: 50 * time.Millisecond,
		Logger:         logger,
	})

	f.tokenUC = usecase.NewTokenUseCase(logger, usecase.TokenConfig{
		Issuer:    "secure-clean-api",
		Secret:    testSecret,
		ClockSkew: time.Minute,
	}, f.tokens, f.clock.Now)

	f.blacklist = usecase.NewBlacklistUseCase(logger, usecase.BlacklistConfig{
		ClockSkew:        time.Minute,
		FailClosed:       o.failClosed,
		InsertRetries:    3,
		InsertInterval:   time.Millisecond,
		InsertMaxElapsed: 200 * time.Millisecond,
	}, f.store, f.tokenUC, f.results, f.clock.Now)

	f.revocation = usecase.NewRevocationUseCase(logger, f.tokens, f.blacklist, f.publisher, f.clock.Now)

	return f
}

func (f *fixture) issue(t *testing.T, tokenType entity.TokenType) *dto.IssuedToken {
	t.Helper()
	issued, err := f.tokenUC.IssueToken(context.Background(), dto.IssueParams{
		UserID:    "user-alice",
		Username:  "alice",
		Roles:     []string{entity.RoleUser},
		TokenType: tokenType,
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return issued
}
