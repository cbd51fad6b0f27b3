package appinit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	handler "github.com/dariemcarlosdev/secure-clean-api/internal/adapter/handler/http"
	"github.com/dariemcarlosdev/secure-clean-api/internal/adapter/repository"
	"github.com/dariemcarlosdev/secure-clean-api/internal/config"
	domainrepo "github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/service"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/cache"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/db"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/event"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/external"
	grpcserver "github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/grpc"
	httpserver "github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/http"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/http/middleware"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/worker"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
	"github.com/dariemcarlosdev/secure-clean-api/pkg/messaging"
)

// App is the fully wired service
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	InstanceID string

	Store      *service.BlacklistStore
	Dispatcher *event.Dispatcher
	UseCases   *usecase.UseCases

	HTTP      *httpserver.Server
	GRPC      *grpcserver.Server
	Scheduler *worker.Scheduler
	// Listener is nil unless Redis is connected
	Listener *event.RedisListener

	cancelListener context.CancelFunc
}

// NewApp builds every component on top of infra. now may be nil.
func NewApp(cfg *config.Config, infra *db.Infrastructure, now func() time.Time) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}

	app := &App{
		Config:     cfg,
		Logger:     logger,
		InstanceID: uuid.NewString(),
	}

	var externalClient domainrepo.ExternalAPIClient
	if len(cfg.Proxy.Upstreams) > 0 {
		client, err := external.NewClient(cfg.Proxy.Upstreams, time.Duration(cfg.Proxy.Timeout)*time.Second, logger)
		if err != nil {
			return nil, fmt.Errorf("proxy: %w", err)
		}
		externalClient = client
	}
	repositories := repository.InitRepositories(infra.DB, externalClient, now)

	fast, fastName, err := newFastTier(cfg, infra, now)
	if err != nil {
		return nil, err
	}
	var durable domainrepo.BlacklistTier
	if cfg.Blacklist.DurableEnabled {
		durable = repositories.Blacklist
	}
	app.Store = service.NewBlacklistStore(fast, durable, service.BlacklistStoreOptions{
		FastTierName:   fastName,
		DurableTimeout: cfg.Blacklist.DurableTimeout,
		Now:            now,
		Logger:         logger,
	})

	app.Dispatcher = event.NewDispatcher(logger, event.WithBufferSize(cfg.Events.BufferSize))

	app.UseCases = usecase.SetupUseCases(logger, cfg, repositories, usecase.Dependencies{
		Store:     app.Store,
		Results:   cache.NewCheckCache[dto.TokenStatusResult](cfg.Blacklist.CheckCacheTTL),
		Publisher: app.Dispatcher,
		Now:       now,
	})

	if err := app.subscribe(infra); err != nil {
		return nil, err
	}

	app.GRPC = grpcserver.NewServer(grpcserver.Config{
		Port:    cfg.Server.GRPC.Port,
		Timeout: cfg.Server.GRPC.Timeout,
	}, logger)

	app.Scheduler, err = worker.NewScheduler(
		logger,
		worker.Config{
			SweepSchedule:  cfg.Blacklist.SweepSchedule,
			HealthSchedule: cfg.Blacklist.HealthSchedule,
		},
		app.UseCases.Blacklist,
		app.Store,
		repositories.Token,
		app.GRPC,
		now,
	)
	if err != nil {
		return nil, err
	}

	app.HTTP = httpserver.NewServer(httpserver.Config{
		Port:    cfg.Server.HTTP.Port,
		Timeout: cfg.Server.HTTP.Timeout,
		Debug:   cfg.Server.HTTP.Debug,
	}, logger)

	handlers := handler.Handlers{
		Auth:   handler.NewAuthHandler(logger, app.UseCases.Auth),
		Token:  handler.NewTokenHandler(logger, app.UseCases.Token, app.UseCases.Revocation, app.UseCases.Blacklist),
		Health: handler.NewHealthHandler(logger, app.UseCases.Blacklist, app.Store),
	}
	if externalClient != nil {
		handlers.Proxy = handler.NewProxyHandler(logger, app.UseCases.Proxy)
	}
	authMiddleware := middleware.NewJWTAuthMiddleware(app.UseCases.Token, app.UseCases.Blacklist, logger)
	app.HTTP.RegisterRoutes(func(e *echo.Echo) {
		handler.RegisterRoutes(e, handlers, authMiddleware)
	})

	return app, nil
}

func newFastTier(cfg *config.Config, infra *db.Infrastructure, now func() time.Time) (domainrepo.BlacklistTier, string, error) {
	switch cfg.Blacklist.FastTier {
	case config.FastTierMemory, "":
		return cache.NewMemoryBlacklist(cfg.Blacklist.Shards, now), config.FastTierMemory, nil
	case config.FastTierRedis:
		if infra.RedisClient == nil {
			return nil, "", errors.New("blacklist fast tier is redis but no redis client is connected")
		}
		return db.NewRedisBlacklist(infra.RedisClient, now), config.FastTierRedis, nil
	default:
		return nil, "", fmt.Errorf("unknown blacklist fast tier %q", cfg.Blacklist.FastTier)
	}
}

// subscribe registers the revocation subscribers. Pub/Sub propagation
// is only wired when Redis is connected.
func (a *App) subscribe(infra *db.Infrastructure) error {
	if err := a.Dispatcher.Subscribe(usecase.NewAuditRevocationSubscriber(a.UseCases.AuditLog)); err != nil {
		return err
	}

	if infra.RedisClient == nil {
		return nil
	}

	client := messaging.NewRedisClientFrom(infra.RedisClient)
	if err := a.Dispatcher.Subscribe(event.NewRedisPublisher(client, a.Config.Events.Channel, a.InstanceID)); err != nil {
		return err
	}
	a.Listener = event.NewRedisListener(client, a.Config.Events.Channel, a.InstanceID, a.UseCases.Blacklist, a.Logger)
	return nil
}

// Start launches the background jobs and both servers. Server failures
// are sent on the returned channel.
func (a *App) Start(ctx context.Context) (<-chan error, error) {
	if a.Listener != nil {
		listenCtx, cancel := context.WithCancel(ctx)
		if err := a.Listener.Start(listenCtx); err != nil {
			cancel()
			return nil, fmt.Errorf("start revocation listener: %w", err)
		}
		a.cancelListener = cancel
	}

	a.Scheduler.Start()

	errs := make(chan error, 2)
	go func() {
		if err := a.HTTP.Start(); err != nil {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		if err := a.GRPC.Start(); err != nil {
			errs <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	return errs, nil
}

// Shutdown stops accepting requests first, then drains background work
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if a.HTTP != nil {
		if err := a.HTTP.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if a.GRPC != nil {
		if err := a.GRPC.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("grpc shutdown: %w", err))
		}
	}
	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("scheduler stop: %w", err))
		}
	}
	if a.cancelListener != nil {
		a.cancelListener()
		select {
		case <-a.Listener.Done():
		case <-ctx.Done():
		}
	}
	if a.Dispatcher != nil {
		if err := a.Dispatcher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("dispatcher close: %w", err))
		}
	}

	return errors.Join(errs...)
}
