package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	cron "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultSweepSchedule  = "@every 5m"
	DefaultHealthSchedule = "@every 30s"
	DefaultProbeTimeout   = 2 * time.Second
)

// BlacklistSweeper removes expired blacklist entries
type BlacklistSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// TierProber checks the remote tiers of the blacklist store
type TierProber interface {
	Ping(ctx context.Context) error
	RefreshCount(ctx context.Context) error
}

// ExpiredTokenPruner drops tracked tokens that can no longer be presented
type ExpiredTokenPruner interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// HealthReporter receives the outcome of every probe
type HealthReporter interface {
	SetServing(serving bool)
}

type Config struct {
	SweepSchedule  string
	HealthSchedule string
	ProbeTimeout   time.Duration
}

// Scheduler runs the periodic sweep and health probe
type Scheduler struct {
	cron     *cron.Cron
	logger   *zap.Logger
	config   Config
	sweeper  BlacklistSweeper
	prober   TierProber
	pruner   ExpiredTokenPruner
	reporter HealthReporter
	now      func() time.Time
	healthy  atomic.Bool
}

// NewScheduler registers the jobs. prober, pruner and reporter are optional.
func NewScheduler(
	logger *zap.Logger,
	cfg Config,
	sweeper BlacklistSweeper,
	prober TierProber,
	pruner ExpiredTokenPruner,
	reporter HealthReporter,
	now func() time.Time,
) (*Scheduler, error) {
	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = DefaultSweepSchedule
	}
	if cfg.HealthSchedule == "" {
		cfg.HealthSchedule = DefaultHealthSchedule
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if now == nil {
		now = time.Now
	}

	cronLogger := newCronLogger(logger)
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger:   logger,
		config:   cfg,
		sweeper:  sweeper,
		prober:   prober,
		pruner:   pruner,
		reporter: reporter,
		now:      now,
	}
	s.healthy.Store(true)

	if _, err := s.cron.AddFunc(cfg.SweepSchedule, func() {
		_, _ = s.RunSweep(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", cfg.SweepSchedule, err)
	}

	if prober != nil {
		if _, err := s.cron.AddFunc(cfg.HealthSchedule, func() {
			_ = s.RunHealthCheck(context.Background())
		}); err != nil {
			return nil, fmt.Errorf("invalid health schedule %q: %w", cfg.HealthSchedule, err)
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Starting background jobs",
		zap.String("sweep_schedule", s.config.SweepSchedule),
		zap.String("health_schedule", s.config.HealthSchedule),
	)
	s.cron.Start()
}

// Stop waits for running jobs to finish or ctx to end
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunSweep removes expired blacklist entries and tracked tokens
func (s *Scheduler) RunSweep(ctx context.Context) (int, error) {
	start := time.Now()

	removed, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("Blacklist sweep failed", zap.Int("removed", removed), zap.Error(err))
		return removed, err
	}

	fields := []zap.Field{
		zap.Int("removed", removed),
		zap.Duration("duration", time.Since(start)),
	}

	if s.pruner != nil {
		pruned, err := s.pruner.DeleteExpired(ctx, s.now().UTC())
		if err != nil {
			s.logger.Error("Expired token cleanup failed", zap.Error(err))
			return removed, err
		}
		fields = append(fields, zap.Int64("tokens_pruned", pruned))
	}

	s.logger.Info("Blacklist sweep completed", fields...)
	return removed, nil
}

// RunHealthCheck pings the remote tiers and reports the result
func (s *Scheduler) RunHealthCheck(ctx context.Context) error {
	if s.prober == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.ProbeTimeout)
	defer cancel()

	err := s.prober.Ping(ctx)
	if err == nil {
		if cerr := s.prober.RefreshCount(ctx); cerr != nil {
			s.logger.Warn("Failed to refresh blacklist size", zap.Error(cerr))
		}
	}

	serving := err == nil
	if was := s.healthy.Swap(serving); was != serving {
		if serving {
			s.logger.Info("Blacklist store recovered")
		} else {
			s.logger.Error("Blacklist store unhealthy", zap.Error(err))
		}
	}
	if s.reporter != nil {
		s.reporter.SetServing(serving)
	}

	return err
}

func (s *Scheduler) Healthy() bool {
	return s.healthy.Load()
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.SugaredLogger
}

func newCronLogger(logger *zap.Logger) cron.Logger {
	return &cronLogger{logger: logger.Named("cron").Sugar()}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
