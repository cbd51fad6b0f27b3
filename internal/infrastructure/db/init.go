package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dariemcarlosdev/secure-clean-api/internal/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Infrastructure holds the external connections of the service.
// RedisClient is nil when Redis is not required.
type Infrastructure struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	logger      *zap.Logger
}

// NewInfrastructure opens the database and, when configured, Redis
func NewInfrastructure(cfg *config.Config) (*Infrastructure, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	infrastructure := &Infrastructure{logger: logger}

	dbConfig := Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Name:            cfg.Database.Name,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		SSLMode:         cfg.Database.SSLMode,
	}

	var err error
	switch cfg.Database.Driver {
	case DriverPostgres, "":
		infrastructure.DB, err = NewPostgresDB(dbConfig, logger)
	case DriverSQLite:
		if dbConfig.Name == ":memory:" {
			// each pooled connection would see its own empty database
			dbConfig.MaxOpenConns = 1
		}
		infrastructure.DB, err = NewSQLiteDB(dbConfig, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.RedisRequired() {
		infrastructure.RedisClient, err = NewRedisClient(RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			_ = infrastructure.Close()
			return nil, err
		}
	}

	logger.Info("Infrastructure initialized",
		zap.String("database", dbConfig.Driver),
		zap.Bool("redis", infrastructure.RedisClient != nil),
	)

	return infrastructure, nil
}

// Close releases every open connection
func (i *Infrastructure) Close() error {
	var errs []error

	if i.DB != nil {
		sqlDB, err := i.DB.DB()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get sql.DB: %w", err))
		} else if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if i.RedisClient != nil {
		if err := i.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}

	i.logger.Info("Infrastructure connections closed")
	return errors.Join(errs...)
}
