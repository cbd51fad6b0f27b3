package config

import (
	"time"

	"github.com/dariemcarlosdev/secure-clean-api/pkg/config"
	"github.com/dariemcarlosdev/secure-clean-api/pkg/logger"
	"go.uber.org/zap"
)

// Config holds every setting of the auth service
type Config struct {
	Service struct {
		Name    string
		Version string
		BaseURL string
	}

	Server struct {
		HTTP struct {
			Port    string
			Timeout int
			Debug   bool
		}
		GRPC struct {
			Port    string
			Timeout int
		}
	}

	Database struct {
		Driver          string
		Host            string
		Port            int
		Name            string
		User            string
		Password        string
		SSLMode         string
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime int
	}

	// Redis is dialled when Enabled or when it serves as the fast tier
	Redis struct {
		Enabled  bool
		Host     string
		Port     int
		Password string
		DB       int
	}

	JWT struct {
		Secret string
		Issuer string
		// lifetimes in minutes
		AccessTokenExpiry  int
		RefreshTokenExpiry int
	}

	Log struct {
		Level    string
		Format   string
		Output   string
		FilePath string
	}

	Auth struct {
		HashCost int
	}

	Blacklist BlacklistConfig

	Events struct {
		BufferSize int
		Channel    string
	}

	// Proxy maps an upstream name to its base URL
	Proxy struct {
		Timeout   int
		Upstreams map[string]string
	}

	Logger *zap.Logger
}

// RedisRequired reports whether the service needs a Redis connection
func (c *Config) RedisRequired() bool {
	return c.Redis.Enabled || c.Blacklist.FastTier == FastTierRedis
}

// BlacklistConfig tunes the revocation store and check protocol
type BlacklistConfig struct {
	FastTier         string // memory | redis
	DurableEnabled   bool
	DurableTimeout   time.Duration
	SweepSchedule    string
	HealthSchedule   string
	CheckCacheTTL    time.Duration
	ClockSkew        time.Duration
	FailClosed       bool
	InsertRetries    int
	InsertMaxElapsed time.Duration
	Shards           int
}

const (
	FastTierMemory = "memory"
	FastTierRedis  = "redis"
)

var (
	// AppConfig is the process-wide configuration set by Load
	AppConfig *Config
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"service.name":                      "auth",
		"service.version":                   "0.1.0",
		"server.http.port":                  "8080",
		"server.http.timeout":               30,
		"server.grpc.port":                  "9090",
		"server.grpc.timeout":               30,
		"database.driver":                   "postgres",
		"database.host":                     "localhost",
		"database.port":                     5432,
		"database.name":                     "auth",
		"database.user":                     "postgres",
		"database.sslmode":                  "disable",
		"database.max_open_conns":           25,
		"database.max_idle_conns":           10,
		"database.conn_max_lifetime":        300,
		"redis.enabled":                     false,
		"redis.host":                        "localhost",
		"redis.port":                        6379,
		"jwt.issuer":                        "secure-clean-api",
		"jwt.access_token_expiry":           30,
		"jwt.refresh_token_expiry":          7 * 24 * 60,
		"log.level":                         "info",
		"log.format":                        "json",
		"log.output":                        "stdout",
		"auth.hash_cost":                    10,
		"blacklist.fast_tier":               FastTierMemory,
		"blacklist.durable_enabled":         true,
		"blacklist.durable_timeout_ms":      200,
		"blacklist.sweep_schedule":          "@every 5m",
		"blacklist.health_schedule":         "@every 30s",
		"blacklist.check_cache_ttl_seconds": 90,
		"blacklist.clock_skew_seconds":      60,
		"blacklist.fail_closed":             false,
		"blacklist.insert_retries":          3,
		"blacklist.insert_max_elapsed_ms":   2000,
		"blacklist.shards":                  64,
		"events.buffer_size":                256,
		"events.channel":                    "auth:token:revoked",
		"proxy.timeout":                     10,
	}
}

// Load reads the auth configuration and builds the service logger
func Load() (*Config, error) {
	cfg, err := config.Load("auth", config.Options{Defaults: defaults()})
	if err != nil {
		return nil, err
	}

	appConfig := FromSource(cfg)

	loggerConfig := logger.Config{
		Level:       appConfig.Log.Level,
		Format:      appConfig.Log.Format,
		Output:      appConfig.Log.Output,
		FilePath:    appConfig.Log.FilePath,
		Service:     appConfig.Service.Name,
		Development: appConfig.Server.HTTP.Debug,
	}

	appConfig.Logger, err = logger.NewZapLogger(loggerConfig)
	if err != nil {
		return nil, err
	}

	AppConfig = appConfig

	return appConfig, nil
}

// FromSource maps raw settings onto Config. The logger is left nil.
func FromSource(cfg config.Config) *Config {
	appConfig := &Config{}

	appConfig.Service.Name = cfg.GetString("service.name")
	appConfig.Service.Version = cfg.GetString("service.version")
	appConfig.Service.BaseURL = cfg.GetString("service.base_url")

	appConfig.Server.HTTP.Port = cfg.GetString("server.http.port")
	appConfig.Server.HTTP.Timeout = cfg.GetInt("server.http.timeout")
	appConfig.Server.HTTP.Debug = cfg.GetBool("server.http.debug")

	appConfig.Server.GRPC.Port = cfg.GetString("server.grpc.port")
	appConfig.Server.GRPC.Timeout = cfg.GetInt("server.grpc.timeout")

	appConfig.Database.Driver = cfg.GetString("database.driver")
	appConfig.Database.Host = cfg.GetString("database.host")
	appConfig.Database.Port = cfg.GetInt("database.port")
	appConfig.Database.Name = cfg.GetString("database.name")
	appConfig.Database.User = cfg.GetString("database.user")
	appConfig.Database.Password = cfg.GetString("database.password")
	appConfig.Database.SSLMode = cfg.GetString("database.sslmode")
	appConfig.Database.MaxOpenConns = cfg.GetInt("database.max_open_conns")
	appConfig.Database.MaxIdleConns = cfg.GetInt("database.max_idle_conns")
	appConfig.Database.ConnMaxLifetime = cfg.GetInt("database.conn_max_lifetime")

	appConfig.Redis.Enabled = cfg.GetBool("redis.enabled")
	appConfig.Redis.Host = cfg.GetString("redis.host")
	appConfig.Redis.Port = cfg.GetInt("redis.port")
	appConfig.Redis.Password = cfg.GetString("redis.password")
	appConfig.Redis.DB = cfg.GetInt("redis.db")

	appConfig.JWT.Secret = cfg.GetString("jwt.secret")
	appConfig.JWT.Issuer = cfg.GetString("jwt.issuer")
	appConfig.JWT.AccessTokenExpiry = cfg.GetInt("jwt.access_token_expiry")
	appConfig.JWT.RefreshTokenExpiry = cfg.GetInt("jwt.refresh_token_expiry")

	appConfig.Log.Level = cfg.GetString("log.level")
	appConfig.Log.Format = cfg.GetString("log.format")
	appConfig.Log.Output = cfg.GetString("log.output")
	appConfig.Log.FilePath = cfg.GetString("log.file_path")

	appConfig.Auth.HashCost = cfg.GetInt("auth.hash_cost")

	bl := &appConfig.Blacklist
	bl.FastTier = cfg.GetString("blacklist.fast_tier")
	bl.DurableEnabled = cfg.GetBool("blacklist.durable_enabled")
	bl.DurableTimeout = time.Duration(cfg.GetInt("blacklist.durable_timeout_ms")) * time.Millisecond
	bl.SweepSchedule = cfg.GetString("blacklist.sweep_schedule")
	bl.HealthSchedule = cfg.GetString("blacklist.health_schedule")
	bl.CheckCacheTTL = time.Duration(cfg.GetInt("blacklist.check_cache_ttl_seconds")) * time.Second
	bl.ClockSkew = time.Duration(cfg.GetInt("blacklist.clock_skew_seconds")) * time.Second
	bl.FailClosed = cfg.GetBool("blacklist.fail_closed")
	bl.InsertRetries = cfg.GetInt("blacklist.insert_retries")
	bl.InsertMaxElapsed = time.Duration(cfg.GetInt("blacklist.insert_max_elapsed_ms")) * time.Millisecond
	bl.Shards = cfg.GetInt("blacklist.shards")

	appConfig.Events.BufferSize = cfg.GetInt("events.buffer_size")
	appConfig.Events.Channel = cfg.GetString("events.channel")

	appConfig.Proxy.Timeout = cfg.GetInt("proxy.timeout")
	appConfig.Proxy.Upstreams = make(map[string]string)
	for name, raw := range cfg.GetStringMap("proxy.upstreams") {
		if url, ok := raw.(string); ok {
			appConfig.Proxy.Upstreams[name] = url
		}
	}

	return appConfig
}
