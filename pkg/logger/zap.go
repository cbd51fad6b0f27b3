// Package logger builds the zap loggers shared by the HTTP, gRPC and database layers.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Level is a zap level name. Unknown names fall back to info.
	Level string
	// Format is json or console
	Format string
	// Output is stdout, stderr or file
	Output   string
	FilePath string
	// Service is attached to every entry as service.name when set
	Service     string
	Development bool
}

// ParseLevel maps a level name to a zapcore level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

func outputPath(config Config) string {
	switch config.Output {
	case "stderr":
		return "stderr"
	case "file":
		if config.FilePath != "" {
			return config.FilePath
		}
	}
	return "stdout"
}

// NewZapLogger builds a logger with ECS style keys. Errors and above carry a stacktrace.
func NewZapLogger(config Config) (*zap.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "@timestamp"
	encoderConfig.LevelKey = "log.level"
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if config.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	encoding := "json"
	if config.Format == "console" {
		encoding = "console"
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(ParseLevel(config.Level)),
		Development:       config.Development,
		DisableCaller:     !config.Development,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       []string{outputPath(config)},
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, err
	}

	if config.Service != "" {
		logger = logger.With(zap.String("service.name", config.Service))
	}
	return logger, nil
}
