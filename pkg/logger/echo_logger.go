package logger

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	pkgerrors "github.com/dariemcarlosdev/secure-clean-api/pkg/errors"
)

// UserIDContextKey is where authentication middleware stores the caller id.
// The request logger attaches it when present.
const UserIDContextKey = "user_id"

// NewEchoRequestLogger logs one entry per request. 4xx responses are warn,
// 5xx and handler errors are error. /health is not logged.
func NewEchoRequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		HandleError:     true,
		LogLatency:      true,
		LogRemoteIP:     true,
		LogMethod:       true,
		LogURIPath:      true,
		LogRoutePath:    true,
		LogRequestID:    true,
		LogUserAgent:    true,
		LogStatus:       true,
		LogError:        true,
		LogResponseSize: true,
		LogHeaders:      []string{echo.HeaderAuthorization},

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := make([]zap.Field, 0, 12)
			fields = append(fields,
				zap.String("http.request.method", v.Method),
				zap.String("url.path", v.URIPath),
				zap.String("http.route", v.RoutePath),
				zap.String("client.ip", v.RemoteIP),
				zap.String("user_agent.original", v.UserAgent),
				zap.String("http.request.id", v.RequestID),
				zap.Int("http.response.status_code", v.Status),
				zap.Int64("http.response.body.bytes", v.ResponseSize),
				zap.Duration("event.duration", v.Latency),
			)
			if auth := v.Headers[echo.HeaderAuthorization]; len(auth) > 0 {
				fields = append(fields, zap.String("http.request.authorization", MaskAuthorization(auth[0])))
			}
			if userID, ok := c.Get(UserIDContextKey).(string); ok && userID != "" {
				fields = append(fields, zap.String("user.id", userID))
			}

			switch {
			case v.Error != nil:
				logger.Error("Request failed", append(fields, zap.Error(v.Error))...)
			case v.Status >= http.StatusInternalServerError:
				logger.Error("Server error", fields...)
			case v.Status >= http.StatusBadRequest:
				logger.Warn("Client error", fields...)
			default:
				logger.Info("Request completed", fields...)
			}
			return nil
		},
	})
}

// MaskAuthorization keeps only the edges of a bearer credential
func MaskAuthorization(value string) string {
	if len(value) > 15 {
		return value[:10] + "..." + value[len(value)-5:]
	}
	return "[MASKED]"
}

// WithEchoLogger installs the zap logger and a JSON error handler on e.
// Errors render as {"error": message}. AppErrors returned directly by a
// handler are mapped to their HTTP status.
func WithEchoLogger(e *echo.Echo, logger *zap.Logger) {
	e.Logger = NewEchoZapLogger(logger)

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code, message := errorResponse(err)

		if code >= http.StatusInternalServerError {
			logger.Error("HTTP error",
				zap.Error(err),
				zap.Int("http.response.status_code", code),
				zap.String("http.request.method", c.Request().Method),
				zap.String("url.path", c.Request().URL.Path),
			)
		}

		if c.Response().Committed {
			return
		}

		var sendErr error
		if c.Request().Method == http.MethodHead {
			sendErr = c.NoContent(code)
		} else {
			sendErr = c.JSON(code, map[string]interface{}{"error": message})
		}
		if sendErr != nil {
			logger.Error("Failed to send error response", zap.Error(sendErr))
		}
	}
}

func errorResponse(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, http.StatusText(he.Code)
	}

	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		return pkgerrors.HTTPStatus(appErr.Code()), appErr.Message()
	}

	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

var gommonToZap = map[log.Lvl]zapcore.Level{
	log.DEBUG: zapcore.DebugLevel,
	log.INFO:  zapcore.InfoLevel,
	log.WARN:  zapcore.WarnLevel,
	log.ERROR: zapcore.ErrorLevel,
}

// EchoZapLogger adapts zap to echo.Logger. SetLevel raises the minimum
// level on top of whatever the zap core allows.
type EchoZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
	level log.Lvl
}

var _ echo.Logger = (*EchoZapLogger)(nil)

func NewEchoZapLogger(logger *zap.Logger) *EchoZapLogger {
	l := &EchoZapLogger{base: logger.Named("echo")}
	l.SetLevel(log.DEBUG)
	return l
}

func (l *EchoZapLogger) Output() io.Writer { return zapWriter{l.sugar} }

// SetOutput is ignored, zap owns its sinks
func (l *EchoZapLogger) SetOutput(io.Writer) {}

func (l *EchoZapLogger) Level() log.Lvl { return l.level }

func (l *EchoZapLogger) SetLevel(v log.Lvl) {
	l.level = v
	floor, ok := gommonToZap[v]
	if !ok {
		// OFF and unknown levels silence everything below fatal
		floor = zapcore.FatalLevel
	}
	// IncreaseLevel rejects floors the core already filters out
	if l.base.Core().Enabled(floor) {
		l.sugar = l.base.WithOptions(zap.IncreaseLevel(floor)).Sugar()
		return
	}
	l.sugar = l.base.Sugar()
}

func (l *EchoZapLogger) SetHeader(string) {}

func (l *EchoZapLogger) Prefix() string { return l.base.Name() }

func (l *EchoZapLogger) SetPrefix(p string) {
	l.base = l.base.Named(p)
	l.SetLevel(l.level)
}

func (l *EchoZapLogger) Print(i ...interface{}) { l.sugar.Info(i...) }
func (l *EchoZapLogger) Printf(format string, args ...interface{}) { l.sugar.Infof(format, args...) }
func (l *EchoZapLogger) Printj(j log.JSON) { l.sugar.Infow("json", jsonFields(j)...) }
func (l *EchoZapLogger) Debug(i ...interface{}) { l.sugar.Debug(i...) }
func (l *EchoZapLogger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *EchoZapLogger) Debugj(j log.JSON) { l.sugar.Debugw("json", jsonFields(j)...) }
func (l *EchoZapLogger) Info(i ...interface{}) { l.sugar.Info(i...) }
func (l *EchoZapLogger) Infof(format string, args ...interface{}) { l.sugar.Infof(format, args...) }
func (l *EchoZapLogger) Infoj(j log.JSON) { l.sugar.Infow("json", jsonFields(j)...) }
func (l *EchoZapLogger) Warn(i ...interface{}) { l.sugar.Warn(i...) }
func (l *EchoZapLogger) Warnf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }
func (l *EchoZapLogger) Warnj(j log.JSON) { l.sugar.Warnw("json", jsonFields(j)...) }
func (l *EchoZapLogger) Error(i ...interface{}) { l.sugar.Error(i...) }
func (l *EchoZapLogger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l *EchoZapLogger) Errorj(j log.JSON) { l.sugar.Errorw("json", jsonFields(j)...) }
func (l *EchoZapLogger) Fatal(i ...interface{}) { l.sugar.Fatal(i...) }
func (l *EchoZapLogger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }
func (l *EchoZapLogger) Fatalj(j log.JSON) { l.sugar.Fatalw("json", jsonFields(j)...) }
func (l *EchoZapLogger) Panic(i ...interface{}) { l.sugar.Panic(i...) }
func (l *EchoZapLogger) Panicf(format string, args ...interface{}) { l.sugar.Panicf(format, args...) }
func (l *EchoZapLogger) Panicj(j log.JSON) { l.sugar.Panicw("json", jsonFields(j)...) }

func jsonFields(j log.JSON) []interface{} {
	kv := make([]interface{}, 0, len(j)*2)
	for k, v := range j {
		kv = append(kv, k, v)
	}
	return kv
}

type zapWriter struct {
	sugar *zap.SugaredLogger
}

func (w zapWriter) Write(p []byte) (int, error) {
	w.sugar.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
