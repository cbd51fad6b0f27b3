package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// LogError writes err as a structured log entry. Server side failures are
// logged at error level, client side ones at warn.
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}

	allFields := make([]zap.Field, 0, len(fields)+2)
	allFields = append(allFields, zap.Error(err))

	code := CodeOf(err)
	allFields = append(allFields, zap.String("error_code", code))
	allFields = append(allFields, fields...)

	if HTTPStatus(code) >= http.StatusInternalServerError {
		logger.Error(msg, allFields...)
		return
	}
	logger.Warn(msg, allFields...)
}
