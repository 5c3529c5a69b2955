package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDKey is the header carrying the request id
const RequestIDKey = "X-Request-ID"

const contextKey = "logger"

// FromContext retrieves the request-scoped logger from the Echo context
func FromContext(c echo.Context) *zap.Logger {
	if l, ok := c.Get(contextKey).(*zap.Logger); ok {
		return l
	}

	requestID := c.Request().Header.Get(RequestIDKey)
	if requestID == "" {
		return GetLogger()
	}
	return GetLogger().With(zap.String("request_id", requestID))
}

// WithLogger stores l as the request-scoped logger
func WithLogger(c echo.Context, l *zap.Logger) {
	c.Set(contextKey, l)
}
