package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"go.uber.org/zap"
)

// RequestID makes sure every request carries an X-Request-ID, echoes it on
// the response and binds a logger tagged with it
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(logger.RequestIDKey)
			if requestID == "" {
				requestID = uuid.New().String()
				c.Request().Header.Set(logger.RequestIDKey, requestID)
			}

			c.Response().Header().Set(logger.RequestIDKey, requestID)
			logger.WithLogger(c, logger.GetLogger().With(zap.String("request_id", requestID)))

			return next(c)
		}
	}
}
