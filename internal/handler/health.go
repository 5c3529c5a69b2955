package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"go.uber.org/zap"
)

// Health is a liveness probe; it does not touch the database
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"message":   "server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HTTPErrorHandler renders every error that reaches echo as JSON
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch code {
		case http.StatusNotFound:
			message = "route not found"
		case http.StatusMethodNotAllowed:
			message = "method not allowed"
		default:
			if m, ok := he.Message.(string); ok {
				message = m
			}
		}
	}
	if code >= http.StatusInternalServerError {
		logger.FromContext(c).Error("Unhandled error", zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"success": false, "message": message})
	}
	if err != nil {
		logger.FromContext(c).Error("Failed to write error response", zap.Error(err))
	}
}
