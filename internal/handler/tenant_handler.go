package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tenantgate/internal/middleware"
	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/internal/service"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"go.uber.org/zap"
)

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func companyNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "company not found"})
}

// Login checks the tenant admin credentials on the resolved tenant
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromContext(c)

	company, ok := middleware.CompanyFromContext(c)
	if !ok {
		return companyNotFound(c)
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	err := h.auth.Login(c.Request().Context(), service.LoginAttempt{
		CompanyID: company.ID,
		Name:      req.Name,
		Password:  req.Password,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	switch {
	case err == nil:
		log.Info("Tenant login succeeded", zap.Uint("company_id", company.ID), zap.String("name", req.Name))
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "authentication successful",
			"user":    echo.Map{"name": req.Name, "role": "admin"},
			"company": echo.Map{"id": company.ID, "name": company.Name, "domain": company.Domain},
		})
	case errors.Is(err, service.ErrMissingCredentials):
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "name and password are required"})
	case errors.Is(err, service.ErrInvalidCredentials):
		log.Info("Tenant login rejected", zap.Uint("company_id", company.ID), zap.String("name", req.Name))
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid credentials"})
	default:
		log.Error("Login failed", zap.Uint("company_id", company.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal server error"})
	}
}

// Logs returns the most recent login attempts of the resolved tenant
func (h *Handler) Logs(c echo.Context) error {
	company, ok := middleware.CompanyFromContext(c)
	if !ok {
		return companyNotFound(c)
	}

	logs, err := h.logs.ListRecent(c.Request().Context(), company.ID, LogsLimit)
	if err != nil {
		logger.FromContext(c).Error("Failed to list logs", zap.Uint("company_id", company.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to retrieve logs"})
	}
	if logs == nil {
		logs = []model.Log{}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "logs": logs})
}

// Company describes the resolved tenant
func (h *Handler) Company(c echo.Context) error {
	company, ok := middleware.CompanyFromContext(c)
	if !ok {
		return companyNotFound(c)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"company": echo.Map{
			"id":          company.ID,
			"name":        company.Name,
			"domain":      company.Domain,
			"description": company.Description,
			"logo":        company.Logo,
			"status":      company.Status,
		},
	})
}
