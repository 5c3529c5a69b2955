package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tenantgate/internal/middleware"
	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/internal/repository"
	"github.com/suteetoe/tenantgate/internal/service"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"go.uber.org/zap"
)

type metaLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MetaLogin opens a meta-admin session: a cookie for the browser UI and a
// bearer token for other clients
func (h *Handler) MetaLogin(c echo.Context) error {
	log := logger.FromContext(c)

	var req metaLoginRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse meta login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	if err := h.auth.MetaLogin(req.Username, req.Password); err != nil {
		if errors.Is(err, service.ErrMissingCredentials) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "username and password are required"})
		}
		log.Warn("Meta-admin login rejected", zap.String("username", req.Username))
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid credentials"})
	}

	token, err := h.jwt.GenerateMetaToken(req.Username)
	if err != nil {
		log.Error("Failed to sign meta-admin token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal server error"})
	}

	c.SetCookie(h.sessionCookie("true", int(h.sessionTTL.Seconds())))
	log.Info("Meta-admin logged in", zap.String("username", req.Username))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "meta-admin login successful",
		"token":   token,
	})
}

// MetaLogout expires the session cookie
func (h *Handler) MetaLogout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -1))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "logged out"})
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.MetaSessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// ListCompanies returns every tenant, newest first
func (h *Handler) ListCompanies(c echo.Context) error {
	companies, err := h.companies.List(c.Request().Context())
	if err != nil {
		return h.companyError(c, err, "failed to retrieve companies")
	}
	if companies == nil {
		companies = []model.Company{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "companies": companies})
}

// CreateCompany registers a new active tenant
func (h *Handler) CreateCompany(c echo.Context) error {
	var req service.CreateCompanyInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	company, err := h.companies.Create(c.Request().Context(), req)
	if err != nil {
		return h.companyError(c, err, "failed to create company")
	}

	metaLogger(c).Info("Company created", zap.Uint("id", company.ID), zap.String("domain", company.Domain))
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "company created",
		"company": company,
	})
}

// UpdateCompany applies a partial update to a tenant
func (h *Handler) UpdateCompany(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid company id"})
	}

	var req service.UpdateCompanyInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	company, err := h.companies.Update(c.Request().Context(), id, req)
	if err != nil {
		return h.companyError(c, err, "failed to update company")
	}

	metaLogger(c).Info("Company updated", zap.Uint("id", company.ID), zap.String("status", string(company.Status)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "company updated",
		"company": company,
	})
}

// DeleteCompany removes a tenant and its access log
func (h *Handler) DeleteCompany(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid company id"})
	}

	if err := h.companies.Delete(c.Request().Context(), id); err != nil {
		return h.companyError(c, err, "failed to delete company")
	}

	metaLogger(c).Info("Company deleted", zap.Uint("id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "company deleted"})
}

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// companyError maps service errors onto responses; message is used for 500s
func (h *Handler) companyError(c echo.Context, err error, message string) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": verr.Message})
	case errors.Is(err, repository.ErrNotFound):
		return companyNotFound(c)
	case errors.Is(err, repository.ErrDuplicateDomain):
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "company domain already exists"})
	default:
		logger.FromContext(c).Error(message, zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": message})
	}
}

// metaLogger tags company mutations with the bearer-token meta-admin, if any
func metaLogger(c echo.Context) *zap.Logger {
	log := logger.FromContext(c)
	if user, ok := middleware.MetaUserFromContext(c); ok {
		log = log.With(zap.String("meta_user", user))
	}
	return log
}
