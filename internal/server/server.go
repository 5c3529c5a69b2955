// Package server assembles the echo application: middleware chain, error
// handling and the route table.
package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/suteetoe/tenantgate/internal/events"
	"github.com/suteetoe/tenantgate/internal/handler"
	"github.com/suteetoe/tenantgate/internal/middleware"
	"github.com/suteetoe/tenantgate/internal/repository"
	"github.com/suteetoe/tenantgate/internal/service"
	"github.com/suteetoe/tenantgate/pkg/config"
	"github.com/suteetoe/tenantgate/pkg/jwtutil"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"github.com/suteetoe/tenantgate/prometheus"
)

// Deps are the collaborators the HTTP layer needs
type Deps struct {
	Config  *config.Config
	Tenants repository.TenantRepository
	Logs    repository.LogRepository
	// Publisher receives tenant-changed events; nil disables them
	Publisher events.Publisher
}

// New builds the echo instance serving every endpoint
func New(deps Deps) *echo.Echo {
	cfg := deps.Config
	production := cfg.IsProduction()

	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey: cfg.JWT.SigningKey,
		TTL:        cfg.Auth.SessionTTL,
	})

	h := handler.New(
		service.NewCompanyService(deps.Tenants, deps.Publisher),
		service.NewAuthService(deps.Logs, cfg.Auth),
		deps.Logs,
		jwt,
		handler.Options{SessionTTL: cfg.Auth.SessionTTL, SecureCookie: production},
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(middleware.TenantCORS(deps.Tenants, cfg.Routes.SystemDomains(), production))
	e.Use(middleware.TenantResolver(deps.Tenants, production))

	e.GET("/api/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Tenant-scoped routes
	e.POST("/api/login", h.Login)
	e.GET("/api/logs", h.Logs)
	e.GET("/api/company", h.Company)

	// Meta-admin routes
	e.POST("/api/meta/login", h.MetaLogin)
	e.POST("/api/meta/logout", h.MetaLogout)

	// Route-level so unknown /api/meta paths still 404 without a session
	metaAuth := middleware.MetaAuth(jwt)
	e.GET("/api/meta/companies", h.ListCompanies, metaAuth)
	e.POST("/api/meta/companies", h.CreateCompany, metaAuth)
	e.PUT("/api/meta/companies/:id", h.UpdateCompany, metaAuth)
	e.DELETE("/api/meta/companies/:id", h.DeleteCompany, metaAuth)

	return e
}
