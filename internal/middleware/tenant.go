package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/internal/repository"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"github.com/suteetoe/tenantgate/prometheus"
	"go.uber.org/zap"
)

// CompanyDomainHeader lets the proxy name the tenant explicitly
const CompanyDomainHeader = "X-Company-Domain"

// LocalDomain is the tenant every localhost origin resolves to
const LocalDomain = "localhost"

const companyKey = "company"

// TenantFinder looks a tenant up by its exact domain
type TenantFinder interface {
	FindByDomain(ctx context.Context, domain string) (*model.Company, error)
}

// CompanyFromContext returns the tenant resolved for this request, if any
func CompanyFromContext(c echo.Context) (*model.Company, bool) {
	company, ok := c.Get(companyKey).(*model.Company)
	return company, ok && company != nil
}

// TenantResolver attaches the company owning the request's domain to the
// context. An unknown domain attaches nothing; handlers decide what that means.
func TenantResolver(finder TenantFinder, production bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipTenantResolution(c.Request().URL.Path) {
				return next(c)
			}

			var domain string
			if production {
				raw := c.Request().Header.Get(CompanyDomainHeader)
				if raw == "" {
					raw = c.Request().Host
				}
				domain = domainFromHost(raw)
				if domain == "" {
					return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "company domain is missing"})
				}
			} else {
				origin := c.Request().Header.Get(echo.HeaderOrigin)
				if origin == "" {
					return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "origin header is missing"})
				}
				domain = domainFromOrigin(origin)
			}

			company, err := finder.FindByDomain(c.Request().Context(), domain)
			switch {
			case err == nil:
				c.Set(companyKey, company)
				prometheus.RecordTenantResolution("hit")
			case errors.Is(err, repository.ErrNotFound):
				prometheus.RecordTenantResolution("miss")
			default:
				logger.FromContext(c).Error("Tenant lookup failed", zap.String("domain", domain), zap.Error(err))
				prometheus.RecordTenantResolution("error")
			}

			return next(c)
		}
	}
}

func skipTenantResolution(path string) bool {
	return strings.HasPrefix(path, "/api/meta/") || path == "/api/health" || path == "/metrics"
}

func isLocalOrigin(origin string) bool {
	return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
}

func stripScheme(s string) string {
	s = strings.TrimPrefix(s, "https://")
	return strings.TrimPrefix(s, "http://")
}

// domainFromOrigin keeps the port; local origins collapse to LocalDomain
func domainFromOrigin(origin string) string {
	if isLocalOrigin(origin) {
		return LocalDomain
	}
	return stripScheme(origin)
}

func domainFromHost(host string) string {
	host = stripScheme(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}
