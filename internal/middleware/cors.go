package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"go.uber.org/zap"
)

const corsLookupTimeout = 3 * time.Second

// TenantCORS allows credentialed requests from local origins outside
// production, and from system domains or active tenants in production
func TenantCORS(finder TenantFinder, systemDomains []string, production bool) echo.MiddlewareFunc {
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowCredentials: true,
		AllowOriginFunc:  originAllower(finder, systemDomains, production),
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, CompanyDomainHeader,
		},
	})
}

func originAllower(finder TenantFinder, systemDomains []string, production bool) func(string) (bool, error) {
	system := make(map[string]struct{}, len(systemDomains))
	for _, d := range systemDomains {
		system[d] = struct{}{}
	}

	return func(origin string) (bool, error) {
		if origin == "" {
			return true, nil
		}
		if !production {
			return isLocalOrigin(origin), nil
		}

		domain := stripScheme(origin)
		if _, ok := system[domain]; ok {
			return true, nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), corsLookupTimeout)
		defer cancel()

		company, err := finder.FindByDomain(ctx, domain)
		if err != nil {
			logger.GetLogger().Debug("CORS origin rejected", zap.String("origin", origin), zap.Error(err))
			return false, nil
		}
		return company.IsActive(), nil
	}
}
