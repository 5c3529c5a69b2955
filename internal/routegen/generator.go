package routegen

import (
	"context"
	"fmt"
	"time"

	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/pkg/config"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"github.com/suteetoe/tenantgate/prometheus"
	"go.uber.org/zap"
)

// ActiveTenantLister returns the companies that should receive traffic
type ActiveTenantLister interface {
	ListActive(ctx context.Context) ([]model.Company, error)
}

// Generator writes the routing file from the current active tenants
type Generator struct {
	tenants ActiveTenantLister
	cfg     config.RoutesConfig
	enabled bool
	now     func() time.Time
}

// NewGenerator creates a Generator. When enabled is false (any environment
// other than production) Generate only logs.
func NewGenerator(tenants ActiveTenantLister, cfg config.RoutesConfig, enabled bool) *Generator {
	return &Generator{
		tenants: tenants,
		cfg:     cfg,
		enabled: enabled,
		now:     time.Now,
	}
}

// Generate rebuilds and atomically replaces the routing file
func (g *Generator) Generate(ctx context.Context) error {
	log := logger.GetLogger()

	if !g.enabled {
		log.Debug("Route generation disabled outside production")
		prometheus.RecordRouteRegeneration("skipped")
		return nil
	}

	companies, err := g.tenants.ListActive(ctx)
	if err != nil {
		prometheus.RecordRouteRegeneration("failed")
		return fmt.Errorf("list active companies: %w", err)
	}

	data, err := Render(Build(companies, g.cfg), g.now())
	if err != nil {
		prometheus.RecordRouteRegeneration("failed")
		return err
	}
	if err := WriteFileAtomic(g.cfg.FilePath, data, 0o644); err != nil {
		prometheus.RecordRouteRegeneration("failed")
		return err
	}

	domains := make([]string, 0, len(companies))
	for _, c := range companies {
		domains = append(domains, c.Domain)
	}
	log.Info("Proxy routes updated",
		zap.String("file", g.cfg.FilePath),
		zap.Strings("domains", domains))

	prometheus.RecordRouteRegeneration("written")
	prometheus.UpdateActiveTenants(len(companies))
	return nil
}
