// Package seed fills an empty database with the development tenant, the
// production base-domain tenant, a few sample log rows and the meta user.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/internal/repository"
	"github.com/suteetoe/tenantgate/pkg/config"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"go.uber.org/zap"
)

const sampleUserAgent = "Mozilla/5.0 (Test Browser)"

// Seeder writes the initial rows. Each step is idempotent on its own; the
// run as a whole is not transactional.
type Seeder struct {
	tenants   repository.TenantRepository
	logs      repository.LogRepository
	metaUsers repository.MetaUserRepository
}

func NewSeeder(tenants repository.TenantRepository, logs repository.LogRepository, metaUsers repository.MetaUserRepository) *Seeder {
	return &Seeder{tenants: tenants, logs: logs, metaUsers: metaUsers}
}

// Run seeds the database. Sample logs are only added to companies that this
// run created, so restarts do not grow the access log.
func (s *Seeder) Run(ctx context.Context, baseDomain string, metaAdmin config.Credentials) error {
	log := logger.GetLogger()

	local, created, err := s.company(ctx, model.Company{
		Name:        "Test Company",
		Domain:      "localhost",
		Description: "Test company for local development",
	})
	if err != nil {
		return err
	}
	if created {
		if err := s.sampleLogs(ctx, local.ID, []model.Log{
			{Username: "admin", Success: true, IPAddress: "127.0.0.1", UserAgent: sampleUserAgent},
			{Username: "test_user", Success: false, IPAddress: "192.168.1.100", UserAgent: sampleUserAgent},
		}); err != nil {
			return err
		}
	}

	prod, created, err := s.company(ctx, model.Company{
		Name:        "Just Created Site",
		Domain:      baseDomain,
		Description: "Main production company",
	})
	if err != nil {
		return err
	}
	if created {
		if err := s.sampleLogs(ctx, prod.ID, []model.Log{
			{Username: "admin", Success: true, IPAddress: "127.0.0.1", UserAgent: "Mozilla/5.0 (Production Browser)"},
		}); err != nil {
			return err
		}
	}

	if _, _, err := s.metaUsers.FirstOrCreate(ctx, metaAdmin.Name, metaAdmin.Password); err != nil {
		return fmt.Errorf("seed meta user: %w", err)
	}

	log.Info("Database seeded",
		zap.String("development_company", local.Domain),
		zap.String("production_company", prod.Domain))
	return nil
}

// company finds template by domain or creates it
func (s *Seeder) company(ctx context.Context, template model.Company) (*model.Company, bool, error) {
	existing, err := s.tenants.FindByDomain(ctx, template.Domain)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("seed company %q: %w", template.Domain, err)
	}

	company := template
	company.Status = model.StatusActive
	if err := s.tenants.Create(ctx, &company); err != nil {
		// another instance won the race
		if errors.Is(err, repository.ErrDuplicateDomain) {
			existing, err := s.tenants.FindByDomain(ctx, template.Domain)
			if err != nil {
				return nil, false, fmt.Errorf("seed company %q: %w", template.Domain, err)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("seed company %q: %w", template.Domain, err)
	}
	return &company, true, nil
}

func (s *Seeder) sampleLogs(ctx context.Context, companyID uint, entries []model.Log) error {
	for i := range entries {
		entries[i].CompanyID = companyID
		if err := s.logs.Create(ctx, &entries[i]); err != nil {
			return fmt.Errorf("seed logs for company %d: %w", companyID, err)
		}
	}
	return nil
}
