package service

import (
	"context"
	"fmt"

	"github.com/suteetoe/tenantgate/internal/events"
	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/internal/repository"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"github.com/suteetoe/tenantgate/prometheus"
	"go.uber.org/zap"
)

// CreateCompanyInput holds the fields accepted when creating a tenant
type CreateCompanyInput struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
}

// UpdateCompanyInput is a partial update; nil fields keep their value
type UpdateCompanyInput struct {
	Name        *string              `json:"name"`
	Domain      *string              `json:"domain"`
	Description *string              `json:"description"`
	Logo        *string              `json:"logo"`
	Status      *model.CompanyStatus `json:"status"`
}

// CompanyService manages tenants and announces every committed change
type CompanyService struct {
	repo      repository.TenantRepository
	publisher events.Publisher
}

// NewCompanyService creates a CompanyService. publisher may be nil.
func NewCompanyService(repo repository.TenantRepository, publisher events.Publisher) *CompanyService {
	return &CompanyService{repo: repo, publisher: publisher}
}

// List returns every tenant, newest first
func (s *CompanyService) List(ctx context.Context) ([]model.Company, error) {
	companies, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// FindByDomain returns the tenant owning domain or repository.ErrNotFound
func (s *CompanyService) FindByDomain(ctx context.Context, domain string) (*model.Company, error) {
	return s.repo.FindByDomain(ctx, domain)
}

// Create stores a new active tenant
func (s *CompanyService) Create(ctx context.Context, in CreateCompanyInput) (*model.Company, error) {
	if in.Name == "" || in.Domain == "" {
		return nil, invalid("name and domain are required")
	}

	company := &model.Company{
		Name:        in.Name,
		Domain:      in.Domain,
		Description: in.Description,
		Logo:        in.Logo,
		Status:      model.StatusActive,
	}
	if err := s.repo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("create company %q: %w", in.Domain, err)
	}

	prometheus.RecordTenantOperation("create")
	s.notify(ctx, events.TenantChanged{Action: events.ActionCreated, CompanyID: company.ID, Domain: company.Domain})
	return company, nil
}

// Update applies the non-nil fields of in to tenant id
func (s *CompanyService) Update(ctx context.Context, id uint, in UpdateCompanyInput) (*model.Company, error) {
	if in.Name != nil && *in.Name == "" {
		return nil, invalid("name cannot be empty")
	}
	if in.Domain != nil && *in.Domain == "" {
		return nil, invalid("domain cannot be empty")
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, invalid(fmt.Sprintf("invalid status %q", *in.Status))
	}

	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find company %d: %w", id, err)
	}

	if in.Name != nil {
		company.Name = *in.Name
	}
	if in.Domain != nil {
		company.Domain = *in.Domain
	}
	if in.Description != nil {
		company.Description = *in.Description
	}
	if in.Logo != nil {
		company.Logo = *in.Logo
	}
	if in.Status != nil {
		company.Status = *in.Status
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("update company %d: %w", id, err)
	}

	prometheus.RecordTenantOperation("update")
	s.notify(ctx, events.TenantChanged{Action: events.ActionUpdated, CompanyID: company.ID, Domain: company.Domain})
	return company, nil
}

// Delete removes tenant id together with its access log
func (s *CompanyService) Delete(ctx context.Context, id uint) error {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find company %d: %w", id, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete company %d: %w", id, err)
	}

	prometheus.RecordTenantOperation("delete")
	s.notify(ctx, events.TenantChanged{Action: events.ActionDeleted, CompanyID: id, Domain: company.Domain})
	return nil
}

// notify never fails the caller; the mutation is already committed
func (s *CompanyService) notify(ctx context.Context, event events.TenantChanged) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTenantChanged(ctx, event); err != nil {
		logger.GetLogger().Error("Failed to publish tenant event",
			zap.String("action", string(event.Action)),
			zap.Uint("company_id", event.CompanyID),
			zap.Error(err))
	}
}
