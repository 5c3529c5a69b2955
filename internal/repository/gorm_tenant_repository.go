package repository

import (
	"context"
	"errors"
	"time"

	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/prometheus"
	"gorm.io/gorm"
)

// GormTenantRepository implements TenantRepository on PostgreSQL through gorm
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

func (r *GormTenantRepository) List(ctx context.Context) ([]model.Company, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var companies []model.Company
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&companies).Error
	return companies, err
}

func (r *GormTenantRepository) ListActive(ctx context.Context) ([]model.Company, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var companies []model.Company
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusActive).
		Order("created_at ASC").
		Order("id ASC").
		Find(&companies).Error
	return companies, err
}

func (r *GormTenantRepository) FindByID(ctx context.Context, id uint) (*model.Company, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var company model.Company
	if err := r.db.WithContext(ctx).Take(&company, id).Error; err != nil {
		return nil, translate(err)
	}
	return &company, nil
}

func (r *GormTenantRepository) FindByDomain(ctx context.Context, domain string) (*model.Company, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var company model.Company
	if err := r.db.WithContext(ctx).Where("domain = ?", domain).Take(&company).Error; err != nil {
		return nil, translate(err)
	}
	return &company, nil
}

func (r *GormTenantRepository) Create(ctx context.Context, company *model.Company) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if company.Status == "" {
		company.Status = model.StatusActive
	}
	return translate(r.db.WithContext(ctx).Create(company).Error)
}

func (r *GormTenantRepository) Update(ctx context.Context, company *model.Company) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	company.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&model.Company{}).
		Where("id = ?", company.ID).
		Updates(map[string]interface{}{
			"name":        company.Name,
			"domain":      company.Domain,
			"description": company.Description,
			"logo":        company.Logo,
			"status":      company.Status,
			"updated_at":  company.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormTenantRepository) Delete(ctx context.Context, id uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := r.db.WithContext(ctx).Delete(&model.Company{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// translate maps gorm's translated driver errors onto repository sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateDomain
	default:
		return err
	}
}
