package repository

import (
	"context"
	"time"

	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/prometheus"
	"gorm.io/gorm"
)

// GormLogRepository implements LogRepository on PostgreSQL through gorm
type GormLogRepository struct {
	db *gorm.DB
}

// NewGormLogRepository creates a new GormLogRepository
func NewGormLogRepository(db *gorm.DB) *GormLogRepository {
	return &GormLogRepository{db: db}
}

func (r *GormLogRepository) Create(ctx context.Context, entry *model.Log) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *GormLogRepository) ListRecent(ctx context.Context, companyID uint, limit int) ([]model.Log, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var logs []model.Log
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
