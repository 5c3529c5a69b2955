package repository

import (
	"context"
	"errors"
	"time"

	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/prometheus"
	"gorm.io/gorm"
)

// GormMetaUserRepository implements MetaUserRepository on PostgreSQL through gorm
type GormMetaUserRepository struct {
	db *gorm.DB
}

// NewGormMetaUserRepository creates a new GormMetaUserRepository
func NewGormMetaUserRepository(db *gorm.DB) *GormMetaUserRepository {
	return &GormMetaUserRepository{db: db}
}

func (r *GormMetaUserRepository) FirstOrCreate(ctx context.Context, username, password string) (*model.MetaUser, bool, error) {
	defer prometheus.TrackDBOperation("upsert")(time.Now())

	db := r.db.WithContext(ctx)

	var user model.MetaUser
	err := db.Where("username = ?", username).Take(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user = model.MetaUser{Username: username, Password: password}
	if err := db.Create(&user).Error; err != nil {
		return nil, false, err
	}
	return &user, true, nil
}
