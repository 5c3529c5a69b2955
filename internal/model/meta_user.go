package model

import (
	"time"
)

// MetaUser is a placeholder operator account. The password is stored as given.
type MetaUser struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName pins the table name used by the migrations
func (MetaUser) TableName() string {
	return "meta_users"
}
