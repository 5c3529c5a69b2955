package model

import (
	"time"
)

// Log is one recorded login attempt. Rows are only ever inserted.
type Log struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(255);not null"`
	Success   bool      `json:"success" gorm:"not null"`
	IPAddress string    `json:"ipAddress" gorm:"column:ip_address;type:varchar(64)"`
	UserAgent string    `json:"userAgent" gorm:"type:text"`
	Timestamp time.Time `json:"timestamp" gorm:"autoCreateTime;index:idx_logs_company_timestamp,priority:2,sort:desc"`
	CompanyID uint      `json:"-" gorm:"not null;index:idx_logs_company_timestamp,priority:1"`
}

// TableName pins the table name used by the migrations
func (Log) TableName() string {
	return "logs"
}
