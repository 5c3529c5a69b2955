package model

import (
	"time"
)

// CompanyStatus gates whether a company receives traffic
type CompanyStatus string

const (
	StatusActive    CompanyStatus = "active"
	StatusInactive  CompanyStatus = "inactive"
	StatusSuspended CompanyStatus = "suspended"
)

// Valid reports whether s is one of the known statuses
func (s CompanyStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// Company is a tenant. Its domain is the routing key and is unique.
type Company struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	Name        string        `json:"name" gorm:"type:varchar(255);not null"`
	Domain      string        `json:"domain" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string        `json:"description" gorm:"type:text;not null;default:''"`
	Logo        string        `json:"logo" gorm:"type:varchar(255);not null;default:''"`
	Status      CompanyStatus `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// TableName pins the table name used by the migrations
func (Company) TableName() string {
	return "companies"
}

// IsActive reports whether the company receives traffic
func (c *Company) IsActive() bool {
	return c.Status == StatusActive
}
