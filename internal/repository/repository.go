package repository

import (
	"context"
	"errors"

	"github.com/suteetoe/tenantgate/internal/model"
)

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateDomain is returned when a company domain is already taken
	ErrDuplicateDomain = errors.New("company domain already exists")
)

// TenantRepository defines data access for companies
type TenantRepository interface {
	// List returns every company, newest first
	List(ctx context.Context) ([]model.Company, error)
	// ListActive returns active companies, oldest first
	ListActive(ctx context.Context) ([]model.Company, error)
	FindByID(ctx context.Context, id uint) (*model.Company, error)
	// FindByDomain is an exact, case-sensitive match
	FindByDomain(ctx context.Context, domain string) (*model.Company, error)
	Create(ctx context.Context, company *model.Company) error
	// Update overwrites every mutable column of company
	Update(ctx context.Context, company *model.Company) error
	// Delete removes the company; its logs are removed by the foreign key
	Delete(ctx context.Context, id uint) error
}

// LogRepository defines data access for the login access log
type LogRepository interface {
	Create(ctx context.Context, entry *model.Log) error
	// ListRecent returns at most limit entries of a company, newest first
	ListRecent(ctx context.Context, companyID uint, limit int) ([]model.Log, error)
}

// MetaUserRepository defines data access for meta-admin accounts
type MetaUserRepository interface {
	// FirstOrCreate returns the user named username, creating it with
	// password when absent. created reports whether a row was inserted.
	FirstOrCreate(ctx context.Context, username, password string) (user *model.MetaUser, created bool, err error)
}
