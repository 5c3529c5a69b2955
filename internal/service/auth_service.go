package service

import (
	"context"
	"fmt"

	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/internal/repository"
	"github.com/suteetoe/tenantgate/pkg/config"
	"github.com/suteetoe/tenantgate/prometheus"
)

// LoginAttempt is one tenant login request together with its origin
type LoginAttempt struct {
	CompanyID uint
	Name      string
	Password  string
	IPAddress string
	UserAgent string
}

// AuthService checks the injected credentials and records every tenant
// login attempt in the access log
type AuthService struct {
	logs        repository.LogRepository
	tenantAdmin config.Credentials
	metaAdmin   config.Credentials
}

// NewAuthService creates an AuthService from the configured credentials
func NewAuthService(logs repository.LogRepository, auth config.AuthConfig) *AuthService {
	return &AuthService{
		logs:        logs,
		tenantAdmin: auth.TenantAdmin,
		metaAdmin:   auth.MetaAdmin,
	}
}

// Login records exactly one log row for the attempt. It returns
// ErrMissingCredentials, ErrInvalidCredentials or a storage error.
func (s *AuthService) Login(ctx context.Context, attempt LoginAttempt) error {
	entry := &model.Log{
		Username:  attempt.Name,
		IPAddress: attempt.IPAddress,
		UserAgent: attempt.UserAgent,
		CompanyID: attempt.CompanyID,
	}

	if attempt.Name == "" || attempt.Password == "" {
		if entry.Username == "" {
			entry.Username = "unknown"
		}
		if err := s.record(ctx, entry); err != nil {
			return err
		}
		prometheus.RecordLogin("invalid")
		return ErrMissingCredentials
	}

	entry.Success = s.tenantAdmin.Matches(attempt.Name, attempt.Password)
	if err := s.record(ctx, entry); err != nil {
		return err
	}

	if !entry.Success {
		prometheus.RecordLogin("failure")
		return ErrInvalidCredentials
	}
	prometheus.RecordLogin("success")
	return nil
}

// MetaLogin checks meta-admin credentials. Nothing is logged to the store.
func (s *AuthService) MetaLogin(username, password string) error {
	if username == "" || password == "" {
		prometheus.RecordMetaLogin("invalid")
		return ErrMissingCredentials
	}
	if !s.metaAdmin.Matches(username, password) {
		prometheus.RecordMetaLogin("failure")
		return ErrInvalidCredentials
	}
	prometheus.RecordMetaLogin("success")
	return nil
}

func (s *AuthService) record(ctx context.Context, entry *model.Log) error {
	if err := s.logs.Create(ctx, entry); err != nil {
		prometheus.RecordLogin("error")
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}
