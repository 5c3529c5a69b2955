package handler

import (
	"time"

	"github.com/suteetoe/tenantgate/internal/repository"
	"github.com/suteetoe/tenantgate/internal/service"
	"github.com/suteetoe/tenantgate/pkg/jwtutil"
)

// LogsLimit caps the rows returned by GET /api/logs
const LogsLimit = 50

// Handler serves every HTTP endpoint
type Handler struct {
	companies *service.CompanyService
	auth      *service.AuthService
	logs      repository.LogRepository
	jwt       *jwtutil.JWTUtil

	sessionTTL   time.Duration
	secureCookie bool
}

// Options carries the session settings of the meta-admin login
type Options struct {
	SessionTTL time.Duration
	// SecureCookie marks the session cookie Secure; set in production
	SecureCookie bool
}

// New creates a Handler
func New(companies *service.CompanyService, auth *service.AuthService, logs repository.LogRepository, jwt *jwtutil.JWTUtil, opts Options) *Handler {
	return &Handler{
		companies:    companies,
		auth:         auth,
		logs:         logs,
		jwt:          jwt,
		sessionTTL:   opts.SessionTTL,
		secureCookie: opts.SecureCookie,
	}
}
