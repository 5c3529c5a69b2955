package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/internal/repository/repotest"
	"github.com/suteetoe/tenantgate/pkg/jwtutil"
	"github.com/suteetoe/tenantgate/pkg/logger"
)

type failingFinder struct{}

func (failingFinder) FindByDomain(ctx context.Context, domain string) (*model.Company, error) {
	return nil, errors.New("connection refused")
}

func seededStore(t *testing.T) *repotest.Store {
	t.Helper()
	store := repotest.NewStore()
	for _, c := range []*model.Company{
		{Name: "Test Company", Domain: "localhost"},
		{Name: "Acme", Domain: "acme.test"},
		{Name: "Sleepy", Domain: "sleepy.test", Status: model.StatusSuspended},
	} {
		require.NoError(t, store.Tenants().Create(context.Background(), c))
	}
	return store
}

// resolve runs one request through the resolver and returns the response
// together with the domain of the attached company ("" if none)
func resolve(t *testing.T, finder TenantFinder, production bool, path string, setup func(*http.Request)) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var attached string
	e := echo.New()
	e.Use(TenantResolver(finder, production))
	handler := func(c echo.Context) error {
		if company, ok := CompanyFromContext(c); ok {
			attached = company.Domain
		}
		return c.NoContent(http.StatusNoContent)
	}
	e.Any("/*", handler)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, attached
}

func TestTenantResolverDevelopment(t *testing.T) {
	store := seededStore(t)

	cases := []struct {
		origin string
		want   string
	}{
		{"http://localhost:4000", "localhost"},
		{"http://127.0.0.1:3000", "localhost"},
		{"https://acme.test", "acme.test"},
		{"http://acme.test", "acme.test"},
		{"https://acme.test:8443", ""},
		{"https://unknown.test", ""},
	}
	for _, tc := range cases {
		t.Run(tc.origin, func(t *testing.T) {
			rec, got := resolve(t, store.Tenants(), false, "/api/company", func(r *http.Request) {
				r.Header.Set(echo.HeaderOrigin, tc.origin)
			})
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTenantResolverDevelopmentRequiresOrigin(t *testing.T) {
	rec, got := resolve(t, seededStore(t).Tenants(), false, "/api/login", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"origin header is missing"}`, rec.Body.String())
	assert.Empty(t, got)
}

func TestTenantResolverProduction(t *testing.T) {
	store := seededStore(t)

	cases := []struct {
		name   string
		host   string
		header string
		want   string
	}{
		{"host", "acme.test", "", "acme.test"},
		{"host with port", "acme.test:443", "", "acme.test"},
		{"header wins", "api.example.test", "acme.test", "acme.test"},
		{"header with scheme", "x", "https://acme.test", "acme.test"},
		{"suspended still attached", "sleepy.test", "", "sleepy.test"},
		{"unknown", "other.test", "", ""},
		{"case sensitive", "ACME.test", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, got := resolve(t, store.Tenants(), true, "/api/company", func(r *http.Request) {
				r.Host = tc.host
				if tc.header != "" {
					r.Header.Set(CompanyDomainHeader, tc.header)
				}
			})
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDomainFromHost(t *testing.T) {
	cases := map[string]string{
		"acme.test":         "acme.test",
		"acme.test:443":     "acme.test",
		"https://acme.test": "acme.test",
		"[::1]:3500":        "::1",
		"[2001:db8::1]":     "2001:db8::1",
		"":                  "",
	}
	for host, want := range cases {
		assert.Equal(t, want, domainFromHost(host), host)
	}
}

func TestTenantResolverProductionRequiresDomain(t *testing.T) {
	rec, _ := resolve(t, seededStore(t).Tenants(), true, "/api/company", func(r *http.Request) {
		r.Host = ""
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"company domain is missing"}`, rec.Body.String())
}

func TestTenantResolverSkipsMetaAndHealth(t *testing.T) {
	for _, path := range []string{"/api/meta/companies", "/api/meta/login", "/api/health", "/metrics"} {
		rec, got := resolve(t, failingFinder{}, false, path, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code, path)
		assert.Empty(t, got, path)
	}
}

func TestTenantResolverStoreErrorAttachesNothing(t *testing.T) {
	rec, got := resolve(t, failingFinder{}, true, "/api/logs", func(r *http.Request) {
		r.Host = "acme.test"
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, got)
}

func TestOriginAllowerDevelopment(t *testing.T) {
	allow := originAllower(failingFinder{}, nil, false)

	for origin, want := range map[string]bool{
		"":                       true,
		"http://localhost:4000":  true,
		"http://127.0.0.1:3000":  true,
		"https://acme.test":      false,
		"https://evil.localhost": true,
	} {
		got, err := allow(origin)
		require.NoError(t, err)
		assert.Equal(t, want, got, origin)
	}
}

func TestOriginAllowerProduction(t *testing.T) {
	store := seededStore(t)
	allow := originAllower(store.Tenants(), []string{"meta.base.test"}, true)

	for origin, want := range map[string]bool{
		"":                      true,
		"https://meta.base.test": true,
		"https://acme.test":     true,
		"https://sleepy.test":   false,
		"https://unknown.test":  false,
		"http://localhost:4000": false,
	} {
		got, err := allow(origin)
		require.NoError(t, err)
		assert.Equal(t, want, got, origin)
	}
}

func TestTenantCORSHeaders(t *testing.T) {
	e := echo.New()
	e.Use(TenantCORS(seededStore(t).Tenants(), nil, true))
	e.GET("/api/company", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/api/company", nil)
	req.Header.Set(echo.HeaderOrigin, "https://acme.test")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "https://acme.test", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))

	req = httptest.NewRequest(http.MethodGet, "/api/company", nil)
	req.Header.Set(echo.HeaderOrigin, "https://sleepy.test")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func metaRequest(t *testing.T, jwtUtil *jwtutil.JWTUtil, setup func(*http.Request)) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var user string
	e := echo.New()
	e.GET("/api/meta/companies", func(c echo.Context) error {
		user, _ = MetaUserFromContext(c)
		return c.NoContent(http.StatusNoContent)
	}, MetaAuth(jwtUtil))

	req := httptest.NewRequest(http.MethodGet, "/api/meta/companies", nil)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, user
}

func TestMetaAuth(t *testing.T) {
	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "k", TTL: time.Hour})
	token, err := jwtUtil.GenerateMetaToken("admin")
	require.NoError(t, err)

	rec, _ := metaRequest(t, jwtUtil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"authorization required"}`, rec.Body.String())

	rec, user := metaRequest(t, jwtUtil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: MetaSessionCookie, Value: "true"})
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, user)

	rec, _ = metaRequest(t, jwtUtil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: MetaSessionCookie, Value: "false"})
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, user = metaRequest(t, jwtUtil, func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "admin", user)

	rec, _ = metaRequest(t, jwtUtil, func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	var bound bool
	e.GET("/", func(c echo.Context) error {
		bound = logger.FromContext(c) != nil
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(logger.RequestIDKey), 36)
	assert.True(t, bound)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(logger.RequestIDKey, "given-id")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "given-id", rec.Header().Get(logger.RequestIDKey))
}
