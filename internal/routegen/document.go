// Package routegen renders the reverse-proxy dynamic routing file from the
// active tenants and keeps it current as tenants change.
package routegen

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/suteetoe/tenantgate/internal/model"
	"github.com/suteetoe/tenantgate/pkg/config"
	"gopkg.in/yaml.v3"
)

const (
	FrontendService  = "frontend-service"
	BackendService   = "backend-service"
	MetaAdminService = "metaadmin-service"
	TraefikService   = "traefik-service"
)

// Document is the dynamic configuration consumed by the proxy's file provider
type Document struct {
	HTTP HTTPConfig `yaml:"http"`
}

type HTTPConfig struct {
	Routers  map[string]Router  `yaml:"routers"`
	Services map[string]Service `yaml:"services"`
}

type Router struct {
	Rule        string   `yaml:"rule"`
	Service     string   `yaml:"service"`
	TLS         TLS      `yaml:"tls"`
	EntryPoints []string `yaml:"entryPoints"`
}

type TLS struct {
	CertResolver string `yaml:"certResolver"`
}

type Service struct {
	LoadBalancer LoadBalancer `yaml:"loadBalancer"`
}

type LoadBalancer struct {
	Servers []Server `yaml:"servers"`
}

type Server struct {
	URL string `yaml:"url"`
}

// Build routes every active company to the frontend and, under /api, to the
// backend; system domains get their own routers. Inactive companies are skipped.
func Build(companies []model.Company, cfg config.RoutesConfig) Document {
	routers := make(map[string]Router, 2*len(companies)+2)

	router := func(rule, service string) Router {
		return Router{
			Rule:        rule,
			Service:     service,
			TLS:         TLS{CertResolver: cfg.CertResolver},
			EntryPoints: []string{cfg.EntryPoint},
		}
	}

	for _, c := range companies {
		if !c.IsActive() {
			continue
		}
		hosts := fmt.Sprintf("(Host(`%s`) || Host(`www.%s`))", c.Domain, c.Domain)
		name := routerName(c.Domain)

		routers["frontend-"+name] = router(hosts+" && !PathPrefix(`/api`)", FrontendService)
		routers["api-"+name] = router(hosts+" && PathPrefix(`/api`)", BackendService)
	}

	system := []struct{ domain, service string }{
		{cfg.MetaDomain(), MetaAdminService},
		{cfg.DashboardDomain(), TraefikService},
	}
	for _, s := range system {
		routers["system-"+routerName(s.domain)] = router(fmt.Sprintf("Host(`%s`)", s.domain), s.service)
	}

	upstream := func(url string) Service {
		return Service{LoadBalancer: LoadBalancer{Servers: []Server{{URL: url}}}}
	}

	return Document{HTTP: HTTPConfig{
		Routers: routers,
		Services: map[string]Service{
			FrontendService:  upstream(cfg.FrontendURL),
			BackendService:   upstream(cfg.BackendURL),
			MetaAdminService: upstream(cfg.MetaAdminURL),
			TraefikService:   upstream(cfg.TraefikURL),
		},
	}}
}

// routerName makes a domain usable as a router key
func routerName(domain string) string {
	return strings.ReplaceAll(domain, ".", "-")
}

// Render serializes doc behind a comment header stamped with generatedAt
func Render(doc Document, generatedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Dynamic routes for tenant domains\n")
	fmt.Fprintf(&buf, "# Generated automatically whenever companies change; do not edit\n")
	fmt.Fprintf(&buf, "# Last update: %s\n\n", generatedAt.UTC().Format(time.RFC3339))

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode routes: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode routes: %w", err)
	}
	return buf.Bytes(), nil
}
