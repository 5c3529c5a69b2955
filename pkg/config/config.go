package config

import (
	"crypto/subtle"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
	ConnectRetries  int
	RetryDelay      time.Duration
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Env             string
	ShutdownTimeout time.Duration
}

// Credentials is a single name/password pair checked by a login endpoint.
type Credentials struct {
	Name     string
	Password string
}

// Matches compares name and password in constant time
func (c Credentials) Matches(name, password string) bool {
	nameOK := subtle.ConstantTimeCompare([]byte(name), []byte(c.Name)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	return nameOK && passwordOK
}

// AuthConfig holds the credentials and session settings of both login surfaces
type AuthConfig struct {
	// TenantAdmin is accepted by POST /api/login on every tenant
	TenantAdmin Credentials
	// MetaAdmin is accepted by POST /api/meta/login
	MetaAdmin  Credentials
	SessionTTL time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// RoutesConfig describes the reverse-proxy routing file and its upstreams
type RoutesConfig struct {
	FilePath     string
	BaseDomain   string
	CertResolver string
	EntryPoint   string
	Debounce     time.Duration

	FrontendURL  string
	BackendURL   string
	MetaAdminURL string
	TraefikURL   string
}

// MetaDomain is the host serving the meta-admin UI
func (r *RoutesConfig) MetaDomain() string {
	return "meta." + r.BaseDomain
}

// DashboardDomain is the host serving the proxy dashboard
func (r *RoutesConfig) DashboardDomain() string {
	return "traefik." + r.BaseDomain
}

// SystemDomains are hosts that are always allowed by CORS
func (r *RoutesConfig) SystemDomains() []string {
	return []string{"api." + r.BaseDomain, r.MetaDomain(), r.DashboardDomain()}
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	Auth        AuthConfig
	JWT         JWTConfig
	Log         LogConfig
	Routes      RoutesConfig
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	env := getEnv("APP_ENV", getEnv("NODE_ENV", "development"))

	routesFile := "traefik/dynamic-routes.yml"
	if env == "production" {
		routesFile = "/app/traefik/dynamic-routes.yml"
	}

	config := &Config{
		ServiceName: "tenantgate",
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "postgresql"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "username"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "your_database"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
			ConnectRetries:  getEnvAsInt("DB_CONNECT_RETRIES", 5),
			RetryDelay:      getEnvAsDuration("DB_CONNECT_RETRY_DELAY", 5*time.Second),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", getEnv("PORT", "3500")),
			Env:             env,
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			TenantAdmin: Credentials{
				Name:     getEnv("TENANT_ADMIN_NAME", "admin"),
				Password: getEnv("TENANT_ADMIN_PASSWORD", "qwerty123"),
			},
			MetaAdmin: Credentials{
				Name:     getEnv("META_ADMIN_USERNAME", "admin"),
				Password: getEnv("META_ADMIN_PASSWORD", "qwerty"),
			},
			SessionTTL: getEnvAsDuration("META_SESSION_TTL", 30*24*time.Hour),
		},
		JWT: JWTConfig{
			SigningKey: getEnv("JWT_SIGNING_KEY", "tenantgatesecretkey"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Routes: RoutesConfig{
			FilePath:     getEnv("ROUTES_FILE", routesFile),
			BaseDomain:   getEnv("ROUTES_BASE_DOMAIN", "justcreatedsite.ru"),
			CertResolver: getEnv("ROUTES_CERT_RESOLVER", "letsencrypt"),
			EntryPoint:   getEnv("ROUTES_ENTRY_POINT", "websecure"),
			Debounce:     getEnvAsDuration("ROUTES_DEBOUNCE", 500*time.Millisecond),
			FrontendURL:  getEnv("ROUTES_FRONTEND_URL", "http://frontend:4000"),
			BackendURL:   getEnv("ROUTES_BACKEND_URL", "http://backend:3500"),
			MetaAdminURL: getEnv("ROUTES_METAADMIN_URL", "http://metaadmin:3000"),
			TraefikURL:   getEnv("ROUTES_TRAEFIK_URL", "http://traefik:8080"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the values that the server cannot run without
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}
	if c.Auth.TenantAdmin.Name == "" || c.Auth.TenantAdmin.Password == "" {
		return fmt.Errorf("tenant admin credentials are required")
	}
	if c.Auth.MetaAdmin.Name == "" || c.Auth.MetaAdmin.Password == "" {
		return fmt.Errorf("meta admin credentials are required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("meta session ttl must be positive")
	}
	if c.Routes.FilePath == "" {
		return fmt.Errorf("routes file path is required")
	}
	return nil
}

// IsProduction reports whether the process runs with production tenant resolution
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_user", c.DB.User),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.String("routes_file", c.Routes.FilePath),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
