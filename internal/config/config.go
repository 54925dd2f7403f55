package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"backoffice/internal/shared/logger"

	"github.com/caarlos0/env/v6"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Page policies applied after a deletion empties the current page
const (
	PagePolicyClamp = "clamp"
	PagePolicyStale = "stale"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"localhost"`
	Port            string        `env:"SERVER_PORT" envDefault:"3000"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	AllowOrigins    string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimit       int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"300"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// RedisConfig configures the redis cache backend
type RedisConfig struct {
	Host            string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port            string        `env:"REDIS_PORT" envDefault:"6379"`
	Password        string        `env:"REDIS_PASSWORD"`
	Database        int           `env:"REDIS_DB" envDefault:"0"`
	MaxRetries      int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize        int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns    int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	EnableTLS       bool          `env:"REDIS_TLS" envDefault:"false"`
	ConnMaxIdleTime time.Duration `env:"REDIS_CONN_MAX_IDLE_TIME" envDefault:"30m"`
	ConnMaxLifetime time.Duration `env:"REDIS_CONN_MAX_LIFETIME" envDefault:"1h"`
	KeyPrefix       string        `env:"REDIS_KEY_PREFIX" envDefault:"backoffice:"`
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

// MongoConfig configures the mongo cache backend
type MongoConfig struct {
	URI        string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	Database   string        `env:"MONGODB_DATABASE" envDefault:"backoffice"`
	Collection string        `env:"MONGODB_COLLECTION" envDefault:"cache"`
	Timeout    time.Duration `env:"MONGODB_TIMEOUT" envDefault:"10s"`
}

// SQLiteConfig configures the sqlite cache backend
type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH" envDefault:"backoffice.db"`
}

// StoreConfig selects the cache store backend
type StoreConfig struct {
	Backend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	SQLite  SQLiteConfig
	Redis   RedisConfig
	Mongo   MongoConfig
}

// SeedConfig lists the remote demo sources for each entity
type SeedConfig struct {
	ProductsURL string        `env:"SEED_PRODUCTS_URL" envDefault:"https://fakestoreapi.com/products"`
	ClientsURL  string        `env:"SEED_CLIENTS_URL" envDefault:"https://dummyjson.com/users"`
	OrdersURL   string        `env:"SEED_ORDERS_URL" envDefault:"https://dummyjson.com/carts"`
	InvoicesURL string        `env:"SEED_INVOICES_URL" envDefault:"https://dummyjson.com/carts"`
	UsersURL    string        `env:"SEED_USERS_URL" envDefault:"https://dummyjson.com/users"`
	Timeout     time.Duration `env:"SEED_TIMEOUT" envDefault:"0s"`
}

// CatalogConfig configures the entity controllers
type CatalogConfig struct {
	PageSize   int    `env:"PAGE_SIZE" envDefault:"5"`
	PagePolicy string `env:"PAGE_POLICY" envDefault:"clamp"`
	Seed       SeedConfig
}

// DashboardConfig configures the aggregator sources and the pending rule
type DashboardConfig struct {
	UsersURL         string        `env:"DASHBOARD_USERS_URL" envDefault:"https://dummyjson.com/users?limit=50"`
	ProductsURL      string        `env:"DASHBOARD_PRODUCTS_URL" envDefault:"https://dummyjson.com/products?limit=30"`
	OrdersURL        string        `env:"DASHBOARD_ORDERS_URL" envDefault:"https://dummyjson.com/carts?limit=30"`
	PendingThreshold float64       `env:"DASHBOARD_PENDING_THRESHOLD" envDefault:"1000"`
	PendingExpr      string        `env:"DASHBOARD_PENDING_EXPR" envDefault:"order.total < threshold"`
	Timeout          time.Duration `env:"DASHBOARD_TIMEOUT" envDefault:"10s"`
}

// AuthConfig configures the session gate
type AuthConfig struct {
	JWTSecretKey   string        `env:"JWT_SECRET_KEY" envDefault:"change-me-in-production-backoffice-secret"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"backoffice"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"12h"`
	CookieName     string        `env:"COOKIE_NAME" envDefault:"aromefloral_authToken"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CookieSameSite string        `env:"COOKIE_SAME_SITE" envDefault:"Lax"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`
}

// I18nConfig configures the language tables
type I18nConfig struct {
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"fr"`
}

// Config aggregates every section
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Catalog   CatalogConfig
	Dashboard DashboardConfig
	Auth      AuthConfig
	I18n      I18nConfig
	Log       logger.Config
}

// LoadConfig parses the environment and validates the result.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes enumerations and rejects unusable values.
func (c *Config) Validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of memory, sqlite, redis, mongo; got %q", c.Store.Backend)
	}

	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1; got %d", c.Catalog.PageSize)
	}
	c.Catalog.PagePolicy = strings.ToLower(c.Catalog.PagePolicy)
	if c.Catalog.PagePolicy != PagePolicyClamp && c.Catalog.PagePolicy != PagePolicyStale {
		return fmt.Errorf("PAGE_POLICY must be clamp or stale; got %q", c.Catalog.PagePolicy)
	}
	if c.Catalog.Seed.Timeout < 0 {
		return fmt.Errorf("SEED_TIMEOUT must not be negative")
	}

	if c.Auth.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	switch strings.ToLower(c.Auth.CookieSameSite) {
	case "lax":
		c.Auth.CookieSameSite = "Lax"
	case "strict":
		c.Auth.CookieSameSite = "Strict"
	case "none":
		c.Auth.CookieSameSite = "None"
	default:
		return fmt.Errorf("COOKIE_SAME_SITE must be one of Lax, Strict or None")
	}

	if strings.TrimSpace(c.Dashboard.PendingExpr) == "" {
		return fmt.Errorf("DASHBOARD_PENDING_EXPR must not be empty")
	}
	return nil
}
