package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"erauchess-api/internal/session"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Session  SessionConfig
	Store    StoreConfig
	Database DatabaseConfig
	Postgres PostgresConfig
	Cache    CacheConfig
	Digest   DigestConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// AllowedOrigins lists cross-origin front ends. Empty serves same-origin
	// clients only.
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"erauchess-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text"` // text or json
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	StaticDir   string `envconfig:"STATIC_DIR" default:"../frontend/"`
	Metrics     bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

// SessionConfig holds the session cookie settings.
type SessionConfig struct {
	Secret       string `envconfig:"SESSION_SECRET" required:"true"`
	CookieSecure bool   `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Type string `envconfig:"STORE_TYPE" default:"sqlite"` // sqlite, mysql, or postgres
	Path string `envconfig:"DATABASE_URL" default:"./data/club.db"`
}

// DatabaseConfig holds MySQL connection settings.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	Name     string `envconfig:"DB_NAME" default:"erauchess"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASS" default:""`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `envconfig:"PG_HOST" default:"localhost"`
	Port     int    `envconfig:"PG_PORT" default:"5432"`
	Name     string `envconfig:"PG_NAME" default:"erauchess"`
	User     string `envconfig:"PG_USER" default:"postgres"`
	Password string `envconfig:"PG_PASS" default:""`
	SSLMode  string `envconfig:"PG_SSLMODE" default:"disable"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"erauchess:cache"`
}

// DigestConfig bounds credential digest concurrency. Zero means GOMAXPROCS.
type DigestConfig struct {
	Workers int `envconfig:"DIGEST_WORKERS" default:"0"`
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Type {
	case "sqlite", "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("STORE_TYPE %q is not one of sqlite, mysql, postgres", c.Store.Type))
	}

	switch c.Cache.Type {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("CACHE_TYPE %q is not one of memory, redis", c.Cache.Type))
	}

	if len(c.Session.Secret) < session.MinSecretLen {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", session.MinSecretLen))
	}

	for _, origin := range c.Server.Origins() {
		if strings.Contains(origin, "*") {
			errs = append(errs, fmt.Errorf("CORS_ALLOWED_ORIGINS entry %q: wildcards cannot be used with session cookies", origin))
		}
	}

	switch strings.ToLower(c.App.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not one of text, json", c.App.LogFormat))
	}

	if c.Digest.Workers < 0 {
		errs = append(errs, errors.New("DIGEST_WORKERS must not be negative"))
	}

	return errors.Join(errs...)
}

// Origins returns AllowedOrigins with blank entries removed.
func (s *ServerConfig) Origins() []string {
	var origins []string
	for _, o := range s.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// DSN returns the MySQL data source name.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// DSN returns the PostgreSQL connection string.
func (p *PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Name, p.SSLMode)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads and validates configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
