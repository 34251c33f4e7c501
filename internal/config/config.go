package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DevJWTSecret is the signing secret used when JWT_SECRET is unset. It is
// rejected in production.
const DevJWTSecret = "jobtrack-development-secret-change-me"

// Config holds all application configuration
type Config struct {
	LogLevel  string          `env:"LOG_LEVEL" envDefault:"info"`
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Demo      DemoConfig      `envPrefix:"DEMO_"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Env             string        `env:"ENV" envDefault:"development"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	// TrustProxy makes the rate limiter key clients by the first
	// X-Forwarded-For hop instead of the socket address
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string `env:"HOST" envDefault:"localhost"`
	Port      string `env:"PORT" envDefault:"8000"`
	Namespace string `env:"NAMESPACE" envDefault:"jobtrack"`
	Database  string `env:"DATABASE" envDefault:"main"`
	User      string `env:"USER" envDefault:"root"`
	Password  string `env:"PASSWORD" envDefault:"root"`
}

// JWTConfig holds session token settings
type JWTConfig struct {
	Secret   string        `env:"SECRET" envDefault:"jobtrack-development-secret-change-me"`
	Issuer   string        `env:"ISSUER" envDefault:"jobtrack"`
	Lifetime time.Duration `env:"LIFETIME" envDefault:"24h"`
}

// RateLimitConfig holds the per-client limit applied to register and login
type RateLimitConfig struct {
	Requests int           `env:"REQUESTS" envDefault:"10"`
	Window   time.Duration `env:"WINDOW" envDefault:"15m"`
}

// DemoConfig identifies the shared read-only demo account
type DemoConfig struct {
	UserEmail string `env:"USER_EMAIL"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Demo.UserEmail = strings.ToLower(strings.TrimSpace(cfg.Demo.UserEmail))
	return &cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("SERVER_ALLOWED_ORIGINS must have at least one origin"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// JWT validation - the development secret must never reach production
	if len(c.JWT.Secret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes"))
	}
	if c.IsProduction() && c.JWT.Secret == DevJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.JWT.Lifetime <= 0 {
		errs = append(errs, errors.New("JWT_LIFETIME must be positive"))
	}
	if c.JWT.Issuer == "" {
		errs = append(errs, errors.New("JWT_ISSUER is required"))
	}

	// Rate limit validation
	if c.RateLimit.Requests <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}

	if c.Demo.UserEmail != "" && !strings.Contains(c.Demo.UserEmail, "@") {
		errs = append(errs, fmt.Errorf("DEMO_USER_EMAIL is not an email address: %q", c.Demo.UserEmail))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
