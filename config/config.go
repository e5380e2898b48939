// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/NomadCrew/feedback-tracker-backend/logger"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// StorageBackend names a persistence implementation for the feedback collection.
type StorageBackend string

const (
	StorageBackendFile     StorageBackend = "file"
	StorageBackendRedis    StorageBackend = "redis"
	StorageBackendPostgres StorageBackend = "postgres"
	StorageBackendMemory   StorageBackend = "memory"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment            Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port                   string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins         []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version                string      `mapstructure:"VERSION" yaml:"version"`
	ShutdownTimeoutSeconds int         `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
	// TrustedProxies lists the proxy IPs or CIDRs whose forwarding headers
	// decide the client IP. Empty trusts none.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

// StorageConfig selects and tunes the feedback persistence backend.
type StorageConfig struct {
	Backend        StorageBackend `mapstructure:"BACKEND" yaml:"backend"`
	DataFile       string         `mapstructure:"DATA_FILE" yaml:"data_file"`
	TimeoutSeconds int            `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	// RedisKey is the key holding the whole collection when Backend is redis.
	RedisKey string `mapstructure:"REDIS_KEY" yaml:"redis_key"`
	// DocumentName is the row key in feedback_documents when Backend is postgres.
	DocumentName string `mapstructure:"DOCUMENT_NAME" yaml:"document_name"`
}

// Timeout returns the per-call persistence timeout.
func (c StorageConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig holds PostgreSQL connection details.
type DatabaseConfig struct {
	Host           string `mapstructure:"HOST" yaml:"host"`
	Port           int    `mapstructure:"PORT" yaml:"port"`
	User           string `mapstructure:"USER" yaml:"user"`
	Password       string `mapstructure:"PASSWORD" yaml:"password"`
	Name           string `mapstructure:"NAME" yaml:"name"`
	SSLMode        string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxConnections int    `mapstructure:"MAX_CONNECTIONS" yaml:"max_connections"`
}

// URL returns a postgres:// connection URL.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
		c.MaxConnections,
	)
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
	UseTLS   bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
}

// RateLimitConfig holds configuration for limiting feedback submissions.
type RateLimitConfig struct {
	Enabled              bool `mapstructure:"ENABLED" yaml:"enabled"`
	SubmissionsPerMinute int  `mapstructure:"SUBMISSIONS_PER_MINUTE" yaml:"submissions_per_minute"`
	WindowSeconds        int  `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server    ServerConfig    `mapstructure:"SERVER" yaml:"server"`
	Storage   StorageConfig   `mapstructure:"STORAGE" yaml:"storage"`
	Database  DatabaseConfig  `mapstructure:"DATABASE" yaml:"database"`
	Redis     RedisConfig     `mapstructure:"REDIS" yaml:"redis"`
	RateLimit RateLimitConfig `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// NeedsRedis reports whether any enabled component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.Storage.Backend == StorageBackendRedis || c.RateLimit.Enabled
}

const redactedValue = "********"

// RedactedYAML renders the effective configuration as YAML with passwords masked.
func (c *Config) RedactedYAML() ([]byte, error) {
	out := *c
	if out.Database.Password != "" {
		out.Database.Password = redactedValue
	}
	if out.Redis.Password != "" {
		out.Redis.Password = redactedValue
	}
	return yaml.Marshal(out)
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// applies defaults, unmarshals and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "3001")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "1.0.0")
	v.SetDefault("SERVER.SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("STORAGE.BACKEND", StorageBackendFile)
	v.SetDefault("STORAGE.DATA_FILE", "data/feedback.json")
	v.SetDefault("STORAGE.TIMEOUT_SECONDS", 5)
	v.SetDefault("STORAGE.REDIS_KEY", "feedback:collection")
	v.SetDefault("STORAGE.DOCUMENT_NAME", "feedback")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "feedback_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_CONNECTIONS", 5)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("RATE_LIMIT.ENABLED", false)
	v.SetDefault("RATE_LIMIT.SUBMISSIONS_PER_MINUTE", 10)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		// Server config
		{"SERVER.ENVIRONMENT", "ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.VERSION", "APP_VERSION"},
		{"SERVER.SHUTDOWN_TIMEOUT_SECONDS", "SHUTDOWN_TIMEOUT_SECONDS"},
		{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
		// Storage config
		{"STORAGE.BACKEND", "STORAGE_BACKEND"},
		{"STORAGE.DATA_FILE", "STORAGE_DATA_FILE"},
		{"STORAGE.TIMEOUT_SECONDS", "STORAGE_TIMEOUT_SECONDS"},
		{"STORAGE.REDIS_KEY", "STORAGE_REDIS_KEY"},
		{"STORAGE.DOCUMENT_NAME", "STORAGE_DOCUMENT_NAME"},
		// Database config
		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
		{"DATABASE.MAX_CONNECTIONS", "DB_MAX_CONNECTIONS"},
		// Redis config
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		{"REDIS.POOL_SIZE", "REDIS_POOL_SIZE"},
		// Rate limit config
		{"RATE_LIMIT.ENABLED", "RATE_LIMIT_ENABLED"},
		{"RATE_LIMIT.SUBMISSIONS_PER_MINUTE", "RATE_LIMIT_SUBMISSIONS_PER_MINUTE"},
		{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}
	cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins)
	cfg.Server.TrustedProxies = splitList(cfg.Server.TrustedProxies)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"storage_backend", cfg.Storage.Backend,
		"data_file", cfg.Storage.DataFile,
		"allowed_origins", cfg.Server.AllowedOrigins,
		"trusted_proxies", cfg.Server.TrustedProxies,
		"rate_limit_enabled", cfg.RateLimit.Enabled,
	)
	return &cfg, nil
}

// splitList accepts values given either as a list or as one
// comma-separated environment value.
func splitList(values []string) []string {
	var out []string
	for _, o := range values {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	switch cfg.Server.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", cfg.Server.Environment)
	}
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if cfg.Server.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}
	for _, proxy := range cfg.Server.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("invalid trusted proxy '%s': %w", proxy, err)
			}
		}
	}

	if cfg.Storage.TimeoutSeconds <= 0 {
		return fmt.Errorf("storage timeout must be positive")
	}
	switch cfg.Storage.Backend {
	case StorageBackendFile:
		if cfg.Storage.DataFile == "" {
			return fmt.Errorf("storage data file is required for the file backend")
		}
	case StorageBackendRedis:
		if cfg.Storage.RedisKey == "" {
			return fmt.Errorf("storage redis key is required for the redis backend")
		}
	case StorageBackendPostgres:
		if cfg.Database.Host == "" || cfg.Database.User == "" || cfg.Database.Name == "" {
			return fmt.Errorf("database host, user and name are required for the postgres backend")
		}
		if cfg.Database.Password == "" {
			log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
		}
		if cfg.Storage.DocumentName == "" {
			return fmt.Errorf("storage document name is required for the postgres backend")
		}
	case StorageBackendMemory:
		log.Warn("Memory storage selected. Feedback is lost when the process exits.")
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.NeedsRedis() && cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.SubmissionsPerMinute <= 0 {
			return fmt.Errorf("rate limit submissions per minute must be positive")
		}
		if cfg.RateLimit.WindowSeconds <= 0 {
			return fmt.Errorf("rate limit window seconds must be positive")
		}
	}

	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
