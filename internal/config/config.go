// Package config loads server configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML file
// (path from the --config flag or CONNECTOR_CONFIG), then environment
// variable overrides. The result is checked with Validate.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"Connector/internal/db/dbctx"
)

// ConfigPathEnv names the variable holding the config file path
const ConfigPathEnv = "CONNECTOR_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config is the complete server configuration.
type Config struct {
	Environment Environment  `yaml:"environment"`
	Server      ServerConfig `yaml:"server"`
	Log         LogConfig    `yaml:"log"`
	Store       StoreConfig  `yaml:"store"`
	Auth        AuthConfig   `yaml:"auth"`
	Events      EventsConfig `yaml:"events"`
	RateLimit   RateLimit    `yaml:"rate_limit"`
	Feed        FeedConfig   `yaml:"feed"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	// Driver is one of postgres, mongo, memory.
	Driver string `yaml:"driver"`

	// OperationTimeout bounds each store call.
	OperationTimeout time.Duration `yaml:"operation_timeout"`

	DatabaseURL   string `yaml:"database_url"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

// AuthConfig configures token verification.
type AuthConfig struct {
	// JWTSecret verifies HS256 tokens.
	JWTSecret string `yaml:"jwt_secret"`

	// JWKSURL serves public keys for tokens carrying a kid header.
	JWKSURL string `yaml:"jwks_url"`

	// JWKSRefresh is the minimum interval between JWKS refreshes.
	JWKSRefresh time.Duration `yaml:"jwks_refresh"`

	// Issuer is enforced when set.
	Issuer string `yaml:"issuer"`
}

// EventsConfig configures the Redis event publisher. Empty RedisAddr disables it.
type EventsConfig struct {
	RedisAddr string `yaml:"redis_addr"`
	Channel   string `yaml:"channel"`
}

// RateLimit configures per-actor request limits. Zero Requests disables it.
type RateLimit struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// FeedConfig configures listing.
type FeedConfig struct {
	MaxLimit int `yaml:"max_limit"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Driver:           DriverMemory,
			OperationTimeout: dbctx.DefaultTimeout,
			MongoDatabase:    "connector",
		},
		Auth: AuthConfig{
			JWKSRefresh: 15 * time.Minute,
		},
		Events: EventsConfig{
			Channel: "connector.posts",
		},
		RateLimit: RateLimit{
			Requests: 100,
			Window:   time.Minute,
		},
		Feed: FeedConfig{
			MaxLimit: 100,
		},
	}
}

// Load builds the configuration from defaults, the optional file at path
// (falling back to CONNECTOR_CONFIG), and environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges a YAML file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	var env string
	str("ENVIRONMENT", &env)
	if env != "" {
		c.Environment = Environment(env)
	}
	str("PORT", &c.Server.Port)
	str("LOG_LEVEL", &c.Log.Level)
	str("STORE_DRIVER", &c.Store.Driver)
	str("DATABASE_URL", &c.Store.DatabaseURL)
	str("MONGO_URI", &c.Store.MongoURI)
	str("MONGO_DATABASE", &c.Store.MongoDatabase)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("JWKS_URL", &c.Auth.JWKSURL)
	str("JWT_ISSUER", &c.Auth.Issuer)
	str("REDIS_ADDR", &c.Events.RedisAddr)
	str("REDIS_CHANNEL", &c.Events.Channel)

	var requests string
	str("RATE_LIMIT_REQUESTS", &requests)
	if requests != "" {
		n, err := strconv.Atoi(requests)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_REQUESTS: %w", err)
		}
		c.RateLimit.Requests = n
	}

	var timeout string
	str("STORE_OPERATION_TIMEOUT", &timeout)
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("STORE_OPERATION_TIMEOUT: %w", err)
		}
		c.Store.OperationTimeout = d
	}

	return nil
}

// IsProduction reports whether the production environment is selected.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Server.Port == "" {
		errs = append(errs, fmt.Errorf("server.port is required"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log.level: %s", c.Log.Level))
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("store.database_url is required for the postgres driver"))
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, fmt.Errorf("store.mongo_uri is required for the mongo driver"))
		}
		if c.Store.MongoDatabase == "" {
			errs = append(errs, fmt.Errorf("store.mongo_database is required for the mongo driver"))
		}
	case DriverMemory:
		if c.IsProduction() {
			errs = append(errs, fmt.Errorf("the memory store driver is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid store.driver: %s", c.Store.Driver))
	}

	if c.Store.OperationTimeout <= 0 {
		errs = append(errs, fmt.Errorf("store.operation_timeout must be positive"))
	}

	if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		errs = append(errs, fmt.Errorf("auth.jwt_secret or auth.jwks_url is required"))
	}

	if c.RateLimit.Requests < 0 {
		errs = append(errs, fmt.Errorf("rate_limit.requests must not be negative"))
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.window must be positive"))
	}

	if c.Feed.MaxLimit <= 0 {
		errs = append(errs, fmt.Errorf("feed.max_limit must be positive"))
	}

	return errors.Join(errs...)
}
