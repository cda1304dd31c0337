package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultConfigPath = "configs/config.yaml"

// Config aggregates runtime configuration used across the services and taskctl.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
	Events  EventsConfig  `yaml:"events"`
	Log     LogConfig     `yaml:"log"`
	Session SessionConfig `yaml:"session"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS"`
	BasePath        string        `yaml:"basePath" env:"HTTP_BASE_PATH"`
	ReadTimeout     time.Duration `yaml:"readTimeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" env:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowedOrigins" env:"HTTP_ALLOWED_ORIGINS"`
}

// AuthConfig holds the shared token settings. Secret must be identical on
// every service that issues or verifies tokens.
type AuthConfig struct {
	Secret       string        `yaml:"secret" env:"AUTH_SECRET"`
	TokenTTL     time.Duration `yaml:"tokenTtl" env:"AUTH_TOKEN_TTL"`
	RefreshGrace time.Duration `yaml:"refreshGrace" env:"AUTH_REFRESH_GRACE"`
	Issuer       string        `yaml:"issuer" env:"AUTH_ISSUER"`
}

// StorageConfig selects the repository engine.
type StorageConfig struct {
	Driver   string         `yaml:"driver" env:"STORAGE_DRIVER"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn" env:"POSTGRES_DSN"`
	MaxConns int32  `yaml:"maxConns" env:"POSTGRES_MAX_CONNS"`
	MinConns int32  `yaml:"minConns" env:"POSTGRES_MIN_CONNS"`
	Migrate  bool   `yaml:"migrate" env:"POSTGRES_MIGRATE"`
}

// SQLiteConfig points at the database file.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH"`
}

// EventsConfig controls where auth events are recorded.
type EventsConfig struct {
	Valkey ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the event list.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled" env:"EVENTS_VALKEY_ENABLED"`
	Addr    string `yaml:"addr" env:"EVENTS_VALKEY_ADDR"`
	Key     string `yaml:"key" env:"EVENTS_VALKEY_KEY"`
	MaxLen  int64  `yaml:"maxLen" env:"EVENTS_VALKEY_MAX_LEN"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// SessionConfig is used by taskctl, the client side of the protocol.
type SessionConfig struct {
	AuthURL       string        `yaml:"authUrl" env:"SESSION_AUTH_URL"`
	TaskURL       string        `yaml:"taskUrl" env:"SESSION_TASK_URL"`
	StorePath     string        `yaml:"storePath" env:"SESSION_STORE_PATH"`
	RefreshWindow time.Duration `yaml:"refreshWindow" env:"SESSION_REFRESH_WINDOW"`
	Timeout       time.Duration `yaml:"timeout" env:"SESSION_TIMEOUT"`
}

// Load reads configuration for a service from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadClient reads configuration for taskctl. The signing secret and storage
// settings are not required on the client side.
func LoadClient() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateSession(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		if err := hydrateFromFile(cfg, defaultConfigPath); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			BasePath:        "/api",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Auth: AuthConfig{
			TokenTTL:     time.Hour,
			RefreshGrace: 14 * 24 * time.Hour,
		},
		Storage: StorageConfig{
			Driver: DriverMemory,
			Postgres: PostgresConfig{
				MaxConns: 4,
				Migrate:  true,
			},
			SQLite: SQLiteConfig{
				Path: "data/taskhub.db",
			},
		},
		Events: EventsConfig{
			Valkey: ValkeyConfig{
				Key:    "taskhub:auth:events",
				MaxLen: 10000,
			},
		},
		Log: LogConfig{
			Level: "info",
		},
		Session: SessionConfig{
			AuthURL:       "http://localhost:8000/api",
			TaskURL:       "http://localhost:8001/api",
			RefreshWindow: 5 * time.Minute,
			Timeout:       10 * time.Second,
		},
	}
}

// Validate ensures the configuration is safe to use by a service.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.BasePath != "" && !strings.HasPrefix(c.HTTP.BasePath, "/") {
		return errors.New("http.basePath must start with /")
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	if c.Auth.RefreshGrace < 0 {
		return errors.New("auth.refreshGrace cannot be negative")
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.Postgres.DSN) == "" {
			return errors.New("storage.postgres.dsn cannot be empty when driver is postgres")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.SQLite.Path) == "" {
			return errors.New("storage.sqlite.path cannot be empty when driver is sqlite")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	if c.Events.Valkey.Enabled {
		if strings.TrimSpace(c.Events.Valkey.Addr) == "" {
			return errors.New("events.valkey.addr cannot be empty when valkey is enabled")
		}
		if strings.TrimSpace(c.Events.Valkey.Key) == "" {
			return errors.New("events.valkey.key cannot be empty when valkey is enabled")
		}
	}
	return nil
}

// ValidateSession checks the client side settings.
func (c *Config) ValidateSession() error {
	if strings.TrimSpace(c.Session.AuthURL) == "" {
		return errors.New("session.authUrl cannot be empty")
	}
	if strings.TrimSpace(c.Session.TaskURL) == "" {
		return errors.New("session.taskUrl cannot be empty")
	}
	if c.Session.RefreshWindow < 0 {
		return errors.New("session.refreshWindow cannot be negative")
	}
	if c.Session.Timeout <= 0 {
		return errors.New("session.timeout must be positive")
	}
	return nil
}
