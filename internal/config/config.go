// Package config loads layered service configuration: a base config.toml,
// an optional SWAP_ENV overlay file, and SWAP_* environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/todd-jang/swap-reporting-mvp/pkg/database"
	"github.com/todd-jang/swap-reporting-mvp/pkg/middleware"
	"github.com/todd-jang/swap-reporting-mvp/pkg/pagination"
	"github.com/todd-jang/swap-reporting-mvp/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvSwapEnv             = "SWAP_ENV"
	EnvSwapShutdownTimeout = "SWAP_SHUTDOWN_TIMEOUT"
	EnvSwapVersion         = "SWAP_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "SWAP_DB_HOST",
	Port:            "SWAP_DB_PORT",
	Name:            "SWAP_DB_NAME",
	User:            "SWAP_DB_USER",
	Password:        "SWAP_DB_PASSWORD",
	SSLMode:         "SWAP_DB_SSL_MODE",
	MaxOpenConns:    "SWAP_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SWAP_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SWAP_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SWAP_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "SWAP_STORAGE_CONTAINER_NAME",
	ConnectionString: "SWAP_STORAGE_CONNECTION_STRING",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "SWAP_PAGE_SIZE_DEFAULT",
	MaxPageSize:     "SWAP_PAGE_SIZE_MAX",
}

var corsEnv = &middleware.CORSEnv{
	Enabled: "SWAP_CORS_ENABLED",
	Origins: "SWAP_CORS_ORIGINS",
}

// Options select which optional subsystems a stage binary needs.
type Options struct {
	// DefaultPort is the stage's conventional listen port.
	DefaultPort int
	// Storage requires a blob store connection (report generation, submission).
	Storage bool
}

// Config is the root configuration shared by every stage binary.
type Config struct {
	Server          ServerConfig          `toml:"server"`
	Database        database.Config       `toml:"database"`
	Storage         storage.Config        `toml:"storage"`
	Pagination      pagination.Config     `toml:"pagination"`
	Pipeline        PipelineConfig        `toml:"pipeline"`
	Auth            AuthConfig            `toml:"auth"`
	CORS            middleware.CORSConfig `toml:"cors"`
	ShutdownTimeout string                `toml:"shutdown_timeout"`
	Version         string                `toml:"version"`

	opts Options
}

// Env returns the SWAP_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvSwapEnv); env != "" {
		return env
	}
	return "local"
}

// UsesStorage reports whether this stage requires the blob store.
func (c *Config) UsesStorage() bool {
	return c.opts.Storage
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and
// environment variables provide all configuration.
func Load(opts Options) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := read(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := read(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	cfg.opts = opts
	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Pagination.Merge(&overlay.Pagination)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Auth.Merge(&overlay.Auth)
	c.CORS.Merge(&overlay.CORS)
}

func (c *Config) finalize() error {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if v := os.Getenv(EnvSwapShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvSwapVersion); v != "" {
		c.Version = v
	}

	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	if err := c.Server.Finalize(c.opts.DefaultPort); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.opts.Storage {
		if err := c.Storage.Finalize(storageEnv); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Pipeline.Finalize(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Auth.Finalize(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

func read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvSwapEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
