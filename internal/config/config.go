package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/invoicer/internal/docstore"
	"github.com/JaimeStill/invoicer/internal/lease"
	"github.com/JaimeStill/invoicer/pkg/database"
	"github.com/JaimeStill/invoicer/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvInvoicerEnv             = "INVOICER_ENV"
	EnvInvoicerShutdownTimeout = "INVOICER_SHUTDOWN_TIMEOUT"
	EnvInvoicerVersion         = "INVOICER_VERSION"
)

var databaseEnv = &database.Env{
	Dialect:         "INVOICER_DB_DIALECT",
	Host:            "INVOICER_DB_HOST",
	Port:            "INVOICER_DB_PORT",
	Name:            "INVOICER_DB_NAME",
	User:            "INVOICER_DB_USER",
	Password:        "INVOICER_DB_PASSWORD",
	SSLMode:         "INVOICER_DB_SSL_MODE",
	Path:            "INVOICER_DB_PATH",
	MaxOpenConns:    "INVOICER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "INVOICER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "INVOICER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "INVOICER_DB_CONN_TIMEOUT",
}

var docstoreEnv = &docstore.Env{
	URI:          "INVOICER_MONGO_URI",
	Database:     "INVOICER_MONGO_DATABASE",
	Collection:   "INVOICER_MONGO_COLLECTION",
	WriteConcern: "INVOICER_MONGO_WRITE_CONCERN",
	Journal:      "INVOICER_MONGO_JOURNAL",
	ConnTimeout:  "INVOICER_MONGO_CONN_TIMEOUT",
	OpTimeout:    "INVOICER_MONGO_OP_TIMEOUT",
}

var storageEnv = &storage.Env{
	Backend:          "INVOICER_STORAGE_BACKEND",
	ContainerName:    "INVOICER_STORAGE_CONTAINER_NAME",
	ConnectionString: "INVOICER_STORAGE_CONNECTION_STRING",
	ServiceURL:       "INVOICER_STORAGE_SERVICE_URL",
	Root:             "INVOICER_STORAGE_ROOT",
}

var leaseEnv = &lease.Env{
	Backend:     "INVOICER_LEASE_BACKEND",
	URL:         "INVOICER_LEASE_URL",
	Bucket:      "INVOICER_LEASE_BUCKET",
	TTL:         "INVOICER_LEASE_TTL",
	ConnTimeout: "INVOICER_LEASE_CONN_TIMEOUT",
}

// Config is the root configuration for the invoicer service and tools.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Logging         LoggingConfig   `toml:"logging"`
	Database        database.Config `toml:"database"`
	Docstore        docstore.Config `toml:"docstore"`
	Storage         storage.Config  `toml:"storage"`
	Lease           lease.Config    `toml:"lease"`
	Pipeline        PipelineConfig  `toml:"pipeline"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the INVOICER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvInvoicerEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. Without a config.toml, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile is Load with an explicit base config path. The overlay is looked
// up next to it.
func LoadFile(base string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(base); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

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
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Docstore.Merge(&overlay.Docstore)
	c.Storage.Merge(&overlay.Storage)
	c.Lease.Merge(&overlay.Lease)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Docstore.Finalize(docstoreEnv); err != nil {
		return fmt.Errorf("docstore: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Lease.Finalize(leaseEnv); err != nil {
		return fmt.Errorf("lease: %w", err)
	}
	if err := c.Pipeline.Finalize(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvInvoicerShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvInvoicerVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
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

func overlayPath(base string) string {
	env := os.Getenv(EnvInvoicerEnv)
	if env == "" {
		return ""
	}

	path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
