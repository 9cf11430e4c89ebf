package lease

import (
	"fmt"
	"os"
	"time"
)

const (
	BackendLocal = "local"
	BackendNATS  = "nats"
)

// Config selects and parameterizes the lease backend.
type Config struct {
	Backend     string `toml:"backend"`
	URL         string `toml:"url"`
	Bucket      string `toml:"bucket"`
	TTL         string `toml:"ttl"`
	ConnTimeout string `toml:"conn_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend     string
	URL         string
	Bucket      string
	TTL         string
	ConnTimeout string
}

// TTLDuration returns TTL as a time.Duration.
func (c *Config) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// ConnTimeoutDuration returns ConnTimeout as a time.Duration.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.Bucket != "" {
		c.Bucket = overlay.Bucket
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.ConnTimeout != "" {
		c.ConnTimeout = overlay.ConnTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendLocal
	}
	if c.URL == "" {
		c.URL = "nats://localhost:4222"
	}
	if c.Bucket == "" {
		c.Bucket = "invoice_leases"
	}
	if c.TTL == "" {
		c.TTL = "5m"
	}
	if c.ConnTimeout == "" {
		c.ConnTimeout = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Backend != "" {
		if v := os.Getenv(env.Backend); v != "" {
			c.Backend = v
		}
	}
	if env.URL != "" {
		if v := os.Getenv(env.URL); v != "" {
			c.URL = v
		}
	}
	if env.Bucket != "" {
		if v := os.Getenv(env.Bucket); v != "" {
			c.Bucket = v
		}
	}
	if env.TTL != "" {
		if v := os.Getenv(env.TTL); v != "" {
			c.TTL = v
		}
	}
	if env.ConnTimeout != "" {
		if v := os.Getenv(env.ConnTimeout); v != "" {
			c.ConnTimeout = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendLocal, BackendNATS:
	default:
		return fmt.Errorf("unknown lease backend %q", c.Backend)
	}
	if d, err := time.ParseDuration(c.TTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid ttl %q", c.TTL)
	}
	if _, err := time.ParseDuration(c.ConnTimeout); err != nil {
		return fmt.Errorf("invalid conn_timeout: %w", err)
	}
	return nil
}
