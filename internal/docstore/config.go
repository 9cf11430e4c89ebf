package docstore

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Config holds MongoDB connection and write durability parameters.
type Config struct {
	URI          string `toml:"uri"`
	Database     string `toml:"database"`
	Collection   string `toml:"collection"`
	WriteConcern string `toml:"write_concern"`
	Journal      *bool  `toml:"journal"`
	ConnTimeout  string `toml:"conn_timeout"`
	OpTimeout    string `toml:"op_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URI          string
	Database     string
	Collection   string
	WriteConcern string
	Journal      string
	ConnTimeout  string
	OpTimeout    string
}

// ConnTimeoutDuration returns ConnTimeout as a time.Duration.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// OpTimeoutDuration returns OpTimeout as a time.Duration.
func (c *Config) OpTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.OpTimeout)
	return d
}

// Durability returns the write concern applied to every write.
// A numeric WriteConcern is a node count; any other value is a tag such as "majority".
func (c *Config) Durability() *writeconcern.WriteConcern {
	journal := c.Journal == nil || *c.Journal

	var w any = c.WriteConcern
	if n, err := strconv.Atoi(c.WriteConcern); err == nil {
		w = n
	}

	return &writeconcern.WriteConcern{W: w, Journal: &journal}
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
	if overlay.URI != "" {
		c.URI = overlay.URI
	}
	if overlay.Database != "" {
		c.Database = overlay.Database
	}
	if overlay.Collection != "" {
		c.Collection = overlay.Collection
	}
	if overlay.WriteConcern != "" {
		c.WriteConcern = overlay.WriteConcern
	}
	if overlay.Journal != nil {
		c.Journal = overlay.Journal
	}
	if overlay.ConnTimeout != "" {
		c.ConnTimeout = overlay.ConnTimeout
	}
	if overlay.OpTimeout != "" {
		c.OpTimeout = overlay.OpTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.URI == "" {
		c.URI = "mongodb://localhost:27017"
	}
	if c.Database == "" {
		c.Database = "invoice_db"
	}
	if c.Collection == "" {
		c.Collection = "invoices"
	}
	if c.WriteConcern == "" {
		c.WriteConcern = "1"
	}
	if c.Journal == nil {
		journal := true
		c.Journal = &journal
	}
	if c.ConnTimeout == "" {
		c.ConnTimeout = "5s"
	}
	if c.OpTimeout == "" {
		c.OpTimeout = "10s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.URI != "" {
		if v := os.Getenv(env.URI); v != "" {
			c.URI = v
		}
	}
	if env.Database != "" {
		if v := os.Getenv(env.Database); v != "" {
			c.Database = v
		}
	}
	if env.Collection != "" {
		if v := os.Getenv(env.Collection); v != "" {
			c.Collection = v
		}
	}
	if env.WriteConcern != "" {
		if v := os.Getenv(env.WriteConcern); v != "" {
			c.WriteConcern = v
		}
	}
	if env.Journal != "" {
		if v := os.Getenv(env.Journal); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Journal = &b
			}
		}
	}
	if env.ConnTimeout != "" {
		if v := os.Getenv(env.ConnTimeout); v != "" {
			c.ConnTimeout = v
		}
	}
	if env.OpTimeout != "" {
		if v := os.Getenv(env.OpTimeout); v != "" {
			c.OpTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if n, err := strconv.Atoi(c.WriteConcern); err == nil && n < 1 {
		return fmt.Errorf("write_concern must acknowledge writes, got %d", n)
	}
	if _, err := time.ParseDuration(c.ConnTimeout); err != nil {
		return fmt.Errorf("invalid conn_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.OpTimeout); err != nil {
		return fmt.Errorf("invalid op_timeout: %w", err)
	}
	return nil
}
