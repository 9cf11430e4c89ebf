package config

import (
	"fmt"
	"math"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	EnvServerHost              = "INVOICER_SERVER_HOST"
	EnvServerPort              = "INVOICER_SERVER_PORT"
	EnvServerReadHeaderTimeout = "INVOICER_SERVER_READ_HEADER_TIMEOUT"
	EnvServerReadTimeout       = "INVOICER_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout      = "INVOICER_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "INVOICER_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "INVOICER_SERVER_SHUTDOWN_TIMEOUT"
	EnvServerMaxHeaderSize     = "INVOICER_SERVER_MAX_HEADER_SIZE"
)

// ServerConfig holds the upload server's listener settings. Read and write
// timeouts cover a whole request, so they must allow for a full PDF upload
// and the synchronous extraction that follows it.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	ReadTimeout       string `toml:"read_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
	MaxHeaderSize     string `toml:"max_header_size"`
}

// ServerTimeouts are the parsed ServerConfig durations.
type ServerTimeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
	Shutdown   time.Duration
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Timeouts returns the configured durations. Values are validated by
// Finalize, so parse errors are not reported here.
func (c *ServerConfig) Timeouts() ServerTimeouts {
	var t ServerTimeouts
	for _, f := range c.durations(&t) {
		*f.dst, _ = time.ParseDuration(*f.value)
	}
	return t
}

// MaxHeaderBytes returns MaxHeaderSize in bytes.
func (c *ServerConfig) MaxHeaderBytes() int {
	size, _ := humanize.ParseBytes(c.MaxHeaderSize)
	return int(size)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.MaxHeaderSize != "" {
		c.MaxHeaderSize = overlay.MaxHeaderSize
	}

	var t ServerTimeouts
	dst := c.durations(&t)
	for i, f := range overlay.durations(&t) {
		if *f.value != "" {
			*dst[i].value = *f.value
		}
	}
}

type durationField struct {
	name  string
	env   string
	def   string
	value *string
	dst   *time.Duration
}

func (c *ServerConfig) durations(t *ServerTimeouts) []durationField {
	return []durationField{
		{"read_header_timeout", EnvServerReadHeaderTimeout, "10s", &c.ReadHeaderTimeout, &t.ReadHeader},
		{"read_timeout", EnvServerReadTimeout, "1m", &c.ReadTimeout, &t.Read},
		{"write_timeout", EnvServerWriteTimeout, "15m", &c.WriteTimeout, &t.Write},
		{"idle_timeout", EnvServerIdleTimeout, "2m", &c.IdleTimeout, &t.Idle},
		{"shutdown_timeout", EnvServerShutdownTimeout, "30s", &c.ShutdownTimeout, &t.Shutdown},
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.MaxHeaderSize == "" {
		c.MaxHeaderSize = "1MiB"
	}
	for _, f := range c.durations(&ServerTimeouts{}) {
		if *f.value == "" {
			*f.value = f.def
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv(EnvServerMaxHeaderSize); v != "" {
		c.MaxHeaderSize = v
	}
	for _, f := range c.durations(&ServerTimeouts{}) {
		if v := os.Getenv(f.env); v != "" {
			*f.value = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, f := range c.durations(&ServerTimeouts{}) {
		d, err := time.ParseDuration(*f.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", f.name, *f.value)
		}
	}
	if size, err := humanize.ParseBytes(c.MaxHeaderSize); err != nil || size == 0 || size > math.MaxInt32 {
		return fmt.Errorf("invalid max_header_size %q", c.MaxHeaderSize)
	}

	t := c.Timeouts()
	if t.ReadHeader > t.Read {
		return fmt.Errorf("read_header_timeout %s exceeds read_timeout %s", t.ReadHeader, t.Read)
	}
	return nil
}
