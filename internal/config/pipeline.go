package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/invoicer/internal/relational"
	"github.com/JaimeStill/invoicer/internal/verify"
)

const (
	EnvPipelineUploadDir      = "INVOICER_UPLOAD_DIR"
	EnvPipelineVerifyAttempts = "INVOICER_VERIFY_ATTEMPTS"
	EnvPipelineVerifyDelay    = "INVOICER_VERIFY_DELAY"
	EnvPipelineVerifyStrict   = "INVOICER_VERIFY_STRICT"
	EnvPipelineOnDuplicate    = "INVOICER_ON_DUPLICATE"
	EnvPipelineWorkers        = "INVOICER_WORKERS"
)

// PipelineConfig holds processing settings shared by the server and batch runner.
type PipelineConfig struct {
	UploadDir      string `toml:"upload_dir"`
	VerifyAttempts int    `toml:"verify_attempts"`
	VerifyDelay    string `toml:"verify_delay"`
	VerifyStrict   *bool  `toml:"verify_strict"`
	OnDuplicate    string `toml:"on_duplicate"`
	Workers        int    `toml:"workers"`
}

// VerifyOptions returns the verification settings.
func (c *PipelineConfig) VerifyOptions() verify.Options {
	d, _ := time.ParseDuration(c.VerifyDelay)
	return verify.Options{
		Attempts: c.VerifyAttempts,
		Delay:    d,
		Strict:   c.VerifyStrict != nil && *c.VerifyStrict,
	}
}

// DuplicatePolicy returns the configured relational duplicate policy.
func (c *PipelineConfig) DuplicatePolicy() relational.DuplicatePolicy {
	p, _ := relational.ParseDuplicatePolicy(c.OnDuplicate)
	return p
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.UploadDir != "" {
		c.UploadDir = overlay.UploadDir
	}
	if overlay.VerifyAttempts != 0 {
		c.VerifyAttempts = overlay.VerifyAttempts
	}
	if overlay.VerifyDelay != "" {
		c.VerifyDelay = overlay.VerifyDelay
	}
	if overlay.VerifyStrict != nil {
		c.VerifyStrict = overlay.VerifyStrict
	}
	if overlay.OnDuplicate != "" {
		c.OnDuplicate = overlay.OnDuplicate
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.VerifyAttempts == 0 {
		c.VerifyAttempts = verify.DefaultAttempts
	}
	if c.VerifyDelay == "" {
		c.VerifyDelay = verify.DefaultDelay.String()
	}
	if c.OnDuplicate == "" {
		c.OnDuplicate = string(relational.Replace)
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineUploadDir); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv(EnvPipelineVerifyAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.VerifyAttempts = n
		}
	}
	if v := os.Getenv(EnvPipelineVerifyDelay); v != "" {
		c.VerifyDelay = v
	}
	if v := os.Getenv(EnvPipelineVerifyStrict); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.VerifyStrict = &b
		}
	}
	if v := os.Getenv(EnvPipelineOnDuplicate); v != "" {
		c.OnDuplicate = v
	}
	if v := os.Getenv(EnvPipelineWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

func (c *PipelineConfig) validate() error {
	if c.VerifyAttempts < 1 {
		return fmt.Errorf("verify_attempts must be at least 1, got %d", c.VerifyAttempts)
	}
	if d, err := time.ParseDuration(c.VerifyDelay); err != nil || d <= 0 {
		return fmt.Errorf("invalid verify_delay %q", c.VerifyDelay)
	}
	if _, err := relational.ParseDuplicatePolicy(c.OnDuplicate); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}
