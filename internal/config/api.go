package config

import (
	"fmt"
	"math"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/JaimeStill/invoicer/pkg/middleware"
	"github.com/JaimeStill/invoicer/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "INVOICER_CORS_ENABLED",
	Origins:          "INVOICER_CORS_ORIGINS",
	AllowedMethods:   "INVOICER_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "INVOICER_CORS_ALLOWED_HEADERS",
	AllowCredentials: "INVOICER_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "INVOICER_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "INVOICER_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "INVOICER_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, and pagination settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes. Finalize guarantees it parses.
// SI units ("10MB") are powers of 1000 and IEC units ("10MiB") powers of 1024.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := humanize.ParseBytes(c.MaxUploadSize)
	return int64(size)
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if size, err := humanize.ParseBytes(c.MaxUploadSize); err != nil || size == 0 || size > math.MaxInt64 {
		return fmt.Errorf("invalid max_upload_size %q", c.MaxUploadSize)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MiB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("INVOICER_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("INVOICER_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
}
