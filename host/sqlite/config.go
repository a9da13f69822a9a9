package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// Config holds sqlite store configuration.
type Config struct {
	// DSN is the sqlite data source, a file path or ":memory:".
	DSN string `yaml:"dsn" mapstructure:"dsn"`

	// MaxOpenConns sets the maximum number of open connections. In-memory
	// databases always use a single connection.
	MaxOpenConns int `yaml:"max_open_conns" mapstructure:"max_open_conns"`

	// MaxRetries is the number of open attempts before giving up.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`

	// SlowQueryThreshold is the duration above which queries are logged as slow (e.g. "200ms").
	SlowQueryThreshold string `yaml:"slow_query_threshold" mapstructure:"slow_query_threshold"`

	// LogLevel is the gorm log level: silent, error, warn or info.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.DSN == "" {
		c.DSN = "pipegen.db"
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 4
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("sqlite dsn is required")
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max_open_conns must be > 0")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be > 0")
	}
	if _, err := time.ParseDuration(c.SlowQueryThreshold); err != nil {
		return fmt.Errorf("invalid slow_query_threshold %q: %w", c.SlowQueryThreshold, err)
	}
	switch strings.ToLower(c.LogLevel) {
	case "silent", "error", "warn", "info":
	default:
		return fmt.Errorf("log_level must be one of [silent, error, warn, info] (got: %s)", c.LogLevel)
	}
	return nil
}

// InMemory reports whether the DSN names an in-memory database.
func (c *Config) InMemory() bool {
	return c.DSN == ":memory:" || strings.Contains(c.DSN, "mode=memory") || strings.HasPrefix(c.DSN, "file::memory:")
}
