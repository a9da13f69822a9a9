package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kbukum/pipegen/host/redis"
	"github.com/kbukum/pipegen/host/sqlite"
	"github.com/kbukum/pipegen/server"
)

// ServiceName is the default service name and config search key.
const ServiceName = "pipegen"

// DefaultModule is the user module seeded when none is configured.
const DefaultModule = "MyFirstModule"

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config is the complete pipegen configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Generator GeneratorConfig `yaml:"generator" mapstructure:"generator"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    server.Config   `yaml:"server" mapstructure:"server"`
	Tracing   TracingConfig   `yaml:"tracing" mapstructure:"tracing"`
}

// CatalogConfig configures the pipeline discovery service.
type CatalogConfig struct {
	// URL is the root of the Swagger-described service. Optional; the
	// catalog can also be loaded on demand.
	URL     string        `yaml:"url" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Proxy routes discovery requests through an HTTP proxy.
	Proxy string `yaml:"proxy" mapstructure:"proxy"`
	// Token is sent as a bearer token when set.
	Token   string `yaml:"token" mapstructure:"token"`
	PerPage int    `yaml:"per_page" mapstructure:"per_page"`
}

// ApplyDefaults sets catalog defaults.
func (c *CatalogConfig) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.PerPage == 0 {
		c.PerPage = 10
	}
}

// Validate checks the catalog section.
func (c *CatalogConfig) Validate() error {
	if c.URL != "" {
		if err := absoluteURL(c.URL); err != nil {
			return fmt.Errorf("catalog.url: %w", err)
		}
	}
	if c.Proxy != "" {
		if err := absoluteURL(c.Proxy); err != nil {
			return fmt.Errorf("catalog.proxy: %w", err)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("catalog.timeout must be non-negative (got: %s)", c.Timeout)
	}
	if c.PerPage < 1 {
		return fmt.Errorf("catalog.per_page must be positive (got: %d)", c.PerPage)
	}
	return nil
}

// GeneratorConfig configures microflow generation.
type GeneratorConfig struct {
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
	Language string `yaml:"language" mapstructure:"language"`
}

// ApplyDefaults sets generator defaults.
func (c *GeneratorConfig) ApplyDefaults() {
	if c.Prefix == "" {
		c.Prefix = "HB_"
	}
	if c.Language == "" {
		c.Language = "en_US"
	}
}

// Validate checks the generator section. Prefix rules are enforced by the
// generator itself so a bad prefix is reported the same way everywhere.
func (c *GeneratorConfig) Validate() error {
	if strings.TrimSpace(c.Language) == "" {
		return fmt.Errorf("generator.language is required")
	}
	return nil
}

// StoreConfig selects the workspace persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	// Modules are registered in the store at startup so microflows can be
	// created in them.
	Modules []string      `yaml:"modules" mapstructure:"modules"`
	SQLite  sqlite.Config `yaml:"sqlite" mapstructure:"sqlite"`
	Redis   redis.Config  `yaml:"redis" mapstructure:"redis"`
}

// ApplyDefaults sets store defaults.
func (c *StoreConfig) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = StoreMemory
	}
	if len(c.Modules) == 0 {
		c.Modules = []string{DefaultModule}
	}
	c.SQLite.ApplyDefaults()
	c.Redis.ApplyDefaults()
}

// Validate checks the store section.
func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("store.driver must be one of [memory, sqlite, redis] (got: %s)", c.Driver)
	}
	for _, m := range c.Modules {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("store.modules must not contain empty names")
		}
	}
	switch c.Driver {
	case StoreSQLite:
		if err := c.SQLite.Validate(); err != nil {
			return fmt.Errorf("store.sqlite: %w", err)
		}
	case StoreRedis:
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("store.redis: %w", err)
		}
	}
	return nil
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint        string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure        bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate      float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	MetricsInterval time.Duration `yaml:"metrics_interval" mapstructure:"metrics_interval"`
}

// ApplyDefaults sets tracing defaults.
func (c *TracingConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricsInterval == 0 {
		c.MetricsInterval = 15 * time.Second
	}
}

// Validate checks the tracing section.
func (c *TracingConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1 (got: %v)", c.SampleRate)
	}
	return nil
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Catalog.ApplyDefaults()
	c.Generator.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Tracing.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Generator.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return c.Tracing.Validate()
}

// Load reads, defaults and validates the pipegen configuration.
func Load(cfg *Config, opts ...LoaderOption) error {
	if err := LoadConfig(ServiceName, cfg, opts...); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	return cfg.Validate()
}

func absoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", raw)
	}
	return nil
}
