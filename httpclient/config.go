package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures the HTTP client.
type Config struct {
	// BaseURL is the base URL prepended to relative request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the default request timeout. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Proxy routes every request through the given HTTP proxy URL.
	Proxy string `yaml:"proxy" mapstructure:"proxy"`

	// Transport replaces the default transport entirely. Proxy is ignored
	// when a Transport is supplied.
	Transport http.RoundTripper `yaml:"-" mapstructure:"-"`

	// Auth configures default authentication applied to all requests.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.Proxy != "" {
		if _, err := c.proxyURL(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) proxyURL() (*url.URL, error) {
	u, err := url.Parse(c.Proxy)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("httpclient: invalid proxy URL %q", c.Proxy)
	}
	return u, nil
}

// transport builds the round tripper described by the config.
func (c *Config) transport() (http.RoundTripper, error) {
	if c.Transport != nil {
		return c.Transport, nil
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	if c.Proxy != "" {
		u, err := c.proxyURL()
		if err != nil {
			return nil, err
		}
		t.Proxy = http.ProxyURL(u)
	}
	return t, nil
}
