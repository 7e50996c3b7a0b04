// Package config provides configuration management for parsoid.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied to unset fields.
const (
	DefaultMaxDepth     = 40
	DefaultCacheSize    = 256
	DefaultFetchTimeout = "10s"
	DefaultUserAgent    = "parsoid-go"
	DefaultOutputFormat = "html"
)

// OutputFormats are the accepted values of output_format.
var OutputFormats = []string{"html", "markdown", "tokens", "json"}

// EnvVars are the environment variables LoadFromEnv reads.
var EnvVars = []string{
	"PARSOID_API_URL",
	"PARSOID_USER_AGENT",
	"PARSOID_TEMPLATE_DB",
	"PARSOID_MAX_DEPTH",
	"PARSOID_CACHE_SIZE",
	"PARSOID_FETCH_TIMEOUT",
	"PARSOID_OUTPUT_FORMAT",
}

// Config holds the parsoid configuration.
type Config struct {
	APIURL       string `yaml:"api_url,omitempty"`
	UserAgent    string `yaml:"user_agent,omitempty"`
	TemplateDB   string `yaml:"template_db,omitempty"`
	MaxDepth     int    `yaml:"max_depth,omitempty"`
	CacheSize    int    `yaml:"cache_size,omitempty"`
	FetchTimeout string `yaml:"fetch_timeout,omitempty"`
	OutputFormat string `yaml:"output_format,omitempty"`
}

// Validate checks that every set field holds a usable value.
func (c *Config) Validate() error {
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil {
			return fmt.Errorf("api_url is invalid: %w", err)
		}
		if u.Scheme != "https" && u.Scheme != "http" {
			return errors.New("api_url must use http or https")
		}
		if u.Host == "" {
			return errors.New("api_url must include a host")
		}
	}
	if c.MaxDepth < 0 {
		return errors.New("max_depth must not be negative")
	}
	if c.CacheSize < 0 {
		return errors.New("cache_size must not be negative")
	}
	if c.FetchTimeout != "" {
		d, err := time.ParseDuration(c.FetchTimeout)
		if err != nil {
			return fmt.Errorf("fetch_timeout is invalid: %w", err)
		}
		if d <= 0 {
			return errors.New("fetch_timeout must be positive")
		}
	}
	if c.OutputFormat != "" && !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("output_format must be one of %v", OutputFormats)
	}
	return nil
}

// ApplyDefaults fills in unset fields.
func (c *Config) ApplyDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.TemplateDB == "" {
		c.TemplateDB = DefaultTemplateDBPath()
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.CacheSize == 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.FetchTimeout == "" {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultOutputFormat
	}
}

// Timeout returns the fetch timeout, or the default if it is unset or
// invalid.
func (c *Config) Timeout() time.Duration {
	if d, err := time.ParseDuration(c.FetchTimeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultFetchTimeout)
	return d
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
// Numeric variables that do not parse are ignored.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("PARSOID_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("PARSOID_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("PARSOID_TEMPLATE_DB"); v != "" {
		c.TemplateDB = v
	}
	if n, ok := envInt("PARSOID_MAX_DEPTH"); ok {
		c.MaxDepth = n
	}
	if n, ok := envInt("PARSOID_CACHE_SIZE"); ok {
		c.CacheSize = n
	}
	if v := os.Getenv("PARSOID_FETCH_TIMEOUT"); v != "" {
		c.FetchTimeout = v
	}
	if v := os.Getenv("PARSOID_OUTPUT_FORMAT"); v != "" {
		c.OutputFormat = v
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "parsoid", "config.yml")
	}

	// Fall back to ~/.config/parsoid/config.yml
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".parsoid", "config.yml")
	}

	return filepath.Join(home, ".config", "parsoid", "config.yml")
}

// DefaultTemplateDBPath returns where the local template database lives
// unless configured otherwise.
func DefaultTemplateDBPath() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "parsoid", "templates.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".parsoid", "templates.db")
	}
	return filepath.Join(home, ".local", "share", "parsoid", "templates.db")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment
// variables. A missing file is not an error; a malformed one is.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
	}

	cfg.LoadFromEnv()
	return cfg, nil
}
