package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/linenotify/config.yaml"
	DefaultEnvPath    = "/etc/linenotify/env"
	DefaultDBPath     = "/var/lib/linenotify/history.db"

	// TokenEnv is read when no config file exists
	TokenEnv = "LINE_NOTIFY_TOKEN"

	defaultEndpoint = "https://notify-api.line.me/api/notify"
)

type Config struct {
	Line    LineConfig    `yaml:"line"`
	History HistoryConfig `yaml:"history"`
}

type LineConfig struct {
	Token    string `yaml:"token"`
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"` // Go duration, e.g. "10s"
}

type HistoryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"` // 0 keeps everything
}

// LoadEnvFile adds KEY=value pairs from path to the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// Load reads and parses the config file, expanding env vars
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in config
	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a config from defaults and LINE_NOTIFY_TOKEN, for use
// without a config file. History goes to the user's cache directory; it is
// disabled when no cache directory can be determined.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	cfg.Line.Token = os.Getenv(TokenEnv)
	if dir, err := os.UserCacheDir(); err == nil {
		cfg.History.Path = filepath.Join(dir, "linenotify", "history.db")
	} else {
		cfg.History.Enabled = false
		cfg.History.Path = ""
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadOrEnv loads path when it exists and falls back to FromEnv otherwise.
func LoadOrEnv(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return FromEnv()
	}
	return Load(path)
}

// DefaultConfig returns sane defaults
func DefaultConfig() *Config {
	return &Config{
		Line: LineConfig{
			Endpoint: defaultEndpoint,
			Timeout:  "10s",
		},
		History: HistoryConfig{
			Enabled:       true,
			Path:          DefaultDBPath,
			RetentionDays: 30,
		},
	}
}

// Validate checks the config for errors
func (c *Config) Validate() error {
	if c.Line.Token == "" {
		return fmt.Errorf("line token is required (set %s or line.token)", TokenEnv)
	}

	if c.Line.Endpoint != "" {
		u, err := url.Parse(c.Line.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid line endpoint: %q", c.Line.Endpoint)
		}
	}

	if c.Line.Timeout != "" {
		d, err := time.ParseDuration(c.Line.Timeout)
		if err != nil {
			return fmt.Errorf("invalid line timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("line timeout must not be negative: %s", c.Line.Timeout)
		}
	}

	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history path is required when history is enabled")
	}
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("invalid retention_days: %d (must be 0 or more)", c.History.RetentionDays)
	}

	return nil
}

// TimeoutDuration returns the parsed request timeout; zero means no timeout
func (c LineConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
