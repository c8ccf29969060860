// Package config handles the XDG configuration directory, file paths and settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	// AppName is the application directory name.
	AppName = "gtodo"

	// SettingsFile is the optional YAML settings filename.
	SettingsFile = "config.yaml"

	// TokenFile is the stored bearer token filename.
	TokenFile = "token.json"

	// DefaultAPIURL is the base URL of the to-do API when nothing overrides it.
	DefaultAPIURL = "http://127.0.0.1:5000"

	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 5 * time.Second
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the base URL of the remote to-do API.
	APIURL string

	// Timeout bounds each API call.
	Timeout time.Duration

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// settings mirrors config.yaml.
type settings struct {
	APIURL  string `yaml:"api_url"`
	Timeout string `yaml:"timeout"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/gtodo or $HOME/.config/gtodo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:     dir,
		APIURL:  DefaultAPIURL,
		Timeout: DefaultTimeout,
	}, nil
}

// Load creates a Config and applies config.yaml and environment overrides.
// A missing config.yaml is not an error.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(cfg.SettingsPath())
	switch {
	case err == nil:
		var s settings
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
		if err := cfg.apply(s.APIURL, s.Timeout); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read %s: %w", SettingsFile, err)
	}

	if err := cfg.apply(os.Getenv("GTODO_API_URL"), os.Getenv("GTODO_TIMEOUT")); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	return cfg, nil
}

// apply overrides APIURL and Timeout with non-empty values.
func (c *Config) apply(apiURL, timeout string) error {
	c.SetAPIURL(apiURL)
	if timeout = strings.TrimSpace(timeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive: %s", timeout)
		}
		c.Timeout = d
	}
	return nil
}

// SetAPIURL overrides the API URL (from the --api-url flag). A blank value
// keeps the current one.
func (c *Config) SetAPIURL(apiURL string) {
	if apiURL = strings.TrimSpace(apiURL); apiURL != "" {
		c.APIURL = strings.TrimRight(apiURL, "/")
	}
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// TokenPath returns the path to the stored token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
