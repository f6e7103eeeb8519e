// Package config loads the kitchen tools' settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "https://burger-backend-o3cx.onrender.com"
	DefaultTimeout = "20s"
)

// Config holds all kitchen settings.
type Config struct {
	API APIConfig     `yaml:"api"`
	Log LoggingConfig `yaml:"log"`
	UI  UIConfig      `yaml:"ui"`
}

// APIConfig points at the burger backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // Go duration, e.g. "20s"
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty: stderr for commands, a temp file for the TUI
}

type UIConfig struct {
	Theme             string  `yaml:"theme"` // auto, dark, light, notty
	CurrencySuffix    string  `yaml:"currency_suffix"`
	LowStockThreshold float64 `yaml:"low_stock_threshold"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Log: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			Theme:             "auto",
			CurrencySuffix:    " so'm",
			LowStockThreshold: 5,
		},
	}
}

// DefaultPath is ~/.config/kitchen/config.yaml, or a relative fallback when
// the user config dir cannot be resolved.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".config", "kitchen", "config.yaml")
	}
	return filepath.Join(dir, "kitchen", "config.yaml")
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config atomically (temp file + rename).
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KITCHEN_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("KITCHEN_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}
	if v := os.Getenv("KITCHEN_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("KITCHEN_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

// GetTimeout returns the API timeout, falling back to DefaultTimeout when the
// configured value does not parse.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

var ValidThemes = []string{"auto", "dark", "light", "notty"}

// Validate rejects settings the clients cannot start with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q: want http(s)://host", c.API.BaseURL)
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return fmt.Errorf("invalid api.timeout %q: %w", c.API.Timeout, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid api.timeout %q: must be positive", c.API.Timeout)
	}
	valid := false
	for _, t := range ValidThemes {
		if c.UI.Theme == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid ui.theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}
	if c.UI.LowStockThreshold < 0 {
		return fmt.Errorf("invalid ui.low_stock_threshold: %v", c.UI.LowStockThreshold)
	}
	return nil
}
