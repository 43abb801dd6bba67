// Package config handles reading and writing the optional config.yaml in the
// asleep state directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for config.yaml. Every field has a
// working default, so the file is optional.
type Config struct {
	APIBase            string `yaml:"api_base"`
	Timezone           string `yaml:"timezone"`
	HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds"`
	HistoryLimit       int    `yaml:"history_limit"`
}

const configFile = "config.yaml"

// StateDir returns the asleep state directory (~/.config/asleep on Linux).
// The ASLEEP_STATE_DIR environment variable overrides it, which is how tests
// and non-standard deployments redirect state.
func StateDir() (string, error) {
	if dir := os.Getenv("ASLEEP_STATE_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(base, "asleep"), nil
}

// ReadConfig reads config.yaml from the state directory dir. A missing file
// yields the defaults; a malformed file is an error so a typo does not
// silently point the client at the wrong service.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()

	return cfg, nil
}

// WriteConfig writes cfg to config.yaml in the state directory dir, creating
// the directory if needed.
func WriteConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, configFile), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with the production defaults.
func DefaultConfig() *Config {
	return &Config{
		APIBase:            "https://api.asleep.ai",
		Timezone:           "Asia/Seoul",
		HTTPTimeoutSeconds: 30,
		HistoryLimit:       30,
	}
}

// applyDefaults fills zero-valued fields after a partial config file.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.APIBase == "" {
		c.APIBase = d.APIBase
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.HTTPTimeoutSeconds <= 0 {
		c.HTTPTimeoutSeconds = d.HTTPTimeoutSeconds
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
}
