package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type cliConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Token    string        `yaml:"token"`
	Resource string        `yaml:"resource"`
	Timeout  time.Duration `yaml:"timeout"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "availctl.yaml"
	}
	return filepath.Join(dir, "availctl", "config.yaml")
}

// loadConfig reads path (a missing file is fine) and then applies AVAILCTL_*
// overrides from getenv.
func loadConfig(path string, getenv func(string) string) (*cliConfig, error) {
	cfg := &cliConfig{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if v := getenv("AVAILCTL_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := getenv("AVAILCTL_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := getenv("AVAILCTL_RESOURCE"); v != "" {
		cfg.Resource = v
	}
	if v := getenv("AVAILCTL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("AVAILCTL_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	cfg.normalize()
	if cfg.BaseURL == "" {
		return nil, errors.New("base_url is not set")
	}
	return cfg, nil
}

func (c *cliConfig) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Resource == "" {
		c.Resource = "/api/availability"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
}
