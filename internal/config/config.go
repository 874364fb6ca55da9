// Package config handles YAML configuration for siesta.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultRegions is the region set processed when none is configured.
var DefaultRegions = []string{"us-east-1", "us-west-2", "eu-west-1", "ap-southeast-1"}

// RegionsEnvVar overrides the region list where there is no config
// file, comma-separated. Used by the Lambda entry points.
const RegionsEnvVar = "SIESTA_REGIONS"

// Config is the root configuration structure.
type Config struct {
	Regions []string     `yaml:"regions"`
	Stop    RuleConfig   `yaml:"stop"`
	Start   RuleConfig   `yaml:"start"`
	Daemon  DaemonConfig `yaml:"daemon"`
	Log     LogConfig    `yaml:"log"`
}

// RuleConfig holds per-variant settings.
type RuleConfig struct {
	Tag string `yaml:"tag"`
}

// DaemonConfig holds daemon mode settings.
type DaemonConfig struct {
	IntervalStr string        `yaml:"interval"`
	Interval    time.Duration `yaml:"-"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := parseInterval(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Daemon.Interval, _ = time.ParseDuration(cfg.Daemon.IntervalStr)
	return cfg
}

func applyDefaults(cfg *Config) {
	if len(cfg.Regions) == 0 {
		cfg.Regions = append([]string(nil), DefaultRegions...)
	}
	if cfg.Stop.Tag == "" {
		cfg.Stop.Tag = "Autostop"
	}
	if cfg.Start.Tag == "" {
		cfg.Start.Tag = "Autostart"
	}
	if cfg.Daemon.IntervalStr == "" {
		cfg.Daemon.IntervalStr = "5m"
	}
	if cfg.Daemon.MetricsAddr == "" {
		cfg.Daemon.MetricsAddr = ":9090"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func parseInterval(cfg *Config) error {
	interval, err := time.ParseDuration(cfg.Daemon.IntervalStr)
	if err != nil {
		return fmt.Errorf("parse daemon interval: %w", err)
	}
	cfg.Daemon.Interval = interval
	return nil
}

// Validate ensures config has usable values.
func (c *Config) Validate() error {
	if len(c.Regions) == 0 {
		return fmt.Errorf("at least one region is required")
	}
	for _, region := range c.Regions {
		if strings.TrimSpace(region) == "" {
			return fmt.Errorf("regions must not be empty strings")
		}
	}
	if c.Stop.Tag == "" || c.Start.Tag == "" {
		return fmt.Errorf("stop and start tags are required")
	}
	if c.Daemon.Interval <= 0 {
		return fmt.Errorf("daemon interval must be positive")
	}
	return nil
}

// RegionsFromEnv reads the region list from SIESTA_REGIONS, falling
// back to DefaultRegions when unset or empty.
func RegionsFromEnv() []string {
	raw := os.Getenv(RegionsEnvVar)
	if raw == "" {
		return append([]string(nil), DefaultRegions...)
	}

	var regions []string
	for _, region := range strings.Split(raw, ",") {
		if region = strings.TrimSpace(region); region != "" {
			regions = append(regions, region)
		}
	}
	if len(regions) == 0 {
		return append([]string(nil), DefaultRegions...)
	}
	return regions
}
