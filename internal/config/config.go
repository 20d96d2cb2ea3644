// Package config provides YAML-based configuration loading for Stitchline.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Stitchline configuration, loaded from
// stitchline.yaml. One config file per line-side terminal.
type Config struct {
	LineID    string          `yaml:"line_id"`
	DB        DBConfig        `yaml:"db"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Notify    NotifyConfig    `yaml:"notify"`
	Verify    VerifyConfig    `yaml:"verify"`
}

// DBConfig holds connection settings for the shared MySQL store.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// DashboardConfig holds settings for the read-only floor dashboard.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// MetricsConfig controls the open-event counter refresh cadence.
// Schedule is a standard 5-field cron expression; PollSeconds is the
// fallback interval when no schedule is set.
type MetricsConfig struct {
	Schedule    string `yaml:"schedule"`
	PollSeconds int    `yaml:"poll_seconds"`
}

// NotifyConfig configures floor announcement adapters. Both platforms can
// be enabled at once; announcements are best-effort.
type NotifyConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack bot credentials and the target channel.
type SlackConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// DiscordConfig holds Discord bot credentials and the target channel.
type DiscordConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// VerifyConfig selects how stored personnel credentials are compared.
// Mode is "hashed" (bcrypt, the default) or "plain" for registries that
// still store cleartext credentials.
type VerifyConfig struct {
	Mode string `yaml:"mode"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.DB.Host == "" {
		c.DB.Host = "127.0.0.1"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.User == "" {
		c.DB.User = "stitchline"
	}
	if c.DB.Database == "" {
		c.DB.Database = "stitchline"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
	if c.Metrics.PollSeconds == 0 {
		c.Metrics.PollSeconds = 30
	}
	if c.Verify.Mode == "" {
		c.Verify.Mode = "hashed"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.LineID == "" {
		errs = append(errs, "line_id is required")
	}
	if c.Verify.Mode != "hashed" && c.Verify.Mode != "plain" {
		errs = append(errs, fmt.Sprintf("verify.mode %q must be \"hashed\" or \"plain\"", c.Verify.Mode))
	}
	if c.Metrics.PollSeconds < 0 {
		errs = append(errs, "metrics.poll_seconds must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
