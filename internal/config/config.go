// Package config provides YAML-based configuration loading for Planverk.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Planverk configuration, loaded from config.yaml.
// Scheduling parameters (work hours, setup time, thresholds) live in the
// settings row of the database, not here; this file covers process
// wiring only.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Slack    SlackConfig    `yaml:"slack"`
	Resync   ResyncConfig   `yaml:"resync"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig selects the storage backend. Driver is "sqlite"
// (default, Path) or "mysql" (Host/Port/Database/User/Password).
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// AuthConfig holds bearer-token verification settings. Tokens are
// issued by an external identity provider and verified locally against
// the shared secret. Disabled mode is for local development only.
type AuthConfig struct {
	Disabled bool   `yaml:"disabled"`
	Secret   string `yaml:"secret"`
	Issuer   string `yaml:"issuer"`
}

// SlackConfig enables the optional generation-complete notification.
type SlackConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// ResyncConfig controls the periodic order-status recomputation job.
type ResyncConfig struct {
	// Cron is a standard 5-field cron expression. Empty disables the job.
	Cron string `yaml:"cron"`
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

// Default returns the configuration used when no config file exists:
// a local SQLite database and auth disabled.
func Default() *Config {
	cfg := &Config{Auth: AuthConfig{Disabled: true}}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "planverk.db"
	}
	if c.Database.Driver == "mysql" {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
		if c.Database.Database == "" {
			c.Database.Database = "planverk"
		}
	}
	if c.Auth.Secret == "" {
		c.Auth.Secret = os.Getenv("PLANVERK_AUTH_SECRET")
	}
	if c.Slack.Token == "" {
		c.Slack.Token = os.Getenv("PLANVERK_SLACK_TOKEN")
	}
	if c.Resync.Cron == "" {
		c.Resync.Cron = "*/15 * * * *"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q not supported (sqlite, mysql)", c.Database.Driver))
	}
	if !c.Auth.Disabled && c.Auth.Secret == "" {
		errs = append(errs, "auth.secret is required unless auth.disabled is set")
	}
	if c.Slack.Token != "" && c.Slack.Channel == "" {
		errs = append(errs, "slack.channel is required when slack.token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
