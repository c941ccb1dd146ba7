// Package config provides YAML-based configuration loading for Switchboard.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config values can be written as "5s", "2m".
type Duration time.Duration

// UnmarshalYAML parses a duration string like "5s" or "250ms".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the top-level Switchboard configuration, loaded from config.yaml.
type Config struct {
	RegistryPath string          `yaml:"registry_path"`
	InboxRoot    string          `yaml:"inbox_root"`
	Workers      int             `yaml:"workers"`
	Screen       ScreenConfig    `yaml:"screen"`
	Dedup        DedupConfig     `yaml:"dedup"`
	Channel      ChannelConfig   `yaml:"channel"`
	DB           DBConfig        `yaml:"db"`
	Dashboard    DashboardConfig `yaml:"dashboard"`
	Digest       DigestConfig    `yaml:"digest"`
}

// ScreenConfig bounds coordinate validation. Zero values disable the
// upper-bound check (negative coordinates are always invalid).
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DedupConfig controls the duplicate-suppression window.
type DedupConfig struct {
	Window Duration `yaml:"window"`
}

// ChannelConfig holds timeouts and retry policy for delivery channels.
type ChannelConfig struct {
	Timeout          Duration `yaml:"timeout"`
	LockWait         Duration `yaml:"lock_wait"`
	AutomatedRetries int      `yaml:"automated_retries"`
}

// DBConfig selects the delivery-record store: a local sqlite file (default)
// or a MySQL-compatible server.
type DBConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" or "mysql"
	Path     string `yaml:"path"`   // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

// DashboardConfig holds the status dashboard settings.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// DigestConfig schedules the daemon's periodic health digest.
// Schedule is a standard 5-field cron expression; empty disables the digest.
type DigestConfig struct {
	Schedule string `yaml:"schedule"`
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

// Default returns a Config with all defaults applied and no file loaded.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.RegistryPath == "" {
		c.RegistryPath = "coordinates.json"
	}
	if c.InboxRoot == "" {
		c.InboxRoot = "inbox"
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.Dedup.Window == 0 {
		c.Dedup.Window = Duration(5 * time.Second)
	}
	if c.Channel.Timeout == 0 {
		c.Channel.Timeout = Duration(5 * time.Second)
	}
	if c.Channel.LockWait == 0 {
		c.Channel.LockWait = Duration(2 * time.Second)
	}
	if c.Channel.AutomatedRetries == 0 {
		c.Channel.AutomatedRetries = 1
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "sqlite"
	}
	if c.DB.Path == "" {
		c.DB.Path = "switchboard.db"
	}
	if c.DB.Host == "" {
		c.DB.Host = "127.0.0.1"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.Database == "" {
		c.DB.Database = "switchboard"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8150
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Workers < 0 {
		errs = append(errs, "workers must not be negative")
	}
	if c.DB.Driver != "sqlite" && c.DB.Driver != "mysql" {
		errs = append(errs, fmt.Sprintf("db.driver must be sqlite or mysql, got %q", c.DB.Driver))
	}
	if c.Channel.AutomatedRetries < 0 {
		errs = append(errs, "channel.automated_retries must not be negative")
	}
	if c.Screen.Width < 0 || c.Screen.Height < 0 {
		errs = append(errs, "screen bounds must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
