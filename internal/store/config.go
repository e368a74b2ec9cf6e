package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SiteHost  string `yaml:"site_host"`
	OutputDir string `yaml:"output_dir"`
	Server    struct {
		Addr    string        `yaml:"addr"`
		PageTTL time.Duration `yaml:"page_ttl"`
	} `yaml:"server"`
	Fetch struct {
		Timeout   time.Duration `yaml:"timeout"`
		UserAgent string        `yaml:"user_agent"`
		Delay     time.Duration `yaml:"delay"`
		CookieEnv string        `yaml:"cookie_env"`
	} `yaml:"fetch"`
	Preferences struct {
		Path string `yaml:"path"`
	} `yaml:"preferences"`
	ExportLog struct {
		RetentionDays int `yaml:"retention_days"`
	} `yaml:"export_log"`
	UI struct {
		DialogCloseDelay time.Duration `yaml:"dialog_close_delay"`
		ProgressDelay    time.Duration `yaml:"progress_delay"`
	} `yaml:"ui"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.SiteHost == "" {
		c.SiteHost = "www.coingecko.com"
	}
	if c.OutputDir == "" {
		c.OutputDir = "exports"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.PageTTL == 0 {
		c.Server.PageTTL = 30 * time.Minute
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "Mozilla/5.0 (compatible; coingecko-exporter/1.0)"
	}
	if c.Fetch.CookieEnv == "" {
		c.Fetch.CookieEnv = "COINGECKO_COOKIE"
	}
	if c.Preferences.Path == "" {
		c.Preferences.Path = "prefs.yaml"
	}
	if c.ExportLog.RetentionDays == 0 {
		c.ExportLog.RetentionDays = 30
	}
	if c.UI.DialogCloseDelay == 0 {
		c.UI.DialogCloseDelay = 400 * time.Millisecond
	}
	if c.UI.ProgressDelay == 0 {
		c.UI.ProgressDelay = 100 * time.Millisecond
	}
}

// Cookie returns the session cookie named by fetch.cookie_env, if set.
func (c *Config) Cookie() string {
	return os.Getenv(c.Fetch.CookieEnv)
}

func (c *Config) Validate() error {
	if strings.Contains(c.SiteHost, "/") || strings.TrimSpace(c.SiteHost) == "" {
		return fmt.Errorf("invalid site_host '%s': must be a bare host name", c.SiteHost)
	}
	if c.Server.PageTTL < 0 {
		return fmt.Errorf("server.page_ttl must not be negative, got %s", c.Server.PageTTL)
	}
	if c.Fetch.Timeout < 0 || c.Fetch.Delay < 0 {
		return errors.New("fetch.timeout and fetch.delay must not be negative")
	}
	if c.UI.DialogCloseDelay < 0 || c.UI.ProgressDelay < 0 {
		return errors.New("ui delays must not be negative")
	}
	if c.ExportLog.RetentionDays < 0 {
		return fmt.Errorf("export_log.retention_days must not be negative, got %d", c.ExportLog.RetentionDays)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
