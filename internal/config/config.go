package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/peppermintos/ice/internal/browser"
	"github.com/peppermintos/ice/internal/desktop"
	"github.com/peppermintos/ice/internal/logging"
)

// Config represents the full application configuration written to config.yml.
type Config struct {
	Paths    PathsConfig              `yaml:"paths"`
	Browsers map[string]BrowserConfig `yaml:"browsers,omitempty"`
	Defaults DefaultsConfig           `yaml:"defaults"`
	Favicon  FaviconConfig            `yaml:"favicon"`
	LogLevel string                   `yaml:"log_level"`
}

type PathsConfig struct {
	IceDir           string `yaml:"ice_dir"`
	AppsDir          string `yaml:"apps_dir"`
	FirefoxResources string `yaml:"firefox_resources"`
	DefaultIcon      string `yaml:"default_icon"`
}

// BrowserConfig overrides where a browser is installed, or hides it.
type BrowserConfig struct {
	Binary   string `yaml:"binary,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

type DefaultsConfig struct {
	Browser  string `yaml:"browser,omitempty"`
	Category string `yaml:"category"`
	Isolate  bool   `yaml:"isolate"`
}

type FaviconConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	GoogleProxy    bool   `yaml:"google_proxy"`
	UserAgent      string `yaml:"user_agent"`
}

// Default returns a complete configuration rooted at the user's home directory.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "/tmp"
	}
	return &Config{
		Paths: PathsConfig{
			IceDir:           filepath.Join(home, ".local", "share", "ice"),
			AppsDir:          filepath.Join(home, ".local", "share", "applications"),
			FirefoxResources: DefaultFirefoxResources,
			DefaultIcon:      DefaultIconPath,
		},
		Defaults: DefaultsConfig{
			Category: string(desktop.DefaultCategory),
		},
		Favicon: FaviconConfig{
			TimeoutSeconds: DefaultFaviconTimeout,
			GoogleProxy:    true,
			UserAgent:      DefaultUserAgent,
		},
		LogLevel: "info",
	}
}

// Load reads a config file on top of Default(). A missing file is not an
// error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required fields are present and values are in range.
func (c *Config) Validate() error {
	dirs := []struct{ key, val string }{
		{"paths.ice_dir", c.Paths.IceDir},
		{"paths.apps_dir", c.Paths.AppsDir},
		{"paths.firefox_resources", c.Paths.FirefoxResources},
	}
	for _, d := range dirs {
		if d.val == "" {
			return fmt.Errorf("%s is required", d.key)
		}
		if !filepath.IsAbs(d.val) {
			return fmt.Errorf("%s must be an absolute path", d.key)
		}
	}

	if c.Defaults.Browser != "" {
		if _, err := browser.Parse(c.Defaults.Browser); err != nil {
			return fmt.Errorf("defaults.browser: %w", err)
		}
	}
	if _, err := desktop.ParseCategory(c.Defaults.Category); err != nil {
		return fmt.Errorf("defaults.category: %w", err)
	}

	for name := range c.Browsers {
		if _, err := browser.Parse(name); err != nil {
			return fmt.Errorf("browsers.%s: %w", name, err)
		}
	}

	if c.Favicon.TimeoutSeconds < 1 {
		return fmt.Errorf("favicon.timeout_seconds must be >= 1")
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	return nil
}

// Save writes the config to the given path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// LoadEnv loads KEY=value pairs from an env file into the process
// environment without overriding variables that are already set.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values from ICE_* environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAppsDir)); v != "" {
		c.Paths.AppsDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		c.Paths.IceDir = v
	}
}

// BrowserBinaries returns the binary to probe for each browser. Disabled
// browsers map to an empty path.
func (c *Config) BrowserBinaries() map[browser.Browser]string {
	out := make(map[browser.Browser]string, len(browser.All))
	for _, b := range browser.All {
		out[b] = b.DefaultBinary()
	}
	for name, bc := range c.Browsers {
		b, err := browser.Parse(name)
		if err != nil {
			continue
		}
		if bc.Disabled {
			out[b] = ""
			continue
		}
		if bc.Binary != "" {
			out[b] = bc.Binary
		}
	}
	return out
}

// PreferredBrowser returns the configured default browser, or "" if unset.
func (c *Config) PreferredBrowser() browser.Browser {
	b, err := browser.Parse(c.Defaults.Browser)
	if err != nil {
		return ""
	}
	return b
}

// DefaultCategory returns the configured category, falling back to Internet.
func (c *Config) DefaultCategory() desktop.Category {
	cat, err := desktop.ParseCategory(c.Defaults.Category)
	if err != nil {
		return desktop.DefaultCategory
	}
	return cat
}

func (c *Config) ProfilesDir() string { return filepath.Join(c.Paths.IceDir, "profiles") }
func (c *Config) FirefoxDir() string  { return filepath.Join(c.Paths.IceDir, "firefox") }
func (c *Config) EpiphanyDir() string { return filepath.Join(c.Paths.IceDir, "epiphany") }
func (c *Config) IconDir() string     { return filepath.Join(c.Paths.IceDir, "icons") }
func (c *Config) DBPath() string      { return filepath.Join(c.Paths.IceDir, "ice.db") }

// EnsureDirs creates every directory Ice writes into.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{
		c.Paths.AppsDir,
		c.ProfilesDir(),
		c.FirefoxDir(),
		c.EpiphanyDir(),
		c.IconDir(),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
