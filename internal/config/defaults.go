package config

import (
	"os"
	"path/filepath"
)

const (
	// System resources shipped with the package
	DefaultFirefoxResources = "/usr/lib/peppermint/ice"
	DefaultIconPath         = "/usr/share/pixmaps/ice.png"

	// Favicon lookups
	DefaultFaviconTimeout = 3
	DefaultUserAgent      = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

	// Environment overrides
	EnvConfig   = "ICE_CONFIG"
	EnvLogLevel = "ICE_LOG_LEVEL"
	EnvAppsDir  = "ICE_APPS_DIR"
	EnvDataDir  = "ICE_DATA_DIR"

	configDirName = "ice"
	configFile    = "config.yml"
	envFile       = "ice.env"
)

// DefaultConfigPath returns $ICE_CONFIG, else ~/.config/ice/config.yml.
func DefaultConfigPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(userConfigDir(), configDirName, configFile)
}

// DefaultEnvPath returns ~/.config/ice/ice.env.
func DefaultEnvPath() string {
	return filepath.Join(userConfigDir(), configDirName, envFile)
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
