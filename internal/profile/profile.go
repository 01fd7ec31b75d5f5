// Package profile seeds the private browser profiles that isolated
// Firefox and GNOME Web launchers run with.
package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Firefox resources copied into every new profile when present.
var firefoxResources = []string{"search.json.mozlz4", "places.sqlite"}

const userChromeCSS = "#nav-bar, #identity-box, #tabbrowser-tabs, #TabsToolbar { visibility: collapse !important; }\n"

var userPrefs = []struct {
	key   string
	value string
}{
	{"browser.cache.disk.enable", "false"},
	{"browser.cache.disk.capacity", "0"},
	{"browser.cache.disk.filesystem_reported", "1"},
	{"browser.cache.disk.smart_size.enabled", "false"},
	{"browser.cache.disk.smart_size.first_run", "false"},
	{"browser.cache.disk.smart_size.use_old_max", "false"},
	{"browser.ctrlTab.previews", "true"},
	{"browser.tabs.drawInTitlebar", "false"},
	{"browser.tabs.warnOnClose", "false"},
	{"browser.toolbars.bookmarks.visibility", "false"},
	{"plugin.state.flash", "2"},
	{"toolkit.legacyUserProfileCustomizations.stylesheets", "true"},
}

// InitFirefox creates a Firefox profile in dir with the browser chrome
// hidden. Missing optional resources are logged and skipped.
func InitFirefox(dir, resourcesDir string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	chromeDir := filepath.Join(dir, "chrome")
	if err := os.MkdirAll(chromeDir, 0755); err != nil {
		return fmt.Errorf("creating firefox profile: %w", err)
	}

	for _, name := range firefoxResources {
		err := copyFile(filepath.Join(resourcesDir, name), filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("firefox profile resource not found", "file", name, "dir", resourcesDir)
			continue
		}
		if err != nil {
			return fmt.Errorf("copying %s: %w", name, err)
		}
	}

	if err := os.WriteFile(filepath.Join(chromeDir, "userChrome.css"), []byte(userChromeCSS), 0644); err != nil {
		return fmt.Errorf("writing userChrome.css: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "user.js"), []byte(UserJS()), 0644); err != nil {
		return fmt.Errorf("writing user.js: %w", err)
	}
	return nil
}

// UserJS returns the preferences written to a new profile's user.js.
func UserJS() string {
	var b strings.Builder
	for _, p := range userPrefs {
		fmt.Fprintf(&b, "user_pref(%q, %s);\n", p.key, p.value)
	}
	return b.String()
}

// EpiphanyIcon returns where InitEpiphany places the icon for a profile.
func EpiphanyIcon(dir, iconPath string) string {
	return filepath.Join(dir, "app-icon"+filepath.Ext(iconPath))
}

// EpiphanyLauncher returns where InitEpiphany moves the launcher.
func EpiphanyLauncher(dir, slug string) string {
	return filepath.Join(dir, "epiphany-"+slug+".desktop")
}

// InitEpiphany creates a GNOME Web application profile in dir. The icon is
// copied in, and the launcher is moved into the profile and symlinked back
// so GNOME Web recognises it as a web app.
func InitEpiphany(dir, slug, iconPath, launcherPath string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating epiphany profile: %w", err)
	}
	if iconPath != "" {
		if err := copyFile(iconPath, EpiphanyIcon(dir, iconPath)); err != nil {
			return fmt.Errorf("copying icon: %w", err)
		}
	}

	target := EpiphanyLauncher(dir, slug)
	if err := os.Rename(launcherPath, target); err != nil {
		return fmt.Errorf("moving launcher into profile: %w", err)
	}
	if err := os.Symlink(target, launcherPath); err != nil {
		os.Rename(target, launcherPath)
		return fmt.Errorf("linking launcher: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
