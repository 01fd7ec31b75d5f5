// Package browser describes the browsers Ice can build site-specific
// launchers for: their binaries, launch arguments and isolation rules.
package browser

import (
	"fmt"
	"strings"
)

// Browser identifies a supported browser.
type Browser string

const (
	Brave    Browser = "brave"
	Chrome   Browser = "chrome"
	Chromium Browser = "chromium"
	Firefox  Browser = "firefox"
	Vivaldi  Browser = "vivaldi"
	Epiphany Browser = "epiphany"
)

// All lists the supported browsers in display order.
var All = []Browser{Brave, Chrome, Chromium, Firefox, Vivaldi, Epiphany}

type info struct {
	display string
	command string // name written to Exec=
	binary  string // default install location
}

var registry = map[Browser]info{
	Brave:    {"Brave", "brave", "/usr/bin/brave-browser"},
	Chrome:   {"Chrome", "google-chrome", "/usr/bin/google-chrome"},
	Chromium: {"Chromium", "chromium-browser", "/usr/bin/chromium-browser"},
	Firefox:  {"Firefox", "firefox", "/usr/bin/firefox"},
	Vivaldi:  {"Vivaldi", "vivaldi", "/usr/bin/vivaldi-stable"},
	Epiphany: {"GNOME Web", "epiphany", "/usr/bin/epiphany"},
}

var aliases = map[string]Browser{
	"brave-browser":    Brave,
	"google-chrome":    Chrome,
	"chromium-browser": Chromium,
	"vivaldi-stable":   Vivaldi,
	"gnome-web":        Epiphany,
	"gnome web":        Epiphany,
	"web":              Epiphany,
}

// Parse resolves a browser name, accepting command names and display names.
func Parse(s string) (Browser, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if _, ok := registry[Browser(key)]; ok {
		return Browser(key), nil
	}
	if b, ok := aliases[key]; ok {
		return b, nil
	}
	return "", fmt.Errorf("unknown browser %q", s)
}

// Valid reports whether b is a supported browser.
func (b Browser) Valid() bool {
	_, ok := registry[b]
	return ok
}

// DisplayName returns the human-readable name, e.g. "GNOME Web".
func (b Browser) DisplayName() string {
	if i, ok := registry[b]; ok {
		return i.display
	}
	return string(b)
}

// Command returns the executable name used in generated launchers.
func (b Browser) Command() string {
	return registry[b].command
}

// DefaultBinary returns the path probed to decide whether b is installed.
func (b Browser) DefaultBinary() string {
	return registry[b].binary
}

// AlwaysIsolated reports whether every launcher for b gets its own profile.
// Firefox and GNOME Web have no shared app mode.
func (b Browser) AlwaysIsolated() bool {
	return b == Firefox || b == Epiphany
}

// ChromiumBased reports whether b accepts the --app/--user-data-dir flags.
func (b Browser) ChromiumBased() bool {
	switch b {
	case Brave, Chrome, Chromium, Vivaldi:
		return true
	}
	return false
}
