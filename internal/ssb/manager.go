// Package ssb creates, removes and reconciles site-specific browser
// launchers. The applications directory is the source of truth: every
// operation starts from the launchers found there.
package ssb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/peppermintos/ice/internal/browser"
	"github.com/peppermintos/ice/internal/config"
	"github.com/peppermintos/ice/internal/desktop"
	"github.com/peppermintos/ice/internal/store"
)

var (
	ErrDuplicate = errors.New("an SSB with this name already exists")
	ErrNotFound  = errors.New("no such SSB")
	ErrIconType  = errors.New("unsupported icon type")
)

// FallbackIcon is the theme icon used when the packaged default is missing.
const FallbackIcon = "web-browser"

// Recorder journals launcher history. *store.Store satisfies it.
type Recorder interface {
	RecordCreate(r *store.Record) error
	RecordRemove(slug, name, message string) error
	AppendEvent(slug, kind, message string) error
}

// IconFetcher downloads a site's icon into dir. *favicon.Finder satisfies it.
type IconFetcher interface {
	Fetch(ctx context.Context, pageURL, dir string) (string, error)
}

// refreshDesktopDB rebuilds the menu cache for dir. Overridden in tests.
var refreshDesktopDB = func(dir string) error {
	return exec.Command("update-desktop-database", dir).Run()
}

// removeAll deletes profile trees. Overridden in tests.
var removeAll = os.RemoveAll

// iconExts are the image types accepted as a user-chosen icon.
var iconExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".xpm": true, ".svg": true,
}

// IsIconFile reports whether path has an accepted image extension.
func IsIconFile(path string) bool {
	return iconExts[strings.ToLower(filepath.Ext(path))]
}

// Manager performs SSB operations against one configuration.
type Manager struct {
	cfg   *config.Config
	rec   Recorder
	icons IconFetcher
	log   *slog.Logger
}

// NewManager returns a Manager. rec and icons may be nil.
func NewManager(cfg *config.Config, rec Recorder, icons IconFetcher, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{cfg: cfg, rec: rec, icons: icons, log: log}
}

// List returns every Ice launcher sorted by name.
func (m *Manager) List() ([]*desktop.Entry, error) {
	return desktop.ScanDir(m.cfg.Paths.AppsDir)
}

// Find resolves a launcher by slug or display name.
func (m *Manager) Find(slugOrName string) (*desktop.Entry, error) {
	entries, err := m.List()
	if err != nil {
		return nil, err
	}
	want := strings.TrimSpace(slugOrName)
	for _, e := range entries {
		if e.Slug() == want {
			return e, nil
		}
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name, want) {
			return e, nil
		}
	}
	if slug, err := desktop.Slug(want); err == nil {
		for _, e := range entries {
			if e.Slug() == slug {
				return e, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, slugOrName)
}

// Launch starts the launcher named slugOrName.
func (m *Manager) Launch(slugOrName string) error {
	e, err := m.Find(slugOrName)
	if err != nil {
		return err
	}
	m.log.Debug("launching", "slug", e.Slug(), "exec", e.Exec)
	return browser.Launch(e.Exec)
}

// ProfileDir returns the profile directory owned by e, or "" when it uses
// the shared browser profile or names an unsafe profile.
func (m *Manager) ProfileDir(e *desktop.Entry) string {
	if !safeName(e.Profile) {
		return ""
	}
	switch e.Marker {
	case desktop.MarkerFirefox:
		return filepath.Join(m.cfg.FirefoxDir(), e.Profile)
	case desktop.MarkerEpiphany:
		return filepath.Join(m.cfg.EpiphanyDir(), epiphanyDirName(e.Profile))
	case desktop.MarkerIsolated:
		return filepath.Join(m.cfg.ProfilesDir(), e.Profile)
	}
	return ""
}

func (m *Manager) profileDirFor(b browser.Browser, slug string, isolate bool) string {
	switch {
	case b == browser.Firefox:
		return filepath.Join(m.cfg.FirefoxDir(), slug)
	case b == browser.Epiphany:
		return filepath.Join(m.cfg.EpiphanyDir(), epiphanyDirName(slug))
	case isolate:
		return filepath.Join(m.cfg.ProfilesDir(), slug)
	}
	return ""
}

func markerFor(b browser.Browser, isolate bool) desktop.Marker {
	switch {
	case b == browser.Firefox:
		return desktop.MarkerFirefox
	case b == browser.Epiphany:
		return desktop.MarkerEpiphany
	case isolate:
		return desktop.MarkerIsolated
	}
	return desktop.MarkerNone
}

func epiphanyDirName(profile string) string {
	return "epiphany-" + profile
}

// safeName reports whether a marker value can be joined onto a profile
// root without escaping it.
func safeName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

func (m *Manager) record(fn func(Recorder) error) {
	if m.rec == nil {
		return
	}
	if err := fn(m.rec); err != nil {
		m.log.Warn("history not updated", "error", err)
	}
}

func (m *Manager) refresh() {
	if err := refreshDesktopDB(m.cfg.Paths.AppsDir); err != nil {
		m.log.Debug("update-desktop-database failed", "error", err)
	}
}
