package ssb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peppermintos/ice/internal/browser"
	"github.com/peppermintos/ice/internal/desktop"
	"github.com/peppermintos/ice/internal/profile"
	"github.com/peppermintos/ice/internal/store"
	"github.com/peppermintos/ice/internal/urlcheck"
)

// Request describes a launcher to create.
type Request struct {
	Title    string
	URL      string
	Category desktop.Category
	Browser  browser.Browser
	Isolate  bool

	// IconPath is a local image. When empty and FetchFavicon is set the
	// site's icon is downloaded; otherwise the default icon is used.
	IconPath     string
	FetchFavicon bool
}

// Result reports what Create produced.
type Result struct {
	Entry      *desktop.Entry
	ProfileDir string

	// IconErr is set when the favicon could not be fetched and the
	// default icon was used instead.
	IconErr error
}

// Create writes a new launcher and initialises its profile.
func (m *Manager) Create(ctx context.Context, req Request) (*Result, error) {
	title := strings.TrimSpace(req.Title)
	slug, err := desktop.Slug(title)
	if err != nil {
		return nil, err
	}

	address, err := urlcheck.Normalize(req.URL)
	if err != nil {
		return nil, err
	}

	if !req.Browser.Valid() {
		return nil, fmt.Errorf("unknown browser %q", req.Browser)
	}
	if req.IconPath != "" && !IsIconFile(req.IconPath) {
		return nil, fmt.Errorf("%w: %s", ErrIconType, filepath.Base(req.IconPath))
	}
	isolate := req.Isolate || req.Browser.AlwaysIsolated()

	category := req.Category
	if category == "" {
		category = m.cfg.DefaultCategory()
	}

	launcher := filepath.Join(m.cfg.Paths.AppsDir, desktop.FileName(slug))
	if _, err := os.Lstat(launcher); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, launcher)
	}

	if err := m.cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	res := &Result{ProfileDir: m.profileDirFor(req.Browser, slug, isolate)}

	source := req.IconPath
	if source == "" && req.FetchFavicon && m.icons != nil {
		tmp, err := os.MkdirTemp("", "ice-favicon-")
		if err != nil {
			return nil, fmt.Errorf("creating temp dir: %w", err)
		}
		defer os.RemoveAll(tmp)

		fetched, err := m.icons.Fetch(ctx, address, tmp)
		if err != nil {
			m.log.Warn("favicon download failed, using default icon", "url", address, "error", err)
			res.IconErr = err
		} else {
			source = fetched
		}
	}

	iconCopy, err := m.installIcon(source, slug, req.IconPath != "")
	if err != nil {
		return nil, err
	}
	icon := iconCopy
	if icon == "" {
		icon = FallbackIcon
	} else if req.Browser == browser.Epiphany {
		icon = profile.EpiphanyIcon(res.ProfileDir, iconCopy)
	}

	execLine, err := browser.ExecLine(browser.LaunchSpec{
		Browser:    req.Browser,
		Slug:       slug,
		Address:    address,
		ProfileDir: res.ProfileDir,
	})
	if err != nil {
		removeIfSet(iconCopy)
		return nil, err
	}

	entry := desktop.New(title, slug, execLine, icon, category, markerFor(req.Browser, isolate))
	if err := desktop.WriteFile(launcher, entry); err != nil {
		removeIfSet(iconCopy)
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, launcher)
		}
		return nil, err
	}

	if err := m.initProfile(req.Browser, slug, res.ProfileDir, iconCopy, launcher); err != nil {
		os.Remove(launcher)
		removeIfSet(iconCopy)
		if res.ProfileDir != "" {
			os.RemoveAll(res.ProfileDir)
		}
		return nil, err
	}
	res.Entry = entry

	m.log.Info("created ssb", "slug", slug, "browser", req.Browser, "url", address)
	m.record(func(r Recorder) error {
		return r.RecordCreate(&store.Record{
			Slug:     slug,
			Name:     title,
			URL:      address,
			Browser:  string(req.Browser),
			Category: string(category),
			Isolated: isolate,
			Icon:     icon,
			Launcher: launcher,
			Profile:  entry.Profile,
		})
	})
	m.refresh()
	return res, nil
}

// installIcon copies source to the icon dir as <slug><ext>. An empty or
// missing default icon yields "" so the theme fallback is used; a missing
// user-chosen icon is an error.
func (m *Manager) installIcon(source, slug string, userChosen bool) (string, error) {
	if source == "" {
		source = m.cfg.Paths.DefaultIcon
	}
	data, err := os.ReadFile(source)
	if err != nil {
		if userChosen {
			return "", fmt.Errorf("reading icon: %w", err)
		}
		m.log.Debug("default icon unavailable", "path", source, "error", err)
		return "", nil
	}

	ext := strings.ToLower(filepath.Ext(source))
	if ext == "" {
		ext = ".png"
	}
	dest := filepath.Join(m.cfg.IconDir(), slug+ext)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("copying icon: %w", err)
	}
	return dest, nil
}

func (m *Manager) initProfile(b browser.Browser, slug, dir, icon, launcher string) error {
	switch b {
	case browser.Firefox:
		return profile.InitFirefox(dir, m.cfg.Paths.FirefoxResources, m.log)
	case browser.Epiphany:
		return profile.InitEpiphany(dir, slug, icon, launcher)
	}
	return nil
}

func removeIfSet(path string) {
	if path != "" {
		os.Remove(path)
	}
}
