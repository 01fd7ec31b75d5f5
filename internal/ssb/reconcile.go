package ssb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/peppermintos/ice/internal/desktop"
	"github.com/peppermintos/ice/internal/profile"
	"github.com/peppermintos/ice/internal/store"
)

// Report lists what a reconciliation pass changed, or would change when
// run dry.
type Report struct {
	Restored []string // firefox profiles re-initialised
	Removed  []string // orphaned profile paths

	// Held is set when profiles were left alone because no launcher
	// exists at all.
	Held bool
}

// ReconcileOptions controls a reconciliation pass.
type ReconcileOptions struct {
	DryRun bool

	// Force sweeps profile roots even when the applications directory
	// holds no Ice launchers. A wrong apps_dir otherwise looks like
	// every profile is orphaned.
	Force bool
}

// Empty reports whether the pass had nothing to do.
func (r *Report) Empty() bool {
	return len(r.Restored) == 0 && len(r.Removed) == 0
}

// Reconcile brings the profile directories in line with the launchers:
// Firefox launchers missing a profile get a fresh one, and anything in a
// profile root not owned by a live launcher is deleted. Errors do not stop
// the pass; they are returned together at the end.
func (m *Manager) Reconcile(ctx context.Context, opts ReconcileOptions) (*Report, error) {
	dryRun := opts.DryRun
	entries, err := m.List()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			entries = nil
		} else {
			return nil, err
		}
	}

	report := &Report{}
	var result *multierror.Error
	hold := len(entries) == 0 && !opts.Force

	known := map[desktop.Marker]map[string]bool{
		desktop.MarkerFirefox:  {},
		desktop.MarkerEpiphany: {},
		desktop.MarkerIsolated: {},
	}
	for _, e := range entries {
		if e.Marker == desktop.MarkerNone || !safeName(e.Profile) {
			continue
		}
		name := e.Profile
		if e.Marker == desktop.MarkerEpiphany {
			name = epiphanyDirName(e.Profile)
		}
		known[e.Marker][name] = true

		if e.Marker != desktop.MarkerFirefox {
			continue
		}
		dir := m.ProfileDir(e)
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			continue
		}
		report.Restored = append(report.Restored, dir)
		if dryRun {
			continue
		}
		if err := profile.InitFirefox(dir, m.cfg.Paths.FirefoxResources, m.log); err != nil {
			result = multierror.Append(result, fmt.Errorf("restoring profile %s: %w", e.Profile, err))
			continue
		}
		m.log.Info("restored missing firefox profile", "slug", e.Slug())
		m.record(func(r Recorder) error {
			return r.AppendEvent(e.Slug(), store.EventProfileRestored, dir)
		})
	}

	roots := []struct {
		dir    string
		marker desktop.Marker
	}{
		{m.cfg.ProfilesDir(), desktop.MarkerIsolated},
		{m.cfg.FirefoxDir(), desktop.MarkerFirefox},
		{m.cfg.EpiphanyDir(), desktop.MarkerEpiphany},
	}
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		items, err := os.ReadDir(root.dir)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				result = multierror.Append(result, fmt.Errorf("reading %s: %w", root.dir, err))
			}
			continue
		}
		if hold && len(items) > 0 {
			if !report.Held {
				m.log.Warn("no launchers found, leaving profiles alone", "apps", m.cfg.Paths.AppsDir)
			}
			report.Held = true
			continue
		}
		for _, item := range items {
			path := filepath.Join(root.dir, item.Name())
			fi, err := os.Stat(path)
			if err == nil && fi.IsDir() && known[root.marker][item.Name()] {
				continue
			}
			if dryRun {
				report.Removed = append(report.Removed, path)
				continue
			}
			if err := removeAll(path); err != nil {
				result = multierror.Append(result, fmt.Errorf("removing orphan %s: %w", path, err))
				continue
			}
			report.Removed = append(report.Removed, path)
			m.log.Info("removed orphaned profile", "path", path)
			m.record(func(r Recorder) error {
				return r.AppendEvent(item.Name(), store.EventOrphanRemoved, path)
			})
		}
	}

	return report, result.ErrorOrNil()
}
