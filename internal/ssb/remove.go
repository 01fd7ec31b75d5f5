package ssb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/peppermintos/ice/internal/desktop"
)

// Remove deletes a launcher together with its profile and icon copy.
// Every step is attempted; failures are returned together.
func (m *Manager) Remove(ctx context.Context, slugOrName string) (*desktop.Entry, error) {
	e, err := m.Find(slugOrName)
	if err != nil {
		return nil, err
	}
	slug := e.Slug()

	var result *multierror.Error

	if e.Marker != desktop.MarkerNone {
		if dir := m.ProfileDir(e); dir != "" {
			if err := removeAll(dir); err != nil {
				result = multierror.Append(result, fmt.Errorf("removing profile: %w", err))
			}
		} else {
			m.log.Warn("refusing to remove unsafe profile path", "slug", slug, "profile", e.Profile)
		}
	}

	if err := os.Remove(e.Path); err != nil && !os.IsNotExist(err) {
		result = multierror.Append(result, fmt.Errorf("removing launcher: %w", err))
	}

	if copies, err := filepath.Glob(filepath.Join(m.cfg.IconDir(), slug+".*")); err == nil {
		for _, icon := range copies {
			if err := os.Remove(icon); err != nil && !os.IsNotExist(err) {
				result = multierror.Append(result, fmt.Errorf("removing icon: %w", err))
			}
		}
	}

	m.log.Info("removed ssb", "slug", slug, "name", e.Name)
	m.record(func(r Recorder) error {
		return r.RecordRemove(slug, e.Name, fmt.Sprintf("%s profile", e.Marker))
	})
	m.refresh()
	return e, result.ErrorOrNil()
}
