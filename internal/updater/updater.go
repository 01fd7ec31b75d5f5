// Package updater checks GitHub releases for newer versions of Ice.
// Installation is left to the distribution's package manager.
package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	version "github.com/hashicorp/go-version"
)

// ReleasesURL is the GitHub API endpoint for the latest release.
const ReleasesURL = "https://api.github.com/repos/peppermintos/ice/releases/latest"

// ReleaseInfo describes a GitHub release.
type ReleaseInfo struct {
	Version     string `json:"version"`
	PublishedAt string `json:"published_at"`
	URL         string `json:"url"`
}

// UpdateStatus is the result of an update check.
type UpdateStatus struct {
	Current   string       `json:"current"`
	Latest    string       `json:"latest"`
	Available bool         `json:"available"`
	Release   *ReleaseInfo `json:"release,omitempty"`
	CheckedAt string       `json:"checked_at"`
}

// Updater checks for releases, caching the last answer on disk so repeated
// invocations do not hit the API.
type Updater struct {
	Client    *http.Client
	URL       string
	CachePath string
	TTL       time.Duration
}

// New creates an Updater with a 1-hour cache TTL. cachePath may be empty to
// disable caching.
func New(cachePath string) *Updater {
	return &Updater{
		Client:    &http.Client{Timeout: 10 * time.Second},
		URL:       ReleasesURL,
		CachePath: cachePath,
		TTL:       1 * time.Hour,
	}
}

// githubRelease is the subset of the GitHub API response we need.
type githubRelease struct {
	TagName     string `json:"tag_name"`
	PublishedAt string `json:"published_at"`
	HTMLURL     string `json:"html_url"`
	Draft       bool   `json:"draft"`
	Prerelease  bool   `json:"prerelease"`
}

// CheckLatestRelease compares the latest release with currentVersion.
func (u *Updater) CheckLatestRelease(ctx context.Context, currentVersion string) (*UpdateStatus, error) {
	if cached := u.readCache(); cached != nil {
		result := *cached
		result.Current = currentVersion
		result.Available = isNewerVersion(result.Latest, currentVersion)
		if !result.Available {
			result.Release = nil
		}
		return &result, nil
	}

	rel, err := u.fetchLatestRelease(ctx)
	if err != nil {
		return nil, err
	}

	latestVersion := strings.TrimPrefix(rel.TagName, "v")
	status := &UpdateStatus{
		Current:   currentVersion,
		Latest:    latestVersion,
		Available: isNewerVersion(latestVersion, currentVersion),
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
		Release: &ReleaseInfo{
			Version:     latestVersion,
			PublishedAt: rel.PublishedAt,
			URL:         rel.HTMLURL,
		},
	}
	u.writeCache(status)

	if !status.Available {
		status.Release = nil
	}
	return status, nil
}

// InvalidateCache removes the cached update check.
func (u *Updater) InvalidateCache() error {
	if u.CachePath == "" {
		return nil
	}
	if err := os.Remove(u.CachePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (u *Updater) readCache() *UpdateStatus {
	if u.CachePath == "" {
		return nil
	}
	data, err := os.ReadFile(u.CachePath)
	if err != nil {
		return nil
	}
	var st UpdateStatus
	if err := json.Unmarshal(data, &st); err != nil {
		return nil
	}
	checkedAt, err := time.Parse(time.RFC3339, st.CheckedAt)
	if err != nil || time.Since(checkedAt) >= u.TTL {
		return nil
	}
	return &st
}

func (u *Updater) writeCache(st *UpdateStatus) {
	if u.CachePath == "" {
		return
	}
	data, err := json.Marshal(st)
	if err != nil {
		return
	}
	os.MkdirAll(filepath.Dir(u.CachePath), 0755)
	os.WriteFile(u.CachePath, data, 0644)
}

// fetchLatestRelease fetches the latest release from GitHub API.
func (u *Updater) fetchLatestRelease(ctx context.Context) (*githubRelease, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "ice-updater")

	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GitHub API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned HTTP %d", resp.StatusCode)
	}

	var rel githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decoding GitHub response: %w", err)
	}
	if rel.TagName == "" {
		return nil, fmt.Errorf("GitHub response has no tag")
	}
	return &rel, nil
}

// isNewerVersion returns true if latest is strictly greater than current.
// Unparseable versions (such as "dev" builds) never compare as newer.
func isNewerVersion(latest, current string) bool {
	l, err := version.NewVersion(latest)
	if err != nil {
		return false
	}
	c, err := version.NewVersion(current)
	if err != nil {
		return false
	}
	return l.GreaterThan(c)
}
