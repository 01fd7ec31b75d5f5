package favicon

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// maxIconBytes caps the size of a downloaded icon.
const maxIconBytes = 5 << 20

var knownExts = map[string]bool{
	"png": true, "ico": true, "jpg": true, "jpeg": true,
	"gif": true, "svg": true, "xpm": true, "webp": true,
}

var subtypeExts = map[string]string{
	"png":                "png",
	"x-icon":             "ico",
	"vnd.microsoft.icon": "ico",
	"ico":                "ico",
	"jpeg":               "jpg",
	"jpg":                "jpg",
	"gif":                "gif",
	"svg+xml":            "svg",
	"webp":               "webp",
	"x-xpixmap":          "xpm",
}

// Download fetches iconURL into dir as favicon.<ext> and returns the path.
// ICO files are converted to PNG when they decode cleanly.
func (f *Finder) Download(ctx context.Context, iconURL, dir string) (string, error) {
	data, ext, err := f.fetch(ctx, iconURL)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty icon at %s", iconURL)
	}

	if ext == "ico" {
		if png, err := ConvertICOtoPNG(data); err == nil {
			data, ext = png, "png"
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating icon directory: %w", err)
	}
	dest := filepath.Join(dir, "favicon."+ext)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("writing icon: %w", err)
	}
	return dest, nil
}

// Fetch discovers and downloads the icon for pageURL in one step.
func (f *Finder) Fetch(ctx context.Context, pageURL, dir string) (string, error) {
	iconURL, err := f.Discover(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return f.Download(ctx, iconURL, dir)
}

func (f *Finder) fetch(ctx context.Context, iconURL string) ([]byte, string, error) {
	if strings.HasPrefix(iconURL, "data:") {
		du, err := dataurl.DecodeString(iconURL)
		if err != nil {
			return nil, "", fmt.Errorf("decoding data URL: %w", err)
		}
		ext, ok := subtypeExts[strings.ToLower(du.MediaType.Subtype)]
		if !ok {
			ext = "png"
		}
		return du.Data, ext, nil
	}

	resp, err := f.get(ctx, iconURL)
	if err != nil {
		return nil, "", fmt.Errorf("downloading icon: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("downloading icon: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil {
		return nil, "", fmt.Errorf("reading icon: %w", err)
	}
	return data, iconExt(iconURL, resp.Header.Get("Content-Type")), nil
}

// iconExt picks a file extension from the URL path, then the content type.
func iconExt(iconURL, contentType string) string {
	if u, err := url.Parse(iconURL); err == nil {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
		if knownExts[ext] {
			if ext == "jpeg" {
				return "jpg"
			}
			return ext
		}
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if _, sub, ok := strings.Cut(mt, "/"); ok {
			if ext, ok := subtypeExts[sub]; ok {
				return ext
			}
		}
	}
	return "png"
}
