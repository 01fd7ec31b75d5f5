// Package desktop reads and writes the freedesktop launcher files Ice
// manages. Only the keys Ice writes, plus its marker extensions, are
// interpreted.
package desktop

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	ErrEmptyName    = errors.New("empty application name")
	ErrInvalidName  = errors.New("application name must contain at least one letter")
	ErrInvalidValue = errors.New("desktop entry values cannot contain line breaks")
	ErrNotIce       = errors.New("not an Ice launcher")
)

// Marker identifies which kind of dedicated profile a launcher owns.
// A launcher carries at most one marker key.
type Marker int

const (
	MarkerNone     Marker = iota // shared browser profile
	MarkerFirefox                // IceFirefox=<slug>
	MarkerEpiphany               // IceEpiphany=<slug>
	MarkerIsolated               // X-ICE-SSB-Profile=<slug>
)

// Key returns the desktop-entry key written for m.
func (m Marker) Key() string {
	switch m {
	case MarkerFirefox:
		return "IceFirefox"
	case MarkerEpiphany:
		return "IceEpiphany"
	case MarkerIsolated:
		return "X-ICE-SSB-Profile"
	}
	return ""
}

func (m Marker) String() string {
	switch m {
	case MarkerFirefox:
		return "firefox"
	case MarkerEpiphany:
		return "epiphany"
	case MarkerIsolated:
		return "isolated"
	}
	return "shared"
}

func markerForKey(key string) (Marker, bool) {
	for _, m := range []Marker{MarkerFirefox, MarkerEpiphany, MarkerIsolated} {
		if m.Key() == key {
			return m, true
		}
	}
	return MarkerNone, false
}

const (
	mimeTypes = "text/html;text/xml;application/xhtml_xml;"
	// legacyWMClass marks launchers made by versions that only supported Chromium.
	legacyWMClass = "Chromium"
	wmClassPrefix = "ICE-SSB"
)

// Entry is an Ice launcher.
type Entry struct {
	Name           string
	Comment        string
	Exec           string
	Icon           string
	Categories     string
	MimeType       string
	StartupWMClass string
	Marker         Marker
	Profile        string

	// Path is where the entry was read from or should be written to.
	Path string
}

// New builds the entry Ice writes for a new launcher.
func New(title, slug, execLine, icon string, cat Category, marker Marker) *Entry {
	e := &Entry{
		Name:           title,
		Comment:        title + " (Ice SSB)",
		Exec:           execLine,
		Icon:           icon,
		Categories:     "GTK;" + cat.FreedesktopName(),
		MimeType:       mimeTypes,
		StartupWMClass: wmClassPrefix + "-" + slug,
		Marker:         marker,
	}
	if marker != MarkerNone {
		e.Profile = slug
	}
	return e
}

// Slug returns the launcher's file-name stem.
func (e *Entry) Slug() string {
	if e.Path != "" {
		return strings.TrimSuffix(filepath.Base(e.Path), ".desktop")
	}
	return strings.TrimPrefix(e.StartupWMClass, wmClassPrefix+"-")
}

// IsIce reports whether e carries Ice's window-class signature.
func (e *Entry) IsIce() bool {
	return strings.HasPrefix(e.StartupWMClass, wmClassPrefix) || e.StartupWMClass == legacyWMClass
}

// Slug turns an application title into the launcher file-name stem: only
// letters are kept, lowercased.
func Slug(title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", ErrEmptyName
	}
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	if b.Len() == 0 {
		return "", ErrInvalidName
	}
	return b.String(), nil
}

// FileName returns "<slug>.desktop".
func FileName(slug string) string {
	return slug + ".desktop"
}
