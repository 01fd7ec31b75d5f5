package desktop

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

const mainGroup = "[Desktop Entry]"

// Parse reads a launcher and returns it when it is an Ice entry. Non-Ice
// launchers yield ErrNotIce. When several marker keys are present the last
// one wins.
func Parse(r io.Reader) (*Entry, error) {
	e := &Entry{}
	inMain := false
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !utf8.ValidString(line) {
			line = strings.ToValidUTF8(line, "")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inMain = line == mainGroup
			continue
		}
		if !inMain {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Name":
			e.Name = value
		case "Comment":
			e.Comment = value
		case "Exec":
			e.Exec = value
		case "Icon":
			e.Icon = value
		case "Categories":
			e.Categories = value
		case "MimeType":
			e.MimeType = value
		case "StartupWMClass":
			e.StartupWMClass = value
		default:
			if m, ok := markerForKey(key); ok {
				e.Marker = m
				e.Profile = value
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading desktop entry: %w", err)
	}

	if !e.IsIce() || e.Name == "" || e.Icon == "" {
		return nil, ErrNotIce
	}
	return e, nil
}

// ParseFile parses the launcher at path, following symlinks.
func ParseFile(path string) (*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	e, err := Parse(f)
	if err != nil {
		return nil, err
	}
	e.Path = path
	return e, nil
}

// ScanDir returns every Ice launcher in dir sorted by name. Directories,
// broken symlinks and unreadable files are skipped.
func ScanDir(dir string) ([]*Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var entries []*Entry
	for _, item := range items {
		if !strings.HasSuffix(item.Name(), ".desktop") {
			continue
		}
		path := filepath.Join(dir, item.Name())
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		e, err := ParseFile(path)
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}
