package desktop

import (
	"fmt"
	"strings"
)

// Category is a menu section offered when creating a launcher.
type Category string

const (
	Accessories Category = "Accessories"
	Games       Category = "Games"
	Graphics    Category = "Graphics"
	Internet    Category = "Internet"
	Office      Category = "Office"
	Programming Category = "Programming"
	Multimedia  Category = "Multimedia"
	System      Category = "System"
)

// DefaultCategory is preselected for new launchers.
const DefaultCategory = Internet

// Categories lists the menu sections in display order.
var Categories = []Category{Accessories, Games, Graphics, Internet, Office, Programming, Multimedia, System}

var freedesktop = map[Category]string{
	Accessories: "Utility;",
	Games:       "Game;",
	Graphics:    "Graphics;",
	Internet:    "Network;",
	Office:      "Office;",
	Programming: "Development;",
	Multimedia:  "AudioVideo;",
	System:      "System;",
}

// FreedesktopName returns the Categories= value for c, e.g. "Network;".
func (c Category) FreedesktopName() string {
	if v, ok := freedesktop[c]; ok {
		return v
	}
	return freedesktop[DefaultCategory]
}

// ParseCategory accepts a menu label or a freedesktop category name.
func ParseCategory(s string) (Category, error) {
	key := strings.TrimSuffix(strings.TrimSpace(s), ";")
	for _, c := range Categories {
		if strings.EqualFold(string(c), key) || strings.EqualFold(strings.TrimSuffix(freedesktop[c], ";"), key) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}
