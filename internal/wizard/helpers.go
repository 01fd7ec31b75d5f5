package wizard

import (
	"fmt"
	"os"
	"strings"

	"github.com/peppermintos/ice/internal/browser"
	"github.com/peppermintos/ice/internal/desktop"
	"github.com/peppermintos/ice/internal/ssb"
	"github.com/peppermintos/ice/internal/urlcheck"
)

// Icon sources offered by the create form.
const (
	IconDefault = "default"
	IconFile    = "file"
	IconFavicon = "favicon"
)

// CreateAnswers holds raw values from the create form.
type CreateAnswers struct {
	Name       string
	URL        string
	Category   string
	Browser    string
	Isolate    bool
	IconSource string
	IconPath   string
	Confirmed  bool
}

// Defaults fills the answers from env.
func (a *CreateAnswers) Defaults(env *Environment) {
	a.Category = string(env.Category)
	a.Browser = string(env.Browser)
	a.Isolate = env.Isolate
	if a.IconSource == "" {
		a.IconSource = IconDefault
	}
}

// AlwaysIsolated reports whether the chosen browser forces isolation.
func (a *CreateAnswers) AlwaysIsolated() bool {
	return browser.Browser(a.Browser).AlwaysIsolated()
}

// Request converts the answers to an ssb.Request.
func (a *CreateAnswers) Request() (ssb.Request, error) {
	b, err := browser.Parse(a.Browser)
	if err != nil {
		return ssb.Request{}, err
	}
	cat, err := desktop.ParseCategory(a.Category)
	if err != nil {
		return ssb.Request{}, err
	}
	req := ssb.Request{
		Title:    strings.TrimSpace(a.Name),
		URL:      strings.TrimSpace(a.URL),
		Category: cat,
		Browser:  b,
		Isolate:  a.Isolate || b.AlwaysIsolated(),
	}
	switch a.IconSource {
	case IconFile:
		req.IconPath = strings.TrimSpace(a.IconPath)
	case IconFavicon:
		req.FetchFavicon = true
	}
	return req, nil
}

// ValidateName rejects names with no letters and names already in use.
func ValidateName(env *Environment) func(string) error {
	return func(s string) error {
		slug, err := desktop.Slug(s)
		if err != nil {
			return err
		}
		if env != nil && env.taken(slug) {
			return fmt.Errorf("an SSB named %q already exists", slug)
		}
		return nil
	}
}

// ValidateAddress returns nil if s normalizes to an http(s) URL.
func ValidateAddress(s string) error {
	_, err := urlcheck.Normalize(s)
	return err
}

// ValidateIconFile returns nil if s names a readable image file of a type
// launchers can display.
func ValidateIconFile(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("choose an image file")
	}
	fi, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("cannot read %s", s)
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", s)
	}
	if !ssb.IsIconFile(s) {
		return fmt.Errorf("use a png, jpg, gif, xpm or svg image")
	}
	return nil
}

// RemoveAnswers holds the remove form's selection.
type RemoveAnswers struct {
	Selected  []string
	Confirmed bool
}
