package wizard

import (
	"github.com/peppermintos/ice/internal/browser"
	"github.com/peppermintos/ice/internal/config"
	"github.com/peppermintos/ice/internal/desktop"
)

// Environment holds what the create form offers and preselects.
type Environment struct {
	Installed []browser.Browser
	Browser   browser.Browser
	Category  desktop.Category
	Isolate   bool
	Existing  []*desktop.Entry
}

// Discover detects installed browsers and reads the configured defaults.
// It fails with browser.ErrNoBrowser when nothing usable is installed.
func Discover(cfg *config.Config, existing []*desktop.Entry) (*Environment, error) {
	installed := browser.Installed(browser.Detect(cfg.BrowserBinaries()))
	choice, err := browser.DefaultChoice(installed, cfg.PreferredBrowser())
	if err != nil {
		return nil, err
	}
	return &Environment{
		Installed: installed,
		Browser:   choice,
		Category:  cfg.DefaultCategory(),
		Isolate:   cfg.Defaults.Isolate,
		Existing:  existing,
	}, nil
}

// taken reports whether a launcher with slug already exists.
func (env *Environment) taken(slug string) bool {
	for _, e := range env.Existing {
		if e.Slug() == slug {
			return true
		}
	}
	return false
}
