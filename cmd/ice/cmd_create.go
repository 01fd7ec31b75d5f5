package main

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/peppermintos/ice/internal/browser"
	"github.com/peppermintos/ice/internal/desktop"
	"github.com/peppermintos/ice/internal/ssb"
	"github.com/peppermintos/ice/internal/ui"
	"github.com/peppermintos/ice/internal/urlcheck"
	"github.com/peppermintos/ice/internal/wizard"
)

var createFlags struct {
	name     string
	url      string
	category string
	browser  string
	isolate  bool
	icon     string
	favicon  bool
	force    bool
}

func init() {
	f := createCmd.Flags()
	f.StringVarP(&createFlags.name, "name", "n", "", "application name shown in the menu")
	f.StringVarP(&createFlags.url, "url", "u", "", "web address to open")
	f.StringVarP(&createFlags.category, "category", "c", "", "menu category (Accessories, Games, Graphics, Internet, Office, Programming, Multimedia, System)")
	f.StringVarP(&createFlags.browser, "browser", "b", "", "browser to use (default: configured or first installed)")
	f.BoolVar(&createFlags.isolate, "isolate", false, "give the SSB its own browser profile (always on for Firefox and GNOME Web)")
	f.StringVar(&createFlags.icon, "icon", "", "image file to use as the icon")
	f.BoolVar(&createFlags.favicon, "favicon", false, "download the site's icon")
	f.BoolVar(&createFlags.force, "force", false, "create even if the address does not respond")
	createCmd.MarkFlagsMutuallyExclusive("icon", "favicon")
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:         "create",
	Short:       "Create a site-specific browser",
	Long:        "Creates a menu launcher for a web site. Without --name and --url an interactive form is shown.",
	Args:        cobra.NoArgs,
	Annotations: reconcileFirst,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := manager()
		if err != nil {
			return err
		}

		var req ssb.Request
		if createFlags.name == "" || createFlags.url == "" {
			if !interactive() {
				return fmt.Errorf("--name and --url are required when not running in a terminal")
			}
			existing, err := mgr.List()
			if err != nil {
				return err
			}
			env, err := wizard.Discover(app.cfg, existing)
			if err != nil {
				return err
			}
			req, err = wizard.RunCreate(env)
			if errors.Is(err, wizard.ErrCancelled) {
				fmt.Println("Cancelled.")
				return nil
			}
			if err != nil {
				return err
			}
		} else {
			req, err = requestFromFlags(cmd)
			if err != nil {
				return err
			}
		}

		if !createFlags.force {
			if proceed, err := checkAddress(cmd, req.URL); err != nil || !proceed {
				return err
			}
		}

		var res *ssb.Result
		create := func() { res, err = mgr.Create(commandContext(cmd), req) }
		if req.FetchFavicon && interactive() {
			if serr := spinner.New().Title("Downloading icon...").Action(create).Run(); serr != nil {
				return serr
			}
		} else {
			create()
		}
		if err != nil {
			return err
		}

		e := res.Entry
		ui.Success("Created %s", ui.White.Render(e.Name))
		ui.Field("Launcher:", e.Path)
		ui.Field("Browser:", req.Browser.DisplayName())
		if res.ProfileDir != "" {
			ui.Field("Profile:", res.ProfileDir)
		}
		ui.Field("Icon:", e.Icon)
		if res.IconErr != nil {
			ui.Warn("Could not download the site icon (%v); using the default icon.", res.IconErr)
		}
		return nil
	},
}

func requestFromFlags(cmd *cobra.Command) (ssb.Request, error) {
	installed := browser.Installed(browser.Detect(app.cfg.BrowserBinaries()))

	var b browser.Browser
	if createFlags.browser != "" {
		parsed, err := browser.Parse(createFlags.browser)
		if err != nil {
			return ssb.Request{}, err
		}
		b = parsed
		found := false
		for _, i := range installed {
			found = found || i == b
		}
		if !found {
			app.log.Warn("browser does not appear to be installed", "browser", b.DisplayName())
		}
	} else {
		choice, err := browser.DefaultChoice(installed, app.cfg.PreferredBrowser())
		if err != nil {
			return ssb.Request{}, err
		}
		b = choice
	}

	cat := app.cfg.DefaultCategory()
	if createFlags.category != "" {
		parsed, err := desktop.ParseCategory(createFlags.category)
		if err != nil {
			return ssb.Request{}, err
		}
		cat = parsed
	}

	isolate := app.cfg.Defaults.Isolate
	if cmd.Flags().Changed("isolate") {
		isolate = createFlags.isolate
	}

	return ssb.Request{
		Title:        createFlags.name,
		URL:          createFlags.url,
		Category:     cat,
		Browser:      b,
		Isolate:      isolate || b.AlwaysIsolated(),
		IconPath:     createFlags.icon,
		FetchFavicon: createFlags.favicon,
	}, nil
}

// checkAddress verifies the site responds. On failure an interactive user
// may continue anyway; otherwise --force is required.
func checkAddress(cmd *cobra.Command, raw string) (bool, error) {
	addr, err := urlcheck.Normalize(raw)
	if err != nil {
		return false, err
	}
	client := &http.Client{Timeout: time.Duration(app.cfg.Favicon.TimeoutSeconds) * time.Second}
	err = urlcheck.Reachable(commandContext(cmd), client, addr, app.cfg.Favicon.UserAgent)
	if err == nil {
		return true, nil
	}

	if !interactive() {
		return false, fmt.Errorf("%w (use --force to create it anyway)", err)
	}
	ui.Warn("%v", err)
	if confirm(bufio.NewReader(os.Stdin), "Continue anyway?") {
		return true, nil
	}
	fmt.Println("Cancelled.")
	return false, nil
}
