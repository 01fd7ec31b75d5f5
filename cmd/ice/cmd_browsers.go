package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peppermintos/ice/internal/browser"
	"github.com/peppermintos/ice/internal/ui"
)

func init() {
	rootCmd.AddCommand(browsersCmd)
}

var browsersCmd = &cobra.Command{
	Use:   "browsers",
	Short: "Show which supported browsers are installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list := browser.Detect(app.cfg.BrowserBinaries())
		def, derr := browser.DefaultChoice(browser.Installed(list), app.cfg.PreferredBrowser())

		for _, inst := range list {
			mark := ui.Red.Render("✗")
			if inst.Installed {
				mark = ui.Green.Render("✓")
			}
			name := fmt.Sprintf("%-10s", inst.Browser.DisplayName())
			bin := inst.Binary
			if bin == "" {
				bin = "disabled"
			}
			line := mark + " " + ui.White.Render(name) + " " + ui.Dim.Render(bin)
			if derr == nil && inst.Browser == def {
				line += " " + ui.Cyan.Render("(default)")
			}
			if inst.Browser.AlwaysIsolated() {
				line += " " + ui.Dim.Render("always isolated")
			}
			fmt.Println(line)
		}
		if derr != nil {
			fmt.Println()
			ui.Warn("%v", derr)
		}
		return nil
	},
}
