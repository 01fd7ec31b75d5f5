package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peppermintos/ice/internal/browser"
	"github.com/peppermintos/ice/internal/config"
	"github.com/peppermintos/ice/internal/desktop"
	"github.com/peppermintos/ice/internal/ui"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetBrowserCmd)
	configCmd.AddCommand(configSetCategoryCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and modify Ice configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := app.cfg

		defBrowser := cfg.Defaults.Browser
		if defBrowser == "" {
			defBrowser = "(first installed)"
		}

		fmt.Println(ui.Cyan.Render("Paths:"))
		fmt.Println(ui.Dim.Render("  Data:      ") + ui.White.Render(cfg.Paths.IceDir))
		fmt.Println(ui.Dim.Render("  Launchers: ") + ui.White.Render(cfg.Paths.AppsDir))
		fmt.Println(ui.Dim.Render("  Firefox:   ") + ui.White.Render(cfg.Paths.FirefoxResources))
		fmt.Println(ui.Dim.Render("  Icon:      ") + ui.White.Render(cfg.Paths.DefaultIcon))
		fmt.Println()
		fmt.Println(ui.Cyan.Render("Defaults:"))
		fmt.Println(ui.Dim.Render("  Browser:   ") + ui.White.Render(defBrowser))
		fmt.Println(ui.Dim.Render("  Category:  ") + ui.White.Render(cfg.Defaults.Category))
		fmt.Println(ui.Dim.Render("  Isolate:   ") + ui.White.Render(fmt.Sprintf("%v", cfg.Defaults.Isolate)))
		fmt.Println()
		fmt.Println(ui.Cyan.Render("Favicon:"))
		fmt.Println(ui.Dim.Render("  Timeout:   ") + ui.White.Render(fmt.Sprintf("%ds", cfg.Favicon.TimeoutSeconds)))
		fmt.Println(ui.Dim.Render("  Google:    ") + ui.White.Render(fmt.Sprintf("%v", cfg.Favicon.GoogleProxy)))
		if len(cfg.Browsers) > 0 {
			fmt.Println()
			fmt.Println(ui.Cyan.Render("Browser overrides:"))
			for name, bc := range cfg.Browsers {
				val := bc.Binary
				if bc.Disabled {
					val = "disabled"
				}
				fmt.Println(ui.Dim.Render(fmt.Sprintf("  %-10s ", name+":")) + ui.White.Render(val))
			}
		}
		fmt.Println()
		fmt.Println(ui.Dim.Render("Log level:   " + cfg.LogLevel))
		fmt.Println(ui.Dim.Render("Config file: " + app.cfgPath))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(app.cfgPath); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", app.cfgPath)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := config.Default().Save(app.cfgPath); err != nil {
			return err
		}
		ui.Success("Wrote %s", app.cfgPath)
		return nil
	},
}

var configSetBrowserCmd = &cobra.Command{
	Use:   "set-default-browser <browser>",
	Short: "Choose the browser preselected for new SSBs",
	Long:  "Accepts " + browserNames() + ", or \"auto\" to use the first installed browser.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := ""
		if !strings.EqualFold(args[0], "auto") {
			b, err := browser.Parse(args[0])
			if err != nil {
				return err
			}
			value = string(b)
		}
		if err := updateConfig(func(c *config.Config) { c.Defaults.Browser = value }); err != nil {
			return err
		}
		if value == "" {
			value = "auto"
		}
		ui.Success("Default browser set to %s", ui.White.Render(value))
		return nil
	},
}

var configSetCategoryCmd = &cobra.Command{
	Use:   "set-default-category <category>",
	Short: "Choose the menu category preselected for new SSBs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := desktop.ParseCategory(args[0])
		if err != nil {
			return err
		}
		if err := updateConfig(func(c *config.Config) { c.Defaults.Category = string(cat) }); err != nil {
			return err
		}
		ui.Success("Default category set to %s", ui.White.Render(string(cat)))
		return nil
	},
}

// updateConfig applies fn to the file's contents, without environment
// overrides, and saves it.
func updateConfig(fn func(*config.Config)) error {
	cfg, err := config.Load(app.cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	fn(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return cfg.Save(app.cfgPath)
}

func browserNames() string {
	names := make([]string, len(browser.All))
	for i, b := range browser.All {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}
